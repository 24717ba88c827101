package cli

import (
	"os"
	"path/filepath"
	"time"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile   string
	DBPath    string
	OutputDir string

	// Translation flags
	TargetLanguage string
	Provider       string
	GeminiModel    string
	OpenAIModel    string
	OpenAISize     string

	// Batch flags
	Concurrency int
	MaxAttempts int
	CallTimeout time.Duration

	// Packaging/export flags
	FileID  string
	CSVPath string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		DBPath:         DefaultDBPath(),
		OutputDir:      DefaultOutputDir(),
		TargetLanguage: "English",
		Provider:       "gemini",
		GeminiModel:    "gemini-2.5-flash-image-preview",
		OpenAIModel:    "gpt-image-1",
		OpenAISize:     "1024x1024",
		Concurrency:    4,
		MaxAttempts:    3,
		CallTimeout:    120 * time.Second,
	}
}

// DefaultDBPath returns the default session database location
func DefaultDBPath() string {
	return filepath.Join(stateDir(), "usage.sqlite3")
}

// DefaultOutputDir returns the default directory for translated images
func DefaultOutputDir() string {
	return filepath.Join(stateDir(), "outputs")
}

func stateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "state", "batchlingo")
}
