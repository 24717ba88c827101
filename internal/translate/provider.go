package translate

import (
	"context"
	"fmt"
)

// Request carries one image to translate
type Request struct {
	ImageData      []byte // raw source image bytes
	MIMEType       string // e.g. "image/png"
	TargetLanguage string // target language name, see SupportedLanguages
	Prompt         string // full instruction sent alongside the image
}

// Result holds the translated image returned by the service
type Result struct {
	ImageData []byte
	MIMEType  string
}

// Provider defines the interface for image translation backends.
// Implementations make exactly one outbound call per invocation and never
// retry internally; retry behaviour belongs to the retry package.
type Provider interface {
	// TranslateImage sends the image to the external service and returns the
	// translated image. Failures are classified as *Failure values.
	TranslateImage(ctx context.Context, req *Request) (*Result, error)

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured and available
	IsAvailable() error
}

// Config holds common configuration for translation providers
type Config struct {
	Provider string // Provider name: "gemini" or "openai"

	// Gemini-specific settings
	GeminiKey   string
	GeminiModel string // default "gemini-2.5-flash-image-preview"

	// OpenAI-specific settings
	OpenAIKey   string
	OpenAIModel string // default "gpt-image-1"
	OpenAISize  string // output size, e.g. "1024x1024"
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:    "gemini",
		GeminiModel: "gemini-2.5-flash-image-preview",
		OpenAIModel: "gpt-image-1",
		OpenAISize:  "1024x1024",
	}
}

// NewProvider creates the appropriate translation provider based on configuration
func NewProvider(config *Config) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	switch config.Provider {
	case "gemini":
		if config.GeminiKey == "" {
			return nil, fmt.Errorf("Gemini API key is required")
		}
		return NewGeminiProvider(config)

	case "openai":
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return NewOpenAIProvider(config)

	default:
		return nil, fmt.Errorf("unknown translation provider: %s", config.Provider)
	}
}
