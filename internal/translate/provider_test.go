package translate

import (
	"strings"
	"testing"
)

func TestNewProvider_MissingKeys(t *testing.T) {
	_, err := NewProvider(&Config{Provider: "gemini"})
	if err == nil {
		t.Error("Expected error for missing Gemini API key")
	}

	_, err = NewProvider(&Config{Provider: "openai"})
	if err == nil {
		t.Error("Expected error for missing OpenAI API key")
	}
}

func TestNewProvider_Unknown(t *testing.T) {
	_, err := NewProvider(&Config{Provider: "stable-diffusion"})
	if err == nil {
		t.Error("Expected error for unknown provider")
	}
}

func TestNewProvider_OpenAI(t *testing.T) {
	p, err := NewProvider(&Config{Provider: "openai", OpenAIKey: "test-key", OpenAIModel: "gpt-image-1"})
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	if p.Name() != "openai" {
		t.Errorf("Expected provider name 'openai', got %q", p.Name())
	}
	if err := p.IsAvailable(); err != nil {
		t.Errorf("IsAvailable failed: %v", err)
	}
}

func TestDefaultProviderConfig(t *testing.T) {
	cfg := DefaultProviderConfig()
	if cfg.Provider != "gemini" {
		t.Errorf("Expected default provider 'gemini', got %q", cfg.Provider)
	}
	if cfg.GeminiModel == "" {
		t.Error("Default Gemini model not set")
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("Japanese")
	if !strings.Contains(prompt, "Japanese") {
		t.Errorf("Prompt does not mention the target language: %q", prompt)
	}
	if !strings.Contains(prompt, "logos must remain untranslated") {
		t.Errorf("Prompt is missing the logo preservation instruction: %q", prompt)
	}
}

func TestIsSupportedLanguage(t *testing.T) {
	if !IsSupportedLanguage("English") {
		t.Error("English should be supported")
	}
	if !IsSupportedLanguage("Japanese") {
		t.Error("Japanese should be supported")
	}
	if IsSupportedLanguage("Klingon") {
		t.Error("Klingon should not be supported")
	}
}
