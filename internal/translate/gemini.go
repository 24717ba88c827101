package translate

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"codeberg.org/snonux/batchlingo/internal/domain"
)

// GeminiProvider implements Provider using the Gemini image editing models
type GeminiProvider struct {
	client *genai.Client
	config *Config
}

// NewGeminiProvider creates a new Gemini image translation provider
func NewGeminiProvider(config *Config) (Provider, error) {
	if config.GeminiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.GeminiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		config: config,
	}, nil
}

// TranslateImage sends the image with the translation prompt to Gemini and
// extracts the edited image from the response
func (p *GeminiProvider) TranslateImage(ctx context.Context, req *Request) (*Result, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(req.Prompt),
			genai.NewPartFromBytes(req.ImageData, req.MIMEType),
		}, genai.RoleUser),
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.config.GeminiModel, contents, nil)
	if err != nil {
		return nil, classifyErr(err)
	}

	result := extractInlineImage(resp)
	if result == nil {
		// The model answered without image data, e.g. a refusal in prose.
		// Truncated or missing image payloads are treated as transient.
		return nil, NewFailure(domain.ErrorKindTransient, "no image data found in Gemini response")
	}

	return result, nil
}

// extractInlineImage walks the response candidates for inline image data
func extractInlineImage(resp *genai.GenerateContentResponse) *Result {
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				mimeType := part.InlineData.MIMEType
				if mimeType == "" {
					mimeType = "image/png"
				}
				return &Result{
					ImageData: part.InlineData.Data,
					MIMEType:  mimeType,
				}
			}
		}
	}
	return nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// IsAvailable checks if the provider is properly configured
func (p *GeminiProvider) IsAvailable() error {
	if p.config.GeminiKey == "" {
		return fmt.Errorf("Gemini API key not configured")
	}
	return nil
}
