package translate

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/batchlingo/internal/domain"
)

// OpenAIProvider implements Provider using the OpenAI image editing API
type OpenAIProvider struct {
	client *openai.Client
	config *Config
}

// NewOpenAIProvider creates a new OpenAI image translation provider
func NewOpenAIProvider(config *Config) (Provider, error) {
	if config.OpenAIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	return &OpenAIProvider{
		client: openai.NewClient(config.OpenAIKey),
		config: config,
	}, nil
}

// TranslateImage sends the image with the translation prompt to the OpenAI
// image edit endpoint and decodes the returned image
func (p *OpenAIProvider) TranslateImage(ctx context.Context, req *Request) (*Result, error) {
	editReq := openai.ImageEditRequest{
		Image:  openai.WrapReader(bytes.NewReader(req.ImageData), "image"+ExtFromMIME(req.MIMEType), req.MIMEType),
		Prompt: req.Prompt,
		Model:  p.config.OpenAIModel,
		N:      1,
		Size:   p.config.OpenAISize,
	}

	resp, err := p.client.CreateEditImage(ctx, editReq)
	if err != nil {
		return nil, classifyErr(err)
	}

	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, NewFailure(domain.ErrorKindTransient, "no image data found in OpenAI response")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, NewFailure(domain.ErrorKindTransient, "failed to decode base64 image: %v", err)
	}

	return &Result{ImageData: data, MIMEType: "image/png"}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable() error {
	if p.config.OpenAIKey == "" {
		return fmt.Errorf("OpenAI API key not configured")
	}
	return nil
}
