package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const geminiModel = "gemini-2.5-flash"

type GeminiProvider struct {
	client *genai.Client
}

func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

func (p *GeminiProvider) Name() string {
	return geminiModel
}

// CaptionPhoto sends the photo and its context to Gemini and returns a
// single-line caption.
func (p *GeminiProvider) CaptionPhoto(ctx context.Context, imageData []byte, hint *Hint) (string, error) {
	// Resize image to max 800px to save costs.
	resizedData, err := ResizeImage(imageData, 800)
	if err != nil {
		return "", fmt.Errorf("failed to resize image: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: captionPrompt + "\n\n" + buildHintMessage(hint)},
				{InlineData: &genai.Blob{Data: resizedData, MIMEType: "image/jpeg"}},
			},
		},
	}

	result, err := p.client.Models.GenerateContent(ctx, geminiModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	caption := cleanCaptionResponse(result.Text())
	if caption == "" {
		return "", errors.New("no response from Gemini")
	}
	return caption, nil
}
