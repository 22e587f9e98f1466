package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/kozaktomas/photo-appendix/internal/config"
)

// Hint carries photo context that may help the model write a caption.
type Hint struct {
	FileName    string
	TakenAt     time.Time // zero when unknown
	HasLocation bool
	Latitude    float64
	Longitude   float64
	CameraMake  string
	CameraModel string
}

// Provider defines the interface for AI caption backends.
type Provider interface {
	Name() string
	CaptionPhoto(ctx context.Context, imageData []byte, hint *Hint) (string, error)
}

// NewProvider builds the configured caption provider.
func NewProvider(ctx context.Context, cfg config.AIConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		if cfg.OpenAIToken == "" {
			return nil, fmt.Errorf("OPENAI_TOKEN environment variable is required for the openai provider")
		}
		return NewOpenAIProvider(cfg.OpenAIToken), nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required for the gemini provider")
		}
		return NewGeminiProvider(ctx, cfg.GeminiAPIKey)
	case "":
		return nil, fmt.Errorf("no AI provider configured (set AI_PROVIDER to openai or gemini)")
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}
