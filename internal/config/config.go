package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all process-wide settings. It is constructed once before a
// run and read-only afterwards.
type Config struct {
	Appendix AppendixConfig
	Map      MapConfig
	AI       AIConfig
}

// AppendixConfig controls page layout and caption behavior.
type AppendixConfig struct {
	ImagesPerPage            int     // 1-4 photos per page
	IncludeLocationInCaption bool    // append coordinates and map marker
	PageWidthMM              float64 // A4 portrait by default
	PageHeightMM             float64
	MarginMM                 float64 // uniform page margin
	CaptionBandMM            float64 // space below each image for caption + graphics
	Concurrency              int     // extraction/rendering workers
}

// MapConfig describes the external static-map provider.
type MapConfig struct {
	BaseURL        string
	Zoom           int // fixed "nearby landmark" zoom level
	TimeoutSeconds int
}

// AIConfig holds optional AI caption provider settings.
type AIConfig struct {
	Provider     string // "openai" or "gemini"
	OpenAIToken  string
	GeminiAPIKey string
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envString reads an environment variable with a fallback default.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// Load builds the configuration from defaults and environment variables.
func Load() *Config {
	return &Config{
		Appendix: AppendixConfig{
			ImagesPerPage:            envInt("APPENDIX_IMAGES_PER_PAGE", 2),
			IncludeLocationInCaption: true,
			PageWidthMM:              210.0,
			PageHeightMM:             297.0,
			MarginMM:                 15.0,
			CaptionBandMM:            18.0,
			Concurrency:              envInt("APPENDIX_CONCURRENCY", 4),
		},
		Map: MapConfig{
			BaseURL:        envString("STATICMAP_URL", "https://staticmap.openstreetmap.de/staticmap.php"),
			Zoom:           envInt("STATICMAP_ZOOM", 16),
			TimeoutSeconds: envInt("STATICMAP_TIMEOUT", 10),
		},
		AI: AIConfig{
			Provider:     os.Getenv("AI_PROVIDER"),
			OpenAIToken:  os.Getenv("OPENAI_TOKEN"),
			GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		},
	}
}

// fileOverrides mirrors the YAML config file. Pointers distinguish
// "not set" from zero values so the file only overrides what it names.
type fileOverrides struct {
	ImagesPerPage            *int     `yaml:"images_per_page"`
	IncludeLocationInCaption *bool    `yaml:"include_location_in_caption"`
	PageWidthMM              *float64 `yaml:"page_width_mm"`
	PageHeightMM             *float64 `yaml:"page_height_mm"`
	MarginMM                 *float64 `yaml:"margin_mm"`
	CaptionBandMM            *float64 `yaml:"caption_band_mm"`
	Concurrency              *int     `yaml:"concurrency"`

	Map struct {
		BaseURL        *string `yaml:"base_url"`
		Zoom           *int    `yaml:"zoom"`
		TimeoutSeconds *int    `yaml:"timeout_seconds"`
	} `yaml:"map"`

	AI struct {
		Provider *string `yaml:"provider"`
	} `yaml:"ai"`
}

// ApplyFile overlays settings from a YAML file onto the config.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path supplied by the operator
	if err != nil {
		return fmt.Errorf("could not read config file %s: %w", path, err)
	}

	var o fileOverrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return fmt.Errorf("could not parse config file %s: %w", path, err)
	}

	if o.ImagesPerPage != nil {
		c.Appendix.ImagesPerPage = *o.ImagesPerPage
	}
	if o.IncludeLocationInCaption != nil {
		c.Appendix.IncludeLocationInCaption = *o.IncludeLocationInCaption
	}
	if o.PageWidthMM != nil {
		c.Appendix.PageWidthMM = *o.PageWidthMM
	}
	if o.PageHeightMM != nil {
		c.Appendix.PageHeightMM = *o.PageHeightMM
	}
	if o.MarginMM != nil {
		c.Appendix.MarginMM = *o.MarginMM
	}
	if o.CaptionBandMM != nil {
		c.Appendix.CaptionBandMM = *o.CaptionBandMM
	}
	if o.Concurrency != nil {
		c.Appendix.Concurrency = *o.Concurrency
	}
	if o.Map.BaseURL != nil {
		c.Map.BaseURL = *o.Map.BaseURL
	}
	if o.Map.Zoom != nil {
		c.Map.Zoom = *o.Map.Zoom
	}
	if o.Map.TimeoutSeconds != nil {
		c.Map.TimeoutSeconds = *o.Map.TimeoutSeconds
	}
	if o.AI.Provider != nil {
		c.AI.Provider = *o.AI.Provider
	}
	return nil
}

// Validate rejects out-of-range settings before any photo is read.
func (c *Config) Validate() error {
	a := c.Appendix
	if a.ImagesPerPage < 1 || a.ImagesPerPage > 4 {
		return &InvalidConfigError{Setting: "images_per_page", Value: a.ImagesPerPage, Reason: "must be between 1 and 4"}
	}
	if a.PageWidthMM <= 0 || a.PageHeightMM <= 0 {
		return &InvalidConfigError{Setting: "page_size", Value: fmt.Sprintf("%gx%g", a.PageWidthMM, a.PageHeightMM), Reason: "page dimensions must be positive"}
	}
	if a.MarginMM < 0 || a.MarginMM*2 >= a.PageWidthMM || a.MarginMM*2 >= a.PageHeightMM {
		return &InvalidConfigError{Setting: "margin_mm", Value: a.MarginMM, Reason: "margins must leave a positive content area"}
	}
	if a.CaptionBandMM < 0 || a.CaptionBandMM >= a.PageHeightMM-2*a.MarginMM {
		return &InvalidConfigError{Setting: "caption_band_mm", Value: a.CaptionBandMM, Reason: "caption band must fit inside the content area"}
	}
	if a.Concurrency < 1 {
		return &InvalidConfigError{Setting: "concurrency", Value: a.Concurrency, Reason: "must be at least 1"}
	}
	if c.Map.Zoom < 1 || c.Map.Zoom > 19 {
		return &InvalidConfigError{Setting: "map.zoom", Value: c.Map.Zoom, Reason: "must be between 1 and 19"}
	}
	if c.Map.TimeoutSeconds < 1 {
		return &InvalidConfigError{Setting: "map.timeout_seconds", Value: c.Map.TimeoutSeconds, Reason: "must be at least 1"}
	}
	switch c.AI.Provider {
	case "", "openai", "gemini":
	default:
		return &InvalidConfigError{Setting: "ai.provider", Value: c.AI.Provider, Reason: `must be "openai" or "gemini"`}
	}
	return nil
}

// InvalidConfigError reports an out-of-range setting. It is fatal and
// raised before any processing begins.
type InvalidConfigError struct {
	Setting string
	Value   any
	Reason  string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s=%v: %s", e.Setting, e.Value, e.Reason)
}
