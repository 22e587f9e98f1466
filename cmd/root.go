package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kozaktomas/photo-appendix/internal/config"
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "photo-appendix",
	Short: "A CLI tool for turning photo batches into PDF appendix documents",
	Long: `Photo Appendix reads a batch of photos, extracts their embedded
metadata, and renders a single paginated PDF document with a caption,
an optional map location marker, and an optional compass direction
indicator under every photo.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a YAML config file")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

// loadConfig builds the effective configuration: env defaults overlaid
// with the optional YAML config file.
func loadConfig() (*config.Config, error) {
	cfg := config.Load()
	if configFile != "" {
		if err := cfg.ApplyFile(configFile); err != nil {
			return nil, fmt.Errorf("failed to apply config file: %w", err)
		}
	}
	return cfg, nil
}
