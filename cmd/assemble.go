package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/karrick/godirwalk"
	"github.com/kozaktomas/photo-appendix/internal/ai"
	"github.com/kozaktomas/photo-appendix/internal/appendix"
	"github.com/kozaktomas/photo-appendix/internal/exif"
	"github.com/kozaktomas/photo-appendix/internal/latex"
	"github.com/kozaktomas/photo-appendix/internal/render"
	"github.com/kozaktomas/photo-appendix/internal/staticmap"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var assembleCmd = &cobra.Command{
	Use:   "assemble [photos or directories...]",
	Short: "Assemble a photo batch into a PDF appendix",
	Long: `Assemble reads the given photos (directories are walked for
supported photo files), extracts their metadata, and writes a single
paginated PDF appendix. Unreadable photos are skipped with a warning.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAssemble,
}

func init() {
	rootCmd.AddCommand(assembleCmd)

	assembleCmd.Flags().StringP("output", "o", "appendix.pdf", "Output PDF path")
	assembleCmd.Flags().Int("images-per-page", 0, "Photos per page (1-4, overrides config)")
	assembleCmd.Flags().Bool("include-location", true, "Include GPS coordinates in captions and render map markers")
	assembleCmd.Flags().Bool("ai-captions", false, "Generate captions with AI for photos without one")
	assembleCmd.Flags().Int("concurrency", 0, "Number of photos processed in parallel (overrides config)")
}

func runAssemble(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if n := mustGetInt(cmd, "images-per-page"); n > 0 {
		cfg.Appendix.ImagesPerPage = n
	}
	if cmd.Flags().Changed("include-location") {
		cfg.Appendix.IncludeLocationInCaption = mustGetBool(cmd, "include-location")
	}
	if n := mustGetInt(cmd, "concurrency"); n > 0 {
		cfg.Appendix.Concurrency = n
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	photos, err := expandPhotoArgs(args)
	if err != nil {
		return err
	}
	if len(photos) == 0 {
		return fmt.Errorf("no supported photos found in %v", args)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	extractor, err := exif.NewExtractor()
	if err != nil {
		return fmt.Errorf("failed to start metadata extractor: %w", err)
	}
	defer extractor.Close()

	marker := &render.MarkerRenderer{Source: staticmap.New(cfg.Map)}
	compass := &render.CompassRenderer{}
	writer := latex.NewWriter(cfg.Appendix)

	asm := appendix.New(cfg, extractor, marker, compass, writer)

	if mustGetBool(cmd, "ai-captions") {
		provider, err := ai.NewProvider(ctx, cfg.AI)
		if err != nil {
			return fmt.Errorf("failed to create AI provider: %w", err)
		}
		asm.SetCaptioner(provider)
		fmt.Printf("AI captions enabled (%s)\n", provider.Name())
	}

	bar := progressbar.NewOptions(len(photos),
		progressbar.OptionSetDescription(fmt.Sprintf("Processing photos (%d workers)", cfg.Appendix.Concurrency)),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	asm.SetProgress(func(done, total int) {
		_ = bar.Set(done)
	})

	output := mustGetString(cmd, "output")
	summary, err := asm.Assemble(ctx, photos, output)
	_ = bar.Finish()
	fmt.Println()
	if err != nil {
		return err
	}

	fmt.Printf("Appendix written to %s\n", output)
	fmt.Printf("  Photos:  %d processed, %d skipped\n", summary.Processed, summary.Skipped)
	fmt.Printf("  Pages:   %d\n", summary.Pages)
	if len(summary.Warnings) > 0 {
		fmt.Printf("  Warnings:\n")
		for _, w := range summary.Warnings {
			fmt.Printf("    - %s\n", w)
		}
	}
	return nil
}

// expandPhotoArgs resolves CLI arguments into a photo list. Directories
// are walked recursively for supported photo files; explicit file
// arguments are taken as-is. Walked files are sorted by path so the
// appendix order is stable.
func expandPhotoArgs(args []string) ([]string, error) {
	var photos []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if !info.IsDir() {
			photos = append(photos, arg)
			continue
		}

		var found []string
		err = godirwalk.Walk(arg, &godirwalk.Options{
			Callback: func(path string, de *godirwalk.Dirent) error {
				if de.IsDir() {
					return nil
				}
				if exif.IsSupported(path) {
					found = append(found, path)
				}
				return nil
			},
			Unsorted: true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", arg, err)
		}
		sort.Strings(found)
		photos = append(photos, found...)
	}
	return photos, nil
}
