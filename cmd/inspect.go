package cmd

import (
	"fmt"

	"github.com/kozaktomas/photo-appendix/internal/exif"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [photos or directories...]",
	Short: "Print the extracted metadata for photos",
	Long: `Inspect shows the metadata the assembler would use for each photo:
caption, GPS coordinates, compass bearing, capture time, and camera.
Useful for checking a batch before assembling the appendix.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	photos, err := expandPhotoArgs(args)
	if err != nil {
		return err
	}
	if len(photos) == 0 {
		return fmt.Errorf("no supported photos found in %v", args)
	}

	extractor, err := exif.NewExtractor()
	if err != nil {
		return fmt.Errorf("failed to start metadata extractor: %w", err)
	}
	defer extractor.Close()

	for _, path := range photos {
		fmt.Printf("%s\n", path)

		meta, err := extractor.Extract(path)
		if err != nil {
			fmt.Printf("  unreadable: %v\n\n", err)
			continue
		}

		if meta.Caption != "" {
			fmt.Printf("  Caption:  %s\n", meta.Caption)
		} else {
			fmt.Printf("  Caption:  (none)\n")
		}
		if meta.Coordinates != nil {
			fmt.Printf("  Location: %.6f, %.6f\n", meta.Coordinates.Latitude, meta.Coordinates.Longitude)
		}
		if meta.Bearing != nil {
			fmt.Printf("  Bearing:  %.1f°\n", *meta.Bearing)
		}
		if !meta.TakenAt.IsZero() {
			fmt.Printf("  Taken:    %s\n", meta.TakenAt.Format("2006-01-02 15:04:05"))
		}
		if meta.Make != "" || meta.Model != "" {
			fmt.Printf("  Camera:   %s %s\n", meta.Make, meta.Model)
		}
		if meta.Width > 0 && meta.Height > 0 {
			fmt.Printf("  Size:     %dx%d\n", meta.Width, meta.Height)
		}
		fmt.Println()
	}
	return nil
}
