package appendix

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kozaktomas/photo-appendix/internal/ai"
	"github.com/kozaktomas/photo-appendix/internal/config"
	"github.com/kozaktomas/photo-appendix/internal/exif"
	"github.com/kozaktomas/photo-appendix/internal/layout"
	"github.com/kozaktomas/photo-appendix/internal/render"
)

// PlaceholderCaption is used for photos whose metadata carries no caption.
const PlaceholderCaption = "No caption available"

// markerSizePx is the pixel size location markers are produced at.
const markerSizePx = 192

// MetadataSource extracts one photo's normalized metadata.
// Implemented by exif.Extractor.
type MetadataSource interface {
	Extract(path string) (exif.Metadata, error)
}

// MarkerSource renders a location marker graphic for a coordinate.
// Implemented by render.MarkerRenderer.
type MarkerSource interface {
	Render(ctx context.Context, lat, lon float64, sizePx int) (*render.Graphic, error)
}

// CompassSource renders a direction indicator for a bearing.
// Implemented by render.CompassRenderer.
type CompassSource interface {
	Render(bearingDegrees float64) (*render.Graphic, error)
}

// ProgressFunc receives per-photo completion updates.
type ProgressFunc func(done, total int)

// Summary reports a finished run: totals, skips, and their reasons.
type Summary struct {
	Total     int
	Processed int
	Skipped   int
	Pages     int
	Warnings  []string
}

// Assembler drives the pipeline: extraction, layout, auxiliary graphics,
// and the instruction stream handed to the document writer.
type Assembler struct {
	cfg       *config.Config
	extractor MetadataSource
	marker    MarkerSource
	compass   CompassSource
	writer    DocumentWriter

	captioner ai.Provider
	progress  ProgressFunc
}

// New wires an assembler from its collaborators.
func New(cfg *config.Config, extractor MetadataSource, marker MarkerSource, compass CompassSource, writer DocumentWriter) *Assembler {
	return &Assembler{
		cfg:       cfg,
		extractor: extractor,
		marker:    marker,
		compass:   compass,
		writer:    writer,
	}
}

// SetCaptioner enables AI-generated captions for photos without one.
func (a *Assembler) SetCaptioner(p ai.Provider) { a.captioner = p }

// SetProgress installs a per-photo progress callback.
func (a *Assembler) SetProgress(fn ProgressFunc) { a.progress = fn }

// photoResult is one photo's processed state, produced by a worker and
// consumed strictly in input order.
type photoResult struct {
	meta     exif.Metadata
	marker   *render.Graphic
	compass  *render.Graphic
	skipped  bool
	warnings []string
}

// Assemble converts the photo batch into a document at dest. Per-photo
// failures are contained: an unreadable photo is skipped with a warning,
// a missing map marker drops only the marker. Configuration and final
// write failures abort the run.
func (a *Assembler) Assemble(ctx context.Context, photoPaths []string, dest string) (*Summary, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}

	// The plan is computed once from the full count; mid-run skips do
	// not shift the remaining photos' slots.
	plan := layout.Plan(len(photoPaths), a.cfg.Appendix)
	results := a.processPhotos(ctx, photoPaths)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary := &Summary{Total: len(photoPaths), Pages: layout.PageCount(plan)}
	instructions := a.buildInstructions(photoPaths, plan, results, summary)

	dest = ensureExtension(dest)
	if err := a.writer.WriteDocument(ctx, instructions, dest); err != nil {
		var dwe *DocumentWriteError
		if errors.As(err, &dwe) {
			return nil, err
		}
		return nil, &DocumentWriteError{Dest: dest, Err: err}
	}
	return summary, nil
}

// processPhotos runs extraction and rendering on a worker pool. Results
// land in input order; emission happens later on a single goroutine.
func (a *Assembler) processPhotos(ctx context.Context, photoPaths []string) []photoResult {
	results := make([]photoResult, len(photoPaths))

	jobs := make(chan int, len(photoPaths))
	for i := range photoPaths {
		jobs <- i
	}
	close(jobs)

	var done int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for range a.cfg.Appendix.Concurrency {
		wg.Go(func() {
			for i := range jobs {
				if ctx.Err() != nil {
					return
				}
				results[i] = a.processPhoto(ctx, photoPaths[i])

				mu.Lock()
				done++
				n := done
				mu.Unlock()
				if a.progress != nil {
					a.progress(n, len(photoPaths))
				}
			}
		})
	}
	wg.Wait()
	return results
}

// processPhoto extracts metadata and renders auxiliary graphics for a
// single photo. Failures degrade per the error taxonomy.
func (a *Assembler) processPhoto(ctx context.Context, path string) photoResult {
	res := photoResult{}

	meta, err := a.extractor.Extract(path)
	if err != nil {
		res.skipped = true
		res.warnings = append(res.warnings, fmt.Sprintf("skipped %s: %v", path, err))
		log.Printf("WARNING: skipping unreadable photo %s: %v", path, err)
		return res
	}
	res.meta = meta

	if meta.Caption == "" && a.captioner != nil {
		if caption, err := a.generateCaption(ctx, path, meta); err != nil {
			res.warnings = append(res.warnings, fmt.Sprintf("%s: AI caption failed: %v", path, err))
			log.Printf("WARNING: AI caption for %s failed: %v", path, err)
		} else {
			res.meta.Caption = caption
		}
	}

	if a.cfg.Appendix.IncludeLocationInCaption && meta.Coordinates != nil {
		g, err := a.marker.Render(ctx, meta.Coordinates.Latitude, meta.Coordinates.Longitude, markerSizePx)
		if err != nil {
			res.warnings = append(res.warnings, fmt.Sprintf("%s: location marker unavailable: %v", path, err))
			log.Printf("WARNING: location marker for %s unavailable: %v", path, err)
		} else {
			res.marker = g
		}
	}

	if meta.Bearing != nil {
		g, err := a.compass.Render(*meta.Bearing)
		if err != nil {
			res.warnings = append(res.warnings, fmt.Sprintf("%s: direction indicator failed: %v", path, err))
			log.Printf("WARNING: direction indicator for %s failed: %v", path, err)
		} else {
			res.compass = g
		}
	}

	return res
}

// generateCaption asks the AI provider for a caption, feeding it the
// photo bytes and metadata hints.
func (a *Assembler) generateCaption(ctx context.Context, path string, meta exif.Metadata) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the caller's photo list
	if err != nil {
		return "", err
	}
	hint := &ai.Hint{
		FileName:    filepath.Base(path),
		TakenAt:     meta.TakenAt,
		CameraMake:  meta.Make,
		CameraModel: meta.Model,
	}
	if meta.Coordinates != nil {
		hint.HasLocation = true
		hint.Latitude = meta.Coordinates.Latitude
		hint.Longitude = meta.Coordinates.Longitude
	}
	return a.captioner.CaptionPhoto(ctx, data, hint)
}

// buildInstructions serializes the processed photos into the ordered
// instruction stream, preserving input order and the precomputed plan.
func (a *Assembler) buildInstructions(photoPaths []string, plan []layout.Slot, results []photoResult, summary *Summary) []Instruction {
	var instructions []Instruction
	currentPage := 0

	for i, res := range results {
		summary.Warnings = append(summary.Warnings, res.warnings...)
		if res.skipped {
			summary.Skipped++
			continue
		}
		summary.Processed++

		slot := plan[i]
		for currentPage < slot.Page {
			instructions = append(instructions, PageBreak{})
			currentPage++
		}

		instructions = append(instructions, InsertImage{Path: photoPaths[i], Slot: slot})
		instructions = append(instructions, InsertText{Text: a.captionText(res.meta), Slot: slot})

		if res.marker != nil {
			instructions = append(instructions, InsertGraphic{Kind: GraphicLocationMarker, Graphic: res.marker, Slot: slot})
		}
		if res.compass != nil {
			instructions = append(instructions, InsertGraphic{Kind: GraphicDirectionIndicator, Graphic: res.compass, Slot: slot})
		}
	}
	return instructions
}

// captionText returns the caption line for a photo, falling back to the
// fixed placeholder and appending coordinates when configured.
func (a *Assembler) captionText(meta exif.Metadata) string {
	caption := meta.Caption
	if caption == "" {
		caption = PlaceholderCaption
	}
	if a.cfg.Appendix.IncludeLocationInCaption && meta.Coordinates != nil {
		caption = fmt.Sprintf("%s (%.4f, %.4f)", caption, meta.Coordinates.Latitude, meta.Coordinates.Longitude)
	}
	return caption
}

// ensureExtension appends the default document extension when missing.
func ensureExtension(dest string) string {
	if strings.EqualFold(filepath.Ext(dest), ".pdf") {
		return dest
	}
	return dest + ".pdf"
}
