package layout

import (
	"github.com/kozaktomas/photo-appendix/internal/config"
)

// GutterMM separates neighboring cells on a page.
const GutterMM = 6.0

// Slot is one photo's assigned position and size within the output
// layout. Coordinates are in mm from the top-left corner of the page,
// margins included. Never mutated after creation.
type Slot struct {
	Page  int // 0-based page index, monotonically non-decreasing
	Index int // position on the page, [0, imagesPerPage)

	X, Y float64 // top-left corner of the cell

	// ImageWidthMM is the authoritative image width; the image's own
	// aspect ratio decides its height at insertion time, capped at
	// ImageMaxHeightMM. CellHeightMM additionally covers the caption
	// band below the image area.
	ImageWidthMM     float64
	ImageMaxHeightMM float64
	CellHeightMM     float64
}

// grid maps an images-per-page setting to its page grid.
// 1 photo fills the page, 2 stack vertically, 3 and 4 share a 2x2 grid.
func grid(imagesPerPage int) (cols, rows int) {
	switch imagesPerPage {
	case 1:
		return 1, 1
	case 2:
		return 1, 2
	default:
		return 2, 2
	}
}

// Plan computes the ordered slot sequence for a photo batch. It is a
// pure function of the photo count and the page configuration: slot i
// lands on page i/imagesPerPage at position i%imagesPerPage. A zero
// photo count yields an empty plan. The images-per-page range is
// enforced by config.Validate, not here.
func Plan(photoCount int, cfg config.AppendixConfig) []Slot {
	if photoCount <= 0 {
		return nil
	}

	cols, rows := grid(cfg.ImagesPerPage)
	contentW := cfg.PageWidthMM - 2*cfg.MarginMM
	contentH := cfg.PageHeightMM - 2*cfg.MarginMM

	cellW := (contentW - float64(cols-1)*GutterMM) / float64(cols)
	cellH := (contentH - float64(rows-1)*GutterMM) / float64(rows)

	slots := make([]Slot, 0, photoCount)
	for i := range photoCount {
		idx := i % cfg.ImagesPerPage
		col := idx % cols
		row := idx / cols

		slots = append(slots, Slot{
			Page:             i / cfg.ImagesPerPage,
			Index:            idx,
			X:                cfg.MarginMM + float64(col)*(cellW+GutterMM),
			Y:                cfg.MarginMM + float64(row)*(cellH+GutterMM),
			ImageWidthMM:     cellW,
			ImageMaxHeightMM: cellH - cfg.CaptionBandMM,
			CellHeightMM:     cellH,
		})
	}
	return slots
}

// PageCount returns the number of pages a plan occupies.
func PageCount(slots []Slot) int {
	if len(slots) == 0 {
		return 0
	}
	return slots[len(slots)-1].Page + 1
}
