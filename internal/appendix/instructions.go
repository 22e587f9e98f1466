package appendix

import (
	"context"

	"github.com/kozaktomas/photo-appendix/internal/layout"
	"github.com/kozaktomas/photo-appendix/internal/render"
)

// Instruction is one step of the ordered document build stream handed to
// the document writer: insert an image, insert text, or break the page.
type Instruction interface {
	instruction()
}

// PageBreak starts a new page.
type PageBreak struct{}

// InsertImage places a photo into its slot, width-sized; the photo's own
// aspect ratio decides the height up to the slot's cap.
type InsertImage struct {
	Path string
	Slot layout.Slot
}

// InsertText places a caption into a slot's caption band.
type InsertText struct {
	Text string
	Slot layout.Slot
}

// GraphicKind distinguishes the auxiliary graphics.
type GraphicKind string

const (
	GraphicLocationMarker     GraphicKind = "location-marker"
	GraphicDirectionIndicator GraphicKind = "direction-indicator"
)

// InsertGraphic places an auxiliary graphic in a slot's caption band.
type InsertGraphic struct {
	Kind    GraphicKind
	Graphic *render.Graphic
	Slot    layout.Slot
}

func (PageBreak) instruction()     {}
func (InsertImage) instruction()   {}
func (InsertText) instruction()    {}
func (InsertGraphic) instruction() {}

// DocumentWriter persists an instruction stream as a paginated document.
// The stream is consumed in order by a single writer.
type DocumentWriter interface {
	WriteDocument(ctx context.Context, instructions []Instruction, dest string) error
}
