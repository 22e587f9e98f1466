package render

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// mapFetchSizePx is the size the map excerpt is fetched and composited
// at. The final graphic is resized afterwards so the pin glyph keeps its
// shape regardless of the requested output size.
const mapFetchSizePx = 256

var (
	pinColor     = color.RGBA{0xc0, 0x28, 0x28, 0xff}
	pinCoreColor = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

// MapSource provides rendered map excerpts centered on a coordinate.
// Implemented by staticmap.Client.
type MapSource interface {
	FetchMap(ctx context.Context, lat, lon float64, width, height int) (image.Image, error)
}

// MapUnavailableError means the map provider was unreachable or returned
// no usable data. It is non-fatal to a run: the caller proceeds without
// the marker for that photo.
type MapUnavailableError struct {
	Latitude  float64
	Longitude float64
	Err       error
}

func (e *MapUnavailableError) Error() string {
	return fmt.Sprintf("map unavailable for (%.4f, %.4f): %v", e.Latitude, e.Longitude, e.Err)
}

func (e *MapUnavailableError) Unwrap() error { return e.Err }

// MarkerRenderer produces a map excerpt with a pin glyph at the exact
// center pixel, marking where a photo was taken.
type MarkerRenderer struct {
	Source MapSource
}

// Render fetches the map, composites the pin, and resizes the result to
// sizePx. Compositing happens before the resize so the pin is never
// distorted.
func (r *MarkerRenderer) Render(ctx context.Context, lat, lon float64, sizePx int) (*Graphic, error) {
	src, err := r.Source.FetchMap(ctx, lat, lon, mapFetchSizePx, mapFetchSizePx)
	if err != nil {
		return nil, &MapUnavailableError{Latitude: lat, Longitude: lon, Err: err}
	}

	canvas := image.NewRGBA(image.Rect(0, 0, mapFetchSizePx, mapFetchSizePx))
	draw.Draw(canvas, canvas.Bounds(), src, src.Bounds().Min, draw.Src)
	drawPin(canvas)

	if sizePx <= 0 || sizePx == mapFetchSizePx {
		return encodePNG(canvas)
	}
	return encodePNG(resizeTo(canvas, sizePx, sizePx))
}

// drawPin places the marker glyph with its point on the center pixel.
func drawPin(img *image.RGBA) {
	c := float32(img.Bounds().Dx()) / 2
	headCY := c - 18
	headR := float32(10)

	// Stem triangle from the head down to the exact center.
	fillPolygon(img, [][2]float32{
		{c - headR*0.7, headCY + 4},
		{c + headR*0.7, headCY + 4},
		{c, c},
	}, pinColor)
	fillCircle(img, c, headCY, headR, pinColor)
	fillCircle(img, c, headCY, headR*0.4, pinCoreColor)
}
