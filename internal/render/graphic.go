// Package render produces the small auxiliary graphics placed next to a
// photo's caption: the compass-bearing dial and the map location marker.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// Graphic holds in-memory image bytes for insertion into the document.
// It is owned by the caller and discarded after insertion; nothing is
// persisted beyond the pipeline run.
type Graphic struct {
	PNG    []byte
	Width  int
	Height int
}

// encodePNG wraps an image into a Graphic.
func encodePNG(img image.Image) (*Graphic, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode graphic: %w", err)
	}
	b := img.Bounds()
	return &Graphic{PNG: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}

// resizeTo scales an image to exact pixel dimensions.
func resizeTo(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// circleControl is the cubic Bezier circle approximation constant.
const circleControl = 0.5523

// fillCircle rasterizes a filled circle onto dst.
func fillCircle(dst *image.RGBA, cx, cy, radius float32, c color.Color) {
	b := dst.Bounds()
	r := vector.NewRasterizer(b.Dx(), b.Dy())
	k := radius * circleControl

	r.MoveTo(cx+radius, cy)
	r.CubeTo(cx+radius, cy+k, cx+k, cy+radius, cx, cy+radius)
	r.CubeTo(cx-k, cy+radius, cx-radius, cy+k, cx-radius, cy)
	r.CubeTo(cx-radius, cy-k, cx-k, cy-radius, cx, cy-radius)
	r.CubeTo(cx+k, cy-radius, cx+radius, cy-k, cx+radius, cy)
	r.ClosePath()
	r.Draw(dst, b, image.NewUniform(c), image.Point{})
}

// fillPolygon rasterizes a filled polygon from its vertices onto dst.
func fillPolygon(dst *image.RGBA, pts [][2]float32, c color.Color) {
	if len(pts) < 3 {
		return
	}
	b := dst.Bounds()
	r := vector.NewRasterizer(b.Dx(), b.Dy())
	r.MoveTo(pts[0][0], pts[0][1])
	for _, p := range pts[1:] {
		r.LineTo(p[0], p[1])
	}
	r.ClosePath()
	r.Draw(dst, b, image.NewUniform(c), image.Point{})
}
