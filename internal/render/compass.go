package render

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DialSizePx is the default edge length of the compass dial graphic.
const DialSizePx = 128

var (
	dialRimColor   = color.RGBA{0x44, 0x44, 0x44, 0xff}
	dialFaceColor  = color.RGBA{0xff, 0xff, 0xff, 0xff}
	dialArrowColor = color.RGBA{0xc0, 0x28, 0x28, 0xff}
	dialHubColor   = color.RGBA{0x22, 0x22, 0x22, 0xff}
)

// CompassRenderer draws a fixed-size circular dial with a north marker
// and an arrow pointing at a bearing, clockwise from north (0 degrees is
// up). Rendering is pure and deterministic: equal bearings modulo 360
// produce byte-identical output.
type CompassRenderer struct {
	SizePx int // 0 means DialSizePx
}

// Render produces the dial graphic for a bearing in degrees.
func (r CompassRenderer) Render(bearingDegrees float64) (*Graphic, error) {
	size := r.SizePx
	if size <= 0 {
		size = DialSizePx
	}

	b := math.Mod(bearingDegrees, 360)
	if b < 0 {
		b += 360
	}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	c := float32(size) / 2
	outer := c - 2
	inner := outer - float32(size)*0.05

	fillCircle(img, c, c, outer, dialRimColor)
	fillCircle(img, c, c, inner, dialFaceColor)

	drawNorthMark(img, size)
	drawArrow(img, c, b, inner)
	fillCircle(img, c, c, float32(size)*0.04, dialHubColor)

	return encodePNG(img)
}

// drawNorthMark places the fixed "N" glyph just inside the top of the rim.
func drawNorthMark(img *image.RGBA, size int) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, "N")
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(dialHubColor),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(size/2) - width/2,
			Y: fixed.I(size / 7),
		},
	}
	d.DrawString("N")
}

// drawArrow fills the bearing triangle. Screen Y grows downward, so a
// bearing of 0 points straight up at the north mark.
func drawArrow(img *image.RGBA, c float32, bearing float64, radius float32) {
	theta := bearing * math.Pi / 180
	tipLen := radius * 0.82
	baseLen := radius * 0.18
	halfWidth := radius * 0.14

	tip := pointAt(c, theta, tipLen)
	left := pointAt(c, theta-math.Pi/2, halfWidth)
	right := pointAt(c, theta+math.Pi/2, halfWidth)
	tail := pointAt(c, theta+math.Pi, baseLen)

	fillPolygon(img, [][2]float32{tip, left, tail, right}, dialArrowColor)
}

// pointAt translates a polar offset (angle clockwise from up) from the
// dial center into pixel coordinates.
func pointAt(c float32, theta float64, dist float32) [2]float32 {
	return [2]float32{
		c + dist*float32(math.Sin(theta)),
		c - dist*float32(math.Cos(theta)),
	}
}
