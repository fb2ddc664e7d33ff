package frame

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStretch(t *testing.T) {
	out := ToSize(solid(513, 384, color.RGBA{R: 50, G: 60, B: 70, A: 255}), image.Pt(1600, 900), ScaleStretch)
	assert.Equal(t, image.Rect(0, 0, 1600, 900), out.Bounds())
	assert.Equal(t, color.RGBA{R: 50, G: 60, B: 70, A: 255}, out.RGBAAt(800, 450))
}

func TestFitCanvasPadsWithWhite(t *testing.T) {
	out := ToSize(solid(513, 384, color.RGBA{R: 50, G: 60, B: 70, A: 255}), image.Pt(513, 288), ScaleFit)
	assert.Equal(t, image.Rect(0, 0, 513, 288), out.Bounds())

	// 513x384 fits as 384x288, leaving white bands on both sides.
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, out.RGBAAt(2, 144))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, out.RGBAAt(510, 144))
	c := out.RGBAAt(256, 144)
	assert.InDelta(t, 50, int(c.R), 1)
	assert.InDelta(t, 60, int(c.G), 1)
	assert.InDelta(t, 70, int(c.B), 1)
}

func TestToSizeKeepsMatchingFrames(t *testing.T) {
	src := solid(513, 288, color.RGBA{A: 255})
	assert.Same(t, src, ToSize(src, image.Pt(513, 288), ScaleFit))
}

func TestIsDark(t *testing.T) {
	assert.True(t, IsDark(solid(10, 10, color.RGBA{R: 200, G: 12, B: 200, A: 255})))
	assert.False(t, IsDark(solid(10, 10, color.RGBA{G: 13, A: 255})))
	assert.True(t, IsDark(image.NewRGBA(image.Rect(0, 0, 0, 0))))
}

func TestWhite(t *testing.T) {
	w := White(3, 2)
	assert.Equal(t, image.Rect(0, 0, 3, 2), w.Bounds())
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, w.RGBAAt(2, 1))
}
