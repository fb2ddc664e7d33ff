package frame

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khaledhikmat/vs-bgremove/model"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestEnvelopeSizeKeepsAspectRatio(t *testing.T) {
	sizes := [][2]int{
		{640, 480}, {480, 640}, {1920, 1080}, {1280, 720}, {513, 513},
		{100, 50}, {50, 100}, {1000, 1}, {7, 3}, {4096, 2160},
	}

	for _, s := range sizes {
		w, h := s[0], s[1]
		nw, nh, err := EnvelopeSize(w, h, DefaultEnvelope)
		require.NoError(t, err)

		longest := max(nw, nh)
		assert.GreaterOrEqual(t, longest, DefaultEnvelope-1, "%dx%d -> %dx%d", w, h, nw, nh)
		assert.LessOrEqual(t, longest, DefaultEnvelope, "%dx%d -> %dx%d", w, h, nw, nh)

		// Cross multiplication keeps the comparison in integers.
		if nh > 1 && nw > 1 {
			assert.InDelta(t, float64(w)*float64(nh), float64(h)*float64(nw), float64(max(w, h)), "%dx%d -> %dx%d", w, h, nw, nh)
		}
	}
}

func TestEnvelopeSizeTruncates(t *testing.T) {
	nw, nh, err := EnvelopeSize(640, 480, 513)
	require.NoError(t, err)

	ratio := 513.0 / 640.0
	assert.Equal(t, int(ratio*640), nw)
	assert.Equal(t, int(ratio*480), nh)
	assert.Equal(t, 384, nh)
}

func TestEnvelopeSizeClampsThinFrames(t *testing.T) {
	nw, nh, err := EnvelopeSize(4000, 1, 513)
	require.NoError(t, err)
	assert.Equal(t, 513, nw)
	assert.Equal(t, 1, nh)
}

func TestResizeToEnvelopeRejectsEmptyFrames(t *testing.T) {
	_, err := ResizeToEnvelope(image.NewRGBA(image.Rect(0, 0, 0, 10)), DefaultEnvelope)
	require.ErrorIs(t, err, model.ErrInvalidFrame)

	_, err = ResizeToEnvelope(image.NewRGBA(image.Rect(0, 0, 10, 0)), DefaultEnvelope)
	require.ErrorIs(t, err, model.ErrInvalidFrame)

	_, err = ResizeToEnvelope(nil, DefaultEnvelope)
	require.ErrorIs(t, err, model.ErrInvalidFrame)
}

func TestResizeToEnvelope(t *testing.T) {
	src := solid(640, 480, color.RGBA{R: 10, G: 200, B: 30, A: 255})

	out, err := ResizeToEnvelope(src, DefaultEnvelope)
	require.NoError(t, err)

	nw, nh, _ := EnvelopeSize(640, 480, DefaultEnvelope)
	assert.Equal(t, image.Rect(0, 0, nw, nh), out.Bounds())

	c := out.RGBAAt(nw/2, nh/2)
	assert.InDelta(t, 10, int(c.R), 1)
	assert.InDelta(t, 200, int(c.G), 1)
	assert.InDelta(t, 30, int(c.B), 1)
}

func TestResizeToEnvelopeDoesNotTouchInput(t *testing.T) {
	src := solid(64, 48, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	before := Clone(src)

	_, err := ResizeToEnvelope(src, 32)
	require.NoError(t, err)
	assert.Equal(t, before.Pix, src.Pix)
}

func TestToRGBARebasesSubImages(t *testing.T) {
	src := solid(20, 20, color.RGBA{R: 9, A: 255})
	sub := src.SubImage(image.Rect(5, 5, 15, 10))

	out := ToRGBA(sub)
	assert.Equal(t, image.Rect(0, 0, 10, 5), out.Bounds())
	assert.Equal(t, uint8(9), out.RGBAAt(0, 0).R)
}
