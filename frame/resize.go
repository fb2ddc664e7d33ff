package frame

import (
	"image"

	"github.com/nfnt/resize"
	"golang.org/x/xerrors"

	"github.com/khaledhikmat/vs-bgremove/model"
)

// DefaultEnvelope bounds the longest side of any image handed to the model.
const DefaultEnvelope = 513

// EnvelopeSize returns the size an image of w x h takes once its longest
// side is scaled to envelope. Dimensions are truncated, not rounded.
func EnvelopeSize(w, h, envelope int) (int, int, error) {
	if w <= 0 || h <= 0 || envelope <= 0 {
		return 0, 0, xerrors.Errorf("frame %dx%d, envelope %d: %w", w, h, envelope, model.ErrInvalidFrame)
	}

	ratio := 1.0 * float64(envelope) / float64(max(w, h))
	nw := int(ratio * float64(w))
	nh := int(ratio * float64(h))

	// Very thin frames would otherwise collapse to an empty raster.
	return max(nw, 1), max(nh, 1), nil
}

// ResizeToEnvelope scales img so that its longest side matches envelope,
// keeping the aspect ratio. Resampling uses Lanczos3.
func ResizeToEnvelope(img image.Image, envelope int) (*image.RGBA, error) {
	if img == nil {
		return nil, xerrors.Errorf("nil frame: %w", model.ErrInvalidFrame)
	}

	b := img.Bounds()
	nw, nh, err := EnvelopeSize(b.Dx(), b.Dy(), envelope)
	if err != nil {
		return nil, err
	}

	resized := resize.Resize(uint(nw), uint(nh), img, resize.Lanczos3)
	return ToRGBA(resized), nil
}
