package inference

import (
	"golang.org/x/xerrors"

	"github.com/khaledhikmat/vs-bgremove/frame"
	"github.com/khaledhikmat/vs-bgremove/model"
)

// DecodeMask turns a model output into a class mask. dims is either
// [H W], [1 H W] (class ids) or [1 C H W] (per class scores, argmax over C).
func DecodeMask(dims []int, data []float32) (*frame.ClassMask, error) {
	var classes, h, w int
	switch len(dims) {
	case 2:
		classes, h, w = 1, dims[0], dims[1]
	case 3:
		if dims[0] != 1 {
			return nil, xerrors.Errorf("batch of %d: %w", dims[0], model.ErrShapeMismatch)
		}
		classes, h, w = 1, dims[1], dims[2]
	case 4:
		if dims[0] != 1 {
			return nil, xerrors.Errorf("batch of %d: %w", dims[0], model.ErrShapeMismatch)
		}
		classes, h, w = dims[1], dims[2], dims[3]
	default:
		return nil, xerrors.Errorf("output dims %v: %w", dims, model.ErrShapeMismatch)
	}

	area := h * w
	if classes <= 0 || area <= 0 || len(data) < classes*area {
		return nil, xerrors.Errorf("output dims %v with %d values: %w", dims, len(data), model.ErrShapeMismatch)
	}

	ids := make([]int32, area)
	if classes == 1 {
		for i := range ids {
			ids[i] = int32(data[i] + 0.5)
		}
		return frame.MaskFromIDs(w, h, ids)
	}

	// Scores are planar: all pixels of class 0, then class 1, ...
	best := make([]float32, area)
	copy(best, data[:area])
	for c := 1; c < classes; c++ {
		plane := data[c*area : (c+1)*area]
		for i, v := range plane {
			if v > best[i] {
				best[i] = v
				ids[i] = int32(c)
			}
		}
	}
	return frame.MaskFromIDs(w, h, ids)
}
