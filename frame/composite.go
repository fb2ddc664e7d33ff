package frame

import (
	"image"

	"golang.org/x/xerrors"

	"github.com/khaledhikmat/vs-bgremove/model"
)

// PersonClassID is the PASCAL VOC index of "person".
const PersonClassID int32 = 15

// Composite returns a copy of src where every pixel whose mask value is not
// target is opaque white. Target pixels are copied unchanged. src is never
// modified.
func Composite(src *image.RGBA, mask *ClassMask, target int32) (*image.RGBA, error) {
	if src == nil || mask == nil {
		return nil, xerrors.Errorf("nil frame or mask: %w", model.ErrInvalidFrame)
	}

	b := src.Bounds()
	if b.Dx() != mask.Width || b.Dy() != mask.Height {
		return nil, xerrors.Errorf("frame %dx%d, mask %dx%d: %w", b.Dx(), b.Dy(), mask.Width, mask.Height, model.ErrShapeMismatch)
	}
	if len(mask.IDs) != mask.Width*mask.Height {
		return nil, xerrors.Errorf("mask %dx%d holds %d ids: %w", mask.Width, mask.Height, len(mask.IDs), model.ErrShapeMismatch)
	}

	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		srcRow := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
		dstRow := out.Pix[y*out.Stride:]
		ids := mask.IDs[y*mask.Width : (y+1)*mask.Width]
		for x, id := range ids {
			i := x * 4
			if id != target {
				dstRow[i], dstRow[i+1], dstRow[i+2], dstRow[i+3] = 255, 255, 255, 255
				continue
			}
			copy(dstRow[i:i+4], srcRow[i:i+4])
		}
	}

	return out, nil
}

// White returns a solid white frame of the given size.
func White(width, height int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := range out.Pix {
		out.Pix[i] = 255
	}
	return out
}
