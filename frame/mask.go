// Package frame holds the per-frame image operations of the background
// removal pipeline. Everything here works on Go images and has no OpenCV
// dependency.
package frame

import (
	"fmt"

	"golang.org/x/xerrors"

	"github.com/khaledhikmat/vs-bgremove/model"
)

// ClassMask is a row-major raster of class ids produced by a segmentation
// model. It has the shape of the resized frame, not the original one.
type ClassMask struct {
	Width  int
	Height int
	IDs    []int32
}

// NewClassMask returns a mask of the given shape filled with fill.
func NewClassMask(width, height int, fill int32) *ClassMask {
	ids := make([]int32, width*height)
	if fill != 0 {
		for i := range ids {
			ids[i] = fill
		}
	}
	return &ClassMask{Width: width, Height: height, IDs: ids}
}

// MaskFromIDs wraps ids without copying. The slice length must be width*height.
func MaskFromIDs(width, height int, ids []int32) (*ClassMask, error) {
	if width <= 0 || height <= 0 || len(ids) != width*height {
		return nil, xerrors.Errorf("mask %dx%d with %d ids: %w", width, height, len(ids), model.ErrShapeMismatch)
	}
	return &ClassMask{Width: width, Height: height, IDs: ids}, nil
}

func (m *ClassMask) At(x, y int) int32 {
	return m.IDs[y*m.Width+x]
}

func (m *ClassMask) Set(x, y int, id int32) {
	m.IDs[y*m.Width+x] = id
}

func (m *ClassMask) String() string {
	return fmt.Sprintf("ClassMask(%dx%d)", m.Width, m.Height)
}
