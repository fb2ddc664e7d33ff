package inference

import (
	"context"
	"image"

	"github.com/khaledhikmat/vs-bgremove/frame"
)

// IService segments a resized RGB image into a class id mask of the same
// shape. Implementations are not safe for concurrent use; create one per
// worker.
type IService interface {
	Segment(ctx context.Context, img *image.RGBA) (*frame.ClassMask, error)
	Close() error
}
