package inference

import (
	"context"
	"image"

	"github.com/khaledhikmat/vs-bgremove/frame"
)

// ClassFunc decides the class of a whole image.
type ClassFunc func(img *image.RGBA) int32

type fakeService struct {
	classOf ClassFunc
}

// NewFake returns a segmenter that labels every pixel with classID. It is
// used for dry runs without a model.
func NewFake(classID int32) IService {
	return &fakeService{
		classOf: func(*image.RGBA) int32 { return classID },
	}
}

// NewScripted returns a segmenter whose uniform mask class is chosen per image.
func NewScripted(classOf ClassFunc) IService {
	return &fakeService{classOf: classOf}
}

func (svc *fakeService) Segment(ctx context.Context, img *image.RGBA) (*frame.ClassMask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b := img.Bounds()
	return frame.NewClassMask(b.Dx(), b.Dy(), svc.classOf(img)), nil
}

func (svc *fakeService) Close() error {
	return nil
}
