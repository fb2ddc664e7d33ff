package frame

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// ScaleMode selects how a composited frame is brought to a sink's fixed size.
type ScaleMode int

const (
	// ScaleStretch resizes to the exact size, ignoring the aspect ratio.
	ScaleStretch ScaleMode = iota
	// ScaleFit fits the frame inside the size and pads it with white.
	ScaleFit
)

func (m ScaleMode) String() string {
	if m == ScaleFit {
		return "fit"
	}
	return "stretch"
}

// ToSize brings img to size using mode. An image that already has the
// requested size is returned unchanged.
func ToSize(img *image.RGBA, size image.Point, mode ScaleMode) *image.RGBA {
	b := img.Bounds()
	if b.Dx() == size.X && b.Dy() == size.Y {
		return img
	}

	if mode == ScaleFit {
		return FitCanvas(img, size.X, size.Y)
	}
	return Stretch(img, size.X, size.Y)
}

// Stretch resizes img to exactly width x height.
func Stretch(img image.Image, width, height int) *image.RGBA {
	return ToRGBA(imaging.Resize(img, width, height, imaging.Linear))
}

// FitCanvas scales img down to fit within width x height, keeping its aspect
// ratio, and centers it on a white canvas of exactly that size.
func FitCanvas(img image.Image, width, height int) *image.RGBA {
	fitted := imaging.Fit(img, width, height, imaging.Lanczos)
	canvas := imaging.New(width, height, color.White)
	return ToRGBA(imaging.PasteCenter(canvas, fitted))
}
