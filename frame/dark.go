package frame

import "image"

// darkGreenLevel is the mean green value (out of 255) under which a frame is
// treated as black, e.g. a covered lens.
const darkGreenLevel = 13

// IsDark reports whether the mean green channel of img is below 13/255.
func IsDark(img *image.RGBA) bool {
	b := img.Bounds()
	area := b.Dx() * b.Dy()
	if area == 0 {
		return true
	}

	var sumG int64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			sumG += int64(row[x*4+1])
		}
	}

	return sumG < int64(area)*darkGreenLevel
}
