// Package media adapts OpenCV capture devices, video files, windows and
// video writers to the pipeline's Source and Sink interfaces.
package media

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"time"

	"gocv.io/x/gocv"
	"golang.org/x/xerrors"

	"github.com/khaledhikmat/vs-bgremove/frame"
	"github.com/khaledhikmat/vs-bgremove/model"
	"github.com/khaledhikmat/vs-bgremove/pipeline"
)

const (
	defaultFPS = 30.0
	// Containers often report one frame more than they can decode.
	frameCountSlack = 1
)

// Camera reads from a live capture device. It never reaches end of stream.
type Camera struct {
	device        int
	capture       *gocv.VideoCapture
	img           gocv.Mat
	info          pipeline.SourceInfo
	maxReadErrors int
	logger        *slog.Logger
}

// OpenCamera opens capture device id. Up to maxReadErrors consecutive
// failed reads are tolerated before Next gives up with ErrRead.
func OpenCamera(device int, maxReadErrors int, logger *slog.Logger) (*Camera, error) {
	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, xerrors.Errorf("camera %d: %v: %w", device, err, model.ErrSourceUnavailable)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, xerrors.Errorf("camera %d not opened: %w", device, model.ErrSourceUnavailable)
	}

	info := captureInfo(capture, fmt.Sprintf("camera:%d", device))
	info.Live = true

	logger.Info("camera opened",
		slog.Int("device", device),
		slog.Int("width", info.Width),
		slog.Int("height", info.Height),
		slog.Float64("fps", info.FPS),
	)

	return &Camera{
		device:        device,
		capture:       capture,
		img:           gocv.NewMat(),
		info:          info,
		maxReadErrors: max(maxReadErrors, 1),
		logger:        logger,
	}, nil
}

func (c *Camera) Next(ctx context.Context) (pipeline.FrameData, error) {
	failures := 0
	for {
		if err := ctx.Err(); err != nil {
			return pipeline.FrameData{}, err
		}

		if ok := c.capture.Read(&c.img); ok && !c.img.Empty() {
			rgba, err := matToRGBA(c.img)
			if err != nil {
				return pipeline.FrameData{}, xerrors.Errorf("camera %d: %v: %w", c.device, err, model.ErrRead)
			}
			return pipeline.FrameData{Image: rgba, Timestamp: time.Now()}, nil
		}

		failures++
		if failures >= c.maxReadErrors {
			return pipeline.FrameData{}, xerrors.Errorf("camera %d: %d consecutive failed reads: %w", c.device, failures, model.ErrRead)
		}
		c.logger.Warn("camera read failed", slog.Int("device", c.device), slog.Int("failures", failures))
	}
}

func (c *Camera) Info() pipeline.SourceInfo {
	return c.info
}

func (c *Camera) Close() error {
	c.img.Close() // Crucial to close the image to avoid memory leaks
	return c.capture.Close()
}

// VideoFile reads a decoded video file in file order.
type VideoFile struct {
	path    string
	capture *gocv.VideoCapture
	img     gocv.Mat
	info    pipeline.SourceInfo
	total   int
	frames  int
	done    bool
	logger  *slog.Logger
}

func OpenVideoFile(path string, logger *slog.Logger) (*VideoFile, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, xerrors.Errorf("%s: %v: %w", path, err, model.ErrSourceUnavailable)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, xerrors.Errorf("%s not opened: %w", path, model.ErrSourceUnavailable)
	}

	info := captureInfo(capture, path)
	total := int(capture.Get(gocv.VideoCaptureFrameCount))

	logger.Info("video file opened",
		slog.String("path", path),
		slog.Int("width", info.Width),
		slog.Int("height", info.Height),
		slog.Float64("fps", info.FPS),
		slog.Int("frames", total),
	)

	return &VideoFile{
		path:    path,
		capture: capture,
		img:     gocv.NewMat(),
		info:    info,
		total:   total,
		logger:  logger,
	}, nil
}

// Next returns io.EOF once every frame was read. A read that fails before
// the reported frame count was reached is a decode error, not the end.
func (v *VideoFile) Next(ctx context.Context) (pipeline.FrameData, error) {
	if v.done {
		return pipeline.FrameData{}, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return pipeline.FrameData{}, err
	}

	if ok := v.capture.Read(&v.img); !ok || v.img.Empty() {
		v.done = true
		if v.total > 0 && v.frames < v.total-frameCountSlack {
			return pipeline.FrameData{}, xerrors.Errorf("%s: frame %d of %d: %w", v.path, v.frames, v.total, model.ErrRead)
		}
		return pipeline.FrameData{}, io.EOF
	}

	rgba, err := matToRGBA(v.img)
	if err != nil {
		return pipeline.FrameData{}, xerrors.Errorf("%s: frame %d: %v: %w", v.path, v.frames, err, model.ErrRead)
	}

	f := pipeline.FrameData{Seq: v.frames, Image: rgba, Timestamp: time.Now()}
	v.frames++
	return f, nil
}

func (v *VideoFile) Info() pipeline.SourceInfo {
	return v.info
}

func (v *VideoFile) Close() error {
	v.img.Close()
	return v.capture.Close()
}

func captureInfo(capture *gocv.VideoCapture, name string) pipeline.SourceInfo {
	fps := capture.Get(gocv.VideoCaptureFPS)
	if fps <= 0 {
		fps = defaultFPS
	}
	return pipeline.SourceInfo{
		Name:   name,
		Width:  int(capture.Get(gocv.VideoCaptureFrameWidth)),
		Height: int(capture.Get(gocv.VideoCaptureFrameHeight)),
		FPS:    fps,
	}
}

// matToRGBA converts an 8-bit BGR Mat to an RGB image. Mat.ToImage swaps
// the channel order for 3-channel Mats.
func matToRGBA(mat gocv.Mat) (*image.RGBA, error) {
	img, err := mat.ToImage()
	if err != nil {
		return nil, err
	}
	return frame.ToRGBA(img), nil
}

// rgbaToMat converts an RGB image back to an 8-bit BGR Mat. The caller owns
// the returned Mat.
func rgbaToMat(img *image.RGBA) (gocv.Mat, error) {
	return gocv.ImageToMatRGB(img)
}
