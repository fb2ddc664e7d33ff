package media

import (
	"context"
	"image"
	"log/slog"
	"sync"

	"gocv.io/x/gocv"
	"golang.org/x/xerrors"

	"github.com/khaledhikmat/vs-bgremove/model"
	"github.com/khaledhikmat/vs-bgremove/pipeline"
)

const (
	DefaultCodec     = "DIVX"
	DefaultExtension = ".avi"
)

// DefaultRecorderSize is the frame size of recorded videos.
var DefaultRecorderSize = image.Pt(513, 288)

// Recorder encodes composited frames into a video file of a fixed size.
type Recorder struct {
	filename string
	size     image.Point
	writer   *gocv.VideoWriter
	frames   int
	once     sync.Once
	closeErr error
	logger   *slog.Logger
}

// OutputFilename returns the file written for an output base name.
func OutputFilename(base string) string {
	return base + DefaultExtension
}

// NewRecorder creates base + ".avi" with the given codec, frame rate and
// frame size.
func NewRecorder(base string, codec string, fps float64, size image.Point, logger *slog.Logger) (*Recorder, error) {
	if codec == "" {
		codec = DefaultCodec
	}
	if fps <= 0 {
		fps = defaultFPS
	}
	if size.X <= 0 || size.Y <= 0 {
		return nil, xerrors.Errorf("recorder size %v: %w", size, model.ErrSinkUnavailable)
	}

	filename := OutputFilename(base)
	writer, err := gocv.VideoWriterFile(filename, codec, fps, size.X, size.Y, true)
	if err != nil {
		return nil, xerrors.Errorf("%s: %v: %w", filename, err, model.ErrSinkUnavailable)
	}
	if !writer.IsOpened() {
		writer.Close()
		return nil, xerrors.Errorf("%s (codec %s) not opened: %w", filename, codec, model.ErrSinkUnavailable)
	}

	logger.Info("recorder created",
		slog.String("filename", filename),
		slog.String("codec", codec),
		slog.Float64("fps", fps),
		slog.Int("width", size.X),
		slog.Int("height", size.Y),
	)

	return &Recorder{
		filename: filename,
		size:     size,
		writer:   writer,
		logger:   logger,
	}, nil
}

func (r *Recorder) Filename() string {
	return r.filename
}

func (r *Recorder) Size() image.Point {
	return r.size
}

// Write requires frames of exactly Size(); resizing is the caller's job.
func (r *Recorder) Write(_ context.Context, f pipeline.FrameData) error {
	b := f.Image.Bounds()
	if b.Dx() != r.size.X || b.Dy() != r.size.Y {
		return xerrors.Errorf("frame %d is %dx%d, recorder expects %dx%d: %w", f.Seq, b.Dx(), b.Dy(), r.size.X, r.size.Y, model.ErrFrameSize)
	}

	mat, err := rgbaToMat(f.Image)
	if err != nil {
		return xerrors.Errorf("frame %d: %w", f.Seq, err)
	}
	defer mat.Close()

	if err := r.writer.Write(mat); err != nil {
		return xerrors.Errorf("writing frame %d to %s: %w", f.Seq, r.filename, err)
	}
	r.frames++
	return nil
}

func (r *Recorder) Close() error {
	r.once.Do(func() {
		r.closeErr = r.writer.Close()
		r.logger.Info("saved to "+r.filename, slog.Int("frames", r.frames))
	})
	return r.closeErr
}
