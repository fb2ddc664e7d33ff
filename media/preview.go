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
	DefaultWindowTitle = "Background Removal"
	keyEscape          = 27
)

// DefaultPreviewSize is the size frames are displayed at.
var DefaultPreviewSize = image.Pt(1600, 900)

// Preview shows composited frames in a window and polls the keyboard after
// each frame.
type Preview struct {
	window *gocv.Window
	size   image.Point
	waitMS int
	once   sync.Once
	logger *slog.Logger
}

func NewPreview(title string, size image.Point, logger *slog.Logger) (*Preview, error) {
	if title == "" {
		title = DefaultWindowTitle
	}
	if size.X <= 0 || size.Y <= 0 {
		return nil, xerrors.Errorf("preview size %v: %w", size, model.ErrSinkUnavailable)
	}

	window := gocv.NewWindow(title)
	if window == nil {
		return nil, xerrors.Errorf("window %q: %w", title, model.ErrSinkUnavailable)
	}

	logger.Info("preview window opened",
		slog.String("title", title),
		slog.Int("width", size.X),
		slog.Int("height", size.Y),
	)

	return &Preview{
		window: window,
		size:   size,
		waitMS: 1,
		logger: logger,
	}, nil
}

func (p *Preview) Size() image.Point {
	return p.size
}

// Write displays the frame and returns pipeline.ErrStop when q or Esc was
// pressed.
func (p *Preview) Write(_ context.Context, f pipeline.FrameData) error {
	b := f.Image.Bounds()
	if b.Dx() != p.size.X || b.Dy() != p.size.Y {
		return xerrors.Errorf("frame %d is %dx%d, preview expects %dx%d: %w", f.Seq, b.Dx(), b.Dy(), p.size.X, p.size.Y, model.ErrFrameSize)
	}

	mat, err := rgbaToMat(f.Image)
	if err != nil {
		return xerrors.Errorf("frame %d: %w", f.Seq, err)
	}
	defer mat.Close()

	p.window.IMShow(mat)
	if IsStopKey(p.window.WaitKey(p.waitMS)) {
		p.logger.Info("preview stop key pressed", slog.Int("seq", f.Seq))
		return pipeline.ErrStop
	}
	return nil
}

func (p *Preview) Close() error {
	var err error
	p.once.Do(func() {
		err = p.window.Close()
	})
	return err
}

// IsStopKey reports whether a WaitKey result asks the preview to stop.
func IsStopKey(key int) bool {
	if key < 0 {
		return false
	}
	switch key & 0xFF {
	case 'q', 'Q', keyEscape:
		return true
	}
	return false
}
