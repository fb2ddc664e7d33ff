package pipeline

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/khaledhikmat/vs-bgremove/frame"
)

// ErrStop is returned by a sink when the user asked to stop, e.g. by
// pressing a key in the preview window. The driver treats it as a normal
// end of the run.
var ErrStop = errors.New("stop requested")

type FrameData struct {
	Seq       int
	Image     *image.RGBA
	Timestamp time.Time
}

type SourceInfo struct {
	Name   string
	Width  int
	Height int
	FPS    float64
	// Live sources never reach end-of-stream.
	Live bool
}

// Source yields frames in RGB order. Next returns io.EOF once the stream is
// exhausted.
type Source interface {
	Next(ctx context.Context) (FrameData, error)
	Info() SourceInfo
	Close() error
}

// Sink accepts frames that already have exactly Size() pixels.
type Sink interface {
	Size() image.Point
	Write(ctx context.Context, frame FrameData) error
	Close() error
}

// Segmenter is the inference capability: given a resized RGB image it
// returns a class id mask of the same shape.
type Segmenter interface {
	Segment(ctx context.Context, img *image.RGBA) (*frame.ClassMask, error)
}

// Signature of the functions the driver uses to acquire its resources
type SourceOpener func(ctx context.Context) (Source, error)

type SinkOpener func(ctx context.Context, info SourceInfo) (Sink, error)

type SegmenterFactory func(worker int) (Segmenter, error)

type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
