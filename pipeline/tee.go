package pipeline

import (
	"context"
	"errors"
	"image"
)

// Observer receives every frame a tee'd sink accepted.
type Observer interface {
	Observe(frame FrameData)
}

type teeSink struct {
	sink      Sink
	observers []Observer
}

// Tee returns a sink that writes to sink and then hands the frame to each
// observer. Observers must not modify the frame. Closing the tee closes sink
// only; observers manage their own lifecycle.
func Tee(sink Sink, observers ...Observer) Sink {
	if len(observers) == 0 {
		return sink
	}
	return &teeSink{sink: sink, observers: observers}
}

func (t *teeSink) Size() image.Point {
	return t.sink.Size()
}

func (t *teeSink) Write(ctx context.Context, frame FrameData) error {
	err := t.sink.Write(ctx, frame)
	if err != nil && !errors.Is(err, ErrStop) {
		return err
	}

	for _, o := range t.observers {
		o.Observe(frame)
	}
	return err
}

func (t *teeSink) Close() error {
	return t.sink.Close()
}
