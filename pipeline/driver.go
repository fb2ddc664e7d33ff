package pipeline

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/multierr"
	"golang.org/x/xerrors"

	"github.com/khaledhikmat/vs-bgremove/frame"
	"github.com/khaledhikmat/vs-bgremove/model"
)

const tracerName = "github.com/khaledhikmat/vs-bgremove/pipeline"

type Options struct {
	// Mode labels the run in stats and logs ("camera", "video").
	Mode         string
	OpenSource   SourceOpener
	OpenSink     SinkOpener
	NewSegmenter SegmenterFactory

	Envelope    int
	TargetClass int32
	Scale       frame.ScaleMode

	// Workers > 1 runs resize/inference/composite on a pool of workers.
	// Frames still reach the sink in source order.
	Workers int

	SkipDarkFrames       bool
	ContinueOnFrameError bool

	// LockOSThread pins Run to one OS thread. Sinks backed by a GUI toolkit
	// need it because windows must be driven from the thread that made them.
	// The sink is always opened, written and closed on the goroutine that
	// calls Run, whatever the number of workers.
	LockOSThread bool

	Logger *slog.Logger
	Tracer trace.Tracer
}

// Driver moves frames from a source through the segmentation model to a
// sink. A driver runs once: Idle -> Running -> Stopped.
type Driver struct {
	opts   Options
	runID  string
	state  atomic.Int32
	logger *slog.Logger
	tracer trace.Tracer
}

func NewDriver(opts Options) *Driver {
	if opts.Envelope <= 0 {
		opts.Envelope = frame.DefaultEnvelope
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	tracer := opts.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(tracerName)
	}

	runID := uuid.NewString()
	return &Driver{
		opts:   opts,
		runID:  runID,
		logger: logger.With(slog.String("runID", runID), slog.String("mode", opts.Mode)),
		tracer: tracer,
	}
}

func (d *Driver) RunID() string {
	return d.runID
}

func (d *Driver) State() State {
	return State(d.state.Load())
}

// Run acquires the source and sink, processes frames until the source is
// exhausted, the sink asks to stop or ctx is cancelled, and releases both
// resources exactly once whatever the outcome.
func (d *Driver) Run(ctx context.Context) (stats model.RunStats, err error) {
	if !d.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return stats, xerrors.Errorf("driver %s is %s", d.runID, d.State())
	}
	defer d.state.Store(int32(StateStopped))

	if d.opts.LockOSThread {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}

	counter := newRunCounter()
	stats = model.RunStats{
		RunID:   d.runID,
		Mode:    d.opts.Mode,
		Workers: d.opts.Workers,
	}
	defer func() {
		counter.fill(&stats)
		d.logger.Info("pipeline stopped",
			slog.Int("frames", stats.Frames),
			slog.Int("skippedFrames", stats.SkippedFrames),
			slog.Int("errors", stats.Errors),
			slog.Int("fps", stats.FPS),
			slog.Bool("cancelled", stats.Cancelled),
		)
	}()

	segmenters, err := d.segmenters()
	if err != nil {
		return stats, err
	}
	defer func() {
		for _, s := range segmenters {
			if c, ok := s.(io.Closer); ok {
				multierr.AppendInvoke(&err, multierr.Close(c))
			}
		}
	}()

	source, err := d.opts.OpenSource(ctx)
	if err != nil {
		return stats, xerrors.Errorf("opening source: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(source))

	info := source.Info()
	stats.Source = info.Name

	sink, err := d.opts.OpenSink(ctx, info)
	if err != nil {
		return stats, xerrors.Errorf("opening sink: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(sink))

	d.logger.Info("pipeline running",
		slog.String("source", info.Name),
		slog.Int("width", info.Width),
		slog.Int("height", info.Height),
		slog.Float64("fps", info.FPS),
		slog.Int("workers", d.opts.Workers),
		slog.String("scale", d.opts.Scale.String()),
	)

	if d.opts.Workers == 1 {
		err = d.runSequential(ctx, segmenters[0], source, sink, counter)
	} else {
		err = d.runPipelined(ctx, segmenters, source, sink, counter)
	}

	if errors.Is(err, ErrStop) || ctx.Err() != nil {
		counter.cancelled = true
	}
	if errors.Is(err, ErrStop) {
		err = nil
	}
	return stats, err
}

func (d *Driver) segmenters() ([]Segmenter, error) {
	if d.opts.NewSegmenter == nil {
		return nil, xerrors.Errorf("no segmenter factory: %w", model.ErrModelLoad)
	}

	segmenters := make([]Segmenter, 0, d.opts.Workers)
	for w := 0; w < d.opts.Workers; w++ {
		s, err := d.opts.NewSegmenter(w)
		if err != nil {
			for _, prev := range segmenters {
				if c, ok := prev.(io.Closer); ok {
					_ = c.Close()
				}
			}
			return nil, xerrors.Errorf("worker %d: %w", w, err)
		}
		segmenters = append(segmenters, s)
	}
	return segmenters, nil
}

func (d *Driver) runSequential(ctx context.Context, seg Segmenter, source Source, sink Sink, counter *runCounter) error {
	size := sink.Size()

	for seq := 0; ; seq++ {
		if ctx.Err() != nil {
			return nil
		}

		f, err := source.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return xerrors.Errorf("reading frame %d: %w", seq, err)
		}
		f.Seq = seq

		start := time.Now()
		out, skipped, err := d.process(ctx, seg, f, size)
		if err != nil {
			// Cancelled while the frame was in flight
			if ctx.Err() != nil {
				return nil
			}
			counter.errors++
			if d.opts.ContinueOnFrameError {
				d.logger.Warn("frame dropped", slog.Int("seq", seq), slog.Any("error", err))
				continue
			}
			return err
		}

		if err := sink.Write(ctx, out); err != nil {
			if errors.Is(err, ErrStop) {
				counter.add(time.Since(start), skipped)
				return err
			}
			return xerrors.Errorf("writing frame %d: %w", seq, err)
		}
		counter.add(time.Since(start), skipped)
	}
}

// process runs one frame through resize, inference, compositing and sink
// sizing.
func (d *Driver) process(ctx context.Context, seg Segmenter, f FrameData, size image.Point) (FrameData, bool, error) {
	ctx, span := d.tracer.Start(ctx, "frame", trace.WithAttributes(attribute.Int("seq", f.Seq)))
	defer span.End()

	fail := func(err error) (FrameData, bool, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return FrameData{}, false, xerrors.Errorf("frame %d: %w", f.Seq, err)
	}

	resized, err := frame.ResizeToEnvelope(f.Image, d.opts.Envelope)
	if err != nil {
		return fail(err)
	}

	var out *image.RGBA
	skipped := d.opts.SkipDarkFrames && frame.IsDark(resized)
	if skipped {
		b := resized.Bounds()
		out = frame.White(b.Dx(), b.Dy())
	} else {
		mask, err := seg.Segment(ctx, resized)
		if err != nil {
			return fail(err)
		}

		out, err = frame.Composite(resized, mask, d.opts.TargetClass)
		if err != nil {
			return fail(err)
		}
	}

	span.SetAttributes(attribute.Bool("skipped", skipped))
	return FrameData{
		Seq:       f.Seq,
		Image:     frame.ToSize(out, size, d.opts.Scale),
		Timestamp: f.Timestamp,
	}, skipped, nil
}

type runCounter struct {
	start     time.Time
	frames    int
	skipped   int
	errors    int
	procTime  time.Duration
	cancelled bool
}

func newRunCounter() *runCounter {
	return &runCounter{start: time.Now()}
}

func (c *runCounter) add(elapsed time.Duration, skipped bool) {
	c.frames++
	c.procTime += elapsed
	if skipped {
		c.skipped++
	}
}

func (c *runCounter) fill(stats *model.RunStats) {
	elapsed := time.Since(c.start)
	stats.Frames = c.frames
	stats.SkippedFrames = c.skipped
	stats.Errors = c.errors
	stats.Uptime = int64(elapsed.Seconds())
	stats.Cancelled = c.cancelled
	stats.Timestamp = time.Now().Unix()
	if elapsed > 0 {
		stats.FPS = int(float64(c.frames) / elapsed.Seconds())
	}
	if c.frames > 0 {
		stats.AvgProcTime = c.procTime.Seconds() / float64(c.frames)
	}
}
