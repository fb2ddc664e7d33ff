package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

type result struct {
	frame   FrameData
	skipped bool
	elapsed time.Duration
	err     error
}

// runPipelined fans frames out to one worker per segmenter and writes the
// results back in source order. At most 2*workers frames are in flight.
// The reader and the workers run in an errgroup; the collector, the only
// user of the sink, runs on the calling goroutine.
func (d *Driver) runPipelined(ctx context.Context, segmenters []Segmenter, source Source, sink Sink, counter *runCounter) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	size := sink.Size()
	workers := len(segmenters)

	jobs := make(chan FrameData, workers)
	results := make(chan result, workers)
	tokens := make(chan struct{}, 2*workers)

	// Reader
	g.Go(func() error {
		defer close(jobs)

		for seq := 0; ; seq++ {
			select {
			case <-gctx.Done():
				return nil
			case tokens <- struct{}{}:
			}

			f, err := source.Next(gctx)
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				if gctx.Err() != nil {
					return nil
				}
				return xerrors.Errorf("reading frame %d: %w", seq, err)
			}
			f.Seq = seq

			select {
			case <-gctx.Done():
				return nil
			case jobs <- f:
			}
		}
	})

	// Workers compete on the jobs channel; each owns its segmenter.
	var wg sync.WaitGroup
	for w, seg := range segmenters {
		w, seg := w, seg
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()

			for f := range jobs {
				start := time.Now()
				out, skipped, err := d.process(gctx, seg, f, size)
				r := result{
					frame:   FrameData{Seq: f.Seq, Image: out.Image, Timestamp: f.Timestamp},
					skipped: skipped,
					elapsed: time.Since(start),
					err:     err,
				}

				select {
				case <-gctx.Done():
					d.logger.Debug("worker cancelled", slog.Int("worker", w))
					return nil
				case results <- r:
				}
			}
			return nil
		})
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	collectErr := d.collect(gctx, sink, results, tokens, counter)
	cancel()

	// Unblock workers still sending once the collector returned early
	go func() {
		for range results {
		}
	}()

	if err := g.Wait(); collectErr == nil {
		return err
	}
	return collectErr
}

// collect writes results to the sink in sequence order.
func (d *Driver) collect(ctx context.Context, sink Sink, results <-chan result, tokens <-chan struct{}, counter *runCounter) error {
	pending := map[int]result{}
	next := 0

	for r := range results {
		pending[r.frame.Seq] = r

		for {
			p, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			<-tokens

			if p.err != nil {
				// Cancelled while the frame was in flight
				if ctx.Err() != nil || errors.Is(p.err, context.Canceled) {
					return nil
				}
				counter.errors++
				if d.opts.ContinueOnFrameError {
					d.logger.Warn("frame dropped", slog.Int("seq", p.frame.Seq), slog.Any("error", p.err))
					continue
				}
				return p.err
			}

			if err := sink.Write(ctx, p.frame); err != nil {
				if errors.Is(err, ErrStop) {
					counter.add(p.elapsed, p.skipped)
					return err
				}
				return xerrors.Errorf("writing frame %d: %w", p.frame.Seq, err)
			}
			counter.add(p.elapsed, p.skipped)
		}
	}
	return nil
}
