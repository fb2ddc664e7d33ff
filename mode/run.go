package mode

import (
	"context"
	"log/slog"

	"github.com/khaledhikmat/vs-bgremove/model"
	"github.com/khaledhikmat/vs-bgremove/pipeline"
	"github.com/khaledhikmat/vs-bgremove/service/inference"
)

// pipelineOptions fills the options shared by all modes from the config.
func pipelineOptions(svcs ServicesFactory, mode string) (pipeline.Options, error) {
	target, err := inference.ParseClass(svcs.CfgSvc.GetTargetClass())
	if err != nil {
		return pipeline.Options{}, err
	}

	opts := pipeline.Options{
		Mode:                 mode,
		Envelope:             svcs.CfgSvc.GetInputEnvelope(),
		TargetClass:          target,
		Workers:              svcs.CfgSvc.GetPipelineWorkers(),
		SkipDarkFrames:       svcs.CfgSvc.GetSkipDarkFrames(),
		ContinueOnFrameError: svcs.CfgSvc.GetContinueOnFrameError(),
		Logger:               svcs.Logger,
	}

	if newInference := svcs.NewInference; newInference != nil {
		opts.NewSegmenter = func(worker int) (pipeline.Segmenter, error) {
			svc, err := newInference(worker)
			if err != nil {
				return nil, err
			}
			return svc, nil
		}
	}
	return opts, nil
}

// withBroadcast tees the sink into the broadcaster when one is configured.
func withBroadcast(svcs ServicesFactory, sink pipeline.Sink) pipeline.Sink {
	if svcs.BroadcastSvc == nil {
		return sink
	}
	return pipeline.Tee(sink, svcs.BroadcastSvc)
}

func run(canxCtx context.Context, svcs ServicesFactory, opts pipeline.Options, output string) (model.RunStats, error) {
	driver := pipeline.NewDriver(opts)
	stats, err := driver.Run(canxCtx)
	stats.Output = output

	procStats(svcs, stats)

	if err != nil {
		procError(svcs, model.GenError(opts.Mode,
			err,
			map[string]interface{}{
				"runID":  stats.RunID,
				"source": stats.Source,
				"frames": stats.Frames,
			},
			"%s run failed", opts.Mode))
		return stats, err
	}

	svcs.Logger.Info(
		"run completed",
		slog.String("runID", stats.RunID),
		slog.Int("frames", stats.Frames),
	)
	return stats, nil
}
