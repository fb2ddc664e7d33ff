package mode

import (
	"context"
	"os"

	"golang.org/x/xerrors"

	"github.com/khaledhikmat/vs-bgremove/frame"
	"github.com/khaledhikmat/vs-bgremove/media"
	"github.com/khaledhikmat/vs-bgremove/model"
	"github.com/khaledhikmat/vs-bgremove/pipeline"
)

const VideoMode = "video"

// Video removes the background from every frame of the input file and
// writes <output>.avi at the input frame rate.
func Video(canxCtx context.Context, svcs ServicesFactory) (model.RunStats, error) {
	input := svcs.CfgSvc.GetVideoInput()
	output := svcs.CfgSvc.GetVideoOutput()
	if input == "" {
		return model.RunStats{Mode: VideoMode}, xerrors.Errorf("no input video: %w", model.ErrSourceUnavailable)
	}
	if output == "" {
		return model.RunStats{Mode: VideoMode}, xerrors.Errorf("no output name: %w", model.ErrSinkUnavailable)
	}

	opts, err := pipelineOptions(svcs, VideoMode)
	if err != nil {
		return model.RunStats{Mode: VideoMode}, err
	}

	opts.Scale = frame.ScaleFit
	opts.OpenSource = func(context.Context) (pipeline.Source, error) {
		// OpenCV does not tell a missing file from a bad one
		if _, err := os.Stat(input); err != nil {
			return nil, xerrors.Errorf("%s: %v: %w", input, err, model.ErrSourceUnavailable)
		}

		video, err := media.OpenVideoFile(input, svcs.Logger)
		if err != nil {
			return nil, err
		}
		return video, nil
	}
	opts.OpenSink = func(_ context.Context, info pipeline.SourceInfo) (pipeline.Sink, error) {
		recorder, err := media.NewRecorder(output, svcs.CfgSvc.GetRecorderCodec(), info.FPS, svcs.CfgSvc.GetRecorderSize(), svcs.Logger)
		if err != nil {
			return nil, err
		}
		return withBroadcast(svcs, recorder), nil
	}

	return run(canxCtx, svcs, opts, media.OutputFilename(output))
}
