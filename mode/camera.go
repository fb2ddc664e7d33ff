package mode

import (
	"context"
	"fmt"

	"github.com/khaledhikmat/vs-bgremove/frame"
	"github.com/khaledhikmat/vs-bgremove/media"
	"github.com/khaledhikmat/vs-bgremove/model"
	"github.com/khaledhikmat/vs-bgremove/pipeline"
)

const CameraMode = "camera"

// Camera removes the background from a live camera and shows the result
// stretched to the preview window until q or Esc is pressed or the context
// is cancelled.
func Camera(canxCtx context.Context, svcs ServicesFactory) (model.RunStats, error) {
	opts, err := pipelineOptions(svcs, CameraMode)
	if err != nil {
		return model.RunStats{Mode: CameraMode}, err
	}

	device := svcs.CfgSvc.GetCameraDevice()
	opts.Scale = frame.ScaleStretch
	// HighGUI windows belong to the thread that created them
	opts.LockOSThread = true
	opts.OpenSource = func(context.Context) (pipeline.Source, error) {
		camera, err := media.OpenCamera(device, svcs.CfgSvc.GetCameraMaxReadErrors(), svcs.Logger)
		if err != nil {
			return nil, err
		}
		return camera, nil
	}
	opts.OpenSink = func(context.Context, pipeline.SourceInfo) (pipeline.Sink, error) {
		preview, err := media.NewPreview(svcs.CfgSvc.GetPreviewTitle(), svcs.CfgSvc.GetPreviewSize(), svcs.Logger)
		if err != nil {
			return nil, err
		}
		return withBroadcast(svcs, preview), nil
	}

	return run(canxCtx, svcs, opts, fmt.Sprintf("window:%s", svcs.CfgSvc.GetPreviewTitle()))
}
