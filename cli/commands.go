package cli

import (
	"github.com/spf13/cobra"

	"github.com/khaledhikmat/vs-bgremove/mode"
	"github.com/khaledhikmat/vs-bgremove/service/config"
)

// NewCameraCommand removes the background from a webcam and previews it.
func NewCameraCommand() *cobra.Command {
	a := newApp("bgr-camera", mode.Camera)
	cmd := a.command(
		"bgr-camera -m <model>",
		"Remove the background from a camera stream",
		`  bgr-camera -m frozen_inference_graph.pb
  bgr-camera -m frozen_inference_graph.pb --device 1 --workers 2
  bgr-camera --dry-run --broadcast-addr :8090`,
	)

	flags := cmd.Flags()
	flags.Int("device", 0, "camera device index")
	flags.Int("max-read-errors", 10, "consecutive failed reads tolerated before giving up")
	flags.String("window-title", "Background Removal", "preview window title")

	a.bind(flags.Lookup("device"), config.KeyCameraDevice)
	a.bind(flags.Lookup("max-read-errors"), config.KeyCameraMaxReadErrors)
	a.bind(flags.Lookup("window-title"), config.KeyPreviewTitle)

	return cmd
}

// NewVideoCommand removes the background from a video file and writes an
// AVI next to the output name.
func NewVideoCommand() *cobra.Command {
	a := newApp("bgr-video", mode.Video)
	cmd := a.command(
		"bgr-video -i <input> -o <output> -m <model>",
		"Remove the background from a video file",
		`  bgr-video -i interview.mp4 -o interview-nobg -m frozen_inference_graph.pb
  bgr-video -i interview.mp4 -o interview-nobg -m frozen_inference_graph.pb --workers 4`,
	)

	flags := cmd.Flags()
	flags.StringP("input", "i", "", "input video file")
	flags.StringP("output", "o", "", "output name, .avi is appended")
	flags.String("codec", "DIVX", "fourcc of the output video")

	a.bind(flags.Lookup("input"), config.KeyVideoInput)
	a.bind(flags.Lookup("output"), config.KeyVideoOutput)
	a.bind(flags.Lookup("codec"), config.KeyRecorderCodec)

	a.require(config.KeyVideoInput, "input")
	a.require(config.KeyVideoOutput, "output")

	return cmd
}
