package config

import "image"

type IService interface {
	GetModeMaxShutdownTime() int
	GetRunsFolder() string

	GetModelPath() string
	GetInputTensor() string
	GetOutputTensor() string
	GetTargetClass() string
	GetInputEnvelope() int

	GetCameraDevice() int
	GetCameraMaxReadErrors() int
	GetVideoInput() string
	GetVideoOutput() string

	GetPreviewTitle() string
	GetPreviewSize() image.Point
	GetRecorderCodec() string
	GetRecorderSize() image.Point

	GetPipelineWorkers() int
	GetSkipDarkFrames() bool
	GetContinueOnFrameError() bool

	GetBroadcastAddress() string

	GetLogLevel() string
	GetLogFile() string
}
