package config

import (
	"image"
)

const (
	defaultModeMaxShutdownTime = 5
	defaultRunsFolder          = "./runs"
	defaultInputTensor         = "ImageTensor"
	defaultOutputTensor        = "SemanticPredictions"
	defaultTargetClass         = "person"
	defaultInputEnvelope       = 513
	defaultCameraMaxReadErrors = 10
	defaultPreviewTitle        = "Background Removal"
	defaultRecorderCodec       = "DIVX"
	defaultPipelineWorkers     = 1
	defaultLogLevel            = "info"
)

var (
	defaultPreviewSize  = image.Pt(1600, 900)
	defaultRecorderSize = image.Pt(513, 288)
)

type hardcodedService struct {
}

func NewHardCoded() IService {
	return &hardcodedService{}
}

func (svc *hardcodedService) GetModeMaxShutdownTime() int {
	return defaultModeMaxShutdownTime
}

func (svc *hardcodedService) GetRunsFolder() string {
	return defaultRunsFolder
}

func (svc *hardcodedService) GetModelPath() string {
	// No model means nothing can run. Use the viper service to supply one.
	return ""
}

func (svc *hardcodedService) GetInputTensor() string {
	return defaultInputTensor
}

func (svc *hardcodedService) GetOutputTensor() string {
	return defaultOutputTensor
}

func (svc *hardcodedService) GetTargetClass() string {
	return defaultTargetClass
}

func (svc *hardcodedService) GetInputEnvelope() int {
	return defaultInputEnvelope
}

func (svc *hardcodedService) GetCameraDevice() int {
	return 0
}

func (svc *hardcodedService) GetCameraMaxReadErrors() int {
	return defaultCameraMaxReadErrors
}

func (svc *hardcodedService) GetVideoInput() string {
	return ""
}

func (svc *hardcodedService) GetVideoOutput() string {
	return ""
}

func (svc *hardcodedService) GetPreviewTitle() string {
	return defaultPreviewTitle
}

func (svc *hardcodedService) GetPreviewSize() image.Point {
	return defaultPreviewSize
}

func (svc *hardcodedService) GetRecorderCodec() string {
	return defaultRecorderCodec
}

func (svc *hardcodedService) GetRecorderSize() image.Point {
	return defaultRecorderSize
}

func (svc *hardcodedService) GetPipelineWorkers() int {
	return defaultPipelineWorkers
}

func (svc *hardcodedService) GetSkipDarkFrames() bool {
	return false
}

func (svc *hardcodedService) GetContinueOnFrameError() bool {
	return false
}

func (svc *hardcodedService) GetBroadcastAddress() string {
	return ""
}

func (svc *hardcodedService) GetLogLevel() string {
	return defaultLogLevel
}

func (svc *hardcodedService) GetLogFile() string {
	return ""
}
