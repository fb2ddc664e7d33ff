package config

import (
	"image"
	"strings"

	"github.com/spf13/viper"
)

// Keys understood by the viper service. Flags bound to a viper instance
// must use the same names.
const (
	KeyModeMaxShutdownTime  = "mode_max_shutdown_time"
	KeyRunsFolder           = "runs_folder"
	KeyModelPath            = "model"
	KeyInputTensor          = "input_tensor"
	KeyOutputTensor         = "output_tensor"
	KeyTargetClass          = "target_class"
	KeyInputEnvelope        = "input_envelope"
	KeyCameraDevice         = "device"
	KeyCameraMaxReadErrors  = "max_read_errors"
	KeyVideoInput           = "input"
	KeyVideoOutput          = "output"
	KeyPreviewTitle         = "preview_title"
	KeyPreviewWidth         = "preview_width"
	KeyPreviewHeight        = "preview_height"
	KeyRecorderCodec        = "codec"
	KeyRecorderWidth        = "recorder_width"
	KeyRecorderHeight       = "recorder_height"
	KeyPipelineWorkers      = "workers"
	KeySkipDarkFrames       = "skip_dark_frames"
	KeyContinueOnFrameError = "continue_on_frame_error"
	KeyBroadcastAddress     = "broadcast_addr"
	KeyLogLevel             = "log_level"
	KeyLogFile              = "log_file"
)

// EnvPrefix is prepended to every key when read from the environment,
// e.g. BGR_MODEL or BGR_LOG_LEVEL.
const EnvPrefix = "BGR"

type viperService struct {
	v *viper.Viper
}

// NewViper reads settings from v, falling back to the hard-coded defaults.
func NewViper(v *viper.Viper) IService {
	v.SetDefault(KeyModeMaxShutdownTime, defaultModeMaxShutdownTime)
	v.SetDefault(KeyRunsFolder, defaultRunsFolder)
	v.SetDefault(KeyInputTensor, defaultInputTensor)
	v.SetDefault(KeyOutputTensor, defaultOutputTensor)
	v.SetDefault(KeyTargetClass, defaultTargetClass)
	v.SetDefault(KeyInputEnvelope, defaultInputEnvelope)
	v.SetDefault(KeyCameraDevice, 0)
	v.SetDefault(KeyCameraMaxReadErrors, defaultCameraMaxReadErrors)
	v.SetDefault(KeyPreviewTitle, defaultPreviewTitle)
	v.SetDefault(KeyPreviewWidth, defaultPreviewSize.X)
	v.SetDefault(KeyPreviewHeight, defaultPreviewSize.Y)
	v.SetDefault(KeyRecorderCodec, defaultRecorderCodec)
	v.SetDefault(KeyRecorderWidth, defaultRecorderSize.X)
	v.SetDefault(KeyRecorderHeight, defaultRecorderSize.Y)
	v.SetDefault(KeyPipelineWorkers, defaultPipelineWorkers)
	v.SetDefault(KeySkipDarkFrames, false)
	v.SetDefault(KeyContinueOnFrameError, false)
	v.SetDefault(KeyLogLevel, defaultLogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	return &viperService{v: v}
}

func (svc *viperService) GetModeMaxShutdownTime() int {
	return svc.v.GetInt(KeyModeMaxShutdownTime)
}

func (svc *viperService) GetRunsFolder() string {
	return svc.v.GetString(KeyRunsFolder)
}

func (svc *viperService) GetModelPath() string {
	return svc.v.GetString(KeyModelPath)
}

func (svc *viperService) GetInputTensor() string {
	return svc.v.GetString(KeyInputTensor)
}

func (svc *viperService) GetOutputTensor() string {
	return svc.v.GetString(KeyOutputTensor)
}

func (svc *viperService) GetTargetClass() string {
	return svc.v.GetString(KeyTargetClass)
}

func (svc *viperService) GetInputEnvelope() int {
	return svc.v.GetInt(KeyInputEnvelope)
}

func (svc *viperService) GetCameraDevice() int {
	return svc.v.GetInt(KeyCameraDevice)
}

func (svc *viperService) GetCameraMaxReadErrors() int {
	return svc.v.GetInt(KeyCameraMaxReadErrors)
}

func (svc *viperService) GetVideoInput() string {
	return svc.v.GetString(KeyVideoInput)
}

func (svc *viperService) GetVideoOutput() string {
	return svc.v.GetString(KeyVideoOutput)
}

func (svc *viperService) GetPreviewTitle() string {
	return svc.v.GetString(KeyPreviewTitle)
}

func (svc *viperService) GetPreviewSize() image.Point {
	return image.Pt(svc.v.GetInt(KeyPreviewWidth), svc.v.GetInt(KeyPreviewHeight))
}

func (svc *viperService) GetRecorderCodec() string {
	return svc.v.GetString(KeyRecorderCodec)
}

func (svc *viperService) GetRecorderSize() image.Point {
	return image.Pt(svc.v.GetInt(KeyRecorderWidth), svc.v.GetInt(KeyRecorderHeight))
}

func (svc *viperService) GetPipelineWorkers() int {
	return svc.v.GetInt(KeyPipelineWorkers)
}

func (svc *viperService) GetSkipDarkFrames() bool {
	return svc.v.GetBool(KeySkipDarkFrames)
}

func (svc *viperService) GetContinueOnFrameError() bool {
	return svc.v.GetBool(KeyContinueOnFrameError)
}

func (svc *viperService) GetBroadcastAddress() string {
	return svc.v.GetString(KeyBroadcastAddress)
}

func (svc *viperService) GetLogLevel() string {
	return svc.v.GetString(KeyLogLevel)
}

func (svc *viperService) GetLogFile() string {
	return svc.v.GetString(KeyLogFile)
}
