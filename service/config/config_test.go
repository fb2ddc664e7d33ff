package config

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHardCodedDefaults(t *testing.T) {
	svc := NewHardCoded()

	assert.Equal(t, 513, svc.GetInputEnvelope())
	assert.Equal(t, "person", svc.GetTargetClass())
	assert.Equal(t, "ImageTensor", svc.GetInputTensor())
	assert.Equal(t, "SemanticPredictions", svc.GetOutputTensor())
	assert.Equal(t, image.Pt(1600, 900), svc.GetPreviewSize())
	assert.Equal(t, image.Pt(513, 288), svc.GetRecorderSize())
	assert.Equal(t, "DIVX", svc.GetRecorderCodec())
	assert.Equal(t, 1, svc.GetPipelineWorkers())
	assert.False(t, svc.GetSkipDarkFrames())
}

func TestViperMatchesHardCoded(t *testing.T) {
	hard := NewHardCoded()
	svc := NewViper(viper.New())

	assert.Equal(t, hard.GetInputEnvelope(), svc.GetInputEnvelope())
	assert.Equal(t, hard.GetTargetClass(), svc.GetTargetClass())
	assert.Equal(t, hard.GetPreviewSize(), svc.GetPreviewSize())
	assert.Equal(t, hard.GetRecorderSize(), svc.GetRecorderSize())
	assert.Equal(t, hard.GetRecorderCodec(), svc.GetRecorderCodec())
	assert.Equal(t, hard.GetCameraMaxReadErrors(), svc.GetCameraMaxReadErrors())
	assert.Equal(t, hard.GetModeMaxShutdownTime(), svc.GetModeMaxShutdownTime())
	assert.Equal(t, hard.GetLogLevel(), svc.GetLogLevel())
}

func TestViperEnvironment(t *testing.T) {
	t.Setenv("BGR_MODEL", "/models/frozen_inference_graph.pb")
	t.Setenv("BGR_WORKERS", "4")
	t.Setenv("BGR_SKIP_DARK_FRAMES", "true")

	svc := NewViper(viper.New())

	assert.Equal(t, "/models/frozen_inference_graph.pb", svc.GetModelPath())
	assert.Equal(t, 4, svc.GetPipelineWorkers())
	assert.True(t, svc.GetSkipDarkFrames())
}

func TestViperConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bgr.yaml")
	require.NoError(t, os.WriteFile(path, []byte("target_class: dog\nrecorder_width: 640\nrecorder_height: 360\n"), 0644))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	svc := NewViper(v)

	assert.Equal(t, "dog", svc.GetTargetClass())
	assert.Equal(t, image.Pt(640, 360), svc.GetRecorderSize())
	assert.Equal(t, image.Pt(1600, 900), svc.GetPreviewSize())
}
