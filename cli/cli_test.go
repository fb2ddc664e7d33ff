package cli

import (
	"bytes"
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khaledhikmat/vs-bgremove/mode"
	"github.com/khaledhikmat/vs-bgremove/model"
	"github.com/khaledhikmat/vs-bgremove/service/config"
	"github.com/khaledhikmat/vs-bgremove/service/lgr"
)

func TestFlagsReachConfig(t *testing.T) {
	t.Setenv("RUN_TIME_ENV", "test")

	a := newApp("bgr-video", mode.Video)
	cmd := a.command("bgr-video", "", "")
	require.NoError(t, cmd.ParseFlags([]string{
		"-m", "graph.pb",
		"--workers", "3",
		"--target-class", "dog",
		"--skip-dark-frames",
	}))

	cfgSvc, err := a.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "graph.pb", cfgSvc.GetModelPath())
	assert.Equal(t, 3, cfgSvc.GetPipelineWorkers())
	assert.Equal(t, "dog", cfgSvc.GetTargetClass())
	assert.True(t, cfgSvc.GetSkipDarkFrames())
	assert.Equal(t, image.Pt(513, 288), cfgSvc.GetRecorderSize())
}

func TestConfigFile(t *testing.T) {
	t.Setenv("RUN_TIME_ENV", "test")

	path := filepath.Join(t.TempDir(), "bgr.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: from-file.pb\nworkers: 2\n"), 0644))

	a := newApp("bgr-camera", mode.Camera)
	cmd := a.command("bgr-camera", "", "")
	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--workers", "5"}))

	cfgSvc, err := a.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-file.pb", cfgSvc.GetModelPath())
	// flags win over the file
	assert.Equal(t, 5, cfgSvc.GetPipelineWorkers())
}

func TestCameraFlags(t *testing.T) {
	t.Setenv("RUN_TIME_ENV", "test")

	cmd := NewCameraCommand()
	require.NotNil(t, cmd.Flags().Lookup("device"))
	require.NotNil(t, cmd.Flags().ShorthandLookup("m"))
	assert.Nil(t, cmd.Flags().Lookup("input"))
}

func TestModelRequired(t *testing.T) {
	t.Setenv("RUN_TIME_ENV", "test")
	t.Setenv("BGR_MODEL", "")

	cmd := NewVideoCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"-i", "in.mp4", "-o", "out", "--runs-folder", t.TempDir()})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no model")
}

func TestVideoMissingInput(t *testing.T) {
	t.Setenv("RUN_TIME_ENV", "test")
	dir := t.TempDir()

	cmd := NewVideoCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{
		"-i", filepath.Join(dir, "missing.mp4"),
		"-o", filepath.Join(dir, "out"),
		"--dry-run",
		"--runs-folder", filepath.Join(dir, "runs"),
	})

	assert.Equal(t, 1, Execute(cmd))
	assert.Contains(t, out.String(), "failed")
	assert.FileExists(t, filepath.Join(dir, "runs", "errors.json"))
	assert.NoFileExists(t, filepath.Join(dir, "out.avi"))
}

func TestVideoMissingInputError(t *testing.T) {
	t.Setenv("RUN_TIME_ENV", "test")
	dir := t.TempDir()

	cmd := NewVideoCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"-i", filepath.Join(dir, "missing.mp4"),
		"-o", filepath.Join(dir, "out"),
		"--dry-run",
		"--runs-folder", filepath.Join(dir, "runs"),
	})

	require.ErrorIs(t, cmd.Execute(), model.ErrSourceUnavailable)
}

func TestVideoRequiresInputAndOutput(t *testing.T) {
	t.Setenv("RUN_TIME_ENV", "test")
	runs := filepath.Join(t.TempDir(), "runs")

	cmd := NewVideoCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--dry-run", "--runs-folder", runs})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, `required flag(s) "input", "output" not set`, err.Error())
	// Usage errors are not runs
	assert.NoDirExists(t, runs)

	cmd = NewVideoCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"-i", "in.mp4", "--dry-run", "--runs-folder", runs})

	err = cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, `required flag(s) "output" not set`, err.Error())
}

func TestVideoNamesFromEnvironment(t *testing.T) {
	t.Setenv("RUN_TIME_ENV", "test")
	dir := t.TempDir()
	t.Setenv("BGR_INPUT", filepath.Join(dir, "missing.mp4"))
	t.Setenv("BGR_OUTPUT", filepath.Join(dir, "out"))

	cmd := NewVideoCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--dry-run", "--runs-folder", filepath.Join(dir, "runs")})

	// Past the required check, into the run itself
	require.ErrorIs(t, cmd.Execute(), model.ErrSourceUnavailable)
}

func TestShutdownWaitExpiryIsNotAnError(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	stuck := func(context.Context, mode.ServicesFactory) (model.RunStats, error) {
		<-release
		return model.RunStats{}, nil
	}

	v := viper.New()
	v.Set(config.KeyModeMaxShutdownTime, 0)
	svcs := mode.ServicesFactory{CfgSvc: config.NewViper(v), Logger: lgr.Discard()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := newApp("bgr-camera", stuck).wait(ctx, svcs)
	require.NoError(t, err)
	assert.True(t, stats.Cancelled)
}
