// Package cli holds the cobra commands behind bgr-camera and bgr-video.
package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/mdobak/go-xerrors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/khaledhikmat/vs-bgremove/mode"
	"github.com/khaledhikmat/vs-bgremove/model"
	"github.com/khaledhikmat/vs-bgremove/service/broadcast"
	"github.com/khaledhikmat/vs-bgremove/service/config"
	"github.com/khaledhikmat/vs-bgremove/service/data"
	"github.com/khaledhikmat/vs-bgremove/service/inference"
	"github.com/khaledhikmat/vs-bgremove/service/lgr"
)

type app struct {
	name     string
	proc     mode.Processor
	v        *viper.Viper
	cfgFile  string
	dryRun   bool
	required []requiredSetting
}

// requiredSetting is a setting that may come from a flag, a BGR_* variable
// or the config file, but must come from somewhere.
type requiredSetting struct {
	key  string
	flag string
}

func (a *app) require(key, flag string) {
	a.required = append(a.required, requiredSetting{key: key, flag: flag})
}

func (a *app) checkRequired() error {
	var missing []string
	for _, r := range a.required {
		if a.v.GetString(r.key) == "" {
			missing = append(missing, strconv.Quote(r.flag))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return xerrors.New("required flag(s) " + strings.Join(missing, ", ") + " not set")
}

func newApp(name string, proc mode.Processor) *app {
	return &app{
		name: name,
		proc: proc,
		v:    viper.New(),
	}
}

func (a *app) command(use, short, example string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		Example:       example,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "YAML config file")
	flags.StringP("model", "m", "", "frozen inference graph (.pb)")
	flags.String("target-class", "person", "class to keep, VOC label or id")
	flags.Int("workers", 1, "inference workers, each loads its own copy of the model")
	flags.Bool("skip-dark-frames", false, "emit dark frames as white without running inference")
	flags.Bool("continue-on-error", false, "skip frames that fail instead of stopping")
	flags.String("broadcast-addr", "", "serve the output as MJPEG on this address, e.g. :8090")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "also write JSON logs to this rotated file")
	flags.String("runs-folder", "./runs", "folder receiving run stats and errors")
	flags.BoolVar(&a.dryRun, "dry-run", false, "keep every pixel instead of loading a model")

	a.bind(flags.Lookup("model"), config.KeyModelPath)
	a.bind(flags.Lookup("target-class"), config.KeyTargetClass)
	a.bind(flags.Lookup("workers"), config.KeyPipelineWorkers)
	a.bind(flags.Lookup("skip-dark-frames"), config.KeySkipDarkFrames)
	a.bind(flags.Lookup("continue-on-error"), config.KeyContinueOnFrameError)
	a.bind(flags.Lookup("broadcast-addr"), config.KeyBroadcastAddress)
	a.bind(flags.Lookup("log-level"), config.KeyLogLevel)
	a.bind(flags.Lookup("log-file"), config.KeyLogFile)
	a.bind(flags.Lookup("runs-folder"), config.KeyRunsFolder)

	return cmd
}

func (a *app) bind(flag *pflag.Flag, key string) {
	// Lookup only fails for a misspelled flag name
	if err := a.v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

func (a *app) loadConfig() (config.IService, error) {
	// Load env vars if we are in DEV mode
	if os.Getenv("RUN_TIME_ENV") == "dev" || os.Getenv("RUN_TIME_ENV") == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	return config.NewViper(a.v), nil
}

func (a *app) run(cmd *cobra.Command) error {
	cfgSvc, err := a.loadConfig()
	if err != nil {
		return err
	}

	if err := a.checkRequired(); err != nil {
		return err
	}

	logger, logCloser := lgr.New(lgr.Options{
		Level: cfgSvc.GetLogLevel(),
		File:  cfgSvc.GetLogFile(),
	})
	defer logCloser.Close()
	logger = logger.With(slog.String("app", a.name))

	if !a.dryRun && cfgSvc.GetModelPath() == "" {
		err := xerrors.New("no model given, use -m or --dry-run")
		logger.Error("invalid arguments", slog.Any("error", err))
		return err
	}

	canxCtx, canxFn := context.WithCancel(cmd.Context())
	defer canxFn()

	// Hook up a signal handler to cancel the context
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info(
				"received kill signal",
				slog.Any("signal", sig),
			)
			canxFn()
		case <-canxCtx.Done():
		}
	}()

	svcs := mode.ServicesFactory{
		CfgSvc:  cfgSvc,
		DataSvc: data.NewFilesDB(cfgSvc),
		Logger:  logger,
	}

	if a.dryRun {
		target, err := inference.ParseClass(cfgSvc.GetTargetClass())
		if err != nil {
			return err
		}
		svcs.NewInference = mode.FakeInference(target)
	} else {
		svcs.NewInference = mode.TensorflowInference(svcs)
	}

	if addr := cfgSvc.GetBroadcastAddress(); addr != "" {
		broadcastSvc := broadcast.NewMJPEG(logger)
		if err := broadcastSvc.Start(addr); err != nil {
			logger.Error("broadcaster not started", slog.Any("error", xerrors.New(err.Error())))
			return err
		}
		defer broadcastSvc.Close()
		svcs.BroadcastSvc = broadcastSvc
	}

	stats, err := a.wait(canxCtx, svcs)
	printSummary(cmd.OutOrStdout(), stats, err)

	if err != nil {
		logger.Error(
			"run failed",
			slog.Any("error", xerrors.New(err.Error())),
		)
	}
	return err
}

type procResult struct {
	stats model.RunStats
	err   error
}

// wait runs the mode processor and, once the context is cancelled, gives
// it the configured shutdown time to release the camera and the writer.
func (a *app) wait(canxCtx context.Context, svcs mode.ServicesFactory) (model.RunStats, error) {
	result := make(chan procResult, 1)
	go func() {
		stats, err := a.proc(canxCtx, svcs)
		result <- procResult{stats: stats, err: err}
	}()

	select {
	case r := <-result:
		return r.stats, r.err
	case <-canxCtx.Done():
	}

	waitOnShutdown := time.Duration(svcs.CfgSvc.GetModeMaxShutdownTime()) * time.Second
	svcs.Logger.Info(
		"waiting for the pipeline to exit",
		slog.Duration("period", waitOnShutdown),
	)

	timer := time.NewTimer(waitOnShutdown)
	defer timer.Stop()

	select {
	case r := <-result:
		return r.stats, r.err
	case <-timer.C:
		svcs.Logger.Warn(
			"shutdown waiting period expired. Exiting now",
			slog.Duration("period", waitOnShutdown),
		)
		// A stop was asked for; the pipeline just did not confirm it in time
		return model.RunStats{Cancelled: true}, nil
	}
}

// Execute runs cmd and returns the process exit code.
func Execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}
