package mode

import (
	"context"
	"log/slog"

	"github.com/khaledhikmat/vs-bgremove/model"
	"github.com/khaledhikmat/vs-bgremove/service/broadcast"
	"github.com/khaledhikmat/vs-bgremove/service/config"
	"github.com/khaledhikmat/vs-bgremove/service/data"
	"github.com/khaledhikmat/vs-bgremove/service/inference"
)

// InferenceFactory creates the inference service of one pipeline worker.
type InferenceFactory func(worker int) (inference.IService, error)

type ServicesFactory struct {
	CfgSvc  config.IService
	DataSvc data.IService
	// BroadcastSvc is optional. When set it receives every written frame.
	BroadcastSvc broadcast.IService
	NewInference InferenceFactory
	Logger       *slog.Logger
}

type Processor func(canxCtx context.Context, svcs ServicesFactory) (model.RunStats, error)

func procStats(svcs ServicesFactory, stats interface{}) {
	var err error
	switch stats := stats.(type) {
	case model.RunStats:
		err = svcs.DataSvc.NewRunStats(stats)
	case model.ModelStats:
		err = svcs.DataSvc.NewModelStats(stats)
	default:
		svcs.Logger.Error(
			"unknown stats type",
			slog.Any("stats", stats),
		)
		return
	}

	if err != nil {
		svcs.Logger.Error(
			"failed to store stats",
			slog.Any("stats", stats),
			slog.Any("error", err),
		)
	}
}

func procError(svcs ServicesFactory, err interface{}) {
	errTemp := svcs.DataSvc.NewError(err)
	if errTemp != nil {
		svcs.Logger.Error(
			"failed to store error",
			slog.Any("error", errTemp),
		)
	}
}
