package data

import "github.com/khaledhikmat/vs-bgremove/model"

type IService interface {
	NewError(err interface{}) error
	NewRunStats(stats model.RunStats) error
	NewModelStats(stats model.ModelStats) error

	RetrieveRunStats() ([]model.RunStats, error)
	RetrieveErrors() ([]ErrorRecord, error)
}

// ErrorRecord is the persisted form of a model.CustomError.
type ErrorRecord struct {
	Timestamp  int64                  `json:"timestamp"`
	Processor  string                 `json:"processor"`
	Inner      string                 `json:"innerError"`
	Message    string                 `json:"message"`
	StackTrace string                 `json:"stackTrace"`
	Misc       map[string]interface{} `json:"misc"`
}
