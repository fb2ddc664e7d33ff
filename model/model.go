package model

import (
	"fmt"
	"runtime/debug"
)

type CustomError struct {
	Processor  string                 `json:"processor"`
	Inner      error                  `json:"innerError"`
	Message    string                 `json:"message"`
	StackTrace string                 `json:"stackTrace"`
	Misc       map[string]interface{} `json:"misc"`
}

func GenError(proc string, err error, misc map[string]interface{}, messagef string, args ...interface{}) CustomError {
	return CustomError{
		Processor:  proc,
		Inner:      err,
		Message:    fmt.Sprintf(messagef, args...),
		StackTrace: string(debug.Stack()),
		Misc:       misc,
	}
}

func (e CustomError) Error() string {
	if e.Inner == nil {
		return fmt.Sprintf("%s: %s", e.Processor, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Processor, e.Message, e.Inner)
}

func (e CustomError) Unwrap() error {
	return e.Inner
}

// RunStats summarizes one pipeline run from source open to release.
type RunStats struct {
	RunID         string  `json:"runId"`
	Mode          string  `json:"mode"`
	Source        string  `json:"source"`
	Output        string  `json:"output"`
	Workers       int     `json:"workers"`
	Frames        int     `json:"frames"`
	SkippedFrames int     `json:"skippedFrames"`
	Errors        int     `json:"errors"`
	FPS           int     `json:"fps"`
	Uptime        int64   `json:"uptime"`
	AvgProcTime   float64 `json:"avgProcTime"`
	Cancelled     bool    `json:"cancelled"`
	Timestamp     int64   `json:"timestamp"`
}

// ModelStats is recorded once the inference provider has loaded its graph.
type ModelStats struct {
	Path      string  `json:"path"`
	Backend   string  `json:"backend"`
	LoadTime  float64 `json:"loadTime"`
	Timestamp int64   `json:"timestamp"`
}
