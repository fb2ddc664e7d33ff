package model

import "errors"

var (
	// ErrModelLoad means the model artifact is missing or cannot be parsed.
	ErrModelLoad = errors.New("model load error")
	// ErrSourceUnavailable means the capture device or input file cannot be opened.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrSinkUnavailable means the preview window or video writer cannot be created.
	ErrSinkUnavailable = errors.New("sink unavailable")
	// ErrShapeMismatch means a frame and its class mask differ in size.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrRead means a frame could not be decoded before the end of the stream.
	ErrRead = errors.New("read error")
	// ErrInvalidFrame means a frame has a zero dimension.
	ErrInvalidFrame = errors.New("invalid frame")
	// ErrFrameSize means a frame handed to a sink does not match its configured size.
	ErrFrameSize = errors.New("frame size does not match sink")
)
