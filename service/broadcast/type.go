package broadcast

import (
	"net/http"

	"github.com/khaledhikmat/vs-bgremove/pipeline"
)

// IService republishes composited frames over HTTP so that they can be
// picked up by a browser or a video call client.
type IService interface {
	pipeline.Observer
	Handler() http.Handler
	Start(addr string) error
	Addr() string
	Stats() Stats
	Close() error
}

// Stats is pushed to websocket subscribers.
type Stats struct {
	Frames    uint64  `json:"frames"`
	LastSeq   int     `json:"lastSeq"`
	FPS       float64 `json:"fps"`
	Clients   int     `json:"clients"`
	Timestamp int64   `json:"timestamp"`
}
