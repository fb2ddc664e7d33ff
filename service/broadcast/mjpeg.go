package broadcast

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"golang.org/x/xerrors"

	"github.com/khaledhikmat/vs-bgremove/pipeline"
)

const (
	jpegQuality        = 90
	clientBuffer       = 2
	statsInterval      = time.Second
	shutdownTimeout    = 2 * time.Second
	websocketWriteWait = time.Second
)

type mjpegService struct {
	logger   *slog.Logger
	router   *mux.Router
	upgrader websocket.Upgrader
	interval time.Duration

	frameMu   sync.RWMutex
	current   *image.RGBA
	lastSeq   int
	frames    uint64
	startTime time.Time

	clientsMu sync.RWMutex
	clients   map[chan []byte]struct{}
	closed    bool

	done      chan struct{}
	closeOnce sync.Once

	srvMu sync.Mutex
	srv   *http.Server
	addr  string
}

// NewMJPEG serves /stream (multipart JPEG), /snapshot (single JPEG) and
// /ws/stats (websocket JSON stats).
func NewMJPEG(logger *slog.Logger) IService {
	svc := &mjpegService{
		logger:   logger,
		router:   mux.NewRouter(),
		interval: statsInterval,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients:   make(map[chan []byte]struct{}),
		done:      make(chan struct{}),
		startTime: time.Now(),
	}

	svc.router.HandleFunc("/stream", svc.handleStream).Methods("GET")
	svc.router.HandleFunc("/snapshot", svc.handleSnapshot).Methods("GET")
	svc.router.HandleFunc("/ws/stats", svc.handleStats)

	return svc
}

func (svc *mjpegService) Handler() http.Handler {
	return svc.router
}

// Start listens on addr and serves in the background.
func (svc *mjpegService) Start(addr string) error {
	svc.srvMu.Lock()
	defer svc.srvMu.Unlock()

	if svc.srv != nil {
		return xerrors.New("broadcaster already started")
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return xerrors.Errorf("broadcaster listening on %s: %w", addr, err)
	}

	svc.addr = ln.Addr().String()
	svc.srv = &http.Server{
		Handler:           svc.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := svc.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			svc.logger.Error("broadcaster stopped", slog.Any("error", err))
		}
	}()

	svc.logger.Info("broadcaster started", slog.String("addr", "http://"+svc.addr+"/stream"))
	return nil
}

func (svc *mjpegService) Addr() string {
	svc.srvMu.Lock()
	defer svc.srvMu.Unlock()
	return svc.addr
}

// Observe keeps the frame for snapshots and fans it out to stream clients.
// Slow clients miss frames rather than holding up the pipeline.
func (svc *mjpegService) Observe(f pipeline.FrameData) {
	svc.frameMu.Lock()
	svc.current = f.Image
	svc.lastSeq = f.Seq
	svc.frames++
	svc.frameMu.Unlock()

	svc.clientsMu.RLock()
	defer svc.clientsMu.RUnlock()

	if len(svc.clients) == 0 {
		return
	}

	data, err := encodeJPEG(f.Image)
	if err != nil {
		svc.logger.Warn("broadcaster dropped frame", slog.Int("seq", f.Seq), slog.Any("error", err))
		return
	}

	for ch := range svc.clients {
		select {
		case ch <- data:
		default:
		}
	}
}

func (svc *mjpegService) Stats() Stats {
	svc.frameMu.RLock()
	frames := svc.frames
	lastSeq := svc.lastSeq
	elapsed := time.Since(svc.startTime).Seconds()
	svc.frameMu.RUnlock()

	svc.clientsMu.RLock()
	clients := len(svc.clients)
	svc.clientsMu.RUnlock()

	var fps float64
	if elapsed > 0 {
		fps = float64(frames) / elapsed
	}

	return Stats{
		Frames:    frames,
		LastSeq:   lastSeq,
		FPS:       fps,
		Clients:   clients,
		Timestamp: time.Now().Unix(),
	}
}

func (svc *mjpegService) Close() error {
	var err error
	svc.closeOnce.Do(func() {
		close(svc.done)

		svc.clientsMu.Lock()
		svc.closed = true
		for ch := range svc.clients {
			close(ch)
		}
		svc.clients = make(map[chan []byte]struct{})
		svc.clientsMu.Unlock()

		svc.srvMu.Lock()
		srv := svc.srv
		svc.srvMu.Unlock()
		if srv == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if shutdownErr := srv.Shutdown(ctx); shutdownErr != nil {
			err = xerrors.Errorf("broadcaster shutdown: %w", shutdownErr)
		}
	})
	return err
}

func (svc *mjpegService) subscribe() (chan []byte, bool) {
	svc.clientsMu.Lock()
	defer svc.clientsMu.Unlock()

	if svc.closed {
		return nil, false
	}

	ch := make(chan []byte, clientBuffer)
	svc.clients[ch] = struct{}{}
	svc.logger.Debug("stream client connected", slog.Int("clients", len(svc.clients)))
	return ch, true
}

func (svc *mjpegService) unsubscribe(ch chan []byte) {
	svc.clientsMu.Lock()
	defer svc.clientsMu.Unlock()

	// Close may have already released it
	if _, ok := svc.clients[ch]; ok {
		delete(svc.clients, ch)
		close(ch)
	}
	svc.logger.Debug("stream client disconnected", slog.Int("clients", len(svc.clients)))
}

func (svc *mjpegService) handleStream(w http.ResponseWriter, r *http.Request) {
	ch, ok := svc.subscribe()
	if !ok {
		http.Error(w, "broadcaster closed", http.StatusServiceUnavailable)
		return
	}
	defer svc.unsubscribe(ch)

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Connection", "close")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case data, ok := <-ch:
			if !ok {
				return
			}

			if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(data)); err != nil {
				return
			}
			if _, err := w.Write(data); err != nil {
				return
			}
			if _, err := fmt.Fprint(w, "\r\n"); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

func (svc *mjpegService) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	svc.frameMu.RLock()
	current := svc.current
	svc.frameMu.RUnlock()

	if current == nil {
		http.Error(w, "no frame yet", http.StatusServiceUnavailable)
		return
	}

	data, err := encodeJPEG(current)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(data)
}

func (svc *mjpegService) handleStats(w http.ResponseWriter, r *http.Request) {
	conn, err := svc.upgrader.Upgrade(w, r, nil)
	if err != nil {
		svc.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(svc.interval)
	defer ticker.Stop()

	for {
		_ = conn.SetWriteDeadline(time.Now().Add(websocketWriteWait))
		if err := conn.WriteJSON(svc.Stats()); err != nil {
			return
		}

		select {
		case <-svc.done:
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "pipeline stopped"))
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func encodeJPEG(img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, xerrors.Errorf("encoding jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
