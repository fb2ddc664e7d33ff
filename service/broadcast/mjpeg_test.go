package broadcast

import (
	"bufio"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khaledhikmat/vs-bgremove/frame"
	"github.com/khaledhikmat/vs-bgremove/pipeline"
	"github.com/khaledhikmat/vs-bgremove/service/lgr"
)

func testFrame(seq int) pipeline.FrameData {
	img := frame.White(32, 18)
	img.Set(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	return pipeline.FrameData{Seq: seq, Image: img, Timestamp: time.Now()}
}

func TestSnapshot(t *testing.T) {
	svc := NewMJPEG(lgr.Discard())
	defer svc.Close()

	srv := httptest.NewServer(svc.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/snapshot")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	svc.Observe(testFrame(0))

	resp, err = http.Get(srv.URL + "/snapshot")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))

	img, err := jpeg.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 18), img.Bounds())
	assert.Equal(t, uint64(1), svc.Stats().Frames)
}

func TestStream(t *testing.T) {
	svc := NewMJPEG(lgr.Discard())
	defer svc.Close()

	srv := httptest.NewServer(svc.Handler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "multipart/x-mixed-replace"))

	require.Eventually(t, func() bool { return svc.Stats().Clients == 1 }, time.Second, 10*time.Millisecond)

	svc.Observe(testFrame(1))

	reader := bufio.NewReader(resp.Body)
	boundary, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "--frame\r\n", boundary)

	contentType, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "Content-Type: image/jpeg\r\n", contentType)

	cancel()
	require.Eventually(t, func() bool { return svc.Stats().Clients == 0 }, time.Second, 10*time.Millisecond)
}

func TestStatsWebsocket(t *testing.T) {
	svc := NewMJPEG(lgr.Discard())

	srv := httptest.NewServer(svc.Handler())
	defer srv.Close()

	svc.Observe(testFrame(0))
	svc.Observe(testFrame(1))

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/stats"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var stats Stats
	require.NoError(t, conn.ReadJSON(&stats))
	assert.Equal(t, uint64(2), stats.Frames)
	assert.Equal(t, 1, stats.LastSeq)

	require.NoError(t, svc.Close())

	// The feed ends with a normal close once the broadcaster stops.
	for {
		_, _, err = conn.ReadMessage()
		if err != nil {
			break
		}
	}
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}

func TestStartAndClose(t *testing.T) {
	svc := NewMJPEG(lgr.Discard())
	require.NoError(t, svc.Start("127.0.0.1:0"))
	require.Error(t, svc.Start("127.0.0.1:0"))

	resp, err := http.Get("http://" + svc.Addr() + "/snapshot")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	require.NoError(t, svc.Close())
	require.NoError(t, svc.Close())
}

func TestTeeFeedsBroadcaster(t *testing.T) {
	svc := NewMJPEG(lgr.Discard())
	defer svc.Close()

	sink := pipeline.Tee(nopSink{}, svc)
	require.NoError(t, sink.Write(context.Background(), testFrame(7)))
	assert.Equal(t, 7, svc.Stats().LastSeq)
}

type nopSink struct{}

func (nopSink) Size() image.Point                               { return image.Pt(32, 18) }
func (nopSink) Write(context.Context, pipeline.FrameData) error { return nil }
func (nopSink) Close() error                                    { return nil }
