package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// mjpegServer serves the given JPEGs as one chunked byte stream, then
// closes the connection.
func mjpegServer(t *testing.T, jpegs [][]byte) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Error("response writer does not support flushing")
			return
		}

		// Write in small chunks so markers straddle reads.
		for _, j := range jpegs {
			for off := 0; off < len(j); off += 512 {
				end := off + 512
				if end > len(j) {
					end = len(j)
				}
				w.Write(j[off:end])
				flusher.Flush()
			}
		}
	}))
}

func TestClient_Run_EmitsAllFrames(t *testing.T) {
	jpegs := testJPEGs(t, 3)
	srv := mjpegServer(t, jpegs)
	defer srv.Close()

	client := NewClient(srv.URL)

	var frames []Frame
	err := client.Run(context.Background(), func(f Frame) bool {
		frames = append(frames, f)
		return true
	})

	// The server closes after the last frame; a continuous stream ending
	// is a mid-stream failure.
	if !IsStreamError(err) {
		t.Errorf("expected StreamError at end of finite stream, got %v", err)
	}
	if len(frames) != len(jpegs) {
		t.Fatalf("expected %d frames, got %d", len(jpegs), len(frames))
	}
	for i, f := range frames {
		if f.Seq != uint64(i) {
			t.Errorf("frame %d: expected seq %d, got %d", i, i, f.Seq)
		}
		if f.Width != 32 || f.Height != 24 {
			t.Errorf("frame %d: expected 32x24, got %dx%d", i, f.Width, f.Height)
		}
	}
}

func TestClient_Run_ConsumerStops(t *testing.T) {
	jpegs := testJPEGs(t, 3)
	srv := mjpegServer(t, jpegs)
	defer srv.Close()

	client := NewClient(srv.URL)

	var count int
	err := client.Run(context.Background(), func(f Frame) bool {
		count++
		return count < 2
	})
	if err != nil {
		t.Errorf("expected clean stop, got %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 frames before stop, got %d", count)
	}
}

func TestClient_Run_CancelledContext(t *testing.T) {
	jpegs := testJPEGs(t, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.Write(jpegs[0])
		flusher.Flush()
		// Hold the connection open until the client goes away.
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	client := NewClient(srv.URL)

	errCh := make(chan error, 1)
	go func() {
		errCh <- client.Run(ctx, func(f Frame) bool {
			cancel()
			return true
		})
	}()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("expected nil error on cancellation, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestClient_Probe_Unreachable(t *testing.T) {
	// Grab a URL with nothing listening.
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(url, WithProbeTimeout(500*time.Millisecond))
	err := client.Probe(context.Background())
	if !IsConnError(err) {
		t.Errorf("expected ConnError for unreachable endpoint, got %v", err)
	}
}

func TestClient_Run_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	err := client.Run(context.Background(), func(Frame) bool { return true })
	if !IsConnError(err) {
		t.Errorf("expected ConnError for non-200 status, got %v", err)
	}
}
