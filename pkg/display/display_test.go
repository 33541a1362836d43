package display

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gorilla/websocket"
)

func TestChannel_HTTPSend(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		got = body["text"]
	}))
	defer srv.Close()

	ch := NewChannel(TransportHTTP, srv.URL)
	if err := ch.Send("hola"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if got != "hola" {
		t.Errorf("expected hola, got %q", got)
	}
	if !ch.Available() {
		t.Error("channel should remain available after success")
	}
}

func TestChannel_DeliversTextAsGiven(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		got = body["text"]
	}))
	defer srv.Close()

	// Truncation is the caller's job; the channel must not touch the
	// payload.
	long := strings.Repeat("x", 200)
	ch := NewChannel(TransportHTTP, srv.URL)
	if err := ch.Send(long); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if got != long {
		t.Errorf("expected %d runes delivered untouched, got %d", len(long), len([]rune(got)))
	}
}

func TestChannel_TripsOnHTTPFailure(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ch := NewChannel(TransportHTTP, srv.URL)

	err := ch.Send("first")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
	if te.Transport != TransportHTTP {
		t.Errorf("expected http transport in error, got %s", te.Transport)
	}
	if ch.Available() {
		t.Error("channel should trip after a failed send")
	}

	// Tripped channel short-circuits without touching the network.
	if err := ch.Send("second"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	if n := atomic.LoadInt32(&requests); n != 1 {
		t.Errorf("expected 1 request, got %d", n)
	}
}

func TestChannel_ResetReenablesSends(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	ch := NewChannel(TransportHTTP, srv.URL)
	if err := ch.Send("boom"); err == nil {
		t.Fatal("expected first send to fail")
	}

	fail.Store(false)

	// Still refused until the explicit reset.
	if err := ch.Send("held"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable before reset, got %v", err)
	}

	ch.ResetAvailability()
	if err := ch.Send("hola"); err != nil {
		t.Errorf("expected send to succeed after reset, got %v", err)
	}
}

func TestChannel_WebSocketSend(t *testing.T) {
	upgrader := websocket.Upgrader{}
	received := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		received <- string(msg)
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	ch := NewChannel(TransportWebSocket, wsURL)
	if err := ch.Send("ahoy"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if got := <-received; got != "ahoy" {
		t.Errorf("expected ahoy, got %q", got)
	}
}

func TestChannel_TripsOnWebSocketDialFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	ch := NewChannel(TransportWebSocket, wsURL)
	err := ch.Send("hello")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
	if ch.Available() {
		t.Error("channel should trip after dial failure")
	}
}

func TestChannel_ConfigureReenables(t *testing.T) {
	ch := NewChannel(TransportHTTP, "http://127.0.0.1:1/display")
	ch.Send("boom") // trips

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ch.Configure(TransportHTTP, srv.URL)
	if !ch.Available() {
		t.Error("Configure should re-arm the channel")
	}
	if err := ch.Send("hola"); err != nil {
		t.Errorf("expected send to succeed after reconfigure, got %v", err)
	}
}

func TestParseTransport(t *testing.T) {
	if _, err := ParseTransport("websocket"); err != nil {
		t.Errorf("websocket should parse: %v", err)
	}
	if _, err := ParseTransport("http"); err != nil {
		t.Errorf("http should parse: %v", err)
	}
	if _, err := ParseTransport("carrier-pigeon"); !errors.Is(err, ErrUnknownTransport) {
		t.Errorf("expected ErrUnknownTransport, got %v", err)
	}
}
