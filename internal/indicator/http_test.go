package indicator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestHTTPPublisherRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	var got Frame
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/frames" {
			http.NotFound(w, r)
			return
		}
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p := NewHTTPPublisher(srv.URL+"/", WithHTTPRetry(3))
	err := p.Publish(context.Background(), Frame{Type: FrameCommit, Session: "s9", Indicators: []int{8, 24}})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", calls.Load())
	}
	if got.Session != "s9" || len(got.Indicators) != 2 {
		t.Fatalf("frame = %+v", got)
	}
}

func TestHTTPPublisherClientErrorIsFinal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewHTTPPublisher(srv.URL, WithHTTPRetry(3), WithHTTPTimeout(time.Second))
	if err := p.Publish(context.Background(), Frame{Type: FrameClear}); err == nil {
		t.Fatalf("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestNewSelectsPublisher(t *testing.T) {
	if _, ok := New(nil, nil, false, nil).(Nop); !ok {
		t.Fatalf("expected Nop without transports")
	}
	hp := NewHTTPPublisher("http://127.0.0.1:1")
	if New(nil, hp, false, nil) != Publisher(hp) {
		t.Fatalf("expected the HTTP publisher")
	}

	core, logs := observer.New(zap.InfoLevel)
	p := New(NewBridge("ws://127.0.0.1:1"), hp, true, zap.New(core))
	if err := p.Publish(context.Background(), Frame{Type: FrameSelect, Session: "s1", Indicators: []int{1}}); err != nil {
		t.Fatalf("dryrun publish: %v", err)
	}
	if logs.FilterMessage("indicator_dryrun").Len() != 1 {
		t.Fatalf("dryrun did not log")
	}
}

func TestFallbackUsesHTTPWhenBridgeDown(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := New(NewBridge("ws://127.0.0.1:1", WithMaxReconnect(0)), NewHTTPPublisher(srv.URL), false, nil)
	if err := p.Publish(context.Background(), Frame{Type: FrameCommit}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("http calls = %d", calls.Load())
	}
}
