package indicator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

func gateway(t *testing.T, frames chan<- Frame, auth *atomic.Value) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth != nil {
			auth.Store(r.Header.Get("Authorization"))
		}
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close(websocket.StatusNormalClosure, "")
		for {
			var f Frame
			if err := wsjson.Read(r.Context(), c, &f); err != nil {
				return
			}
			frames <- f
			_ = wsjson.Write(r.Context(), c, Ack{Type: f.Type, Session: f.Session, OK: true})
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestBridgePublishesFrames(t *testing.T) {
	frames := make(chan Frame, 1)
	var auth atomic.Value
	srv := gateway(t, frames, &auth)

	b := NewBridge(wsURL(srv), WithToken("s3cret"), WithMaxReconnect(0))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { _ = b.Close(context.Background()) })

	if b.State() != StateConnected {
		t.Fatalf("state = %v", b.State())
	}
	want := Frame{Type: FrameSelect, Session: "s1", Indicators: []int{12, 20, 28}, Squares: []string{"e2", "e3", "e4"}}
	if err := b.Publish(ctx, want); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case got := <-frames:
		if got.Type != want.Type || got.Session != want.Session || len(got.Indicators) != 3 || got.Indicators[2] != 28 {
			t.Fatalf("frame = %+v", got)
		}
	case <-ctx.Done():
		t.Fatalf("gateway never received the frame")
	}
	if got, _ := auth.Load().(string); got != "Bearer s3cret" {
		t.Fatalf("Authorization = %q", got)
	}
}

func TestBridgeNotConnected(t *testing.T) {
	b := NewBridge("ws://127.0.0.1:1/unused", WithMaxReconnect(0))
	if err := b.Publish(context.Background(), Frame{Type: FrameClear}); err != ErrNotConnected {
		t.Fatalf("err = %v, want ErrNotConnected", err)
	}
}

func TestBridgeDialFailure(t *testing.T) {
	b := NewBridge("ws://127.0.0.1:1/unused", WithMaxReconnect(0))
	var seen []State
	b.OnStateChange(func(s State) { seen = append(seen, s) })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := b.Connect(ctx); err == nil {
		t.Fatalf("expected dial error")
	}
	if b.State() != StateFailed {
		t.Fatalf("state = %v", b.State())
	}
	if len(seen) != 2 || seen[0] != StateConnecting || seen[1] != StateFailed {
		t.Fatalf("transitions = %v", seen)
	}
}

func TestBridgeCloseStopsLoops(t *testing.T) {
	srv := gateway(t, make(chan Frame, 4), nil)
	b := NewBridge(wsURL(srv), WithPingInterval(20*time.Millisecond))
	if err := b.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := b.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := b.Publish(context.Background(), Frame{Type: FrameClear}); err != ErrNotConnected {
		t.Fatalf("publish after close: %v", err)
	}
}

func TestBackoffDuration(t *testing.T) {
	cases := map[int]time.Duration{0: 100 * time.Millisecond, 1: 100 * time.Millisecond, 3: 400 * time.Millisecond, 6: 3200 * time.Millisecond, 9: 3200 * time.Millisecond}
	for attempt, want := range cases {
		if got := backoffDuration(attempt); got != want {
			t.Fatalf("backoffDuration(%d) = %v, want %v", attempt, got, want)
		}
	}
}
