package indicator

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// ErrNotConnected is returned by Bridge.Publish while no gateway connection is up.
var ErrNotConnected = errors.New("indicator bridge not connected")

type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateFailed:
		return "failed"
	default:
		return "disconnected"
	}
}

type StateCallback func(State)

// Ack is what the gateway sends back after applying a frame.
type Ack struct {
	Type    string `json:"type"`
	Session string `json:"session,omitempty"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}

// Bridge keeps a websocket open to the indicator gateway and writes frames as JSON.
type Bridge struct {
	url   string
	token string

	conn  *websocket.Conn
	connM sync.Mutex

	state    State
	stateM   sync.RWMutex
	stateCbs []StateCallback
	cbM      sync.RWMutex

	maxReconnect int
	reconnecting bool
	pingInterval time.Duration
	writeTimeout time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	rootCtx    context.Context
	rootCancel context.CancelFunc

	logger *zap.Logger
}

type BridgeOption func(*Bridge)

// WithToken sends "Authorization: Bearer <token>" on the handshake.
func WithToken(token string) BridgeOption {
	return func(b *Bridge) { b.token = strings.TrimSpace(token) }
}

func WithMaxReconnect(n int) BridgeOption {
	return func(b *Bridge) { b.maxReconnect = n }
}

func WithPingInterval(d time.Duration) BridgeOption {
	return func(b *Bridge) {
		if d > 0 {
			b.pingInterval = d
		}
	}
}

func WithWriteTimeout(d time.Duration) BridgeOption {
	return func(b *Bridge) {
		if d > 0 {
			b.writeTimeout = d
		}
	}
}

func WithLogger(l *zap.Logger) BridgeOption {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

func NewBridge(url string, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		url:          url,
		state:        StateDisconnected,
		maxReconnect: 10,
		pingInterval: 30 * time.Second,
		writeTimeout: 5 * time.Second,
		stopCh:       make(chan struct{}),
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.rootCtx, b.rootCancel = context.WithCancel(context.Background())
	return b
}

// Connect dials the gateway. On failure a background reconnect is scheduled and the
// dial error is returned.
func (b *Bridge) Connect(ctx context.Context) error {
	switch b.State() {
	case StateConnected, StateConnecting:
		return nil
	}
	b.setState(StateConnecting)

	conn, err := b.dial(ctx)
	if err != nil {
		b.setState(StateFailed)
		b.scheduleReconnect()
		return err
	}
	b.attach(conn)
	return nil
}

func (b *Bridge) dial(ctx context.Context) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(dialCtx, b.url, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
		HTTPHeader:      b.headers(),
	})
	return conn, err
}

func (b *Bridge) attach(conn *websocket.Conn) {
	b.connM.Lock()
	b.conn = conn
	b.connM.Unlock()
	b.setState(StateConnected)
	b.logger.Info("indicator_connected", zap.String("url", b.url))

	b.wg.Add(2)
	go b.listen(conn)
	go b.pingLoop(conn)
}

func (b *Bridge) headers() http.Header {
	hdr := http.Header{}
	if b.token != "" {
		hdr.Set("Authorization", "Bearer "+b.token)
	}
	return hdr
}

// Publish writes f as one JSON message.
func (b *Bridge) Publish(ctx context.Context, f Frame) error {
	conn := b.current()
	if conn == nil || b.State() != StateConnected {
		return ErrNotConnected
	}
	wctx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		wctx, cancel = context.WithTimeout(ctx, b.writeTimeout)
		defer cancel()
	}
	return wsjson.Write(wctx, conn, &f)
}

func (b *Bridge) current() *websocket.Conn {
	b.connM.Lock()
	defer b.connM.Unlock()
	return b.conn
}

func (b *Bridge) listen(conn *websocket.Conn) {
	defer b.wg.Done()
	for {
		var ack Ack
		if err := wsjson.Read(b.rootCtx, conn, &ack); err != nil {
			if b.isStopping() {
				return
			}
			b.drop(conn, "read failure", err)
			return
		}
		if !ack.OK && ack.Error != "" {
			b.logger.Warn("indicator_ack_error",
				zap.String("type", ack.Type),
				zap.String("session", ack.Session),
				zap.String("error", ack.Error),
			)
		}
	}
}

func (b *Bridge) pingLoop(conn *websocket.Conn) {
	defer b.wg.Done()
	t := time.NewTicker(b.pingInterval)
	defer t.Stop()
	failures := 0
	for {
		select {
		case <-b.stopCh:
			return
		case <-b.rootCtx.Done():
			return
		case <-t.C:
			if b.current() != conn {
				return
			}
			ctx, cancel := context.WithTimeout(b.rootCtx, 3*time.Second)
			err := conn.Ping(ctx)
			cancel()
			if err == nil {
				failures = 0
				continue
			}
			failures++
			if failures >= 2 {
				if !b.isStopping() {
					b.drop(conn, "ping failure", err)
				}
				return
			}
		}
	}
}

// drop closes conn if it is still the active one and starts reconnecting.
func (b *Bridge) drop(conn *websocket.Conn, reason string, cause error) {
	b.connM.Lock()
	active := b.conn == conn
	if active {
		b.conn = nil
	}
	b.connM.Unlock()
	if !active {
		return
	}
	_ = conn.Close(websocket.StatusGoingAway, reason)
	b.logger.Warn("indicator_disconnected", zap.String("reason", reason), zap.Error(cause))
	b.setState(StateDisconnected)
	b.scheduleReconnect()
}

func (b *Bridge) scheduleReconnect() {
	if b.maxReconnect <= 0 || b.isStopping() {
		return
	}
	b.stateM.Lock()
	if b.reconnecting {
		b.stateM.Unlock()
		return
	}
	b.reconnecting = true
	b.stateM.Unlock()
	b.setState(StateReconnecting)

	go func() {
		defer func() {
			b.stateM.Lock()
			b.reconnecting = false
			b.stateM.Unlock()
		}()
		for attempt := 1; attempt <= b.maxReconnect; attempt++ {
			select {
			case <-b.stopCh:
				return
			case <-time.After(backoffDuration(attempt)):
			}
			conn, err := b.dial(b.rootCtx)
			if err != nil {
				b.logger.Debug("indicator_reconnect_failed", zap.Int("attempt", attempt), zap.Error(err))
				continue
			}
			if b.isStopping() {
				_ = conn.Close(websocket.StatusNormalClosure, "close")
				return
			}
			b.attach(conn)
			return
		}
		b.setState(StateFailed)
	}()
}

func (b *Bridge) OnStateChange(cb StateCallback) {
	b.cbM.Lock()
	defer b.cbM.Unlock()
	b.stateCbs = append(b.stateCbs, cb)
}

func (b *Bridge) State() State {
	b.stateM.RLock()
	defer b.stateM.RUnlock()
	return b.state
}

func (b *Bridge) setState(s State) {
	b.stateM.Lock()
	b.state = s
	b.stateM.Unlock()

	b.cbM.RLock()
	callbacks := make([]StateCallback, len(b.stateCbs))
	copy(callbacks, b.stateCbs)
	b.cbM.RUnlock()
	for _, cb := range callbacks {
		if cb != nil {
			cb(s)
		}
	}
}

// Close stops reconnecting, closes the connection and waits for the reader and
// pinger to exit or ctx to end.
func (b *Bridge) Close(ctx context.Context) error {
	b.stopOnce.Do(func() { close(b.stopCh) })

	b.connM.Lock()
	conn := b.conn
	b.conn = nil
	b.connM.Unlock()
	if conn != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "close")
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		b.rootCancel()
		return ctx.Err()
	case <-done:
		b.rootCancel()
		b.setState(StateDisconnected)
		return nil
	}
}

func (b *Bridge) isStopping() bool {
	select {
	case <-b.stopCh:
		return true
	default:
		return false
	}
}
