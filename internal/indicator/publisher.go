package indicator

import "context"

// Frame types sent to the gateway.
const (
	FrameSelect = "select"
	FrameCommit = "commit"
	FrameClear  = "clear"
)

// Frame is one lighting instruction. Indicators are the opaque addresses carried on
// each square; Squares holds the matching algebraic names for gateways that log them.
type Frame struct {
	Type       string   `json:"type"`
	Session    string   `json:"session"`
	Indicators []int    `json:"indicators"`
	Squares    []string `json:"squares,omitempty"`
}

// Publisher delivers frames to the indicator hardware.
type Publisher interface {
	Publish(ctx context.Context, f Frame) error
}

// Nop drops every frame. Used when no gateway is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Frame) error { return nil }

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, f Frame) error

func (fn PublisherFunc) Publish(ctx context.Context, f Frame) error { return fn(ctx, f) }
