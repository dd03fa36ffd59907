package indicator

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// New picks a publisher from what is configured. With both transports the websocket
// is preferred while connected and HTTP is tried once when it fails. dryrun replaces
// delivery with a log line.
func New(ws *Bridge, hp *HTTPPublisher, dryrun bool, logger *zap.Logger) Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch {
	case dryrun:
		return &dryRun{logger: logger}
	case ws != nil && hp != nil:
		return &fallback{ws: ws, http: hp, logger: logger}
	case ws != nil:
		return ws
	case hp != nil:
		return hp
	default:
		return Nop{}
	}
}

type dryRun struct{ logger *zap.Logger }

func (d *dryRun) Publish(_ context.Context, f Frame) error {
	d.logger.Info("indicator_dryrun",
		zap.String("type", f.Type),
		zap.String("session", f.Session),
		zap.Ints("indicators", f.Indicators),
	)
	return nil
}

type fallback struct {
	ws     *Bridge
	http   *HTTPPublisher
	logger *zap.Logger
}

func (a *fallback) Publish(ctx context.Context, f Frame) error {
	if a.ws.State() == StateConnected {
		err := a.ws.Publish(ctx, f)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrNotConnected) {
			a.logger.Warn("indicator_ws_publish_failed", zap.String("type", f.Type), zap.Error(err))
		}
	}
	return a.http.Publish(ctx, f)
}
