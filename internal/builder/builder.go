// Package builder wires configuration into the board service and its collaborators.
package builder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/park285/cheese-board/internal/config"
	"github.com/park285/cheese-board/internal/indicator"
	"github.com/park285/cheese-board/internal/msgcat"
	"github.com/park285/cheese-board/internal/obslog"
	"github.com/park285/cheese-board/internal/service/board"
)

type Deps struct {
	Service   *board.Service
	Store     board.Store
	Repo      board.Repository
	Publisher indicator.Publisher
	Catalog   *msgcat.Catalog

	bridge *indicator.Bridge
	redis  *board.RedisStore
	db     *sql.DB
}

// New builds the dependency graph. Redis and Postgres are optional; without them the
// in-memory store and history are used. A websocket gateway that cannot be reached at
// startup is retried in the background.
func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Deps{}

	cat, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	d.Catalog = cat

	// Session store
	if strings.TrimSpace(cfg.RedisURL) != "" {
		rs, err := board.NewRedisStore(cfg.RedisURL, cfg.SessionTTL())
		if err != nil {
			return nil, fmt.Errorf("init redis store: %w", err)
		}
		d.redis = rs
		d.Store = rs
		logger.Info("session_store", zap.String("kind", "redis"))
	} else {
		d.Store = board.NewMemoryStore(cfg.SessionTTL())
		logger.Warn("session_store", zap.String("kind", "memory"))
	}

	// Move history
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		db, err := board.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			_ = d.Close(ctx)
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		d.db = db
		d.Repo = board.NewRepository(db)
	} else {
		d.Repo = board.NewMemoryRepository()
	}

	// Indicator gateway
	var hp *indicator.HTTPPublisher
	if strings.TrimSpace(cfg.IndicatorWSURL) != "" {
		d.bridge = indicator.NewBridge(cfg.IndicatorWSURL,
			indicator.WithToken(cfg.IndicatorToken),
			indicator.WithLogger(logger.Named("indicator")),
		)
		d.bridge.OnStateChange(func(s indicator.State) {
			logger.Debug("indicator_state", zap.String("state", s.String()))
		})
		if err := d.bridge.Connect(ctx); err != nil {
			logger.Warn("indicator_connect_failed", zap.String("url", cfg.IndicatorWSURL), zap.Error(err))
		}
	}
	if strings.TrimSpace(cfg.IndicatorHTTPURL) != "" {
		hp = indicator.NewHTTPPublisher(cfg.IndicatorHTTPURL, indicator.WithHTTPToken(cfg.IndicatorToken))
	}
	d.Publisher = indicator.New(d.bridge, hp, cfg.IndicatorDryRun, logger.Named("indicator"))

	d.Service = board.NewService(
		board.Config{
			SessionTTL:   cfg.SessionTTL(),
			HistoryLimit: cfg.HistoryLimit,
			EnPassant:    cfg.EnPassant(),
			Workers:      cfg.GenerateWorkers,
		},
		d.Store,
		d.Repo,
		logger.Named("board"),
		board.WithPublisher(d.Publisher),
		board.WithRuleSink(obslog.NewRuleSink(logger)),
	)
	return d, nil
}

// Close releases the gateway connection, Redis client and database pool.
func (d *Deps) Close(ctx context.Context) error {
	if d == nil {
		return nil
	}
	var errs []error
	if d.bridge != nil {
		cctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		errs = append(errs, d.bridge.Close(cctx))
		cancel()
	}
	if d.redis != nil {
		errs = append(errs, d.redis.Close())
	}
	if d.db != nil {
		errs = append(errs, d.db.Close())
	}
	return errors.Join(errs...)
}
