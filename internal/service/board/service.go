package board

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/cheese-board/internal/domain"
	"github.com/park285/cheese-board/internal/fenboard"
	"github.com/park285/cheese-board/internal/indicator"
	"github.com/park285/cheese-board/internal/rules"
)

var (
	ErrIllegalMove   = errors.New("illegal move")
	ErrNotYourTurn   = errors.New("piece does not belong to the side to move")
	ErrInvalidSquare = errors.New("invalid square")
)

const defaultHistoryLimit = 50

type Config struct {
	SessionTTL   time.Duration
	HistoryLimit int
	EnPassant    rules.EnPassantRule
	Workers      int
}

// Service owns board sessions: it generates candidates, commits moves and drives the
// indicator lights.
type Service struct {
	cfg       Config
	store     Store
	repo      Repository
	gen       *rules.Generator
	publisher indicator.Publisher
	renderer  Renderer
	logger    *zap.Logger
	now       func() time.Time
}

type ServiceOption func(*Service)

func WithPublisher(p indicator.Publisher) ServiceOption {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithRenderer(r Renderer) ServiceOption {
	return func(s *Service) {
		if r != nil {
			s.renderer = r
		}
	}
}

// WithRuleSink routes generator diagnostics to sink.
func WithRuleSink(sink rules.Sink) ServiceOption {
	return func(s *Service) {
		s.gen = rules.NewGenerator(
			rules.WithSink(sink),
			rules.WithEnPassantRule(s.cfg.EnPassant),
			rules.WithWorkerLimit(s.cfg.Workers),
		)
	}
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(cfg Config, store Store, repo Repository, logger *zap.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}
	if repo == nil {
		repo = NewMemoryRepository()
	}
	s := &Service{
		cfg:       cfg,
		store:     store,
		repo:      repo,
		publisher: indicator.Nop{},
		renderer:  NewRenderer(),
		logger:    logger,
		now:       time.Now,
	}
	s.gen = rules.NewGenerator(rules.WithEnPassantRule(cfg.EnPassant), rules.WithWorkerLimit(cfg.Workers))
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generator exposes the move generator for read-only callers such as the CLI.
func (s *Service) Generator() *rules.Generator { return s.gen }

// Create starts a session from fen ("" or "startpos" for the initial array).
func (s *Service) Create(ctx context.Context, fen string) (*Session, error) {
	b, turn, err := fenboard.FromFEN(fen)
	if err != nil {
		return nil, err
	}
	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		Board:     b,
		Turn:      turn,
		Moves:     []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.logger.Info("session_create",
		zap.String("session", sess.ID),
		zap.String("turn", turn.String()),
		zap.String("fen", fenboard.ToFEN(b, turn)),
	)
	return sess, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	return s.store.Load(ctx, strings.TrimSpace(id))
}

// Delete removes the session and turns its lights off.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, indicator.Frame{Type: indicator.FrameClear, Session: id, Indicators: []int{}})
	s.logger.Info("session_delete", zap.String("session", id))
	return nil
}

// Selection is the result of lifting the piece on Square.
type Selection struct {
	Square     rules.Position
	Piece      rules.PieceKind
	Owner      rules.Owner
	Moves      []rules.Move
	Indicators []int
	// InCheck reports whether the selected occupant is attacked where it stands.
	InCheck bool
}

// Destinations returns the distinct target squares, without the stay move.
func (sel *Selection) Destinations() []rules.Position { return rules.Destinations(sel.Moves) }

// Select generates the candidates for the piece on square and lights their indicators.
func (s *Service) Select(ctx context.Context, id, square string) (*Selection, error) {
	pos, err := parseSquare(square)
	if err != nil {
		return nil, err
	}
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	snap := sess.Board.Freeze()
	sq, _ := snap.At(pos)
	sel := &Selection{
		Square:  pos,
		Piece:   sq.Kind(),
		Owner:   sq.Owner(),
		Moves:   s.gen.Generate(snap, pos),
		InCheck: s.gen.Threats().InCheck(snap, pos),
	}
	dests := sel.Destinations()
	names := make([]string, 0, len(dests))
	sel.Indicators = make([]int, 0, len(dests))
	for _, d := range dests {
		target, _ := snap.At(d)
		sel.Indicators = append(sel.Indicators, target.Indicator())
		names = append(names, d.Name())
	}

	s.publish(ctx, indicator.Frame{Type: indicator.FrameSelect, Session: sess.ID, Indicators: sel.Indicators, Squares: names})
	s.logger.Debug("piece_select",
		zap.String("session", sess.ID),
		zap.String("square", pos.Name()),
		zap.String("piece", sel.Piece.String()),
		zap.Int("candidates", len(dests)),
	)
	return sel, nil
}

// ThreatReport answers whether a square is attacked for a given defender.
type ThreatReport struct {
	Square   rules.Position
	Defender rules.Owner
	Attacked bool
}

// Threat checks square against the opponent of its occupant, or of the side to move
// when the square is empty.
func (s *Service) Threat(ctx context.Context, id, square string) (*ThreatReport, error) {
	pos, err := parseSquare(square)
	if err != nil {
		return nil, err
	}
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	snap := sess.Board.Freeze()
	defender := snap.Owner(pos)
	if defender == rules.None {
		defender = sess.Turn
	}
	return &ThreatReport{
		Square:   pos,
		Defender: defender,
		Attacked: s.gen.Threats().IsAttacked(snap, pos, defender, rules.ScanStatic),
	}, nil
}

// CommitResult is a committed move with the session state after it.
type CommitResult struct {
	Session *Session
	Outcome Outcome
	Record  *domain.MoveRecord
	// Check reports whether the side now to move has its king attacked.
	Check bool
}

// Commit plays from→to for the side to move. The move must be one of the generated
// candidates; the stay move is never accepted.
func (s *Service) Commit(ctx context.Context, id, from, to string) (*CommitResult, error) {
	fromPos, err := parseSquare(from)
	if err != nil {
		return nil, err
	}
	toPos, err := parseSquare(to)
	if err != nil {
		return nil, err
	}
	move := rules.NewMove(fromPos, toPos)

	var out Outcome
	sess, err := s.store.Update(ctx, strings.TrimSpace(id), func(sess *Session) error {
		snap := sess.Board.Freeze()
		owner := snap.Owner(fromPos)
		if owner == rules.None {
			return fmt.Errorf("%w: %s is empty", ErrIllegalMove, fromPos)
		}
		if owner != sess.Turn {
			return fmt.Errorf("%w: %s to move", ErrNotYourTurn, sess.Turn)
		}
		if move.IsStay() || !rules.Contains(s.gen.Generate(snap, fromPos)[1:], toPos) {
			return fmt.Errorf("%w: %s", ErrIllegalMove, move)
		}
		out = Execute(sess.Board, move)
		sess.Turn = sess.Turn.Opponent()
		sess.Moves = append(sess.Moves, move.String())
		sess.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	rec := &domain.MoveRecord{
		SessionID: sess.ID,
		Ply:       sess.Ply(),
		Move:      move.String(),
		Piece:     out.Piece.String(),
		Owner:     out.Owner.String(),
		Kind:      out.Kind,
		FEN:       fenboard.ToFEN(sess.Board, sess.Turn),
		PlayedAt:  sess.UpdatedAt,
	}
	if out.Captured != rules.Empty {
		rec.Captured = out.Captured.String()
	}
	if err := s.repo.AppendMove(ctx, rec); err != nil {
		// 세션은 이미 커밋됨. 히스토리 실패는 로그만 남긴다.
		s.logger.Error("move_history_error", zap.String("session", sess.ID), zap.Int("ply", rec.Ply), zap.Error(err))
	}

	snap := sess.Board.Freeze()
	res := &CommitResult{Session: sess, Outcome: out, Record: rec, Check: s.kingInCheck(snap, sess.Turn)}

	touched := append([]rules.Position{fromPos, toPos}, out.Extra...)
	frame := indicator.Frame{Type: indicator.FrameCommit, Session: sess.ID}
	for _, p := range touched {
		sq, _ := snap.At(p)
		frame.Indicators = append(frame.Indicators, sq.Indicator())
		frame.Squares = append(frame.Squares, p.Name())
	}
	s.publish(ctx, frame)

	s.logger.Info("move_commit",
		zap.String("session", sess.ID),
		zap.Int("ply", rec.Ply),
		zap.String("move", rec.Move),
		zap.String("kind", out.Kind),
		zap.String("captured", rec.Captured),
		zap.Bool("check", res.Check),
	)
	return res, nil
}

// History returns the most recent committed moves, oldest first. limit is clamped to
// the configured maximum.
func (s *Service) History(ctx context.Context, id string, limit int) ([]*domain.MoveRecord, error) {
	if limit <= 0 || limit > s.cfg.HistoryLimit {
		limit = s.cfg.HistoryLimit
	}
	return s.repo.ListMoves(ctx, strings.TrimSpace(id), limit)
}

// Candidates generates moves for every piece of the side to move.
func (s *Service) Candidates(ctx context.Context, id string) (map[rules.Position][]rules.Move, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.gen.GenerateAll(ctx, sess.Board.Freeze(), sess.Turn)
}

// Render draws the session as PNG. A non-empty square adds the selection overlay.
func (s *Service) Render(ctx context.Context, id, square string) ([]byte, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	snap := sess.Board.Freeze()
	opts := RenderOptions{
		Header: fmt.Sprintf("Board %s", shortID(sess.ID)),
		Turn:   fmt.Sprintf("%s to move", titleCase(sess.Turn.String())),
	}
	if strings.TrimSpace(square) != "" {
		pos, err := parseSquare(square)
		if err != nil {
			return nil, err
		}
		opts.Selected = &pos
		opts.Targets = rules.Destinations(s.gen.Generate(snap, pos))
	}
	if king, ok := snap.Find(rules.King, sess.Turn); ok && s.gen.Threats().InCheck(snap, king) {
		opts.Check = &king
		opts.Turn += " (check)"
	}
	return s.renderer.RenderPNG(ctx, snap, opts)
}

// SideInCheck reports whether the side to move has its king attacked.
func (s *Service) SideInCheck(sess *Session) bool {
	if sess == nil || sess.Board == nil {
		return false
	}
	return s.kingInCheck(sess.Board.Freeze(), sess.Turn)
}

func (s *Service) kingInCheck(snap rules.Snapshot, owner rules.Owner) bool {
	king, ok := snap.Find(rules.King, owner)
	return ok && s.gen.Threats().InCheck(snap, king)
}

func (s *Service) publish(ctx context.Context, f indicator.Frame) {
	if err := s.publisher.Publish(ctx, f); err != nil {
		s.logger.Warn("indicator_publish_error",
			zap.String("session", f.Session),
			zap.String("type", f.Type),
			zap.Error(err),
		)
	}
}

func parseSquare(raw string) (rules.Position, error) {
	pos, err := rules.ParsePosition(raw)
	if err != nil {
		return rules.Position{}, fmt.Errorf("%w: %q", ErrInvalidSquare, raw)
	}
	return pos, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
