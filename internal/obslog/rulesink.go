package obslog

import (
	"go.uber.org/zap"

	"github.com/park285/cheese-board/internal/rules"
)

// RuleSink forwards move-generation diagnostics to zap. Unknown pieces are warnings;
// threat traces are debug noise.
type RuleSink struct {
	log *zap.Logger
}

func NewRuleSink(l *zap.Logger) *RuleSink {
	if l == nil {
		l = L()
	}
	return &RuleSink{log: l.Named("rules")}
}

func (s *RuleSink) Emit(e rules.Event) {
	fields := []zap.Field{
		zap.String("square", e.Square.Name()),
		zap.String("piece", e.Piece.String()),
		zap.String("owner", e.Owner.String()),
	}
	switch e.Kind {
	case rules.EventUnknownPieceKind:
		s.log.Warn("unknown_piece_kind", append(fields, zap.String("detail", e.Detail))...)
	case rules.EventMoveOverflow:
		s.log.Error("move_overflow", append(fields, zap.String("detail", e.Detail))...)
	case rules.EventThreatFound:
		if ce := s.log.Check(zap.DebugLevel, "threat_found"); ce != nil {
			ce.Write(append(fields,
				zap.String("attacker", e.Attacker.Name()),
				zap.String("pattern", e.Detail),
			)...)
		}
	default:
		s.log.Info("rule_event", append(fields, zap.Stringer("kind", e.Kind))...)
	}
}
