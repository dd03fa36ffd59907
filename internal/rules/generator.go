package rules

import "fmt"

// EnPassantRule selects how the en-passant pass of pawn generation behaves.
type EnPassantRule int

const (
	// EnPassantLegacy appends a forward diagonal again when it holds a vulnerable opponent.
	// With a plain diagonal capture already listed, this yields a duplicate entry.
	EnPassantLegacy EnPassantRule = iota
	// EnPassantStandard requires an empty diagonal with a vulnerable opponent pawn beside
	// the mover on that side.
	EnPassantStandard
)

func (r EnPassantRule) String() string {
	if r == EnPassantStandard {
		return "standard"
	}
	return "legacy"
}

// ParseEnPassantRule accepts "legacy" and "standard"; empty input means legacy.
func ParseEnPassantRule(s string) (EnPassantRule, error) {
	switch s {
	case "", "legacy":
		return EnPassantLegacy, nil
	case "standard":
		return EnPassantStandard, nil
	default:
		return EnPassantLegacy, fmt.Errorf("unknown en passant rule %q", s)
	}
}

const defaultWorkerLimit = 8

// Generator enumerates candidate moves. It holds no board state and is safe for
// concurrent use.
type Generator struct {
	sink      Sink
	enPassant EnPassantRule
	threats   *ThreatDetector
	workers   int
}

type Option func(*Generator)

func WithSink(s Sink) Option {
	return func(g *Generator) {
		if s != nil {
			g.sink = s
		}
	}
}

func WithEnPassantRule(r EnPassantRule) Option {
	return func(g *Generator) { g.enPassant = r }
}

// WithThreats overrides the detector used for king-step and castling checks.
func WithThreats(t *ThreatDetector) Option {
	return func(g *Generator) { g.threats = t }
}

// WithWorkerLimit bounds the goroutines used by GenerateAll. Values below 1 are ignored.
func WithWorkerLimit(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.workers = n
		}
	}
}

func NewGenerator(opts ...Option) *Generator {
	g := &Generator{sink: NopSink{}, workers: defaultWorkerLimit}
	for _, opt := range opts {
		opt(g)
	}
	if g.threats == nil {
		g.threats = NewThreatDetector(g.sink)
	}
	return g
}

// Threats returns the detector the generator consults.
func (g *Generator) Threats() *ThreatDetector { return g.threats }

func (g *Generator) EnPassant() EnPassantRule { return g.enPassant }

// Generate lists the candidate moves of the piece at pos. Element 0 is always the stay
// move and the list never exceeds MaxMoves. An off-board pos returns nil.
func (g *Generator) Generate(snap Snapshot, pos Position) []Move {
	sq, ok := snap.At(pos)
	if !ok {
		return nil
	}
	moves := make([]Move, 1, MaxMoves)
	moves[0] = NewMove(pos, pos)

	if sq.owner == None || sq.kind == Empty || sq.kind == Invalid {
		g.sink.Emit(Event{
			Kind:   EventUnknownPieceKind,
			Square: pos,
			Piece:  sq.kind,
			Owner:  sq.owner,
			Detail: fmt.Sprintf("no rule for %q owned by %s", rune(sq.kind), sq.owner),
		})
		return moves
	}

	switch sq.kind {
	case Rook:
		moves = slide(snap, sq, straightDirs, moves)
	case Bishop:
		moves = slide(snap, sq, diagonalDirs, moves)
	case Queen:
		moves = slide(snap, sq, straightDirs, moves)
		moves = slide(snap, sq, diagonalDirs, moves)
	case Knight:
		moves = leap(snap, sq, knightOffsets, moves)
	case King:
		moves = g.kingSteps(snap, sq, moves)
		moves = g.castles(snap, sq, moves)
	case Pawn:
		moves = g.pawn(snap, sq, moves)
	}
	return g.bound(sq, moves)
}

// bound enforces MaxMoves. Overflow means a rule is broken, so it is reported before
// the list is cut.
func (g *Generator) bound(sq Square, moves []Move) []Move {
	if len(moves) <= MaxMoves {
		return moves
	}
	g.sink.Emit(Event{
		Kind:   EventMoveOverflow,
		Square: sq.pos,
		Piece:  sq.kind,
		Owner:  sq.owner,
		Detail: fmt.Sprintf("%d moves exceed the limit of %d", len(moves), MaxMoves),
	})
	return moves[:MaxMoves]
}

// canLand reports whether a piece of owner may end on (r, c): on-board and either empty
// or opponent-occupied. The second result reports a capture.
func canLand(snap Snapshot, owner Owner, r, c int) (ok, capture bool) {
	dst, on := snap.at(r, c)
	if !on {
		return false, false
	}
	if dst.IsEmpty() {
		return true, false
	}
	if dst.owner != owner {
		return true, true
	}
	return false, false
}

func appendTo(moves []Move, from Position, r, c int) []Move {
	return append(moves, Move{FromRow: from.Row, FromCol: from.Col, ToRow: r, ToCol: c})
}
