package rules

// EventKind classifies a diagnostic event.
type EventKind int

const (
	// EventUnknownPieceKind is emitted when dispatch meets Empty, Invalid or an ownerless piece.
	EventUnknownPieceKind EventKind = iota + 1
	// EventThreatFound traces the first attacker located by a threat scan.
	EventThreatFound
	// EventMoveOverflow reports a generated list longer than MaxMoves.
	EventMoveOverflow
)

func (k EventKind) String() string {
	switch k {
	case EventUnknownPieceKind:
		return "unknown_piece_kind"
	case EventThreatFound:
		return "threat_found"
	case EventMoveOverflow:
		return "move_overflow"
	default:
		return "unknown"
	}
}

// Event is a structured diagnostic. Attacker is only meaningful for EventThreatFound.
type Event struct {
	Kind     EventKind
	Square   Position
	Piece    PieceKind
	Owner    Owner
	Attacker Position
	Detail   string
}

// Sink receives diagnostics. Implementations must not block; the engine never waits on
// or inspects delivery.
type Sink interface {
	Emit(Event)
}

// NopSink drops every event.
type NopSink struct{}

func (NopSink) Emit(Event) {}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }
