package rules

// ScanMode selects how the defender's own pieces are treated on rays.
type ScanMode int

const (
	// ScanStatic asks whether the square is attacked as the board stands. Every friendly
	// piece blocks.
	ScanStatic ScanMode = iota
	// ScanKingStep asks whether the defender's king would be attacked after stepping onto
	// the square. The king itself is treated as vacated and does not block.
	ScanKingStep
)

func (m ScanMode) String() string {
	if m == ScanKingStep {
		return "king_step"
	}
	return "static"
}

// ThreatDetector answers attack queries by scanning outward from the defended square.
type ThreatDetector struct {
	sink Sink
}

func NewThreatDetector(sink Sink) *ThreatDetector {
	if sink == nil {
		sink = NopSink{}
	}
	return &ThreatDetector{sink: sink}
}

// IsAttacked reports whether any piece of defender's opponent reaches pos in one move.
// The occupant of pos is ignored; defender == None is never attacked.
func (t *ThreatDetector) IsAttacked(snap Snapshot, pos Position, defender Owner, mode ScanMode) bool {
	if defender == None || !pos.Valid() {
		return false
	}
	s := scan{t: t, snap: snap, pos: pos, defender: defender, attacker: defender.Opponent(), mode: mode}
	return s.pawn() || s.king() || s.knight() ||
		s.ray(diagonalDirs, Bishop, "diagonal") ||
		s.ray(straightDirs, Rook, "straight")
}

// InCheck reports whether the occupant of pos is currently attacked. Empty squares are
// never in check.
func (t *ThreatDetector) InCheck(snap Snapshot, pos Position) bool {
	sq, ok := snap.At(pos)
	if !ok || sq.IsEmpty() {
		return false
	}
	return t.IsAttacked(snap, pos, sq.owner, ScanStatic)
}

type scan struct {
	t        *ThreatDetector
	snap     Snapshot
	pos      Position
	defender Owner
	attacker Owner
	mode     ScanMode
}

func (s scan) found(at Square, pattern string) bool {
	s.t.sink.Emit(Event{
		Kind:     EventThreatFound,
		Square:   s.pos,
		Piece:    at.kind,
		Owner:    at.owner,
		Attacker: at.pos,
		Detail:   pattern + " " + s.mode.String(),
	})
	return true
}

func (s scan) enemy(r, c int, kind PieceKind) (Square, bool) {
	sq, ok := s.snap.at(r, c)
	return sq, ok && sq.owner == s.attacker && sq.kind == kind
}

// pawn checks the two squares an enemy pawn would capture from: one row ahead of the
// defender in the defender's forward direction.
func (s scan) pawn() bool {
	r := s.pos.Row + s.defender.Forward()
	for _, dc := range [2]int{-1, 1} {
		if sq, ok := s.enemy(r, s.pos.Col+dc, Pawn); ok {
			return s.found(sq, "pawn")
		}
	}
	return false
}

func (s scan) king() bool {
	for _, d := range kingOffsets {
		if sq, ok := s.enemy(s.pos.Row+d[0], s.pos.Col+d[1], King); ok {
			return s.found(sq, "king")
		}
	}
	return false
}

func (s scan) knight() bool {
	for _, d := range knightOffsets {
		if sq, ok := s.enemy(s.pos.Row+d[0], s.pos.Col+d[1], Knight); ok {
			return s.found(sq, "knight")
		}
	}
	return false
}

// ray walks each direction to the first piece. An enemy slider of the given kind or a
// queen attacks; any other enemy piece blocks. Friendly pieces block, except the
// defender's king in ScanKingStep mode.
func (s scan) ray(dirs [4][2]int, slider PieceKind, pattern string) bool {
	for _, d := range dirs {
		r, c := s.pos.Row+d[0], s.pos.Col+d[1]
		for {
			sq, ok := s.snap.at(r, c)
			if !ok {
				break
			}
			if sq.owner == s.attacker {
				if sq.kind == slider || sq.kind == Queen {
					return s.found(sq, pattern)
				}
				break
			}
			if !sq.IsEmpty() && !(s.mode == ScanKingStep && sq.owner == s.defender && sq.kind == King) {
				break
			}
			r += d[0]
			c += d[1]
		}
	}
	return false
}
