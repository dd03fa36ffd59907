package rules

import "fmt"

// MaxMoves bounds the candidate list for any single square: a centralised queen reaches
// 27 squares, plus the stay move.
const MaxMoves = 28

// Move is a candidate relocation. It carries no piece information.
type Move struct {
	FromRow int `json:"fromRow"`
	FromCol int `json:"fromCol"`
	ToRow   int `json:"toRow"`
	ToCol   int `json:"toCol"`
}

func NewMove(from, to Position) Move {
	return Move{FromRow: from.Row, FromCol: from.Col, ToRow: to.Row, ToCol: to.Col}
}

func (m Move) From() Position { return Position{Row: m.FromRow, Col: m.FromCol} }
func (m Move) To() Position   { return Position{Row: m.ToRow, Col: m.ToCol} }

// IsStay reports the deselect sentinel that heads every generated list.
func (m Move) IsStay() bool { return m.FromRow == m.ToRow && m.FromCol == m.ToCol }

// String returns coordinate notation, e.g. "e2e4".
func (m Move) String() string { return m.From().Name() + m.To().Name() }

// ParseMove reads coordinate notation. A trailing promotion letter is ignored.
func ParseMove(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return Move{}, fmt.Errorf("invalid move %q", s)
	}
	from, err := ParsePosition(s[:2])
	if err != nil {
		return Move{}, err
	}
	to, err := ParsePosition(s[2:4])
	if err != nil {
		return Move{}, err
	}
	return NewMove(from, to), nil
}

// Contains reports whether moves holds a move to the given destination.
func Contains(moves []Move, to Position) bool {
	for _, m := range moves {
		if m.To() == to {
			return true
		}
	}
	return false
}

// Destinations returns the distinct non-stay destinations in generation order.
func Destinations(moves []Move) []Position {
	out := make([]Position, 0, len(moves))
	seen := make(map[Position]struct{}, len(moves))
	for _, m := range moves {
		if m.IsStay() {
			continue
		}
		to := m.To()
		if _, dup := seen[to]; dup {
			continue
		}
		seen[to] = struct{}{}
		out = append(out, to)
	}
	return out
}
