package board

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/park285/cheese-board/internal/rules"
)

// Session is one physical board being played on.
type Session struct {
	ID        string
	Board     *rules.Board
	Turn      rules.Owner
	Moves     []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Ply is the number of committed moves.
func (s *Session) Ply() int { return len(s.Moves) }

type squarePayload struct {
	Kind       string `json:"kind"`
	Owner      int    `json:"owner"`
	Moved      bool   `json:"moved,omitempty"`
	Vulnerable bool   `json:"vulnerable,omitempty"`
	Indicator  int    `json:"indicator"`
}

type sessionPayload struct {
	ID        string          `json:"id"`
	Turn      int             `json:"turn"`
	Moves     []string        `json:"moves"`
	Squares   []squarePayload `json:"squares"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func encodeSession(s *Session) ([]byte, error) {
	if s == nil || s.Board == nil {
		return nil, fmt.Errorf("encode session: nil session or board")
	}
	p := sessionPayload{
		ID:        s.ID,
		Turn:      int(s.Turn),
		Moves:     s.Moves,
		Squares:   make([]squarePayload, 0, rules.Size*rules.Size),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	if p.Moves == nil {
		p.Moves = []string{}
	}
	for r := 0; r < rules.Size; r++ {
		for c := 0; c < rules.Size; c++ {
			sq, _ := s.Board.At(rules.Position{Row: r, Col: c})
			p.Squares = append(p.Squares, squarePayload{
				Kind:       string(rune(sq.Kind())),
				Owner:      int(sq.Owner()),
				Moved:      sq.HasMoved(),
				Vulnerable: sq.EnPassantVulnerable(),
				Indicator:  sq.Indicator(),
			})
		}
	}
	return json.Marshal(&p)
}

func decodeSession(raw []byte) (*Session, error) {
	var p sessionPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if len(p.Squares) != rules.Size*rules.Size {
		return nil, fmt.Errorf("decode session %s: %d squares", p.ID, len(p.Squares))
	}
	b := rules.NewBoard()
	for i, sp := range p.Squares {
		kind := ' '
		if sp.Kind != "" {
			kind = []rune(sp.Kind)[0]
		}
		sq := rules.NewSquare(i/rules.Size, i%rules.Size, kind, sp.Owner, sp.Indicator)
		if sp.Moved {
			sq.MarkMoved()
		}
		sq.SetEnPassantVulnerable(sp.Vulnerable)
		b.Set(sq)
	}
	return &Session{
		ID:        p.ID,
		Board:     b,
		Turn:      rules.NormalizeOwner(p.Turn),
		Moves:     p.Moves,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}, nil
}
