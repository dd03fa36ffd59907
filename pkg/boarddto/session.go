package boarddto

import "time"

type Square struct {
	Name      string `json:"name"`
	Piece     string `json:"piece,omitempty"`
	Owner     string `json:"owner,omitempty"`
	Moved     bool   `json:"moved,omitempty"`
	Indicator int    `json:"indicator"`
}

type SessionState struct {
	ID        string    `json:"id"`
	Turn      string    `json:"turn"`
	FEN       string    `json:"fen"`
	Diagram   []string  `json:"diagram"`
	Moves     []string  `json:"moves"`
	Squares   []Square  `json:"squares,omitempty"`
	InCheck   bool      `json:"in_check"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateSessionRequest struct {
	FEN string `json:"fen"`
}
