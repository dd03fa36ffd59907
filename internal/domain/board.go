package domain

import "time"

// MoveRecord is one committed move in a board session's history.
type MoveRecord struct {
	ID        int64
	SessionID string
	Ply       int
	Move      string
	Piece     string
	Owner     string
	Captured  string
	Kind      string
	FEN       string
	PlayedAt  time.Time
}
