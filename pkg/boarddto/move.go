package boarddto

import "time"

type Move struct {
	From string `json:"from"`
	To   string `json:"to"`
	UCI  string `json:"uci"`
	Stay bool   `json:"stay,omitempty"`
}

type Selection struct {
	Square       string   `json:"square"`
	Piece        string   `json:"piece"`
	Owner        string   `json:"owner"`
	Moves        []Move   `json:"moves"`
	Destinations []string `json:"destinations"`
	Indicators   []int    `json:"indicators"`
	InCheck      bool     `json:"in_check"`
	Description  string   `json:"description,omitempty"`
}

type CommitRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type CommitResponse struct {
	State    *SessionState `json:"state"`
	Move     string        `json:"move"`
	Kind     string        `json:"kind"`
	Captured string        `json:"captured,omitempty"`
	Check    bool          `json:"check"`
	Message  string        `json:"message,omitempty"`
}

type ThreatResponse struct {
	Square   string `json:"square"`
	Defender string `json:"defender"`
	Attacked bool   `json:"attacked"`
	Message  string `json:"message,omitempty"`
}

type HistoryEntry struct {
	Ply      int       `json:"ply"`
	Move     string    `json:"move"`
	Piece    string    `json:"piece"`
	Owner    string    `json:"owner"`
	Captured string    `json:"captured,omitempty"`
	Kind     string    `json:"kind"`
	FEN      string    `json:"fen"`
	PlayedAt time.Time `json:"played_at"`
}

type HistoryResponse struct {
	SessionID string         `json:"session_id"`
	Moves     []HistoryEntry `json:"moves"`
}

type CandidatesResponse struct {
	Turn  string              `json:"turn"`
	Moves map[string][]string `json:"moves"`
}
