// Package boardpresenter converts board service results into DTOs and renders their
// text through the message catalog.
package boardpresenter

import (
	"fmt"
	"strings"

	"github.com/park285/cheese-board/internal/msgcat"
	"github.com/park285/cheese-board/pkg/boarddto"
)

type Formatter struct {
	cat *msgcat.Catalog
}

// NewFormatter accepts a nil catalog; every method then returns its plain fallback.
func NewFormatter(cat *msgcat.Catalog) *Formatter {
	return &Formatter{cat: cat}
}

func (f *Formatter) render(key string, data any, fallback string) string {
	if f == nil {
		return fallback
	}
	return f.cat.RenderOr(key, data, fallback)
}

// Message renders an arbitrary catalog key.
func (f *Formatter) Message(key string, data any, fallback string) string {
	return f.render(key, data, fallback)
}

func (f *Formatter) Describe(sel *boarddto.Selection) string {
	if sel == nil {
		return ""
	}
	if sel.Owner == "" || sel.Owner == "none" {
		return f.render("square.empty", map[string]any{"Name": sel.Square}, sel.Square)
	}
	return f.render("square.describe", map[string]any{
		"Name": sel.Square, "Piece": sel.Piece, "Owner": sel.Owner,
	}, sel.Square)
}

// Selection renders the description followed by one numbered line per candidate.
func (f *Formatter) Selection(sel *boarddto.Selection) string {
	if sel == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(f.Describe(sel))
	sb.WriteString("\n")
	sb.WriteString(f.render("move.header", map[string]any{"Count": len(sel.Moves), "Square": sel.Square},
		fmt.Sprintf("%d moves", len(sel.Moves))))
	for i, m := range sel.Moves {
		key := "move.line"
		if m.Stay {
			key = "move.stay"
		}
		sb.WriteString("\n  ")
		sb.WriteString(f.render(key, map[string]any{"Index": i, "Move": m.UCI}, m.UCI))
	}
	return sb.String()
}

func (f *Formatter) Threat(t *boarddto.ThreatResponse) string {
	if t == nil {
		return ""
	}
	if t.Attacked {
		return f.render("threat.attacked", map[string]any{"Square": t.Square, "Side": opponent(t.Defender)}, t.Square+" attacked")
	}
	return f.render("threat.safe", map[string]any{"Square": t.Square}, t.Square+" safe")
}

// Committed renders the move summary. turn is the side now to move.
func (f *Formatter) Committed(c *boarddto.CommitResponse) string {
	if c == nil {
		return ""
	}
	turn := ""
	if c.State != nil {
		turn = c.State.Turn
	}
	msg := f.render("session.committed", map[string]any{"Move": c.Move, "Turn": turn}, c.Move)
	if c.Check && c.State != nil {
		msg += "\n" + f.Check(c.State.Turn, kingSquare(c.State))
	}
	return msg
}

func (f *Formatter) Check(side, square string) string {
	return f.render("check.warning", map[string]any{"Side": side, "Square": square}, "check")
}

func (f *Formatter) History(h *boarddto.HistoryResponse) string {
	if h == nil || len(h.Moves) == 0 {
		return f.render("history.empty", nil, "")
	}
	lines := make([]string, 0, len(h.Moves))
	for _, m := range h.Moves {
		lines = append(lines, f.render("history.line", map[string]any{
			"Ply": m.Ply, "Move": m.Move, "Owner": m.Owner, "Piece": m.Piece, "Captured": m.Captured,
		}, m.Move))
	}
	return strings.Join(lines, "\n")
}

func opponent(side string) string {
	switch side {
	case "white":
		return "black"
	case "black":
		return "white"
	default:
		return side
	}
}

func kingSquare(st *boarddto.SessionState) string {
	for _, sq := range st.Squares {
		if sq.Piece == "king" && sq.Owner == st.Turn {
			return sq.Name
		}
	}
	return "??"
}
