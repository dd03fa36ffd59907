package boardpresenter

import (
	"strings"

	"github.com/park285/cheese-board/internal/domain"
	"github.com/park285/cheese-board/internal/fenboard"
	"github.com/park285/cheese-board/internal/rules"
	svc "github.com/park285/cheese-board/internal/service/board"
	"github.com/park285/cheese-board/pkg/boarddto"
)

func ToDTOState(s *svc.Session, inCheck bool) *boarddto.SessionState {
	if s == nil {
		return nil
	}
	st := &boarddto.SessionState{
		ID:        s.ID,
		Turn:      s.Turn.String(),
		FEN:       fenboard.ToFEN(s.Board, s.Turn),
		Diagram:   strings.Split(s.Board.String(), "\n"),
		Moves:     append([]string{}, s.Moves...),
		InCheck:   inCheck,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	for r := 0; r < rules.Size; r++ {
		for c := 0; c < rules.Size; c++ {
			sq, _ := s.Board.At(rules.Position{Row: r, Col: c})
			if sq.IsEmpty() {
				continue
			}
			st.Squares = append(st.Squares, boarddto.Square{
				Name:      sq.Name(),
				Piece:     sq.Kind().String(),
				Owner:     sq.Owner().String(),
				Moved:     sq.HasMoved(),
				Indicator: sq.Indicator(),
			})
		}
	}
	return st
}

// ToDTOSelection leaves Description empty; Formatter.Describe fills it.
func ToDTOSelection(sel *svc.Selection) *boarddto.Selection {
	if sel == nil {
		return nil
	}
	out := &boarddto.Selection{
		Square:       sel.Square.Name(),
		Piece:        sel.Piece.String(),
		Owner:        sel.Owner.String(),
		Moves:        toDTOMoves(sel.Moves),
		Destinations: positionNames(sel.Destinations()),
		Indicators:   append([]int{}, sel.Indicators...),
		InCheck:      sel.InCheck,
	}
	return out
}

func toDTOMoves(moves []rules.Move) []boarddto.Move {
	out := make([]boarddto.Move, 0, len(moves))
	for _, m := range moves {
		out = append(out, boarddto.Move{From: m.From().Name(), To: m.To().Name(), UCI: m.String(), Stay: m.IsStay()})
	}
	return out
}

func positionNames(ps []rules.Position) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name())
	}
	return out
}

func ToDTOThreat(rep *svc.ThreatReport) *boarddto.ThreatResponse {
	if rep == nil {
		return nil
	}
	return &boarddto.ThreatResponse{Square: rep.Square.Name(), Defender: rep.Defender.String(), Attacked: rep.Attacked}
}

func ToDTOCommit(res *svc.CommitResult, inCheck bool) *boarddto.CommitResponse {
	if res == nil || res.Record == nil {
		return nil
	}
	return &boarddto.CommitResponse{
		State:    ToDTOState(res.Session, inCheck),
		Move:     res.Record.Move,
		Kind:     res.Outcome.Kind,
		Captured: res.Record.Captured,
		Check:    res.Check,
	}
}

func ToDTOHistory(sessionID string, recs []*domain.MoveRecord) *boarddto.HistoryResponse {
	out := &boarddto.HistoryResponse{SessionID: strings.TrimSpace(sessionID), Moves: make([]boarddto.HistoryEntry, 0, len(recs))}
	for _, r := range recs {
		if r == nil {
			continue
		}
		out.Moves = append(out.Moves, boarddto.HistoryEntry{
			Ply:      r.Ply,
			Move:     r.Move,
			Piece:    r.Piece,
			Owner:    r.Owner,
			Captured: r.Captured,
			Kind:     r.Kind,
			FEN:      r.FEN,
			PlayedAt: r.PlayedAt,
		})
	}
	return out
}

func ToDTOCandidates(turn rules.Owner, all map[rules.Position][]rules.Move) *boarddto.CandidatesResponse {
	out := &boarddto.CandidatesResponse{Turn: turn.String(), Moves: make(map[string][]string, len(all))}
	for pos, moves := range all {
		out.Moves[pos.Name()] = positionNames(rules.Destinations(moves))
	}
	return out
}
