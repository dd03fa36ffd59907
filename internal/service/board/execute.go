package board

import "github.com/park285/cheese-board/internal/rules"

// Move kinds recorded in history.
const (
	KindNormal    = "normal"
	KindCapture   = "capture"
	KindCastle    = "castle"
	KindEnPassant = "en_passant"
	KindPromotion = "promotion"
)

// Outcome describes what Execute did to the board.
type Outcome struct {
	Move     rules.Move
	Piece    rules.PieceKind
	Owner    rules.Owner
	Captured rules.PieceKind
	Kind     string
	// Extra lists squares touched besides from and to: the castling rook's squares or
	// the pawn removed en passant.
	Extra []rules.Position
}

// Execute commits m to b. It does not check legality; callers select m from generated
// moves first. A diagonal pawn move onto an empty square removes the vulnerable pawn
// beside it. Castling relocates the rook. Stale en-passant flags are cleared before a
// double push sets a new one, and a pawn reaching the last row becomes a queen.
func Execute(b *rules.Board, m rules.Move) Outcome {
	from, to := m.From(), m.To()
	src, dst := b.Square(from), b.Square(to)
	if src == nil || dst == nil || m.IsStay() {
		return Outcome{Move: m, Kind: KindNormal, Captured: rules.Empty}
	}
	out := Outcome{Move: m, Piece: src.Kind(), Owner: src.Owner(), Captured: rules.Empty, Kind: KindNormal}
	if !dst.IsEmpty() {
		out.Captured = dst.Kind()
		out.Kind = KindCapture
	}

	switch out.Piece {
	case rules.Pawn:
		if to.Col != from.Col && dst.IsEmpty() {
			beside := b.Square(rules.Position{Row: from.Row, Col: to.Col})
			if beside != nil && beside.Kind() == rules.Pawn && beside.Owner() == out.Owner.Opponent() && beside.EnPassantVulnerable() {
				beside.Clear()
				beside.MarkMoved()
				out.Captured = rules.Pawn
				out.Kind = KindEnPassant
				out.Extra = append(out.Extra, beside.Position())
			}
		}
	case rules.King:
		if d := to.Col - from.Col; from.Row == to.Row && (d > 1 || d < -1) {
			out.Kind = KindCastle
			out.Extra = castleRook(b, from.Row, to.Col, d > 0)
		}
	}

	clearVulnerable(b)

	kind := out.Piece
	if kind == rules.Pawn && to.Row == lastRow(out.Owner) {
		kind = rules.Queen
		out.Kind = KindPromotion
	}
	dst.Place(kind, out.Owner)
	dst.MarkMoved()
	src.Clear()
	src.MarkMoved()

	if out.Piece == rules.Pawn && (to.Row-from.Row == 2 || from.Row-to.Row == 2) {
		dst.SetEnPassantVulnerable(true)
	}
	return out
}

func castleRook(b *rules.Board, row, kingTo int, kingside bool) []rules.Position {
	rookFrom := rules.Position{Row: row, Col: 0}
	rookTo := rules.Position{Row: row, Col: kingTo + 1}
	if kingside {
		rookFrom.Col = rules.Size - 1
		rookTo.Col = kingTo - 1
	}
	rook, target := b.Square(rookFrom), b.Square(rookTo)
	if rook == nil || target == nil || rook.Kind() != rules.Rook {
		return nil
	}
	target.Place(rules.Rook, rook.Owner())
	target.MarkMoved()
	rook.Clear()
	rook.MarkMoved()
	return []rules.Position{rookFrom, rookTo}
}

func clearVulnerable(b *rules.Board) {
	for r := 0; r < rules.Size; r++ {
		for c := 0; c < rules.Size; c++ {
			if sq := b.Square(rules.Position{Row: r, Col: c}); sq.EnPassantVulnerable() {
				sq.SetEnPassantVulnerable(false)
			}
		}
	}
}

func lastRow(o rules.Owner) int {
	if o == rules.Black {
		return 0
	}
	return rules.Size - 1
}
