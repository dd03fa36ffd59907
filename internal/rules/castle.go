package rules

const (
	kingHomeCol      = 4
	queensideRookCol = 0
	kingsideRookCol  = Size - 1
	queensideLanding = 2
	kingsideLanding  = 6
)

// castles appends the castling moves of an unmoved king on its home column. Each side
// needs an unmoved
// same-owner rook in the corner, an empty gap between king and rook, a king that is not
// attacked, and no attacked square on the king's path including the landing square.
func (g *Generator) castles(snap Snapshot, king Square, moves []Move) []Move {
	if king.moved || king.pos.Col != kingHomeCol {
		return moves
	}
	for _, side := range [2]struct{ rookCol, landing int }{
		{queensideRookCol, queensideLanding},
		{kingsideRookCol, kingsideLanding},
	} {
		if g.canCastle(snap, king, side.rookCol, side.landing) {
			moves = appendTo(moves, king.pos, king.pos.Row, side.landing)
		}
	}
	return moves
}

func (g *Generator) canCastle(snap Snapshot, king Square, rookCol, landing int) bool {
	row, kc := king.pos.Row, king.pos.Col
	if kc == landing || (kc < landing) != (kc < rookCol) {
		return false
	}

	rook, ok := snap.at(row, rookCol)
	if !ok || rook.kind != Rook || rook.owner != king.owner || rook.moved {
		return false
	}

	lo, hi := kc, rookCol
	if lo > hi {
		lo, hi = hi, lo
	}
	for c := lo + 1; c < hi; c++ {
		if !snap.IsEmpty(Position{Row: row, Col: c}) {
			return false
		}
	}

	if g.threats.IsAttacked(snap, king.pos, king.owner, ScanStatic) {
		return false
	}

	step := 1
	if landing < kc {
		step = -1
	}
	for c := kc + step; ; c += step {
		if g.threats.IsAttacked(snap, Position{Row: row, Col: c}, king.owner, ScanKingStep) {
			return false
		}
		if c == landing {
			break
		}
	}
	return true
}
