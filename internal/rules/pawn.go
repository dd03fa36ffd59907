package rules

func (g *Generator) pawn(snap Snapshot, sq Square, moves []Move) []Move {
	from := sq.pos
	fwd := sq.owner.Forward()
	r := from.Row + fwd

	if snap.IsEmpty(Position{Row: r, Col: from.Col}) {
		moves = appendTo(moves, from, r, from.Col)
		if from.Row == pawnHomeRow(sq.owner) && snap.IsEmpty(Position{Row: r + fwd, Col: from.Col}) {
			moves = appendTo(moves, from, r+fwd, from.Col)
		}
	}

	for _, dc := range [2]int{-1, 1} {
		dst, ok := snap.at(r, from.Col+dc)
		if ok && !dst.IsEmpty() && dst.owner != sq.owner {
			moves = appendTo(moves, from, r, from.Col+dc)
		}
	}

	for _, dc := range [2]int{-1, 1} {
		if g.enPassantTarget(snap, sq, r, from.Col+dc) {
			moves = appendTo(moves, from, r, from.Col+dc)
		}
	}
	return moves
}

// enPassantTarget reports whether the forward diagonal (r, c) qualifies for the
// en-passant pass under the configured rule.
func (g *Generator) enPassantTarget(snap Snapshot, sq Square, r, c int) bool {
	dst, ok := snap.at(r, c)
	if !ok {
		return false
	}
	switch g.enPassant {
	case EnPassantStandard:
		if !dst.IsEmpty() {
			return false
		}
		beside, ok := snap.at(sq.pos.Row, c)
		return ok && beside.kind == Pawn && beside.owner == sq.owner.Opponent() && beside.vulnerable
	default:
		return !dst.IsEmpty() && dst.owner != sq.owner && dst.vulnerable
	}
}
