package rules

var knightOffsets = [8][2]int{
	{-2, 1}, {-1, 2}, {1, 2}, {2, 1},
	{2, -1}, {1, -2}, {-1, -2}, {-2, -1},
}

var kingOffsets = [8][2]int{
	{1, 1}, {1, 0}, {1, -1}, {0, 1},
	{0, -1}, {-1, 1}, {-1, 0}, {-1, -1},
}

func leap(snap Snapshot, sq Square, offsets [8][2]int, moves []Move) []Move {
	for _, d := range offsets {
		r, c := sq.pos.Row+d[0], sq.pos.Col+d[1]
		if ok, _ := canLand(snap, sq.owner, r, c); ok {
			moves = appendTo(moves, sq.pos, r, c)
		}
	}
	return moves
}

// kingSteps adds the one-square king moves. Quiet steps must not land on an attacked
// square; captures are added without that check.
func (g *Generator) kingSteps(snap Snapshot, sq Square, moves []Move) []Move {
	for _, d := range kingOffsets {
		r, c := sq.pos.Row+d[0], sq.pos.Col+d[1]
		ok, capture := canLand(snap, sq.owner, r, c)
		if !ok {
			continue
		}
		if !capture && g.threats.IsAttacked(snap, Position{Row: r, Col: c}, sq.owner, ScanKingStep) {
			continue
		}
		moves = appendTo(moves, sq.pos, r, c)
	}
	return moves
}
