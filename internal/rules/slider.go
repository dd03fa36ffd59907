package rules

var (
	straightDirs = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	diagonalDirs = [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
)

// slide walks each ray until it leaves the board or meets a piece. An opponent piece is
// included and ends the ray; a friendly one ends it without being included.
func slide(snap Snapshot, sq Square, dirs [4][2]int, moves []Move) []Move {
	for _, d := range dirs {
		r, c := sq.pos.Row+d[0], sq.pos.Col+d[1]
		for {
			ok, capture := canLand(snap, sq.owner, r, c)
			if !ok {
				break
			}
			moves = appendTo(moves, sq.pos, r, c)
			if capture {
				break
			}
			r += d[0]
			c += d[1]
		}
	}
	return moves
}
