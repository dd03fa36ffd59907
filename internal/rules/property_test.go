package rules

import (
	"math/rand"
	"testing"
)

func TestGenerateProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, rule := range []EnPassantRule{EnPassantLegacy, EnPassantStandard} {
		g := NewGenerator(WithEnPassantRule(rule))
		for i := 0; i < 300; i++ {
			b := randomBoard(rng, 0.3)
			if i%10 == 0 {
				b.Set(NewSquare(rng.Intn(Size), rng.Intn(Size), '*', 1, 0))
			}
			snap := b.Freeze()
			before := *snap.Board()

			for r := 0; r < Size; r++ {
				for c := 0; c < Size; c++ {
					pos := Position{Row: r, Col: c}
					checkMoves(t, g, snap, pos)
				}
			}
			if *snap.Board() != before {
				t.Fatalf("generation mutated the snapshot")
			}
		}
	}
}

func checkMoves(t *testing.T, g *Generator, snap Snapshot, pos Position) {
	t.Helper()
	moves := g.Generate(snap, pos)
	if len(moves) < 1 || len(moves) > MaxMoves {
		t.Fatalf("%s: %d moves\n%s", pos, len(moves), snap)
	}
	if !moves[0].IsStay() {
		t.Fatalf("%s: first move %s is not the stay move", pos, moves[0])
	}

	sq, _ := snap.At(pos)
	for _, m := range moves {
		if m.From() != pos {
			t.Fatalf("%s: move %s starts elsewhere", pos, m)
		}
		if !m.To().Valid() {
			t.Fatalf("%s: move %v leaves the board", pos, m)
		}
		if m.IsStay() {
			continue
		}
		dst, _ := snap.At(m.To())
		if !dst.IsEmpty() && dst.Owner() == sq.Owner() {
			t.Fatalf("%s: move %s lands on a friendly piece\n%s", pos, m, snap)
		}
		if sq.Kind() == King && dst.IsEmpty() && absInt(m.ToCol-m.FromCol) <= 1 &&
			g.Threats().IsAttacked(snap, m.To(), sq.Owner(), ScanKingStep) {
			t.Fatalf("%s: king steps onto attacked %s\n%s", pos, m.To(), snap)
		}
	}

	switch sq.Kind() {
	case Knight:
		checkLeaper(t, snap, sq, moves, knightOffsets)
	case Rook, Bishop, Queen:
		checkRays(t, snap, sq, moves)
	}
}

func checkLeaper(t *testing.T, snap Snapshot, sq Square, moves []Move, offsets [8][2]int) {
	t.Helper()
	allowed := map[Position]bool{}
	for _, d := range offsets {
		allowed[Position{Row: sq.Row() + d[0], Col: sq.Col() + d[1]}] = true
	}
	for _, m := range moves[1:] {
		if !allowed[m.To()] {
			t.Fatalf("%s: %s is not a leaper offset", sq.Name(), m)
		}
	}
}

// checkRays verifies no slider destination lies beyond the first occupied square of its ray.
func checkRays(t *testing.T, snap Snapshot, sq Square, moves []Move) {
	t.Helper()
	for _, m := range moves[1:] {
		dr, dc := sign(m.ToRow-m.FromRow), sign(m.ToCol-m.FromCol)
		for r, c := m.FromRow+dr, m.FromCol+dc; r != m.ToRow || c != m.ToCol; r, c = r+dr, c+dc {
			if !snap.IsEmpty(Position{Row: r, Col: c}) {
				t.Fatalf("%s: %s jumps over %s\n%s", sq.Name(), m, Position{Row: r, Col: c}, snap)
			}
		}
	}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
