package board

import (
	"testing"

	"github.com/park285/cheese-board/internal/rules"
)

func pos(t *testing.T, name string) rules.Position {
	t.Helper()
	p, err := rules.ParsePosition(name)
	if err != nil {
		t.Fatalf("ParsePosition(%q): %v", name, err)
	}
	return p
}

func mv(t *testing.T, s string) rules.Move {
	t.Helper()
	m, err := rules.ParseMove(s)
	if err != nil {
		t.Fatalf("ParseMove(%q): %v", s, err)
	}
	return m
}

func square(t *testing.T, b *rules.Board, name string) rules.Square {
	t.Helper()
	sq, _ := b.At(pos(t, name))
	return sq
}

func TestExecuteCastleMovesRook(t *testing.T) {
	b := rules.MustParseLayout(`
		r...k..r
		........
		........
		........
		........
		........
		........
		R...K..R`)

	out := Execute(b, mv(t, "e1g1"))
	if out.Kind != KindCastle || len(out.Extra) != 2 {
		t.Fatalf("outcome = %+v", out)
	}
	if k := square(t, b, "g1"); k.Kind() != rules.King || !k.HasMoved() {
		t.Fatalf("g1 = %v", k)
	}
	if r := square(t, b, "f1"); r.Kind() != rules.Rook || r.Owner() != rules.White || !r.HasMoved() {
		t.Fatalf("f1 = %v", r)
	}
	if !square(t, b, "h1").IsEmpty() || !square(t, b, "e1").IsEmpty() {
		t.Fatalf("origin squares not cleared:\n%s", b)
	}

	Execute(b, mv(t, "e8c8"))
	if r := square(t, b, "d8"); r.Kind() != rules.Rook || r.Owner() != rules.Black {
		t.Fatalf("d8 = %v", r)
	}
	if !square(t, b, "a8").IsEmpty() {
		t.Fatalf("a8 not cleared")
	}
}

func TestExecuteEnPassant(t *testing.T) {
	b := rules.MustParseLayout(`
		....k...
		...p....
		........
		....P...
		........
		........
		........
		....K...`)

	Execute(b, mv(t, "d7d5"))
	if !square(t, b, "d5").EnPassantVulnerable() {
		t.Fatalf("double push did not set vulnerable")
	}

	out := Execute(b, mv(t, "e5d6"))
	if out.Kind != KindEnPassant || out.Captured != rules.Pawn {
		t.Fatalf("outcome = %+v", out)
	}
	if !square(t, b, "d5").IsEmpty() {
		t.Fatalf("passed pawn still on d5:\n%s", b)
	}
	if d6 := square(t, b, "d6"); d6.Kind() != rules.Pawn || d6.Owner() != rules.White {
		t.Fatalf("d6 = %v", d6)
	}
}

func TestExecuteDiagonalWithoutVulnerablePawn(t *testing.T) {
	b := rules.MustParseLayout(`
		....k...
		........
		........
		...pP...
		........
		........
		........
		....K...`)

	// d5 is not marked vulnerable, so nothing is removed.
	out := Execute(b, mv(t, "e5d6"))
	if out.Kind != KindNormal || out.Captured != rules.Empty {
		t.Fatalf("outcome = %+v", out)
	}
	if square(t, b, "d5").Kind() != rules.Pawn {
		t.Fatalf("d5 removed without en passant right")
	}
}

func TestExecuteClearsStaleVulnerable(t *testing.T) {
	b := rules.MustParseLayout(`
		....k...
		...p....
		........
		........
		........
		........
		P.......
		....K...`)

	Execute(b, mv(t, "d7d5"))
	Execute(b, mv(t, "a2a3"))
	if square(t, b, "d5").EnPassantVulnerable() {
		t.Fatalf("vulnerable flag survived an unrelated move")
	}
}

func TestExecutePromotionAndCapture(t *testing.T) {
	b := rules.MustParseLayout(`
		.n..k...
		P.......
		........
		........
		........
		........
		........
		....K...`)

	out := Execute(b, mv(t, "a7b8"))
	if out.Kind != KindPromotion || out.Captured != rules.Knight {
		t.Fatalf("outcome = %+v", out)
	}
	if q := square(t, b, "b8"); q.Kind() != rules.Queen || q.Owner() != rules.White {
		t.Fatalf("b8 = %v", q)
	}
}

func TestExecuteStayIsNoop(t *testing.T) {
	b := rules.StandardBoard()
	before := b.String()
	out := Execute(b, mv(t, "e2e2"))
	if out.Kind != KindNormal || b.String() != before {
		t.Fatalf("stay changed the board: %+v\n%s", out, b)
	}
	if square(t, b, "e2").HasMoved() {
		t.Fatalf("stay marked the pawn moved")
	}
}

func TestExecuteGeneratedCastlesRelocateRook(t *testing.T) {
	layout := `
		....k...
		........
		........
		........
		........
		........
		........
		R...K..R`
	gen := rules.NewGenerator()
	cases := []struct {
		move, rookFrom, rookTo string
	}{
		{"e1c1", "a1", "d1"},
		{"e1g1", "h1", "f1"},
	}
	for _, tc := range cases {
		t.Run(tc.move, func(t *testing.T) {
			b := rules.MustParseLayout(layout)
			m := mv(t, tc.move)
			if !rules.Contains(gen.Generate(b.Freeze(), m.From()), m.To()) {
				t.Fatalf("%s not generated", tc.move)
			}
			out := Execute(b, m)
			if out.Kind != KindCastle {
				t.Fatalf("kind = %s", out.Kind)
			}
			if r := square(t, b, tc.rookTo); r.Kind() != rules.Rook || r.Owner() != rules.White {
				t.Fatalf("%s = %v", tc.rookTo, r)
			}
			if !square(t, b, tc.rookFrom).IsEmpty() {
				t.Fatalf("%s not cleared:\n%s", tc.rookFrom, b)
			}
		})
	}
}

func TestExecuteOffCenterKingStepKeepsRook(t *testing.T) {
	b := rules.MustParseLayout(`
		....k...
		........
		........
		........
		........
		........
		........
		R..K...R`)
	moves := rules.NewGenerator().Generate(b.Freeze(), pos(t, "d1"))
	if rules.Contains(moves, pos(t, "g1")) {
		t.Fatalf("castle generated from d1")
	}
	out := Execute(b, mv(t, "d1c1"))
	if out.Kind != KindNormal || len(out.Extra) != 0 {
		t.Fatalf("outcome = %+v", out)
	}
	if r := square(t, b, "a1"); r.Kind() != rules.Rook {
		t.Fatalf("a1 = %v", r)
	}
	if k := square(t, b, "c1"); k.Kind() != rules.King {
		t.Fatalf("c1 = %v", k)
	}
}
