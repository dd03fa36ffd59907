package rules

import "testing"

const startDiagram = "rnbqkbnr\npppppppp\n........\n........\n........\n........\nPPPPPPPP\nRNBQKBNR"

func TestStandardBoard(t *testing.T) {
	b := StandardBoard()
	if got := b.String(); got != startDiagram {
		t.Fatalf("StandardBoard:\n%s", got)
	}
	sq, ok := b.At(Position{Row: 0, Col: 4})
	if !ok || sq.Kind() != King || sq.Owner() != White || sq.Indicator() != 4 {
		t.Fatalf("e1 = %s", sq)
	}
}

func TestParseLayoutRoundTrip(t *testing.T) {
	b, err := ParseLayout(startDiagram)
	if err != nil {
		t.Fatalf("ParseLayout: %v", err)
	}
	if *b != *StandardBoard() {
		t.Fatalf("parsed board differs from StandardBoard")
	}
}

func TestParseLayoutMarksAdvancedPawns(t *testing.T) {
	b := MustParseLayout(`
		........
		........
		........
		...p....
		....P...
		........
		P.......
		........`)
	e4, _ := b.At(Position{Row: 3, Col: 4})
	a2, _ := b.At(Position{Row: 1, Col: 0})
	d5, _ := b.At(Position{Row: 4, Col: 3})
	if !e4.HasMoved() || a2.HasMoved() || !d5.HasMoved() || d5.Owner() != Black {
		t.Fatalf("moved flags: e4=%v a2=%v d5=%v", e4.HasMoved(), a2.HasMoved(), d5.HasMoved())
	}
}

func TestParseLayoutErrors(t *testing.T) {
	if _, err := ParseLayout("........\n........"); err == nil {
		t.Fatalf("short layout should fail")
	}
	bad := "........\n........\n........\n.......\n........\n........\n........\n........"
	if _, err := ParseLayout(bad); err == nil {
		t.Fatalf("narrow row should fail")
	}
}

func TestBoundsNeverPanic(t *testing.T) {
	b := NewBoard()
	for _, p := range []Position{{-1, 0}, {0, -1}, {8, 0}, {0, 8}} {
		if _, ok := b.At(p); ok {
			t.Fatalf("At(%v) should be rejected", p)
		}
		if b.Square(p) != nil {
			t.Fatalf("Square(%v) should be nil", p)
		}
		snap := b.Freeze()
		if snap.Kind(p) != Invalid || snap.IsEmpty(p) || snap.Owner(p) != None {
			t.Fatalf("snapshot bounds for %v", p)
		}
	}
}

func TestFreezeIsolation(t *testing.T) {
	b := StandardBoard()
	snap := b.Freeze()
	b.Square(Position{Row: 1, Col: 4}).Clear()
	if snap.Kind(Position{Row: 1, Col: 4}) != Pawn {
		t.Fatalf("snapshot observed a later board edit")
	}

	detached := snap.Board()
	detached.Square(Position{Row: 0, Col: 0}).Clear()
	if snap.Kind(Position{Row: 0, Col: 0}) != Rook {
		t.Fatalf("snapshot observed an edit to its detached copy")
	}
}

func TestSnapshotFind(t *testing.T) {
	snap := StandardBoard().Freeze()
	if p, ok := snap.Find(King, Black); !ok || p.Name() != "e8" {
		t.Fatalf("Find(black king) = %v %v", p, ok)
	}
	if got := len(snap.Occupied(White)); got != 16 {
		t.Fatalf("Occupied(White) = %d", got)
	}
}
