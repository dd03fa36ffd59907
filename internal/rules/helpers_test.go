package rules

import (
	"sort"
	"sync"
	"testing"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) count(kind EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func at(t *testing.T, name string) Position {
	t.Helper()
	p, err := ParsePosition(name)
	if err != nil {
		t.Fatalf("ParsePosition(%q): %v", name, err)
	}
	return p
}

// dests returns the sorted non-stay destination names, duplicates kept.
func dests(moves []Move) []string {
	var out []string
	for _, m := range moves {
		if !m.IsStay() {
			out = append(out, m.To().Name())
		}
	}
	sort.Strings(out)
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func assertDests(t *testing.T, moves []Move, want ...string) {
	t.Helper()
	sort.Strings(want)
	if got := dests(moves); !equalStrings(got, want) {
		t.Fatalf("destinations = %v, want %v", got, want)
	}
}

func generate(t *testing.T, b *Board, square string, opts ...Option) []Move {
	t.Helper()
	pos := at(t, square)
	moves := NewGenerator(opts...).Generate(b.Freeze(), pos)
	if len(moves) == 0 || !moves[0].IsStay() || moves[0].From() != pos {
		t.Fatalf("first move = %v, want stay on %s", moves, square)
	}
	return moves
}
