package msgcat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderEmbedded(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Render("square.describe", map[string]any{"Name": "e2", "Piece": "pawn", "Owner": "white"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "e2: pawn (white)" {
		t.Fatalf("got %q", got)
	}
}

func TestRenderMissingKeyFails(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Render("square.describe", map[string]any{"Name": "e2"}); err == nil {
		t.Fatalf("expected missingkey error")
	}
	if _, err := c.Render("nope.nothing", nil); err == nil {
		t.Fatalf("expected not found error")
	}
	if got := c.RenderOr("nope.nothing", nil, "fallback"); got != "fallback" {
		t.Fatalf("RenderOr = %q", got)
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	write("a.yaml", "threat:\n  safe: \"{{.Square}} is safe\"\n")
	write("ignored.txt", "threat: {no: x}")

	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := c.RenderOr("threat.safe", map[string]any{"Square": "e1"}, "")
	if got != "e1 is safe" {
		t.Fatalf("override not applied: %q", got)
	}
	if !c.Has("move.line") {
		t.Fatalf("embedded keys must survive overrides")
	}

	write("b.yml", "threat:\n  safe: again\n")
	if _, err := New(dir); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate key error, got %v", err)
	}
}
