package rules

import (
	"fmt"
	"strings"
)

// Size is the board edge length.
const Size = 8

// PieceKind is the canonical single-symbol piece identifier.
type PieceKind byte

const (
	Rook    PieceKind = 'R'
	Knight  PieceKind = 'N'
	Bishop  PieceKind = 'B'
	Queen   PieceKind = 'Q'
	King    PieceKind = 'K'
	Pawn    PieceKind = 'P'
	Empty   PieceKind = ' '
	Invalid PieceKind = '-'
)

// NormalizeKind maps any input symbol to a canonical kind. Lower case is accepted;
// anything outside the canonical set becomes Invalid.
func NormalizeKind(r rune) PieceKind {
	if r >= 'a' && r <= 'z' {
		r = r - 'a' + 'A'
	}
	switch PieceKind(r) {
	case Rook, Knight, Bishop, Queen, King, Pawn, Empty:
		return PieceKind(r)
	default:
		return Invalid
	}
}

func (k PieceKind) String() string {
	switch k {
	case Rook:
		return "rook"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Queen:
		return "queen"
	case King:
		return "king"
	case Pawn:
		return "pawn"
	case Empty:
		return "empty"
	default:
		return "invalid"
	}
}

// Owner is the side a piece belongs to. The numeric value doubles as the pawn direction.
type Owner int8

const (
	None  Owner = 0
	White Owner = 1
	Black Owner = -1
)

// NormalizeOwner clamps out-of-range values to the nearest side.
func NormalizeOwner(v int) Owner {
	switch {
	case v > 0:
		return White
	case v < 0:
		return Black
	default:
		return None
	}
}

func (o Owner) Opponent() Owner { return -o }

// Forward is the row delta of a pawn push for this side.
func (o Owner) Forward() int { return int(o) }

func (o Owner) String() string {
	switch o {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "none"
	}
}

// Position addresses a square by row (rank index) and column (file index).
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func InBounds(row, col int) bool {
	return row >= 0 && row < Size && col >= 0 && col < Size
}

func (p Position) Valid() bool { return InBounds(p.Row, p.Col) }

// Name returns the algebraic name, e.g. "e2". Invalid positions yield "??".
func (p Position) Name() string {
	if !p.Valid() {
		return "??"
	}
	return string([]byte{byte('a' + p.Col), byte('1' + p.Row)})
}

func (p Position) String() string { return p.Name() }

// ParsePosition reads an algebraic square name such as "e2" or "H8".
func ParsePosition(s string) (Position, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 {
		return Position{}, fmt.Errorf("invalid square %q", s)
	}
	col := int(s[0]) - 'a'
	row := int(s[1]) - '1'
	if !InBounds(row, col) {
		return Position{}, fmt.Errorf("invalid square %q", s)
	}
	return Position{Row: row, Col: col}, nil
}

// Square is one cell of the board together with its occupant state.
type Square struct {
	pos        Position
	kind       PieceKind
	owner      Owner
	moved      bool
	vulnerable bool
	indicator  int
}

// NewSquare builds a square. kind and owner are normalised; the position is fixed for
// the lifetime of the square.
func NewSquare(row, col int, kind rune, owner int, indicator int) Square {
	sq := Square{pos: Position{Row: row, Col: col}, indicator: indicator}
	sq.SetPieceKind(kind)
	sq.SetOwner(owner)
	return sq
}

func emptySquare(row, col int) Square {
	return Square{pos: Position{Row: row, Col: col}, kind: Empty, indicator: row*Size + col}
}

func (s Square) Position() Position        { return s.pos }
func (s Square) Row() int                  { return s.pos.Row }
func (s Square) Col() int                  { return s.pos.Col }
func (s Square) Name() string              { return s.pos.Name() }
func (s Square) Kind() PieceKind           { return s.kind }
func (s Square) Owner() Owner              { return s.owner }
func (s Square) HasMoved() bool            { return s.moved }
func (s Square) EnPassantVulnerable() bool { return s.vulnerable }

// Indicator is the opaque hardware address carried for the indicator collaborator.
func (s Square) Indicator() int { return s.indicator }

// IsEmpty reports whether the square holds no piece and no owner.
func (s Square) IsEmpty() bool { return s.kind == Empty && s.owner == None }

func (s *Square) SetPieceKind(kind rune) { s.kind = NormalizeKind(kind) }

func (s *Square) SetOwner(owner int) { s.owner = NormalizeOwner(owner) }

// MarkMoved records that a piece departed (or arrived at) this square. It never resets.
func (s *Square) MarkMoved() { s.moved = true }

func (s *Square) SetEnPassantVulnerable(v bool) { s.vulnerable = v }

func (s *Square) SetIndicator(indicator int) { s.indicator = indicator }

// Place puts a piece on the square, updating kind and owner together.
func (s *Square) Place(kind PieceKind, owner Owner) {
	s.kind = NormalizeKind(rune(kind))
	s.owner = NormalizeOwner(int(owner))
	if s.kind == Empty {
		s.owner = None
	}
}

// Clear empties the square. The moved flag is kept.
func (s *Square) Clear() {
	s.kind = Empty
	s.owner = None
	s.vulnerable = false
}

// Symbol returns the diagram letter: upper case for White, lower case for Black.
func (s Square) Symbol() byte {
	switch {
	case s.IsEmpty():
		return '.'
	case s.kind == Invalid:
		return '?'
	case s.owner == Black:
		return byte(s.kind) + 'a' - 'A'
	default:
		return byte(s.kind)
	}
}

func (s Square) String() string {
	return fmt.Sprintf("%s %s %s %d %d", s.Name(), s.kind, s.owner, s.pos.Row, s.pos.Col)
}
