package rules

import (
	"fmt"
	"strings"
)

// Board is the mutable 8x8 grid used during setup and by move execution.
// Rule evaluation never reads a Board directly; it reads a Snapshot.
type Board struct {
	squares [Size][Size]Square
}

// NewBoard returns a board of empty squares with row-major indicator addresses.
func NewBoard() *Board {
	b := &Board{}
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			b.squares[r][c] = emptySquare(r, c)
		}
	}
	return b
}

var backRank = [Size]PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// StandardBoard returns the initial array. Row 0 is White's back rank.
func StandardBoard() *Board {
	b := NewBoard()
	for c := 0; c < Size; c++ {
		b.squares[0][c].Place(backRank[c], White)
		b.squares[1][c].Place(Pawn, White)
		b.squares[6][c].Place(Pawn, Black)
		b.squares[7][c].Place(backRank[c], Black)
	}
	return b
}

// At returns a copy of the square at pos.
func (b *Board) At(pos Position) (Square, bool) {
	if b == nil || !pos.Valid() {
		return Square{}, false
	}
	return b.squares[pos.Row][pos.Col], true
}

// Square returns a pointer for in-place edits, or nil when pos is off the board.
func (b *Board) Square(pos Position) *Square {
	if b == nil || !pos.Valid() {
		return nil
	}
	return &b.squares[pos.Row][pos.Col]
}

// Set stores sq at its own position. Squares with invalid coordinates are ignored.
func (b *Board) Set(sq Square) bool {
	if b == nil || !sq.pos.Valid() {
		return false
	}
	b.squares[sq.pos.Row][sq.pos.Col] = sq
	return true
}

// Put places a piece at pos, leaving history flags untouched.
func (b *Board) Put(pos Position, kind PieceKind, owner Owner) bool {
	sq := b.Square(pos)
	if sq == nil {
		return false
	}
	sq.Place(kind, owner)
	return true
}

// Clone returns an independent copy.
func (b *Board) Clone() *Board {
	if b == nil {
		return NewBoard()
	}
	cp := *b
	return &cp
}

// Freeze copies the board once into an immutable Snapshot.
func (b *Board) Freeze() Snapshot {
	return Snapshot{b: b.Clone()}
}

// Find returns the position of the first square holding kind for owner.
func (b *Board) Find(kind PieceKind, owner Owner) (Position, bool) {
	return b.Freeze().Find(kind, owner)
}

// String renders the board with row 7 on top.
func (b *Board) String() string {
	if b == nil {
		return ""
	}
	var sb strings.Builder
	for r := Size - 1; r >= 0; r-- {
		for c := 0; c < Size; c++ {
			sb.WriteByte(b.squares[r][c].Symbol())
		}
		if r > 0 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// ParseLayout reads an 8-line diagram, top line = row 7. Upper case letters are White,
// lower case Black, '.' an empty square, and any other symbol an Invalid piece owned
// by White. Whitespace inside a line is ignored. Pawns off their home row are marked
// as moved.
func ParseLayout(text string) (*Board, error) {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.Join(strings.Fields(l), "")
		if l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) != Size {
		return nil, fmt.Errorf("layout: expected %d rows, got %d", Size, len(lines))
	}
	b := NewBoard()
	for i, line := range lines {
		row := Size - 1 - i
		if len(line) != Size {
			return nil, fmt.Errorf("layout: row %d has %d columns", row+1, len(line))
		}
		for col := 0; col < Size; col++ {
			ch := rune(line[col])
			if ch == '.' {
				continue
			}
			owner := White
			if ch >= 'a' && ch <= 'z' {
				owner = Black
			}
			sq := &b.squares[row][col]
			sq.SetPieceKind(ch)
			sq.SetOwner(int(owner))
			if sq.kind == Pawn && row != pawnHomeRow(owner) {
				sq.MarkMoved()
			}
		}
	}
	return b, nil
}

// MustParseLayout is ParseLayout for fixtures known to be well formed.
func MustParseLayout(text string) *Board {
	b, err := ParseLayout(text)
	if err != nil {
		panic(err)
	}
	return b
}

func pawnHomeRow(o Owner) int {
	if o == Black {
		return 6
	}
	return 1
}

// Snapshot is a read-only view of a board at one instant. It is safe to share between
// goroutines; nothing can mutate it after Freeze.
type Snapshot struct {
	b *Board
}

func (s Snapshot) at(row, col int) (Square, bool) {
	if s.b == nil || !InBounds(row, col) {
		return Square{}, false
	}
	return s.b.squares[row][col], true
}

// At returns the square at pos and whether pos is on the board.
func (s Snapshot) At(pos Position) (Square, bool) { return s.at(pos.Row, pos.Col) }

// Kind returns the piece kind at pos, or Invalid when pos is off the board.
func (s Snapshot) Kind(pos Position) PieceKind {
	sq, ok := s.At(pos)
	if !ok {
		return Invalid
	}
	return sq.kind
}

func (s Snapshot) Owner(pos Position) Owner {
	sq, _ := s.At(pos)
	return sq.owner
}

func (s Snapshot) IsEmpty(pos Position) bool {
	sq, ok := s.At(pos)
	return ok && sq.IsEmpty()
}

// Board returns a detached mutable copy of the snapshot.
func (s Snapshot) Board() *Board {
	if s.b == nil {
		return NewBoard()
	}
	return s.b.Clone()
}

// Find returns the position of the first square holding kind for owner.
func (s Snapshot) Find(kind PieceKind, owner Owner) (Position, bool) {
	if s.b == nil {
		return Position{}, false
	}
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			sq := s.b.squares[r][c]
			if sq.kind == kind && sq.owner == owner {
				return sq.pos, true
			}
		}
	}
	return Position{}, false
}

// Occupied lists the positions holding a piece of owner, row-major.
func (s Snapshot) Occupied(owner Owner) []Position {
	if s.b == nil {
		return nil
	}
	var out []Position
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			sq := s.b.squares[r][c]
			if !sq.IsEmpty() && sq.owner == owner {
				out = append(out, sq.pos)
			}
		}
	}
	return out
}

func (s Snapshot) String() string { return s.b.String() }
