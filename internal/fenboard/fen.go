// Package fenboard converts between FEN strings and rule-engine boards.
package fenboard

import (
	"errors"
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/cheese-board/internal/rules"
)

// StartPos is accepted by FromFEN as an alias for the initial position.
const StartPos = "startpos"

var ErrInvalidFEN = errors.New("invalid FEN")

var homeSquares = map[rules.PieceKind][]int{
	rules.Rook:   {0, 7},
	rules.Knight: {1, 6},
	rules.Bishop: {2, 5},
	rules.Queen:  {3},
	rules.King:   {4},
}

// FromFEN parses fen into a board and the side to move. Indicators are assigned
// row-major. Move history is inferred: kings and rooks from castling rights, pawns
// from their rank, other pieces from whether they stand on an initial square.
func FromFEN(fen string) (*rules.Board, rules.Owner, error) {
	fen = strings.TrimSpace(fen)
	var game *nchess.Game
	if fen == "" || strings.EqualFold(fen, StartPos) {
		game = nchess.NewGame()
	} else {
		opt, err := nchess.FEN(fen)
		if err != nil {
			return nil, rules.None, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
		}
		game = nchess.NewGame(opt)
	}
	pos := game.Position()

	b := rules.NewBoard()
	for sq, pc := range pos.Board().SquareMap() {
		p := Position(sq)
		kind := kindOf(pc.Type())
		owner := ownerOf(pc.Color())
		b.Put(p, kind, owner)
		if hasMoved(pos, p, kind, owner) {
			b.Square(p).MarkMoved()
		}
	}

	if ep := pos.EnPassantSquare(); ep != nchess.NoSquare {
		target := Position(ep)
		// the double-pushed pawn stands one row past the target square
		pawnRow := target.Row + 1
		if target.Row == 5 {
			pawnRow = target.Row - 1
		}
		if sq := b.Square(rules.Position{Row: pawnRow, Col: target.Col}); sq != nil && sq.Kind() == rules.Pawn {
			sq.SetEnPassantVulnerable(true)
		}
	}

	turn := rules.White
	if pos.Turn() == nchess.Black {
		turn = rules.Black
	}
	return b, turn, nil
}

func hasMoved(pos *nchess.Position, p rules.Position, kind rules.PieceKind, owner rules.Owner) bool {
	backRow := 0
	color := nchess.White
	if owner == rules.Black {
		backRow = 7
		color = nchess.Black
	}
	switch kind {
	case rules.Pawn:
		pawnRow := 1
		if owner == rules.Black {
			pawnRow = 6
		}
		return p.Row != pawnRow
	case rules.King:
		if p.Row != backRow || p.Col != 4 {
			return true
		}
		rights := pos.CastleRights()
		return !rights.CanCastle(color, nchess.KingSide) && !rights.CanCastle(color, nchess.QueenSide)
	case rules.Rook:
		rights := pos.CastleRights()
		switch {
		case p.Row == backRow && p.Col == 0:
			return !rights.CanCastle(color, nchess.QueenSide)
		case p.Row == backRow && p.Col == 7:
			return !rights.CanCastle(color, nchess.KingSide)
		}
		return true
	}
	if p.Row != backRow {
		return true
	}
	for _, c := range homeSquares[kind] {
		if c == p.Col {
			return false
		}
	}
	return true
}

// Position converts a library square to board coordinates.
func Position(sq nchess.Square) rules.Position {
	return rules.Position{Row: int(sq.Rank()), Col: int(sq.File())}
}

// SquareName returns the algebraic name through the chess library's own square type.
func SquareName(p rules.Position) string {
	if !p.Valid() {
		return ""
	}
	return nchess.NewSquare(nchess.File(p.Col), nchess.Rank(p.Row)).String()
}

func kindOf(t nchess.PieceType) rules.PieceKind {
	switch t {
	case nchess.King:
		return rules.King
	case nchess.Queen:
		return rules.Queen
	case nchess.Rook:
		return rules.Rook
	case nchess.Bishop:
		return rules.Bishop
	case nchess.Knight:
		return rules.Knight
	case nchess.Pawn:
		return rules.Pawn
	default:
		return rules.Invalid
	}
}

func ownerOf(c nchess.Color) rules.Owner {
	switch c {
	case nchess.White:
		return rules.White
	case nchess.Black:
		return rules.Black
	default:
		return rules.None
	}
}

// ToFEN renders the board as FEN. Castling rights come from the unmoved king and
// rook flags, the en-passant target from a vulnerable pawn. Clocks are fixed at "0 1".
func ToFEN(b *rules.Board, turn rules.Owner) string {
	snap := b.Freeze()
	var sb strings.Builder
	for r := rules.Size - 1; r >= 0; r-- {
		gap := 0
		for c := 0; c < rules.Size; c++ {
			sq, _ := snap.At(rules.Position{Row: r, Col: c})
			if sq.IsEmpty() || sq.Kind() == rules.Invalid {
				gap++
				continue
			}
			if gap > 0 {
				sb.WriteByte(byte('0' + gap))
				gap = 0
			}
			sb.WriteByte(sq.Symbol())
		}
		if gap > 0 {
			sb.WriteByte(byte('0' + gap))
		}
		if r > 0 {
			sb.WriteByte('/')
		}
	}

	side := "w"
	if turn == rules.Black {
		side = "b"
	}
	return fmt.Sprintf("%s %s %s %s 0 1", sb.String(), side, castling(snap), enPassant(snap, turn))
}

func castling(snap rules.Snapshot) string {
	var sb strings.Builder
	for _, side := range []struct {
		owner rules.Owner
		row   int
		k, q  byte
	}{
		{rules.White, 0, 'K', 'Q'},
		{rules.Black, 7, 'k', 'q'},
	} {
		if !unmoved(snap, side.row, 4, rules.King, side.owner) {
			continue
		}
		if unmoved(snap, side.row, 7, rules.Rook, side.owner) {
			sb.WriteByte(side.k)
		}
		if unmoved(snap, side.row, 0, rules.Rook, side.owner) {
			sb.WriteByte(side.q)
		}
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

func unmoved(snap rules.Snapshot, row, col int, kind rules.PieceKind, owner rules.Owner) bool {
	sq, ok := snap.At(rules.Position{Row: row, Col: col})
	return ok && sq.Kind() == kind && sq.Owner() == owner && !sq.HasMoved()
}

// enPassant finds the pawn of the side not to move that just double-pushed.
func enPassant(snap rules.Snapshot, turn rules.Owner) string {
	mover := turn.Opponent()
	row := 3
	if mover == rules.Black {
		row = 4
	}
	for c := 0; c < rules.Size; c++ {
		sq, _ := snap.At(rules.Position{Row: row, Col: c})
		if sq.Kind() == rules.Pawn && sq.Owner() == mover && sq.EnPassantVulnerable() {
			return rules.Position{Row: row - mover.Forward(), Col: c}.Name()
		}
	}
	return "-"
}
