// Command movegen prints the candidate moves and threat verdict for one square of a
// FEN position.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/dylhunn/dragontoothmg"

	"github.com/park285/cheese-board/internal/adapter/boardpresenter"
	"github.com/park285/cheese-board/internal/fenboard"
	"github.com/park285/cheese-board/internal/msgcat"
	"github.com/park285/cheese-board/internal/obslog"
	"github.com/park285/cheese-board/internal/rules"
	"github.com/park285/cheese-board/internal/service/board"
)

func main() {
	fen := flag.String("fen", fenboard.StartPos, "position in FEN, or \"startpos\"")
	square := flag.String("square", "", "square to inspect, e.g. e2 (empty lists every piece of the side to move)")
	rule := flag.String("rule", "legacy", "en passant rule: legacy or standard")
	compare := flag.Bool("compare", false, "also print the legal moves of a reference generator")
	messages := flag.String("messages", os.Getenv("MESSAGES_DIR"), "message override directory")
	flag.Parse()

	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger error: %v", err)
	}
	cat, err := msgcat.New(*messages)
	if err != nil {
		log.Fatalf("messages: %v", err)
	}
	epRule, err := rules.ParseEnPassantRule(strings.ToLower(*rule))
	if err != nil {
		log.Fatal(err)
	}
	b, turn, err := fenboard.FromFEN(*fen)
	if err != nil {
		log.Fatal(err)
	}

	gen := rules.NewGenerator(rules.WithSink(obslog.NewRuleSink(obslog.L())), rules.WithEnPassantRule(epRule))
	snap := b.Freeze()
	fmt.Println(snap.String())
	fmt.Println()

	var squares []rules.Position
	if strings.TrimSpace(*square) == "" {
		squares = snap.Occupied(turn)
	} else {
		pos, err := rules.ParsePosition(*square)
		if err != nil {
			log.Fatal(err)
		}
		squares = []rules.Position{pos}
	}

	f := boardpresenter.NewFormatter(cat)
	for _, pos := range squares {
		describe(f, gen, snap, turn, pos)
	}

	if king, ok := snap.Find(rules.King, turn); ok && gen.Threats().InCheck(snap, king) {
		fmt.Println(f.Check(turn.String(), king.Name()))
	}

	if *compare {
		printReference(*fen, squares)
	}
}

func describe(f *boardpresenter.Formatter, gen *rules.Generator, snap rules.Snapshot, turn rules.Owner, pos rules.Position) {
	sq, _ := snap.At(pos)
	defender := sq.Owner()
	if defender == rules.None {
		defender = turn
	}
	attacked := gen.Threats().IsAttacked(snap, pos, defender, rules.ScanStatic)

	sel := &board.Selection{
		Square:  pos,
		Piece:   sq.Kind(),
		Owner:   sq.Owner(),
		Moves:   gen.Generate(snap, pos),
		InCheck: attacked && sq.Owner() != rules.None,
	}
	fmt.Println(f.Selection(boardpresenter.ToDTOSelection(sel)))
	fmt.Println(f.Threat(boardpresenter.ToDTOThreat(&board.ThreatReport{Square: pos, Defender: defender, Attacked: attacked})))
	fmt.Println()
}

// printReference lists the fully legal moves a bitboard generator finds for the same
// squares. Its square numbering (a1=0 .. h8=63) matches row*8+col.
func printReference(fen string, squares []rules.Position) {
	if strings.EqualFold(strings.TrimSpace(fen), fenboard.StartPos) {
		fen = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	}
	ref := dragontoothmg.ParseFen(fen)
	want := make(map[uint8]bool, len(squares))
	for _, p := range squares {
		want[uint8(p.Row*rules.Size+p.Col)] = true
	}
	var out []string
	for _, m := range ref.GenerateLegalMoves() {
		if want[m.From()] {
			out = append(out, m.String())
		}
	}
	sort.Strings(out)
	fmt.Printf("reference legal moves (%d): %s\n", len(out), strings.Join(out, " "))
}
