package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"lukechampine.com/frand"

	"zoushogi/internal/bridge"
	"zoushogi/internal/shogi"
)

// TestCase 一个局面及其全部合法着法，用于核对原生端的走法生成
type TestCase struct {
	SFEN      string   `json:"sfen"`
	Board     []int8   `json:"board"`
	SenteHand []int8   `json:"senteHand"`
	GoteHand  []int8   `json:"goteHand"`
	Turn      int      `json:"turn"`
	InCheck   bool     `json:"inCheck"`
	Moves     []uint32 `json:"moves"`
	MovesUSI  []string `json:"movesUsi"`
}

func newCase(pos *shogi.Position, legal []shogi.Move) TestCase {
	board, sente, gote, turn := bridge.Encode(pos)
	tc := TestCase{
		SFEN:      pos.EncodeSFEN(),
		Board:     board,
		SenteHand: sente,
		GoteHand:  gote,
		Turn:      turn,
		InCheck:   pos.InCheck(pos.SideToMove),
		Moves:     make([]uint32, len(legal)),
		MovesUSI:  make([]string, len(legal)),
	}
	for i, mv := range legal {
		tc.Moves[i] = uint32(mv)
		tc.MovesUSI[i] = mv.USI()
	}
	return tc
}

func main() {
	numGames := flag.Int("games", 10, "random games to sample")
	maxMoves := flag.Int("maxmoves", 300, "max plies per game")
	out := flag.String("out", "move_gen_test_data.json", "output file")
	flag.Parse()

	var testCases []TestCase
	for g := 0; g < *numGames; g++ {
		pos := shogi.NewInitialPosition()
		for ply := 0; ply < *maxMoves; ply++ {
			legal := pos.LegalMoves()
			testCases = append(testCases, newCase(pos, legal))
			if len(legal) == 0 {
				break
			}

			// 随机选一步
			if err := pos.ApplyMove(legal[frand.Intn(len(legal))]); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		}
	}

	data, err := json.MarshalIndent(testCases, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("Generated %d test cases from %d random games to %s\n", len(testCases), *numGames, *out)
}
