package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"zoushogi/internal/engine"
	"zoushogi/internal/shogi"
)

func main() {
	sfen := flag.String("sfen", "", "position (default: initial)")
	perft := flag.Int("perft", 0, "run perft to this depth")
	divide := flag.Bool("divide", false, "split the perft count by first move")
	flag.Parse()

	pos := shogi.NewInitialPosition()
	if *sfen != "" {
		p, err := shogi.DecodeSFEN(*sfen)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		pos = p
	}

	fmt.Println("SFEN:", pos.EncodeSFEN())
	fmt.Printf("Hash: %016x\n", pos.Hash)
	fmt.Println("Pseudo legal moves:", len(pos.GeneratePseudoMoves()))
	legal := pos.LegalMoves()
	fmt.Println("Legal moves:", len(legal), shogi.FormatMoves(legal))
	fmt.Println("In check:", pos.InCheck(pos.SideToMove))
	fmt.Println("Eval:", engine.Evaluate(pos))

	if *divide && *perft > 0 {
		div := pos.Divide(*perft)
		keys := make([]string, 0, len(div))
		for k := range div {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%-7s %d\n", k, div[k])
		}
	}
	for d := 1; d <= *perft; d++ {
		start := time.Now()
		n := pos.Perft(d)
		fmt.Printf("perft(%d) = %d  (%v)\n", d, n, time.Since(start).Round(time.Millisecond))
	}
}
