package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"zoushogi/internal/book"
	"zoushogi/internal/engine"
	"zoushogi/internal/kif"
	"zoushogi/internal/logx"
)

func main() {
	totalGames := flag.Int("games", 10, "number of games to play")
	parallel := flag.Int("parallel", 2, "games played at the same time")
	depthA := flag.Int("depth-a", 4, "player A search depth")
	depthB := flag.Int("depth-b", 3, "player B search depth")
	timeA := flag.Duration("time-a", 0, "player A time per move (0 = depth only)")
	timeB := flag.Duration("time-b", 0, "player B time per move (0 = depth only)")
	maxMoves := flag.Int("maxmoves", 300, "max plies per game")
	randomPlies := flag.Int("random-plies", 4, "random opening plies")
	ttBits := flag.Int("tt-bits", 18, "transposition table size per engine")
	bookPath := flag.String("book", "", "opening book JSON")
	kifDir := flag.String("kif", "", "write each game as KIF into this directory")
	bench := flag.Bool("bench", false, "run the fixed-position benchmark and exit")
	pprofAddr := flag.String("pprof", "", "pprof listen address, e.g. localhost:6060")
	level := flag.String("log-level", "info", "debug / info / warn / error")
	flag.Parse()

	log := logx.New(logx.Options{Level: *level, Pretty: true})

	if *pprofAddr != "" {
		go func() {
			log.Info().Str("addr", *pprofAddr).Msg("pprof listening")
			if err := http.ListenAndServe(*pprofAddr, nil); err != nil {
				log.Warn().Err(err).Msg("pprof failed")
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	engCfg := engine.DefaultConfig()
	engCfg.TTBits = *ttBits

	if *bench {
		if err := runBench(ctx, engCfg, *depthA); err != nil {
			log.Fatal().Err(err).Msg("bench")
		}
		return
	}

	var bk engine.Book
	if *bookPath != "" {
		b, err := book.LoadFile(*bookPath)
		if err != nil {
			log.Fatal().Err(err).Msg("load book")
		}
		bk = b
	}
	if *kifDir != "" {
		if err := os.MkdirAll(*kifDir, 0o755); err != nil {
			log.Fatal().Err(err).Msg("kif dir")
		}
	}

	playerA := PlayerConfig{
		Name: fmt.Sprintf("A (depth %d)", *depthA),
		Cfg:  engine.SearchConfig{MaxDepth: *depthA, TimeLimit: *timeA},
	}
	playerB := PlayerConfig{
		Name: fmt.Sprintf("B (depth %d)", *depthB),
		Cfg:  engine.SearchConfig{MaxDepth: *depthB, TimeLimit: *timeB},
	}

	results := make([]gameResult, *totalGames)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(*parallel, 1))
	for i := 0; i < *totalGames; i++ {
		i := i
		g.Go(func() error {
			sente, gote := playerA, playerB
			if i%2 == 1 {
				sente, gote = playerB, playerA
			}
			glog := log.With().Int("game", i+1).Logger()
			res, err := playGame(gctx, glog, sente, gote, engCfg, bk, *maxMoves, *randomPlies)
			if err != nil {
				return fmt.Errorf("game %d: %w", i+1, err)
			}
			results[i] = res
			glog.Info().Str("sente", sente.Name).Str("gote", gote.Name).
				Stringer("winner", res.Winner).Int("plies", res.Plies).Msg("finished")
			if *kifDir != "" {
				return writeKIF(filepath.Join(*kifDir, fmt.Sprintf("game_%03d.kif", i+1)), res.Record)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("selfplay")
	}

	var t tally
	for i, res := range results {
		t.add(res, i%2 == 0)
	}
	fmt.Printf("\n=== Final Score ===\n")
	fmt.Printf("%s: %d\n", playerA.Name, t.aWins)
	fmt.Printf("%s: %d\n", playerB.Name, t.bWins)
	fmt.Printf("Draws: %d\n", t.draws)
}

func writeKIF(path string, rec kif.Record) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return kif.Write(f, rec, kif.UTF8)
}
