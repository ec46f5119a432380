package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"lukechampine.com/frand"

	"zoushogi/internal/engine"
	"zoushogi/internal/kif"
	"zoushogi/internal/shogi"
)

type PlayerConfig struct {
	Name string
	Cfg  engine.SearchConfig
}

type gameResult struct {
	Winner shogi.Side // NoSide 为和棋（超出手数）
	Record kif.Record
	Plies  int
}

// playGame 下一局。每方各用一个 Engine，置换表互不干扰。
// 开局前 randomPlies 手随机走，让各局分开。
func playGame(ctx context.Context, log zerolog.Logger, sente, gote PlayerConfig, engCfg engine.Config, bk engine.Book, maxMoves, randomPlies int) (gameResult, error) {
	pos := shogi.NewInitialPosition()
	engines := [2]*engine.Engine{engine.NewEngine(engCfg), engine.NewEngine(engCfg)}
	for _, e := range engines {
		e.SetBook(bk)
	}
	players := [2]PlayerConfig{sente, gote}
	res := gameResult{Winner: shogi.NoSide}

	for ply := 0; ply < maxMoves && !pos.GameOver; ply++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		var mv shogi.Move
		if ply < randomPlies {
			legal := pos.LegalMoves()
			mv = legal[frand.Intn(len(legal))]
		} else {
			side := pos.SideToMove
			sr := engines[side].Search(ctx, pos, players[side].Cfg)
			if sr.BestMove == shogi.NoMove {
				break
			}
			mv = sr.BestMove
			log.Debug().
				Int("ply", ply+1).
				Str("move", mv.USI()).
				Int("score", sr.Score).
				Int("depth", sr.Depth).
				Int64("nodes", sr.Nodes).
				Msg("move")
		}
		if err := pos.ApplyMove(mv); err != nil {
			return res, fmt.Errorf("ply %d: %w", ply+1, err)
		}
	}

	res.Plies = pos.MoveCount
	res.Record = kif.Record{
		Sente: sente.Name,
		Gote:  gote.Name,
		Moves: pos.MoveHistory(),
	}
	if pos.GameOver && !pos.IsDraw() {
		res.Winner = pos.Winner()
		res.Record.Result = "詰み"
	} else {
		res.Record.Result = "持将棋"
	}
	return res, nil
}

// tally 以 A 方视角统计胜负和
type tally struct {
	aWins, bWins, draws int
}

func (t *tally) add(res gameResult, aIsSente bool) {
	switch {
	case res.Winner == shogi.NoSide:
		t.draws++
	case (res.Winner == shogi.Sente) == aIsSente:
		t.aWins++
	default:
		t.bWins++
	}
}

var benchPositions = []string{
	"lnsgkgsnl/1r2e2b1/ppppppppp/9/9/9/PPPPPPPPP/1B2E2R1/LNSGKGSNL b - 1",
	"ln1gkg1nl/1r1se1sb1/p1pppp1pp/1p4p2/9/2P4P1/PP1PPPP1P/1BS1E1SR1/LN1GKG1NL b - 11",
	"l2gk2nl/1r1se1g2/p1nppp1pp/2p3p2/1p5P1/2PP5/PPS1PPP1P/2G1E1SR1/LN2KG1NL b Bsb 23",
}

// runBench 对固定局面各搜 depth 层，统计节点数和 NPS。
func runBench(ctx context.Context, cfg engine.Config, depth int) error {
	e := engine.NewEngine(cfg)
	var total int64
	start := time.Now()
	for _, sfen := range benchPositions {
		pos, err := shogi.DecodeSFEN(sfen)
		if err != nil {
			return err
		}
		e.Reset()
		t0 := time.Now()
		res := e.Search(ctx, pos, engine.SearchConfig{MaxDepth: depth})
		el := time.Since(t0)
		total += res.Nodes
		fmt.Printf("%-80s %6s depth=%d score=%d nodes=%d time=%v\n", sfen, res.BestMove.USI(), res.Depth, res.Score, res.Nodes, el.Round(time.Millisecond))
	}
	el := time.Since(start)
	fmt.Printf("total nodes=%d time=%v nps=%d\n", total, el.Round(time.Millisecond), int64(float64(total)/el.Seconds()))
	return nil
}
