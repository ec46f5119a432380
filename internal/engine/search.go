package engine

import (
	"context"
	"fmt"
	"time"

	"lukechampine.com/frand"

	"zoushogi/internal/shogi"
)

const (
	// 一个足够大的值，当成正负无穷
	scoreInf = 1_000_000

	MateScore     = 30000
	MateThreshold = 29000

	MaxPly         = 64
	maxSearchDepth = 30

	quiescenceDepth = 3
	nullReduction   = 3
	lmrMinDepth     = 3
	lmrMinMoves     = 4
	mateExtraDepth  = 2

	pollMask = 4095
)

// 搜索配置
type SearchConfig struct {
	MaxDepth  int              // 最大迭代深度（0 用引擎配置）
	TimeLimit time.Duration    // 搜索时间上限（0 表示不限制）
	Info      func(SearchInfo) // 每完成一层回调一次，可为 nil
}

// SearchInfo 每层迭代结束时的进度
type SearchInfo struct {
	Depth   int           `json:"depth"`
	Score   int           `json:"score"`
	Nodes   int64         `json:"nodes"`
	Elapsed time.Duration `json:"elapsed"`
	PV      []shogi.Move  `json:"-"`
}

// 搜索结果
type SearchResult struct {
	BestMove shogi.Move    // 最佳着法；无合法着法时为 NoMove
	Score    int           // 手番方视角
	Depth    int           // 最后完成的深度
	Nodes    int64         // 节点数
	TimeUsed time.Duration // 耗时
	PV       []shogi.Move  // 主变
	FromBook bool          // 来自定跡
}

// IsMateScore 分数是否表示杀棋
func IsMateScore(score int) bool {
	return score > MateThreshold || score < -MateThreshold
}

// searchContext 单次搜索的状态
type searchContext struct {
	e   *Engine
	ctx context.Context
	pos *shogi.Position

	start    time.Time
	deadline time.Time
	nodes    int64

	canAbort bool // 第一层搜完之前不允许中断
	aborted  bool

	rootBest shogi.Move
}

// Search 迭代加深搜索。pos 在搜索中被就地修改，返回前复原。
func (e *Engine) Search(ctx context.Context, pos *shogi.Position, cfg SearchConfig) (res SearchResult) {
	start := time.Now()
	e.stop.Store(false)

	// 搜索里出了意外：恢复局面，随机走一步合法着法
	var legal []shogi.Move
	baseHist := pos.HistoryLen()
	defer func() {
		if r := recover(); r != nil {
			pos.UnwindTo(baseHist)
			res = SearchResult{BestMove: shogi.NoMove, TimeUsed: time.Since(start)}
			if len(legal) == 0 {
				e.log.Error().Str("panic", fmt.Sprint(r)).Msg("search-recovered")
				return
			}
			mv := legal[frand.Intn(len(legal))]
			e.log.Error().Str("panic", fmt.Sprint(r)).Str("fallback", mv.USI()).Msg("search-recovered")
			res.BestMove = mv
			res.PV = []shogi.Move{mv}
		}
	}()

	legal = pos.LegalMoves()
	if len(legal) == 0 {
		return SearchResult{BestMove: shogi.NoMove, Score: -MateScore, TimeUsed: time.Since(start)}
	}

	if e.book != nil && pos.Ply < e.cfg.BookPlyLimit {
		if mv, ok := e.book.Probe(pos); ok && containsLegal(legal, mv) {
			e.log.Debug().Str("move", mv.USI()).Int("ply", pos.Ply).Msg("book-hit")
			return SearchResult{BestMove: mv, PV: []shogi.Move{mv}, FromBook: true, TimeUsed: time.Since(start)}
		}
	}

	if len(legal) == 1 {
		return SearchResult{
			BestMove: legal[0],
			Score:    Evaluate(pos),
			Depth:    1,
			Nodes:    1,
			TimeUsed: time.Since(start),
			PV:       legal[:1],
		}
	}

	maxDepth := cfg.MaxDepth
	if maxDepth <= 0 || maxDepth > e.cfg.MaxDepth {
		maxDepth = e.cfg.MaxDepth
	}
	sc := &searchContext{e: e, ctx: ctx, pos: pos, start: start}
	if cfg.TimeLimit > 0 {
		sc.deadline = start.Add(cfg.TimeLimit)
	}

	res = SearchResult{BestMove: legal[0]}
	mateDepth := 0
	for depth := 1; depth <= maxDepth; depth++ {
		if depth > 1 {
			sc.poll()
			if sc.aborted {
				break
			}
		}
		score := sc.alphaBeta(depth, 0, -scoreInf, scoreInf, false)
		if sc.aborted {
			break
		}
		sc.canAbort = true

		res.BestMove = sc.rootBest
		res.Score = score
		res.Depth = depth
		res.PV = e.principalVariation(pos, sc.rootBest, depth)

		elapsed := time.Since(start)
		e.log.Debug().
			Int("depth", depth).
			Int("score", score).
			Int64("nodes", sc.nodes).
			Dur("elapsed", elapsed).
			Str("pv", shogi.FormatMoves(res.PV)).
			Msg("iteration")
		if cfg.Info != nil {
			cfg.Info(SearchInfo{Depth: depth, Score: score, Nodes: sc.nodes, Elapsed: elapsed, PV: res.PV})
		}

		if IsMateScore(score) {
			if mateDepth == 0 {
				mateDepth = depth
			}
			if depth-mateDepth >= mateExtraDepth {
				break
			}
		}
		if cfg.TimeLimit > 0 && elapsed > cfg.TimeLimit/2 {
			break
		}
	}

	res.Nodes = sc.nodes
	res.TimeUsed = time.Since(start)
	return res
}

// poll 每 4096 个节点看一次时间和外部停止信号
func (sc *searchContext) poll() {
	if !sc.canAbort {
		return
	}
	if sc.e.stop.Load() {
		sc.aborted = true
		return
	}
	if sc.ctx != nil && sc.ctx.Err() != nil {
		sc.aborted = true
		return
	}
	if !sc.deadline.IsZero() && time.Now().After(sc.deadline) {
		sc.aborted = true
	}
}

func (sc *searchContext) visit() bool {
	sc.nodes++
	if sc.nodes&pollMask == 0 {
		sc.poll()
	}
	return !sc.aborted
}

// alphaBeta negamax + PVS，返回手番方视角分数
func (sc *searchContext) alphaBeta(depth, ply, alpha, beta int, allowNull bool) int {
	if !sc.visit() {
		return 0
	}
	e, pos := sc.e, sc.pos
	side := pos.SideToMove

	inCheck := pos.InCheck(side)
	if inCheck {
		depth++
	}
	if depth <= 0 {
		return sc.quiesce(alpha, beta, ply, 0)
	}
	if ply >= MaxPly-1 {
		return Evaluate(pos)
	}
	isPV := beta-alpha > 1

	ttMove := shogi.NoMove
	if entry, ok := e.tt.probe(pos.Hash); ok {
		ttMove = entry.Move
		if ply > 0 && int(entry.Depth) >= depth {
			s := scoreFromTT(int(entry.Score), ply)
			switch entry.Flag {
			case ttExact:
				return s
			case ttLower:
				if s >= beta {
					return s
				}
			case ttUpper:
				if s <= alpha {
					return s
				}
			}
		}
	}

	// 空着裁剪：让对方连走一步仍然 >= beta，说明这里足够好
	if allowNull && !isPV && !inCheck && ply > 0 && depth >= nullReduction && beta < MateThreshold {
		pos.MakeNull()
		score := -sc.alphaBeta(depth-nullReduction, ply+1, -beta, -beta+1, false)
		pos.UnmakeNull()
		if sc.aborted {
			return 0
		}
		if score >= beta {
			return beta
		}
	}

	moves := e.moveBufs[ply][:]
	n := pos.GenerateMoves(moves)
	moves = moves[:n]
	scores := e.scoreBufs[ply][:n]
	e.scoreMoves(ply, side, moves, scores, ttMove)

	origAlpha := alpha
	bestScore := -scoreInf
	bestMove := shogi.NoMove
	legal := 0

	for i := range moves {
		pickNext(moves, scores, i)
		mv := moves[i]

		pos.Make(mv)
		if pos.InCheck(side) {
			pos.Unmake(mv)
			continue
		}
		legal++
		givesCheck := pos.InCheck(pos.SideToMove)

		var score int
		if legal == 1 {
			score = -sc.alphaBeta(depth-1, ply+1, -beta, -alpha, true)
		} else {
			reduction := 0
			if depth >= lmrMinDepth && legal > lmrMinMoves && !inCheck && !givesCheck &&
				mv.IsQuiet() && !e.isKiller(ply, mv) {
				reduction = 1
			}
			score = -sc.alphaBeta(depth-1-reduction, ply+1, -alpha-1, -alpha, true)
			if score > alpha && reduction > 0 {
				score = -sc.alphaBeta(depth-1, ply+1, -alpha-1, -alpha, true)
			}
			if score > alpha && score < beta {
				score = -sc.alphaBeta(depth-1, ply+1, -beta, -alpha, true)
			}
		}
		pos.Unmake(mv)
		if sc.aborted {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = mv
			if ply == 0 {
				sc.rootBest = mv
			}
		}
		if score > alpha {
			alpha = score
			if score >= beta {
				if mv.IsQuiet() {
					e.storeKiller(ply, mv)
					e.addHistory(side, mv, depth)
				}
				break
			}
		}
	}

	// 无合法着法即负，不区分将死和无着
	if legal == 0 {
		return -MateScore + ply
	}

	flag := ttExact
	switch {
	case bestScore <= origAlpha:
		flag = ttUpper
	case bestScore >= beta:
		flag = ttLower
	}
	e.tt.store(pos.Hash, depth, scoreToTT(bestScore, ply), flag, bestMove)
	return bestScore
}

// quiesce 只搜吃子，fail-hard：返回值总在 [alpha, beta] 内
func (sc *searchContext) quiesce(alpha, beta, ply, qdepth int) int {
	if !sc.visit() {
		return alpha
	}
	e, pos := sc.e, sc.pos

	standPat := Evaluate(pos)
	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}
	if qdepth >= quiescenceDepth || ply >= MaxPly-1 {
		return alpha
	}

	moves := e.moveBufs[ply][:]
	n := pos.GenerateCaptures(moves)
	moves = moves[:n]
	scores := e.scoreBufs[ply][:n]
	scoreCaptures(moves, scores)

	side := pos.SideToMove
	for i := range moves {
		pickNext(moves, scores, i)
		mv := moves[i]
		pos.Make(mv)
		if pos.InCheck(side) {
			pos.Unmake(mv)
			continue
		}
		score := -sc.quiesce(-beta, -alpha, ply+1, qdepth+1)
		pos.Unmake(mv)
		if sc.aborted {
			return alpha
		}
		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}
	return alpha
}

// principalVariation 从根的最佳着法出发，沿置换表取主变
func (e *Engine) principalVariation(pos *shogi.Position, first shogi.Move, maxLen int) []shogi.Move {
	if first == shogi.NoMove {
		return nil
	}
	pv := []shogi.Move{first}
	pos.Make(first)
	seen := map[uint64]bool{pos.Hash: true}
	for len(pv) < maxLen {
		entry, ok := e.tt.probe(pos.Hash)
		if !ok || entry.Move == shogi.NoMove || !isLegal(pos, entry.Move) {
			break
		}
		pos.Make(entry.Move)
		pv = append(pv, entry.Move)
		if seen[pos.Hash] {
			break
		}
		seen[pos.Hash] = true
	}
	for i := len(pv) - 1; i >= 0; i-- {
		pos.Unmake(pv[i])
	}
	return pv
}

// isLegal 置换表里的着法可能来自哈希冲突，先确认是当前局面的合法着法
func isLegal(pos *shogi.Position, mv shogi.Move) bool {
	var buf [shogi.MaxMoves]shogi.Move
	n := pos.GenerateMoves(buf[:])
	for _, m := range buf[:n] {
		if m != mv {
			continue
		}
		side := pos.SideToMove
		pos.Make(m)
		ok := !pos.InCheck(side)
		pos.Unmake(m)
		return ok
	}
	return false
}

func containsLegal(legal []shogi.Move, mv shogi.Move) bool {
	for _, m := range legal {
		if m == mv {
			return true
		}
	}
	return false
}
