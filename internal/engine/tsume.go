package engine

import (
	"sort"

	"zoushogi/internal/shogi"
)

const (
	tsumeDepthCap         = 15
	tsumeDefaultDepth     = 7
	tsumeNodeBudgetBase   = 32000
	tsumeNodeBudgetPerPly = 8000
)

// 攻方/守方节点用不同的键，避免同一局面的两种结论互相覆盖
const (
	tsumeModeAttack uint64 = 0xA5A5A5A5A5A5A5A5
	tsumeModeDefend uint64 = 0x5A5A5A5A5A5A5A5A
)

type tsumeEntry struct {
	Depth  int
	Result bool
	Move   shogi.Move
}

type tsumeContext struct {
	pos        *shogi.Position
	tt         map[uint64]tsumeEntry
	inPath     map[uint64]bool
	nodes      int
	nodeBudget int
}

// TsumeResult 连续王手诘将的结果
type TsumeResult struct {
	Mate  bool
	Move  shogi.Move // 第一手
	Depth int        // 找到诘将时的手数（攻方着法都计入，奇数）
	Nodes int
}

// TsumeSearch 只用王手找诘将，maxDepth 按单方手数计。
// pos 在搜索中被就地修改，返回前复原。
func (e *Engine) TsumeSearch(pos *shogi.Position, maxDepth int) TsumeResult {
	if maxDepth <= 0 {
		maxDepth = tsumeDefaultDepth
	}
	if maxDepth > tsumeDepthCap {
		maxDepth = tsumeDepthCap
	}
	if !pos.KingExists(shogi.Opposite(pos.SideToMove)) {
		return TsumeResult{}
	}

	tc := &tsumeContext{
		pos:        pos,
		tt:         make(map[uint64]tsumeEntry, 1<<14),
		inPath:     make(map[uint64]bool, 64),
		nodeBudget: tsumeNodeBudgetBase + maxDepth*tsumeNodeBudgetPerPly,
	}

	for d := 1; d <= maxDepth; d += 2 {
		if mv, ok := tc.attack(d); ok {
			e.log.Debug().Str("move", mv.USI()).Int("depth", d).Int("nodes", tc.nodes).Msg("tsume-found")
			return TsumeResult{Mate: true, Move: mv, Depth: d, Nodes: tc.nodes}
		}
		if tc.nodes > tc.nodeBudget {
			break
		}
	}
	return TsumeResult{Nodes: tc.nodes}
}

// checkingMoves 攻方的合法王手，置换表着法、吃子、打驹优先
func (tc *tsumeContext) checkingMoves(key uint64) []shogi.Move {
	pos := tc.pos
	side := pos.SideToMove
	var ttMove shogi.Move
	if entry, ok := tc.tt[key]; ok {
		ttMove = entry.Move
	}

	var checks []shogi.Move
	for _, mv := range pos.GeneratePseudoMoves() {
		pos.Make(mv)
		ok := !pos.InCheck(side) && pos.InCheck(pos.SideToMove)
		pos.Unmake(mv)
		if ok {
			checks = append(checks, mv)
		}
	}

	weight := func(mv shogi.Move) int {
		switch {
		case mv == ttMove:
			return 1000
		case mv.IsCapture():
			return 100 + shogi.PieceValues[mv.Captured()]/100
		case mv.IsDrop():
			return 50
		}
		return 0
	}
	sort.SliceStable(checks, func(i, j int) bool {
		return weight(checks[i]) > weight(checks[j])
	})
	return checks
}

// attack 攻方在 depth 手内能否王手诘
func (tc *tsumeContext) attack(depth int) (shogi.Move, bool) {
	if depth <= 0 || tc.reachNodeBudget() {
		return shogi.NoMove, false
	}
	pos := tc.pos
	key := pos.Hash ^ tsumeModeAttack
	if tc.inPath[key] {
		return shogi.NoMove, false
	}
	if entry, ok := tc.tt[key]; ok && entry.Depth >= depth {
		return entry.Move, entry.Result
	}
	tc.inPath[key] = true
	defer delete(tc.inPath, key)

	result := false
	var best shogi.Move
	for _, mv := range tc.checkingMoves(key) {
		pos.Make(mv)
		escaped := tc.defend(depth - 1)
		pos.Unmake(mv)
		if !escaped {
			result = true
			best = mv
			break
		}
	}
	tc.tt[key] = tsumeEntry{Depth: depth, Result: result, Move: best}
	return best, result
}

// defend 守方是否存在一手能逃出 depth 手内的诘将
func (tc *tsumeContext) defend(depth int) bool {
	if tc.reachNodeBudget() {
		return true
	}
	pos := tc.pos
	moves := pos.LegalMoves()
	if len(moves) == 0 {
		return false
	}
	if depth <= 0 {
		return true
	}
	key := pos.Hash ^ tsumeModeDefend
	if tc.inPath[key] {
		return true
	}
	if entry, ok := tc.tt[key]; ok && entry.Depth >= depth {
		return entry.Result
	}
	tc.inPath[key] = true
	defer delete(tc.inPath, key)

	result := false
	var best shogi.Move
	for _, mv := range moves {
		pos.Make(mv)
		_, mated := tc.attack(depth - 1)
		pos.Unmake(mv)
		if !mated {
			result = true
			best = mv
			break
		}
	}
	tc.tt[key] = tsumeEntry{Depth: depth, Result: result, Move: best}
	return result
}

func (tc *tsumeContext) reachNodeBudget() bool {
	tc.nodes++
	return tc.nodes > tc.nodeBudget
}
