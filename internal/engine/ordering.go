package engine

import "zoushogi/internal/shogi"

const (
	orderTTMove    = 1_000_000
	orderCapture   = 200_000
	orderPromotion = 100_000
	orderKiller1   = 90_000
	orderKiller2   = 80_000

	historyMax = 16384

	// 盘上 81 格 + 打驹按驹种各占一格
	historySlots = shogi.NumSquares + shogi.HandSize
)

func historyFrom(mv shogi.Move) int {
	if mv.IsDrop() {
		return shogi.NumSquares + int(mv.Piece())
	}
	return mv.From()
}

// MVV-LVA：被吃子价值 - 吃子方价值
func mvvLva(mv shogi.Move) int {
	return shogi.PieceValues[mv.Captured()] - shogi.PieceValues[mv.Piece()]
}

// scoreMoves 给每一手打排序分：置换表着法 > 吃子 > 成 > 杀手 > 历史
func (e *Engine) scoreMoves(ply int, side shogi.Side, moves []shogi.Move, scores []int32, ttMove shogi.Move) {
	k1, k2 := e.killers[ply][0], e.killers[ply][1]
	for i, mv := range moves {
		var s int
		switch {
		case ttMove != shogi.NoMove && mv == ttMove:
			s = orderTTMove
		case mv.IsCapture():
			s = orderCapture + mvvLva(mv)
			if mv.IsPromote() {
				s += shogi.PieceValues[mv.Piece().Promote()] - shogi.PieceValues[mv.Piece()]
			}
		case mv.IsPromote():
			s = orderPromotion + shogi.PieceValues[mv.Piece().Promote()] - shogi.PieceValues[mv.Piece()]
		case mv == k1:
			s = orderKiller1
		case mv == k2:
			s = orderKiller2
		default:
			s = int(e.history[side][historyFrom(mv)][mv.To()])
		}
		scores[i] = int32(s)
	}
}

// 静态搜索只有吃子，按 MVV-LVA 排
func scoreCaptures(moves []shogi.Move, scores []int32) {
	for i, mv := range moves {
		scores[i] = int32(orderCapture + mvvLva(mv))
	}
}

// pickNext 选择排序：把 [i, n) 里分最高的换到 i
func pickNext(moves []shogi.Move, scores []int32, i int) {
	best := i
	for j := i + 1; j < len(moves); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != i {
		moves[i], moves[best] = moves[best], moves[i]
		scores[i], scores[best] = scores[best], scores[i]
	}
}

func (e *Engine) isKiller(ply int, mv shogi.Move) bool {
	return mv == e.killers[ply][0] || mv == e.killers[ply][1]
}

func (e *Engine) storeKiller(ply int, mv shogi.Move) {
	if e.killers[ply][0] == mv {
		return
	}
	e.killers[ply][1] = e.killers[ply][0]
	e.killers[ply][0] = mv
}

// addHistory 截断的安静着法加 depth²，超过上限整表减半
func (e *Engine) addHistory(side shogi.Side, mv shogi.Move, depth int) {
	h := &e.history[side][historyFrom(mv)][mv.To()]
	*h += int32(depth * depth)
	if *h <= historyMax {
		return
	}
	for s := range e.history {
		for f := range e.history[s] {
			for t := range e.history[s][f] {
				e.history[s][f][t] /= 2
			}
		}
	}
}
