package engine

import (
	"golang.org/x/exp/constraints"

	"zoushogi/internal/shogi"
)

const (
	tempoBonus         = 20
	mobilityWeight     = 2
	defenderBonus      = 30
	missingKingPenalty = 500

	phaseMax = 256
)

// 局面阶段权重：大驹和金银越多越接近开局
var phaseWeights = [shogi.NumPieceTypes]int{
	shogi.Rook: 44, shogi.Dragon: 44,
	shogi.Bishop: 32, shogi.Horse: 32,
	shogi.Gold: 18, shogi.Silver: 18,
}

// 对方手里的大驹/金对己方玉的威胁
var handThreat = [shogi.NumPieceTypes]int{
	shogi.Rook: 50, shogi.Bishop: 40, shogi.Gold: 20,
}

// 玉：开局缩在角落
var kingOpening = [shogi.NumSquares]int8{
	-40, -30, -25, -25, -25, -25, -25, -30, -40,
	-30, -20, -15, -15, -15, -15, -15, -20, -30,
	-20, -10, -5, -5, -5, -5, -5, -10, -20,
	-15, -5, 0, 0, 0, 0, 0, -5, -15,
	-10, 0, 5, 5, 5, 5, 5, 0, -10,
	-5, 5, 10, 10, 10, 10, 10, 5, -5,
	0, 10, 15, 12, 10, 12, 15, 10, 0,
	5, 15, 20, 15, 10, 15, 20, 15, 5,
	15, 25, 20, 12, 5, 12, 20, 25, 15,
}

// 玉：残局往中间走
var kingEndgame = [shogi.NumSquares]int8{
	-30, -20, -10, -5, 0, -5, -10, -20, -30,
	-20, -10, 0, 5, 10, 5, 0, -10, -20,
	-10, 0, 10, 15, 20, 15, 10, 0, -10,
	-5, 5, 15, 20, 25, 20, 15, 5, -5,
	0, 10, 20, 25, 30, 25, 20, 10, 0,
	-5, 5, 15, 20, 25, 20, 15, 5, -5,
	-10, 0, 10, 15, 20, 15, 10, 0, -10,
	-20, -10, 0, 5, 10, 5, 0, -10, -20,
	-30, -20, -10, -5, 0, -5, -10, -20, -30,
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Evaluate 静态评估，返回手番方视角的分数（negamax）。
// 子力和位置分来自 Position 的增量值，玉的安全和机动性现算。
func Evaluate(pos *shogi.Position) int {
	phase := gamePhase(pos)

	score := pos.Material + pos.Placement
	score += kingSafety(pos, shogi.Sente, phase) - kingSafety(pos, shogi.Gote, phase)
	score += evaluateMobility(pos)

	if pos.SideToMove == shogi.Sente {
		score += tempoBonus
		return score
	}
	score -= tempoBonus
	return -score
}

// gamePhase 256 = 开局，0 = 子力打光的残局
func gamePhase(pos *shogi.Position) int {
	phase := 0
	for _, pc := range pos.Board.Squares {
		if pc != 0 {
			phase += phaseWeights[pc.Type()]
		}
	}
	for _, side := range []shogi.Side{shogi.Sente, shogi.Gote} {
		for pt := shogi.Pawn; pt <= shogi.Rook; pt++ {
			phase += int(pos.Hands[side][pt]) * phaseWeights[pt]
		}
	}
	return clamp(phase, 0, phaseMax)
}

// kingSafety 从 side 视角的玉安全分
func kingSafety(pos *shogi.Position, side shogi.Side, phase int) int {
	k := pos.KingSq[side]
	if k < 0 {
		return -missingKingPenalty
	}
	idx := k
	if side == shogi.Gote {
		idx = shogi.NumSquares - 1 - k
	}

	s := pos.CountDefenders(k, side) * defenderBonus
	s += (int(kingOpening[idx])*phase + int(kingEndgame[idx])*(phaseMax-phase)) >> 8

	enemy := &pos.Hands[shogi.Opposite(side)]
	threat := 0
	for pt := shogi.Pawn; pt <= shogi.Rook; pt++ {
		if enemy[pt] > 0 {
			threat += handThreat[pt] // 有就扣，不按张数叠加
		}
	}
	s -= threat * (300 - phase) / phaseMax
	return s
}

// 滑动棋子的可走格数（先手视角）
func evaluateMobility(pos *shogi.Position) int {
	score := 0
	for sq, pc := range pos.Board.Squares {
		if pc == 0 {
			continue
		}
		switch pc.Type() {
		case shogi.Lance, shogi.Bishop, shogi.Rook, shogi.Horse, shogi.Dragon:
			m := pos.Mobility(sq) * mobilityWeight
			if pc.Side() == shogi.Sente {
				score += m
			} else {
				score -= m
			}
		}
	}
	return score
}
