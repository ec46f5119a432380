package shogi

import "sync"

// 八个方向，按先手视角（北 = 向对方阵地）
const (
	dirN = iota
	dirS
	dirW
	dirE
	dirNW
	dirNE
	dirSW
	dirSE
	numDirs
)

var dirDeltas = [numDirs][2]int{
	dirN: {-1, 0}, dirS: {1, 0}, dirW: {0, -1}, dirE: {0, 1},
	dirNW: {-1, -1}, dirNE: {-1, 1}, dirSW: {1, -1}, dirSE: {1, 1},
}

// 反方向
var dirOpposite = [numDirs]int{
	dirN: dirS, dirS: dirN, dirW: dirE, dirE: dirW,
	dirNW: dirSE, dirNE: dirSW, dirSW: dirNE, dirSE: dirNW,
}

type dirMask uint8

func maskOf(dirs ...int) dirMask {
	var m dirMask
	for _, d := range dirs {
		m |= 1 << d
	}
	return m
}

func (m dirMask) has(d int) bool { return m&(1<<d) != 0 }

// 先后手镜像：南北互换
func (m dirMask) flip() dirMask {
	var out dirMask
	for d := 0; d < numDirs; d++ {
		if !m.has(d) {
			continue
		}
		dr, dc := -dirDeltas[d][0], dirDeltas[d][1]
		for e := 0; e < numDirs; e++ {
			if dirDeltas[e][0] == dr && dirDeltas[e][1] == dc {
				out |= 1 << e
			}
		}
	}
	return out
}

var (
	attackOnce sync.Once

	// rays[d][sq]：从 sq 沿 d 方向直到盘边的格子（不含 sq）
	rays [numDirs][NumSquares][]int8

	// knightTargets[side][sq]：桂的两个落点
	knightTargets [2][NumSquares][]int8

	// 单步走法与滑动走法的方向掩码
	stepMasks  [2][NumPieceTypes]dirMask
	slideMasks [2][NumPieceTypes]dirMask
)

var (
	goldSteps     = maskOf(dirN, dirS, dirW, dirE, dirNW, dirNE)
	silverSteps   = maskOf(dirN, dirNW, dirNE, dirSW, dirSE)
	kingSteps     = maskOf(dirN, dirS, dirW, dirE, dirNW, dirNE, dirSW, dirSE)
	elephantSteps = maskOf(dirN, dirW, dirE, dirNW, dirNE, dirSW, dirSE) // 不能正后退
	orthSlides    = maskOf(dirN, dirS, dirW, dirE)
	diagSlides    = maskOf(dirNW, dirNE, dirSW, dirSE)
)

func initAttackTables() {
	attackOnce.Do(func() {
		for sq := 0; sq < NumSquares; sq++ {
			r, c := rowOf(sq), colOf(sq)
			for d := 0; d < numDirs; d++ {
				var ray []int8
				nr, nc := r+dirDeltas[d][0], c+dirDeltas[d][1]
				for onBoard(nr, nc) {
					ray = append(ray, int8(indexOf(nr, nc)))
					nr += dirDeltas[d][0]
					nc += dirDeltas[d][1]
				}
				rays[d][sq] = ray
			}
			for _, side := range []Side{Sente, Gote} {
				nr := r + 2*forward(side)
				for _, dc := range []int{-1, 1} {
					if onBoard(nr, c+dc) {
						knightTargets[side][sq] = append(knightTargets[side][sq], int8(indexOf(nr, c+dc)))
					}
				}
			}
		}

		var sente [NumPieceTypes]dirMask
		sente[Pawn] = maskOf(dirN)
		sente[Silver] = silverSteps
		sente[Gold] = goldSteps
		sente[ProPawn] = goldSteps
		sente[ProLance] = goldSteps
		sente[ProKnight] = goldSteps
		sente[ProSilver] = goldSteps
		sente[King] = kingSteps
		sente[Prince] = kingSteps
		sente[Elephant] = elephantSteps
		sente[Horse] = orthSlides  // 馬的一步直走
		sente[Dragon] = diagSlides // 龍的一步斜走

		var slides [NumPieceTypes]dirMask
		slides[Lance] = maskOf(dirN)
		slides[Bishop] = diagSlides
		slides[Horse] = diagSlides
		slides[Rook] = orthSlides
		slides[Dragon] = orthSlides

		for pt := 0; pt < NumPieceTypes; pt++ {
			stepMasks[Sente][pt] = sente[pt]
			stepMasks[Gote][pt] = sente[pt].flip()
			slideMasks[Sente][pt] = slides[pt]
			slideMasks[Gote][pt] = slides[pt].flip()
		}
	})
}

// neighbour 返回 sq 在 d 方向的相邻格，出界返回 -1。
func neighbour(sq, d int) int {
	ray := rays[d][sq]
	if len(ray) == 0 {
		return -1
	}
	return int(ray[0])
}

// AttackTargets 返回 sq 上棋子 pc 能攻击到的所有格子（含己方子所在格，用于显示/调试）。
func (p *Position) AttackTargets(sq int) []int {
	initAttackTables()
	pc := p.Board.Squares[sq]
	if pc == 0 {
		return nil
	}
	side, pt := pc.Side(), pc.Type()
	var out []int
	if pt == Knight {
		for _, to := range knightTargets[side][sq] {
			out = append(out, int(to))
		}
		return out
	}
	steps, slides := stepMasks[side][pt], slideMasks[side][pt]
	for d := 0; d < numDirs; d++ {
		switch {
		case slides.has(d):
			for _, to := range rays[d][sq] {
				out = append(out, int(to))
				if p.Board.Squares[to] != 0 {
					break
				}
			}
		case steps.has(d):
			if to := neighbour(sq, d); to >= 0 {
				out = append(out, to)
			}
		}
	}
	return out
}

// Mobility 数 sq 上滑动棋子能走到的格子（空格或敌子）。
func (p *Position) Mobility(sq int) int {
	initAttackTables()
	pc := p.Board.Squares[sq]
	if pc == 0 {
		return 0
	}
	side := pc.Side()
	slides := slideMasks[side][pc.Type()]
	if slides == 0 {
		return 0
	}
	n := 0
	for d := 0; d < numDirs; d++ {
		if !slides.has(d) {
			continue
		}
		for _, to := range rays[d][sq] {
			t := p.Board.Squares[to]
			if t == 0 {
				n++
				continue
			}
			if t.Side() != side {
				n++
			}
			break
		}
	}
	return n
}
