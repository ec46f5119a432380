package shogi

// PieceValues 基础子力分
var PieceValues = [NumPieceTypes]int{
	Pawn: 90, Lance: 315, Knight: 405, Silver: 495, Gold: 540,
	Bishop: 855, Rook: 990, King: 15000,
	ProPawn: 540, ProLance: 540, ProKnight: 540, ProSilver: 540,
	Horse: 1125, Dragon: 1395,
	Elephant: 900, Prince: 950,
}

// HandValues 持驹价值 = 子力 × 1.12（整数运算，增量和全量结果一致）
var HandValues = func() [NumPieceTypes]int {
	var v [NumPieceTypes]int
	for pt := Pawn; pt <= Rook; pt++ {
		v[pt] = PieceValues[pt] * 112 / 100
	}
	return v
}()

// 以下位置表都是先手视角，后手用 80-sq 查表。

var pstPawn = [NumSquares]int8{
	40, 45, 50, 55, 60, 55, 50, 45, 40,
	30, 35, 40, 45, 50, 45, 40, 35, 30,
	20, 25, 30, 35, 40, 35, 30, 25, 20,
	10, 12, 15, 20, 25, 20, 15, 12, 10,
	5, 6, 8, 12, 15, 12, 8, 6, 5,
	0, 2, 4, 6, 8, 6, 4, 2, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// 銀・金・成驹：中央偏前
var pstMinor = [NumSquares]int8{
	0, 5, 10, 15, 20, 15, 10, 5, 0,
	5, 10, 15, 20, 25, 20, 15, 10, 5,
	5, 10, 15, 18, 22, 18, 15, 10, 5,
	3, 6, 10, 12, 15, 12, 10, 6, 3,
	0, 3, 6, 8, 10, 8, 6, 3, 0,
	0, 0, 3, 5, 7, 5, 3, 0, 0,
	0, 0, 2, 4, 6, 4, 2, 0, 0,
	0, 0, 0, 2, 3, 2, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// 大驹：中央和敌阵
var pstMajor = [NumSquares]int8{
	25, 20, 15, 15, 20, 15, 15, 20, 25,
	30, 25, 20, 18, 22, 18, 20, 25, 30,
	20, 20, 20, 15, 18, 15, 20, 20, 20,
	15, 15, 15, 12, 15, 12, 15, 15, 15,
	10, 10, 10, 10, 12, 10, 10, 10, 10,
	5, 5, 8, 8, 10, 8, 8, 5, 5,
	0, 2, 5, 5, 8, 5, 5, 2, 0,
	0, 0, 2, 3, 5, 3, 2, 0, 0,
	5, 3, 0, 0, 2, 0, 0, 3, 5,
}

// PlacementBonus 位置分（从 side 视角）。玉的位置由评估函数按局面阶段单独计算。
func PlacementBonus(pt PieceType, sq int, side Side) int {
	idx := sq
	if side == Gote {
		idx = NumSquares - 1 - sq
	}
	switch pt {
	case Pawn:
		return int(pstPawn[idx])
	case Lance, Knight:
		return int(pstPawn[idx]) >> 1
	case Silver, Gold, ProPawn, ProLance, ProKnight, ProSilver:
		return int(pstMinor[idx])
	case Bishop, Rook:
		return int(pstMajor[idx])
	case Horse:
		return int(pstMajor[idx]) + 15
	case Dragon:
		return int(pstMajor[idx]) + 20
	case Elephant, Prince:
		return int(pstMinor[idx]) + 10
	}
	return 0
}

func sideSign(side Side) int {
	if side == Sente {
		return 1
	}
	return -1
}

// CalculateScores 全量计算子力分和位置分（先手视角）。
func (p *Position) CalculateScores() (material, placement int) {
	for sq, pc := range p.Board.Squares {
		if pc == 0 {
			continue
		}
		side, pt := pc.Side(), pc.Type()
		sign := sideSign(side)
		material += sign * PieceValues[pt]
		placement += sign * PlacementBonus(pt, sq, side)
	}
	for _, side := range []Side{Sente, Gote} {
		sign := sideSign(side)
		for pt := Pawn; pt <= Rook; pt++ {
			material += sign * int(p.Hands[side][pt]) * HandValues[pt]
		}
	}
	return material, placement
}
