package shogi

// IsAttacked 判断 sq 是否被 bySide 攻击。
// 反向查找：从 sq 出发按各方向找第一个棋子，看它能否走回 sq；桂单独查。
func (p *Position) IsAttacked(sq int, bySide Side) bool {
	initAttackTables()

	knight := MakePiece(bySide, Knight)
	for _, s := range knightTargets[Opposite(bySide)][sq] {
		if p.Board.Squares[s] == knight {
			return true
		}
	}

	for d := 0; d < numDirs; d++ {
		back := dirOpposite[d] // 攻击方朝 sq 的方向
		for i, s := range rays[d][sq] {
			pc := p.Board.Squares[s]
			if pc == 0 {
				continue
			}
			if pc.Side() == bySide {
				pt := pc.Type()
				if slideMasks[bySide][pt].has(back) {
					return true
				}
				if i == 0 && stepMasks[bySide][pt].has(back) {
					return true
				}
			}
			break
		}
	}
	return false
}

// InCheck 判断 side 的玉是否被将。没有玉视为被将。
func (p *Position) InCheck(side Side) bool {
	k := p.KingSq[side]
	if k < 0 {
		return true
	}
	return p.IsAttacked(k, Opposite(side))
}

// CountDefenders 统计 sq 周围八格里 side 的棋子数（玉的护卫数）。
func (p *Position) CountDefenders(sq int, side Side) int {
	initAttackTables()
	n := 0
	for d := 0; d < numDirs; d++ {
		if s := neighbour(sq, d); s >= 0 {
			if pc := p.Board.Squares[s]; pc != 0 && pc.Side() == side {
				n++
			}
		}
	}
	return n
}
