package shogi

// Make 在原局面上走一步，增量更新哈希、子力、位置分和玉位置。
// 不检查合法性，调用方负责（伪合法着法走完后自己判断是否送将）。
func (p *Position) Make(m Move) {
	initZobrist()
	side := p.SideToMove
	opp := Opposite(side)
	sign := sideSign(side)
	to := m.To()

	entry := &p.history[p.histLen]
	entry.hash = p.Hash
	entry.move = m
	entry.captured = 0
	entry.lastMove = p.LastMove
	p.histLen++

	if m.IsDrop() {
		pt := m.Piece()
		old := p.Hands[side][pt]
		p.Hash ^= handHashKey(side, pt, old) ^ handHashKey(side, pt, old-1)
		p.Hands[side][pt] = old - 1
		p.Material += sign * (PieceValues[pt] - HandValues[pt])

		pc := MakePiece(side, pt)
		p.Board.Squares[to] = pc
		p.Hash ^= pieceHashKey(pc, to)
		p.Placement += sign * PlacementBonus(pt, to, side)
	} else {
		from := m.From()
		pc := p.Board.Squares[from]
		pt := pc.Type()

		if captured := p.Board.Squares[to]; captured != 0 {
			ct := captured.Type()
			entry.captured = captured
			p.Hash ^= pieceHashKey(captured, to)
			p.Material += sign * PieceValues[ct]
			p.Placement += sign * PlacementBonus(ct, to, opp)
			if ct == King {
				p.KingSq[opp] = -1
			}
			// 酔象/太子被吃后不进持驹
			if hp := ct.Unpromote(); hp.Droppable() {
				old := p.Hands[side][hp]
				p.Hash ^= handHashKey(side, hp, old) ^ handHashKey(side, hp, old+1)
				p.Hands[side][hp] = old + 1
				p.Material += sign * HandValues[hp]
			}
		}

		p.Hash ^= pieceHashKey(pc, from)
		p.Placement -= sign * PlacementBonus(pt, from, side)
		p.Board.Squares[from] = 0

		newPt := pt
		if m.IsPromote() {
			newPt = pt.Promote()
			p.Material += sign * (PieceValues[newPt] - PieceValues[pt])
		}
		moved := MakePiece(side, newPt)
		p.Board.Squares[to] = moved
		p.Hash ^= pieceHashKey(moved, to)
		p.Placement += sign * PlacementBonus(newPt, to, side)

		if pt == King {
			p.KingSq[side] = to
		}
	}

	p.LastMove = to
	p.SideToMove = opp
	p.Hash ^= zobristSide
	p.Ply++
}

// Unmake 撤销最近一次 Make(m)，局面逐位复原。
func (p *Position) Unmake(m Move) {
	p.histLen--
	entry := &p.history[p.histLen]

	p.Ply--
	side := Opposite(p.SideToMove)
	p.SideToMove = side
	opp := Opposite(side)
	sign := sideSign(side)
	to := m.To()

	if m.IsDrop() {
		pt := m.Piece()
		p.Board.Squares[to] = 0
		p.Placement -= sign * PlacementBonus(pt, to, side)
		p.Hands[side][pt]++
		p.Material -= sign * (PieceValues[pt] - HandValues[pt])
	} else {
		from := m.From()
		newPt := p.Board.Squares[to].Type()
		pt := newPt
		if m.IsPromote() {
			pt = newPt.Unpromote()
			p.Material -= sign * (PieceValues[newPt] - PieceValues[pt])
		}
		p.Placement -= sign * PlacementBonus(newPt, to, side)
		p.Board.Squares[from] = MakePiece(side, pt)
		p.Placement += sign * PlacementBonus(pt, from, side)
		if pt == King {
			p.KingSq[side] = from
		}

		captured := entry.captured
		p.Board.Squares[to] = captured
		if captured != 0 {
			ct := captured.Type()
			p.Material -= sign * PieceValues[ct]
			p.Placement -= sign * PlacementBonus(ct, to, opp)
			if ct == King {
				p.KingSq[opp] = to
			}
			if hp := ct.Unpromote(); hp.Droppable() {
				p.Hands[side][hp]--
				p.Material -= sign * HandValues[hp]
			}
		}
	}

	p.Hash = entry.hash
	p.LastMove = entry.lastMove
}

// MakeNull 空着：只换手番（空着裁剪用）。
func (p *Position) MakeNull() {
	initZobrist()
	entry := &p.history[p.histLen]
	entry.hash = p.Hash
	entry.move = NoMove
	entry.captured = 0
	entry.lastMove = p.LastMove
	p.histLen++

	p.LastMove = -1
	p.SideToMove = Opposite(p.SideToMove)
	p.Hash ^= zobristSide
	p.Ply++
}

func (p *Position) UnmakeNull() {
	p.histLen--
	entry := &p.history[p.histLen]
	p.Ply--
	p.SideToMove = Opposite(p.SideToMove)
	p.Hash = entry.hash
	p.LastMove = entry.lastMove
}

// UnwindTo 撤销走子栈直到深度为 n（搜索异常退出后恢复局面用）。
func (p *Position) UnwindTo(n int) {
	for p.histLen > n {
		if mv := p.history[p.histLen-1].move; mv != NoMove {
			p.Unmake(mv)
		} else {
			p.UnmakeNull()
		}
	}
}
