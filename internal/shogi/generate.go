package shogi

type moveWriter struct {
	buf []Move
	n   int
}

func (w *moveWriter) push(m Move) {
	if w.n < len(w.buf) {
		w.buf[w.n] = m
		w.n++
	}
}

// 盘上走子：按需要拆成不成/成两手
func (w *moveWriter) boardMove(side Side, from, to int, pt PieceType, captured PieceType) {
	canPromote := pt.Promote() != Empty &&
		(inPromotionZone(side, rowOf(from)) || inPromotionZone(side, rowOf(to)))
	if !canPromote {
		w.push(NewMove(from, to, pt, captured, false))
		return
	}
	if !mustPromote(side, pt, rowOf(to)) {
		w.push(NewMove(from, to, pt, captured, false))
	}
	w.push(NewMove(from, to, pt, captured, true))
}

func (p *Position) pieceMoves(w *moveWriter, from int, capturesOnly bool) {
	pc := p.Board.Squares[from]
	side, pt := pc.Side(), pc.Type()

	try := func(to int) bool {
		t := p.Board.Squares[to]
		if t != 0 && t.Side() == side {
			return false
		}
		if t == 0 && capturesOnly {
			return true
		}
		w.boardMove(side, from, to, pt, t.Type())
		return t == 0
	}

	if pt == Knight {
		for _, to := range knightTargets[side][from] {
			try(int(to))
		}
		return
	}
	steps, slides := stepMasks[side][pt], slideMasks[side][pt]
	for d := 0; d < numDirs; d++ {
		switch {
		case slides.has(d):
			for _, to := range rays[d][from] {
				if !try(int(to)) {
					break
				}
			}
		case steps.has(d):
			if to := neighbour(from, d); to >= 0 {
				try(to)
			}
		}
	}
}

func (p *Position) dropMoves(w *moveWriter) {
	side := p.SideToMove
	hand := &p.Hands[side]

	// 二歩：已有己方未成歩的筋
	var pawnFiles [Cols]bool
	if hand[Pawn] > 0 {
		own := MakePiece(side, Pawn)
		for sq, pc := range p.Board.Squares {
			if pc == own {
				pawnFiles[colOf(sq)] = true
			}
		}
	}

	for pt := Pawn; pt <= Rook; pt++ {
		if hand[pt] <= 0 {
			continue
		}
		for sq := 0; sq < NumSquares; sq++ {
			if p.Board.Squares[sq] != 0 {
				continue
			}
			if mustPromote(side, pt, rowOf(sq)) {
				continue
			}
			if pt == Pawn && pawnFiles[colOf(sq)] {
				continue
			}
			w.push(NewDrop(sq, pt))
		}
	}
}

// GenerateMoves 把手番方的伪合法着法写进 buf，返回个数。
// buf 长度应不小于 MaxMoves，超出部分会被丢弃。
func (p *Position) GenerateMoves(buf []Move) int {
	initAttackTables()
	w := moveWriter{buf: buf}
	side := p.SideToMove
	for sq := 0; sq < NumSquares; sq++ {
		pc := p.Board.Squares[sq]
		if pc == 0 || pc.Side() != side {
			continue
		}
		p.pieceMoves(&w, sq, false)
	}
	p.dropMoves(&w)
	return w.n
}

// GenerateCaptures 只生成吃子着法（静态搜索用）。
func (p *Position) GenerateCaptures(buf []Move) int {
	initAttackTables()
	w := moveWriter{buf: buf}
	side := p.SideToMove
	for sq := 0; sq < NumSquares; sq++ {
		pc := p.Board.Squares[sq]
		if pc == 0 || pc.Side() != side {
			continue
		}
		p.pieceMoves(&w, sq, true)
	}
	return w.n
}

// 伪合法（不考虑自己玉被将）
func (p *Position) GeneratePseudoMoves() []Move {
	buf := make([]Move, MaxMoves)
	n := p.GenerateMoves(buf)
	return buf[:n:n]
}
