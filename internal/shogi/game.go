package shogi

import (
	"errors"
	"fmt"
)

var ErrIllegalMove = errors.New("illegal move")

// legalFilter 走一步看自己的玉是否仍被将，保留合法着法
func (p *Position) legalFilter(moves []Move) []Move {
	side := p.SideToMove
	out := moves[:0]
	for _, mv := range moves {
		p.Make(mv)
		ok := !p.InCheck(side)
		p.Unmake(mv)
		if ok {
			out = append(out, mv)
		}
	}
	return out
}

// LegalMoves 生成手番方全部合法着法。
func (p *Position) LegalMoves() []Move {
	return p.legalFilter(p.GeneratePseudoMoves())
}

// LegalMovesFrom 某个格子上棋子的合法着法。
func (p *Position) LegalMovesFrom(sq int) []Move {
	var out []Move
	for _, mv := range p.LegalMoves() {
		if !mv.IsDrop() && mv.From() == sq {
			out = append(out, mv)
		}
	}
	return out
}

// LegalDrops 打某种持驹的合法着法。
func (p *Position) LegalDrops(pt PieceType) []Move {
	var out []Move
	for _, mv := range p.LegalMoves() {
		if mv.IsDrop() && mv.Piece() == pt {
			out = append(out, mv)
		}
	}
	return out
}

// HasLegalMove 是否至少有一手合法着法（找到就返回）。
func (p *Position) HasLegalMove() bool {
	var buf [MaxMoves]Move
	n := p.GenerateMoves(buf[:])
	side := p.SideToMove
	for _, mv := range buf[:n] {
		p.Make(mv)
		ok := !p.InCheck(side)
		p.Unmake(mv)
		if ok {
			return true
		}
	}
	return false
}

// FindLegal 在合法着法里找和 m 相同的一手（补全被吃子等信息）。
func (p *Position) FindLegal(m Move) (Move, error) {
	for _, mv := range p.LegalMoves() {
		if mv.Equal(m) {
			return mv, nil
		}
	}
	return NoMove, fmt.Errorf("%w: %s", ErrIllegalMove, m.USI())
}

// ApplyMove 对局中走一步：校验合法性，走子后判断对方是否已无着可走。
func (p *Position) ApplyMove(m Move) error {
	if p.GameOver {
		return fmt.Errorf("%w: game is over", ErrIllegalMove)
	}
	mv, err := p.FindLegal(m)
	if err != nil {
		return err
	}
	p.Make(mv)
	p.MoveCount++
	if p.histLen >= MaxGamePlies || !p.HasLegalMove() {
		p.GameOver = true
	}
	return nil
}

// Undo 悔一步。
func (p *Position) Undo() bool {
	mv := p.LastPlayed()
	if mv == NoMove {
		return false
	}
	p.Unmake(mv)
	if p.MoveCount > 0 {
		p.MoveCount--
	}
	p.GameOver = false
	return true
}

// Winner 对局结束时返回胜方（无合法着法的一方负），否则 NoSide。
// 因手数上限结束的对局没有胜方。
func (p *Position) Winner() Side {
	if !p.GameOver || p.IsDraw() {
		return NoSide
	}
	return Opposite(p.SideToMove)
}

// IsDraw 对局因手数上限结束，手番方仍有着可走。
func (p *Position) IsDraw() bool {
	return p.GameOver && p.histLen >= MaxGamePlies && p.HasLegalMove()
}
