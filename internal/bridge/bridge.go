// Package bridge 把扁平数组形式的局面转成 Position 并调用引擎，
// 供 cgo 导出和移动端原生模块使用。
package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"zoushogi/internal/engine"
	"zoushogi/internal/shogi"
)

var ErrBadLayout = errors.New("bridge: bad board layout")

// Result 把着法拆成各字段，和原生模块的返回结构一一对应。
type Result struct {
	MoveData uint32 `json:"moveData"` // 0 表示无着可走
	From     int    `json:"from"`
	To       int    `json:"to"`
	Piece    int    `json:"piece"`
	Captured int    `json:"captured"`
	Promote  bool   `json:"promote"`
	Drop     bool   `json:"drop"`
	Score    int    `json:"score"`
	Depth    int    `json:"depth"`
	Nodes    int64  `json:"nodes"`
	TimeMs   int64  `json:"timeMs"`
}

// BuildPosition 校验并构造局面。board 长 81，值为带符号的驹种（先手为正）；
// 持驹按驹种下标，长度至少 8（原生端的 16 格数组也接受）；turn 0 先手 1 后手。
func BuildPosition(board, senteHand, goteHand []int8, turn int) (*shogi.Position, error) {
	if len(board) != shogi.NumSquares {
		return nil, fmt.Errorf("%w: board has %d cells", ErrBadLayout, len(board))
	}
	var b shogi.Board
	for sq, v := range board {
		if v < -int8(shogi.Prince) || v > int8(shogi.Prince) {
			return nil, fmt.Errorf("%w: cell %d value %d", ErrBadLayout, sq, v)
		}
		b.Squares[sq] = shogi.Piece(v)
	}

	var hands [2]shogi.Hand
	for side, raw := range [][]int8{senteHand, goteHand} {
		if len(raw) < shogi.HandSize {
			return nil, fmt.Errorf("%w: hand %d has %d cells", ErrBadLayout, side, len(raw))
		}
		for pt, n := range raw {
			if n == 0 {
				continue
			}
			if !shogi.PieceType(pt).Droppable() || n < 0 || n > shogi.MaxHandCount {
				return nil, fmt.Errorf("%w: hand %d slot %d count %d", ErrBadLayout, side, pt, n)
			}
			hands[side][pt] = n
		}
	}

	var side shogi.Side
	switch turn {
	case 0:
		side = shogi.Sente
	case 1:
		side = shogi.Gote
	default:
		return nil, fmt.Errorf("%w: turn %d", ErrBadLayout, turn)
	}
	return shogi.NewPosition(b, hands, side), nil
}

// FindBestMove 在给定时间内搜索最佳着法。
func FindBestMove(ctx context.Context, e *engine.Engine, board, senteHand, goteHand []int8, turn, timeLimitMs int) (Result, error) {
	pos, err := BuildPosition(board, senteHand, goteHand, turn)
	if err != nil {
		return Result{}, err
	}
	res := e.Search(ctx, pos, engine.SearchConfig{TimeLimit: time.Duration(timeLimitMs) * time.Millisecond})
	out := Result{
		MoveData: uint32(res.BestMove),
		Score:    res.Score,
		Depth:    res.Depth,
		Nodes:    res.Nodes,
		TimeMs:   res.TimeUsed.Milliseconds(),
	}
	if mv := res.BestMove; mv != shogi.NoMove {
		out.From = mv.From()
		out.To = mv.To()
		out.Piece = int(mv.Piece())
		out.Captured = int(mv.Captured())
		out.Promote = mv.IsPromote()
		out.Drop = mv.IsDrop()
	}
	return out, nil
}

// LegalMoves 局面下全部合法着法。
func LegalMoves(board, senteHand, goteHand []int8, turn int) ([]shogi.Move, error) {
	pos, err := BuildPosition(board, senteHand, goteHand, turn)
	if err != nil {
		return nil, err
	}
	return pos.LegalMoves(), nil
}

// Encode 把局面拆回扁平数组，BuildPosition 的逆操作。
func Encode(pos *shogi.Position) (board, senteHand, goteHand []int8, turn int) {
	board = make([]int8, shogi.NumSquares)
	for sq := range board {
		board[sq] = int8(pos.Board.Squares[sq])
	}
	senteHand = append([]int8(nil), pos.Hands[shogi.Sente][:]...)
	goteHand = append([]int8(nil), pos.Hands[shogi.Gote][:]...)
	if pos.SideToMove == shogi.Gote {
		turn = 1
	}
	return board, senteHand, goteHand, turn
}
