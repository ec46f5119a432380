package shogi

import (
	"fmt"
	"strings"
)

// Move 压缩成 32 位：
//
//	bit 0-6   from（打驹时为 DropFrom）
//	bit 7-13  to
//	bit 14    成
//	bit 15    打
//	bit 16-20 走子类型（打驹时为所打类型）
//	bit 21-25 被吃子类型
type Move uint32

const (
	NoMove   Move = 0
	DropFrom      = 127

	// MaxMoves 单个局面伪合法走法数的上限
	MaxMoves = 1024
)

const (
	moveToShift       = 7
	movePromoteBit    = 1 << 14
	moveDropBit       = 1 << 15
	movePieceShift    = 16
	moveCapturedShift = 21
	moveSqMask        = 0x7f
	moveTypeMask      = 0x1f
)

// NewMove 编码一个盘上走子。
func NewMove(from, to int, piece, captured PieceType, promote bool) Move {
	m := Move(from&moveSqMask) |
		Move(to&moveSqMask)<<moveToShift |
		Move(int(piece)&moveTypeMask)<<movePieceShift |
		Move(int(captured)&moveTypeMask)<<moveCapturedShift
	if promote {
		m |= movePromoteBit
	}
	return m
}

// NewDrop 编码一个打驹。
func NewDrop(to int, piece PieceType) Move {
	return Move(DropFrom) |
		Move(to&moveSqMask)<<moveToShift |
		moveDropBit |
		Move(int(piece)&moveTypeMask)<<movePieceShift
}

func (m Move) From() int           { return int(m & moveSqMask) }
func (m Move) To() int             { return int(m>>moveToShift) & moveSqMask }
func (m Move) IsPromote() bool     { return m&movePromoteBit != 0 }
func (m Move) IsDrop() bool        { return m&moveDropBit != 0 }
func (m Move) Piece() PieceType    { return PieceType(m>>movePieceShift) & moveTypeMask }
func (m Move) Captured() PieceType { return PieceType(m>>moveCapturedShift) & moveTypeMask }
func (m Move) IsCapture() bool     { return m.Captured() != Empty }
func (m Move) IsQuiet() bool       { return !m.IsCapture() && !m.IsPromote() }

func (m Move) sameAction(o Move) bool { return m&0xffff == o&0xffff && m.Piece() == o.Piece() }

// Equal 比较着法本身（忽略被吃子信息，便于和外部传入的着法对比）。
func (m Move) Equal(o Move) bool {
	return m.sameAction(o)
}

var usiPieceLetters = [NumPieceTypes]byte{
	Pawn: 'P', Lance: 'L', Knight: 'N', Silver: 'S', Gold: 'G', Bishop: 'B', Rook: 'R',
}

func squareUSI(sq int) string {
	file, rank := FileRank(sq)
	return fmt.Sprintf("%d%c", file, 'a'+rank-1)
}

// USI 返回 "7g7f"、"2b3c+"、"P*5e" 形式的着法字符串。
func (m Move) USI() string {
	if m == NoMove {
		return "resign"
	}
	if m.IsDrop() {
		return fmt.Sprintf("%c*%s", usiPieceLetters[m.Piece()], squareUSI(m.To()))
	}
	s := squareUSI(m.From()) + squareUSI(m.To())
	if m.IsPromote() {
		s += "+"
	}
	return s
}

func (m Move) String() string {
	return m.USI()
}

// FormatMoves 用空格连接着法，调试/日志用。
func FormatMoves(moves []Move) string {
	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = m.USI()
	}
	return strings.Join(parts, " ")
}
