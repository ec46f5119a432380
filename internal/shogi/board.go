package shogi

const (
	Rows       = 9
	Cols       = 9
	NumSquares = Rows * Cols

	PromotionRows = 3 // 敌阵三段
)

func indexOf(row, col int) int { return row*Cols + col }
func rowOf(sq int) int         { return sq / Cols }
func colOf(sq int) int         { return sq % Cols }

func onBoard(row, col int) bool {
	return row >= 0 && row < Rows && col >= 0 && col < Cols
}

// Square 由 USI 坐标（筋 1..9，段 1..9）求格子下标。
func Square(file, rank int) int {
	if file < 1 || file > 9 || rank < 1 || rank > 9 {
		return -1
	}
	return indexOf(rank-1, Cols-file)
}

// FileRank 是 Square 的逆运算。
func FileRank(sq int) (file, rank int) {
	return Cols - colOf(sq), rowOf(sq) + 1
}

func Opposite(side Side) Side {
	if side == Sente {
		return Gote
	}
	if side == Gote {
		return Sente
	}
	return NoSide
}

// 前进方向：先手向上(-1)，后手向下(+1)
func forward(side Side) int {
	if side == Sente {
		return -1
	}
	return +1
}

// 是否在 side 的成驹区
func inPromotionZone(side Side, row int) bool {
	if side == Sente {
		return row < PromotionRows
	}
	return row >= Rows-PromotionRows
}

// 从 side 视角看，row 距离对方底线还有几段（0 = 最后一段）
func ranksToGo(side Side, row int) int {
	if side == Sente {
		return row
	}
	return Rows - 1 - row
}

// 歩、香到最后一段，桂到最后两段，必须成（也不能打到那里）
func mustPromote(side Side, pt PieceType, row int) bool {
	switch pt {
	case Pawn, Lance:
		return ranksToGo(side, row) == 0
	case Knight:
		return ranksToGo(side, row) <= 1
	}
	return false
}

// InitialSFEN 平手初始局面：标准将棋 + 两方玉前的酔象。
const InitialSFEN = "lnsgkgsnl/1r2e2b1/ppppppppp/9/9/9/PPPPPPPPP/1B2E2R1/LNSGKGSNL b - 1"

func NewInitialPosition() *Position {
	pos, err := DecodeSFEN(InitialSFEN)
	if err != nil {
		panic("initial SFEN: " + err.Error())
	}
	return pos
}
