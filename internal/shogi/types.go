package shogi

type Side int8

const (
	NoSide Side = -1
	Sente  Side = 0 // 先手，正数棋子，向第 0 行前进
	Gote   Side = 1
)

func (s Side) String() string {
	switch s {
	case Sente:
		return "sente"
	case Gote:
		return "gote"
	default:
		return "none"
	}
}

type PieceType int8

const (
	Empty     PieceType = iota
	Pawn                // 歩
	Lance               // 香
	Knight              // 桂
	Silver              // 銀
	Gold                // 金
	Bishop              // 角
	Rook                // 飛
	King                // 玉
	ProPawn             // と
	ProLance            // 成香
	ProKnight           // 成桂
	ProSilver           // 成銀
	Horse               // 馬
	Dragon              // 龍
	Elephant            // 酔象
	Prince              // 太子

	NumPieceTypes = 17
)

var promoteTable = [NumPieceTypes]PieceType{
	Pawn:     ProPawn,
	Lance:    ProLance,
	Knight:   ProKnight,
	Silver:   ProSilver,
	Bishop:   Horse,
	Rook:     Dragon,
	Elephant: Prince,
}

var unpromoteTable = [NumPieceTypes]PieceType{
	Pawn: Pawn, Lance: Lance, Knight: Knight, Silver: Silver, Gold: Gold,
	Bishop: Bishop, Rook: Rook, King: King,
	ProPawn: Pawn, ProLance: Lance, ProKnight: Knight, ProSilver: Silver,
	Horse: Bishop, Dragon: Rook,
	Elephant: Elephant, Prince: Elephant,
}

// Promote 返回成驹类型；不能成的返回 Empty。
func (pt PieceType) Promote() PieceType {
	if pt <= Empty || pt >= NumPieceTypes {
		return Empty
	}
	return promoteTable[pt]
}

// Unpromote 返回成驹的原始类型。
func (pt PieceType) Unpromote() PieceType {
	if pt <= Empty || pt >= NumPieceTypes {
		return Empty
	}
	return unpromoteTable[pt]
}

func (pt PieceType) IsPromoted() bool {
	return pt >= ProPawn && pt <= Dragon || pt == Prince
}

// Droppable 可以放进持驹的类型（歩..飛）。
func (pt PieceType) Droppable() bool {
	return pt >= Pawn && pt <= Rook
}

type Piece int8 // 0=空；>0 先手；<0 后手；abs=PieceType

func MakePiece(side Side, pt PieceType) Piece {
	if pt == Empty || side == NoSide {
		return 0
	}
	if side == Sente {
		return Piece(pt)
	}
	return -Piece(pt)
}

func (p Piece) Type() PieceType {
	if p < 0 {
		return PieceType(-p)
	}
	return PieceType(p)
}

func (p Piece) Side() Side {
	if p == 0 {
		return NoSide
	}
	if p > 0 {
		return Sente
	}
	return Gote
}

type Board struct {
	Squares [NumSquares]Piece
}

// HandSize 持驹数组长度，下标为 PieceType，0 不用。
const HandSize = 8

type Hand [HandSize]int8

func (h *Hand) Count() int {
	n := 0
	for pt := Pawn; pt <= Rook; pt++ {
		n += int(h[pt])
	}
	return n
}
