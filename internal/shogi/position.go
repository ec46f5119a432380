package shogi

// MaxHistory 走子栈深度（对局手数 + 搜索深度）
const MaxHistory = 1024

// MaxGamePlies 对局手数上限，剩下的栈留给搜索。到达上限按和棋结束。
const MaxGamePlies = MaxHistory - 128

type undoEntry struct {
	hash     uint64
	move     Move
	captured Piece
	lastMove int
}

// Position = 棋盘 + 持驹 + 手番，以及增量维护的哈希/子力/位置分。
// 搜索在同一个对象上 Make/Unmake，不做拷贝。
type Position struct {
	Board      Board
	Hands      [2]Hand
	SideToMove Side

	Ply       int  // 已走的半回合数
	MoveCount int  // 对局中 ApplyMove 走过的手数
	GameOver  bool // 一方无合法着法
	LastMove  int  // 上一手落点，-1 表示无

	Hash      uint64
	Material  int // 先手视角
	Placement int // 先手视角
	KingSq    [2]int

	history [MaxHistory]undoEntry
	histLen int
}

// Reset 回到初始局面。
func (p *Position) Reset() {
	*p = *NewInitialPosition()
}

// refresh 全量重算所有派生字段。
func (p *Position) refresh() {
	p.KingSq = [2]int{-1, -1}
	for sq, pc := range p.Board.Squares {
		if pc != 0 && pc.Type() == King {
			p.KingSq[pc.Side()] = sq
		}
	}
	p.Hash = p.CalculateHash()
	p.Material, p.Placement = p.CalculateScores()
}

// HistoryLen 当前走子栈深度。
func (p *Position) HistoryLen() int {
	return p.histLen
}

// MoveHistory 返回已走着法（不含空着）。
func (p *Position) MoveHistory() []Move {
	out := make([]Move, 0, p.histLen)
	for i := 0; i < p.histLen; i++ {
		if mv := p.history[i].move; mv != NoMove {
			out = append(out, mv)
		}
	}
	return out
}

// LastPlayed 最后一手，没有则 NoMove。
func (p *Position) LastPlayed() Move {
	if p.histLen == 0 {
		return NoMove
	}
	return p.history[p.histLen-1].move
}

func (p *Position) KingExists(side Side) bool {
	return p.KingSq[side] >= 0
}

// PieceCount 盘上 + 手上的棋子总数
func (p *Position) PieceCount() int {
	n := p.Hands[Sente].Count() + p.Hands[Gote].Count()
	for _, pc := range p.Board.Squares {
		if pc != 0 {
			n++
		}
	}
	return n
}

// Clone 复制局面（含走子栈），给需要独立局面的调用方用。
func (p *Position) Clone() *Position {
	c := *p
	return &c
}

// NewPosition 由盘面、持驹和手番直接构造局面，派生字段全量计算。
func NewPosition(b Board, hands [2]Hand, side Side) *Position {
	p := &Position{Board: b, Hands: hands, SideToMove: side, LastMove: -1}
	p.refresh()
	p.GameOver = !p.HasLegalMove()
	return p
}
