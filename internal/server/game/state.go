package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"zoushogi/internal/engine"
	"zoushogi/internal/kif"
	"zoushogi/internal/shogi"
)

const (
	// 连续 resignStreak 次搜索分数低于 resignScore 时 AI 认输
	resignScore  = -3000
	resignStreak = 5
)

var ErrGameOver = errors.New("game is over")

// Result 对局结果，进行中为空串
type Result string

const (
	ResultNone        Result = ""
	ResultSenteWin    Result = "sente_win"
	ResultGoteWin     Result = "gote_win"
	ResultSenteResign Result = "sente_resign"
	ResultGoteResign  Result = "gote_resign"
	ResultDraw        Result = "draw" // 到达手数上限
)

type GameState struct {
	ID        string
	CreatedAt time.Time

	updated atomic.Int64 // UnixNano，淘汰空闲对局时不用拿 mu

	mu        sync.Mutex
	startSFEN string // 空串为平手初始局面
	pos       *shogi.Position
	eng       *sharedEngine
	resigned  shogi.Side // 认输的一方，NoSide 表示没人认输
	lowCount  int        // AI 连续低分次数
}

// AIResult AI 走一步的结果
type AIResult struct {
	Move     shogi.Move
	Score    int
	Depth    int
	Nodes    int64
	Elapsed  time.Duration
	FromBook bool
	Resigned bool
}

// Snapshot 某一时刻的对局状态，给接口层序列化用
type Snapshot struct {
	ID         string
	SFEN       string
	SideToMove shogi.Side
	MoveCount  int
	LastMove   shogi.Move
	Moves      []shogi.Move
	LegalMoves []shogi.Move
	InCheck    bool
	Result     Result
}

func newGameState(id, startSFEN string, pos *shogi.Position, eng *sharedEngine) *GameState {
	g := &GameState{
		ID:        id,
		CreatedAt: time.Now(),
		startSFEN: startSFEN,
		pos:       pos,
		eng:       eng,
		resigned:  shogi.NoSide,
	}
	g.updated.Store(g.CreatedAt.UnixNano())
	return g
}

func (g *GameState) result() Result {
	switch g.resigned {
	case shogi.Sente:
		return ResultSenteResign
	case shogi.Gote:
		return ResultGoteResign
	}
	if g.pos.IsDraw() {
		return ResultDraw
	}
	switch g.pos.Winner() {
	case shogi.Sente:
		return ResultSenteWin
	case shogi.Gote:
		return ResultGoteWin
	}
	return ResultNone
}

func (g *GameState) over() bool {
	return g.result() != ResultNone
}

func (g *GameState) touch() {
	g.updated.Store(time.Now().UnixNano())
}

// UpdatedAt 最后一次走子、悔棋或认输的时间
func (g *GameState) UpdatedAt() time.Time {
	return time.Unix(0, g.updated.Load())
}

// Snapshot 拷贝当前状态
func (g *GameState) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

func (g *GameState) snapshot() Snapshot {
	pos := g.pos
	s := Snapshot{
		ID:         g.ID,
		SFEN:       pos.EncodeSFEN(),
		SideToMove: pos.SideToMove,
		MoveCount:  pos.MoveCount,
		InCheck:    pos.InCheck(pos.SideToMove),
		LastMove:   pos.LastPlayed(),
		Moves:      pos.MoveHistory(),
		Result:     g.result(),
	}
	if !g.over() {
		s.LegalMoves = pos.LegalMoves()
	}
	return s
}

// Play 人类走一步（USI）
func (g *GameState) Play(usi string) (shogi.Move, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.over() {
		return shogi.NoMove, ErrGameOver
	}
	mv, err := g.pos.ParseUSI(usi)
	if err != nil {
		return shogi.NoMove, err
	}
	if err := g.pos.ApplyMove(mv); err != nil {
		return shogi.NoMove, err
	}
	g.touch()
	return mv, nil
}

// AIMove 引擎替手番方走一步；连续大幅落后时认输而不走。
func (g *GameState) AIMove(ctx context.Context, timeLimit time.Duration) (AIResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.over() {
		return AIResult{}, ErrGameOver
	}

	side := g.pos.SideToMove
	g.eng.mu.Lock()
	res := g.eng.e.Search(ctx, g.pos, engine.SearchConfig{TimeLimit: timeLimit})
	g.eng.mu.Unlock()
	out := AIResult{
		Move:     res.BestMove,
		Score:    res.Score,
		Depth:    res.Depth,
		Nodes:    res.Nodes,
		Elapsed:  res.TimeUsed,
		FromBook: res.FromBook,
	}
	if res.BestMove == shogi.NoMove {
		return out, ErrGameOver
	}

	if !res.FromBook && res.Score < resignScore {
		g.lowCount++
	} else {
		g.lowCount = 0
	}
	if g.lowCount >= resignStreak {
		g.resigned = side
		out.Move = shogi.NoMove
		out.Resigned = true
		g.touch()
		return out, nil
	}

	if err := g.pos.ApplyMove(res.BestMove); err != nil {
		return out, fmt.Errorf("engine move %s: %w", res.BestMove, err)
	}
	g.touch()
	return out, nil
}

// Resign side 认输
func (g *GameState) Resign(side shogi.Side) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.over() {
		return ErrGameOver
	}
	g.resigned = side
	g.touch()
	return nil
}

// Undo 悔棋最多 n 手，返回实际撤销的手数；认输状态一并撤销。
func (g *GameState) Undo(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	done := 0
	for done < n && g.pos.Undo() {
		done++
	}
	if done > 0 || g.resigned != shogi.NoSide {
		g.resigned = shogi.NoSide
		g.lowCount = 0
		g.touch()
	}
	return done
}

// Restart 回到开局局面重新开始，并清空引擎的置换表和历史。
func (g *GameState) Restart() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.startSFEN == "" {
		g.pos.Reset()
	} else {
		pos, err := shogi.DecodeSFEN(g.startSFEN)
		if err != nil {
			return err
		}
		g.pos = pos
	}
	g.resigned = shogi.NoSide
	g.lowCount = 0
	g.eng.reset()
	g.touch()
	return nil
}

// Tsume 对当前局面做诘将探测，不改变局面
func (g *GameState) Tsume(maxDepth int) engine.TsumeResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.eng.mu.Lock()
	defer g.eng.mu.Unlock()
	return g.eng.e.TsumeSearch(g.pos, maxDepth)
}

// Analyze 在局面副本上搜索，每完成一层回调 info；不占用对局锁
func (g *GameState) Analyze(ctx context.Context, cfg engine.SearchConfig) engine.SearchResult {
	g.mu.Lock()
	pos := g.pos.Clone()
	g.mu.Unlock()

	g.eng.mu.Lock()
	defer g.eng.mu.Unlock()
	return g.eng.e.Search(ctx, pos, cfg)
}

// Record 导出棋谱
func (g *GameState) Record(sente, gote string) kif.Record {
	g.mu.Lock()
	defer g.mu.Unlock()
	rec := kif.Record{Sente: sente, Gote: gote, StartSFEN: g.startSFEN, Moves: g.pos.MoveHistory()}
	switch g.result() {
	case ResultSenteWin, ResultGoteWin:
		rec.Result = "詰み"
	case ResultSenteResign, ResultGoteResign:
		rec.Result = "投了"
	case ResultDraw:
		rec.Result = "持将棋"
	}
	return rec
}
