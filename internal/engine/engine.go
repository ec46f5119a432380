package engine

import (
	"sync/atomic"

	"github.com/rs/zerolog"

	"zoushogi/internal/shogi"
)

// Book 定式库：命中时直接给出着法。
type Book interface {
	Probe(pos *shogi.Position) (shogi.Move, bool)
}

// Config 引擎配置
type Config struct {
	TTBits       int // 置换表 2^TTBits 个条目
	MaxDepth     int // 迭代加深上限
	BookPlyLimit int // 超过这个手数不再查定式
	Logger       zerolog.Logger
}

func DefaultConfig() Config {
	return Config{
		TTBits:       20,
		MaxDepth:     maxSearchDepth,
		BookPlyLimit: 24,
		Logger:       zerolog.Nop(),
	}
}

// Engine 持有跨搜索保留的状态：置换表、杀手着法、历史表。
// 不是并发安全的，一个 Engine 同一时间只能跑一个搜索。
type Engine struct {
	cfg  Config
	log  zerolog.Logger
	book Book

	tt      *transTable
	killers [MaxPly][2]shogi.Move
	history [2][historySlots][shogi.NumSquares]int32

	// 每层的走法缓冲，避免搜索中分配
	moveBufs  [MaxPly][shogi.MaxMoves]shogi.Move
	scoreBufs [MaxPly][shogi.MaxMoves]int32

	stop atomic.Bool
}

func NewEngine(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.TTBits <= 0 {
		cfg.TTBits = def.TTBits
	}
	if cfg.MaxDepth <= 0 || cfg.MaxDepth > maxSearchDepth {
		cfg.MaxDepth = maxSearchDepth
	}
	if cfg.BookPlyLimit < 0 {
		cfg.BookPlyLimit = 0
	}
	return &Engine{
		cfg: cfg,
		log: cfg.Logger,
		tt:  newTransTable(cfg.TTBits),
	}
}

// SetBook 挂上定式库；nil 表示不用。
func (e *Engine) SetBook(b Book) {
	e.book = b
}

func (e *Engine) Config() Config {
	return e.cfg
}

// Reset 新对局：清空置换表、杀手和历史。
func (e *Engine) Reset() {
	e.tt.clear()
	e.killers = [MaxPly][2]shogi.Move{}
	e.history = [2][historySlots][shogi.NumSquares]int32{}
}

// Stop 让正在进行的搜索尽快返回（下一次轮询时生效）。
func (e *Engine) Stop() {
	e.stop.Store(true)
}

// Hashfull 置换表占用的千分比（抽样前 1000 项）。
func (e *Engine) Hashfull() int {
	return e.tt.hashfull()
}
