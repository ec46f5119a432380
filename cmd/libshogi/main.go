package main

/*
#include <stdbool.h>
#include <stdint.h>
*/
import "C"
import (
	"context"
	"sync"
	"unsafe"

	"zoushogi/internal/bridge"
	"zoushogi/internal/engine"
	"zoushogi/internal/logx"
)

// 输出数组布局
const (
	outMoveData = iota
	outFrom
	outTo
	outPiece
	outCaptured
	outPromote
	outDrop
	outScore
	outDepth
	outNodes
	outTimeMs
	outLen
)

var (
	engineOnce sync.Once
	eng        *engine.Engine
	engineMu   sync.Mutex
)

func sharedEngine() *engine.Engine {
	engineOnce.Do(func() {
		cfg := engine.DefaultConfig()
		cfg.Logger = logx.New(logx.Options{Level: "warn"})
		eng = engine.NewEngine(cfg)
	})
	return eng
}

func goArrays(boardPtr, sentePtr, gotePtr *C.int8_t, handLen C.int) (board, sente, gote []int8) {
	board = unsafe.Slice((*int8)(unsafe.Pointer(boardPtr)), 81)
	sente = unsafe.Slice((*int8)(unsafe.Pointer(sentePtr)), int(handLen))
	gote = unsafe.Slice((*int8)(unsafe.Pointer(gotePtr)), int(handLen))
	return
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// ShogiFindBestMove 搜索最佳着法，结果写入 out（11 个 int64）。成功返回 0，局面非法返回 -1。
//
//export ShogiFindBestMove
func ShogiFindBestMove(boardPtr, sentePtr, gotePtr *C.int8_t, handLen C.int, turn C.int, timeLimitMs C.int, out *C.int64_t) C.int {
	board, sente, gote := goArrays(boardPtr, sentePtr, gotePtr, handLen)

	engineMu.Lock()
	defer engineMu.Unlock()
	res, err := bridge.FindBestMove(context.Background(), sharedEngine(), board, sente, gote, int(turn), int(timeLimitMs))
	if err != nil {
		return -1
	}

	o := unsafe.Slice((*int64)(unsafe.Pointer(out)), outLen)
	o[outMoveData] = int64(res.MoveData)
	o[outFrom] = int64(res.From)
	o[outTo] = int64(res.To)
	o[outPiece] = int64(res.Piece)
	o[outCaptured] = int64(res.Captured)
	o[outPromote] = boolInt(res.Promote)
	o[outDrop] = boolInt(res.Drop)
	o[outScore] = int64(res.Score)
	o[outDepth] = int64(res.Depth)
	o[outNodes] = res.Nodes
	o[outTimeMs] = res.TimeMs
	return 0
}

// ShogiLegalMoves 把合法着法的编码写入 out，最多 capacity 个，返回个数；局面非法返回 -1。
//
//export ShogiLegalMoves
func ShogiLegalMoves(boardPtr, sentePtr, gotePtr *C.int8_t, handLen C.int, turn C.int, out *C.uint32_t, capacity C.int) C.int {
	board, sente, gote := goArrays(boardPtr, sentePtr, gotePtr, handLen)
	moves, err := bridge.LegalMoves(board, sente, gote, int(turn))
	if err != nil {
		return -1
	}
	o := unsafe.Slice((*uint32)(unsafe.Pointer(out)), int(capacity))
	n := 0
	for _, mv := range moves {
		if n >= len(o) {
			break
		}
		o[n] = uint32(mv)
		n++
	}
	return C.int(n)
}

// ShogiResetEngine 新对局前清空置换表和历史。
//
//export ShogiResetEngine
func ShogiResetEngine() {
	engineMu.Lock()
	defer engineMu.Unlock()
	sharedEngine().Reset()
}

func main() {}
