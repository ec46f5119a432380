// Package book 定跡库：按局面 SFEN（不含手数）查候补手，按分数加权随机选一手。
package book

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"lukechampine.com/frand"

	"zoushogi/internal/shogi"
)

const (
	formatVersion = 1
	// 最低分的候补手也保留一点权重
	weightFloor = 10
)

var (
	ErrNotFound    = errors.New("book: position not in book")
	ErrInvalidBook = errors.New("book: invalid data")
)

// Entry 一个候补手
type Entry struct {
	Move  string `json:"m"` // USI，如 7g7f、P*5e
	Score int    `json:"s"`
}

type fileFormat struct {
	Version   int                `json:"v"`
	Positions map[string][]Entry `json:"p"`
}

type Book struct {
	positions map[string][]Entry
}

// Load 读入 JSON 定跡
func Load(r io.Reader) (*Book, error) {
	var f fileFormat
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBook, err)
	}
	if f.Version != formatVersion {
		return nil, fmt.Errorf("%w: version %d", ErrInvalidBook, f.Version)
	}
	b := &Book{positions: make(map[string][]Entry, len(f.Positions))}
	for sfen, entries := range f.Positions {
		if len(entries) > 0 {
			b.positions[sfen] = entries
		}
	}
	return b, nil
}

func LoadFile(path string) (*Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Len 局面数
func (b *Book) Len() int {
	return len(b.positions)
}

// Candidates 当前局面在库里的合法候补手（已解析成 Move），以及对应分数。
func (b *Book) Candidates(pos *shogi.Position) ([]shogi.Move, []int, error) {
	entries, ok := b.positions[pos.BoardSFEN()]
	if !ok {
		return nil, nil, ErrNotFound
	}
	moves := make([]shogi.Move, 0, len(entries))
	scores := make([]int, 0, len(entries))
	for _, en := range entries {
		mv, err := pos.ParseUSI(en.Move)
		if err != nil {
			continue
		}
		moves = append(moves, mv)
		scores = append(scores, en.Score)
	}
	if len(moves) == 0 {
		return nil, nil, ErrNotFound
	}
	return moves, scores, nil
}

// Probe 实现 engine.Book：权重 = 分数 - 最低分 + 10
func (b *Book) Probe(pos *shogi.Position) (shogi.Move, bool) {
	moves, scores, err := b.Candidates(pos)
	if err != nil {
		return shogi.NoMove, false
	}
	return moves[pickWeighted(scores, frand.Intn)], true
}

func pickWeighted(scores []int, intn func(int) int) int {
	lo := scores[0]
	for _, s := range scores[1:] {
		lo = min(lo, s)
	}
	total := 0
	for _, s := range scores {
		total += s - lo + weightFloor
	}
	r := intn(total)
	for i, s := range scores {
		r -= s - lo + weightFloor
		if r < 0 {
			return i
		}
	}
	return len(scores) - 1
}
