package engine

import "zoushogi/internal/shogi"

type ttFlag uint8

const (
	ttNone ttFlag = iota
	ttExact
	ttLower // 分数 >= 存储值（beta 截断）
	ttUpper // 分数 <= 存储值（全部 fail-low）
)

type ttEntry struct {
	Key   uint64
	Move  shogi.Move
	Score int32
	Depth int8
	Flag  ttFlag
}

// transTable 定长数组，hash & mask 定位，直接覆盖。
type transTable struct {
	entries []ttEntry
	mask    uint64
}

func newTransTable(bits int) *transTable {
	n := 1 << bits
	return &transTable{
		entries: make([]ttEntry, n),
		mask:    uint64(n - 1),
	}
}

func (t *transTable) clear() {
	clear(t.entries)
}

// hashfull 前 1000 个槽位里的已用数（千分比）
func (t *transTable) hashfull() int {
	n := min(len(t.entries), 1000)
	used := 0
	for _, e := range t.entries[:n] {
		if e.Flag != ttNone {
			used++
		}
	}
	return used * 1000 / n
}

func (t *transTable) probe(key uint64) (ttEntry, bool) {
	e := t.entries[key&t.mask]
	if e.Flag == ttNone || e.Key != key {
		return ttEntry{}, false
	}
	return e, true
}

func (t *transTable) store(key uint64, depth int, score int, flag ttFlag, mv shogi.Move) {
	e := &t.entries[key&t.mask]
	// 同一局面没有新着法时保留旧的，排序还能用
	if mv == shogi.NoMove && e.Key == key {
		mv = e.Move
	}
	*e = ttEntry{
		Key:   key,
		Move:  mv,
		Score: int32(score),
		Depth: int8(depth),
		Flag:  flag,
	}
}

// 杀棋分存入置换表时换算成相对当前节点的距离，取出时再换回相对根节点
func scoreToTT(score, ply int) int {
	if score > MateThreshold {
		return score + ply
	}
	if score < -MateThreshold {
		return score - ply
	}
	return score
}

func scoreFromTT(score, ply int) int {
	if score > MateThreshold {
		return score - ply
	}
	if score < -MateThreshold {
		return score + ply
	}
	return score
}
