package engine

import (
	"testing"

	"zoushogi/internal/shogi"
)

func TestMateScoreRoundTrip(t *testing.T) {
	for _, score := range []int{0, 150, -150, MateScore - 3, -MateScore + 5} {
		for _, ply := range []int{0, 1, 7, 20} {
			if got := scoreFromTT(scoreToTT(score, ply), ply); got != score {
				t.Fatalf("score=%d ply=%d: got %d", score, ply, got)
			}
		}
	}
	// 在第 5 层看到的“3 手后杀”，存进去后在第 2 层取出应该是更远的杀
	stored := scoreToTT(MateScore-8, 5)
	if got := scoreFromTT(stored, 2); got != MateScore-5 {
		t.Fatalf("mate distance not rebased: got=%d want=%d", got, MateScore-5)
	}
}

func TestTransTableStoreProbe(t *testing.T) {
	tt := newTransTable(8)
	mv := shogi.NewMove(60, 51, shogi.Pawn, shogi.Empty, false)
	const key = 0xdeadbeef

	if _, ok := tt.probe(key); ok {
		t.Fatalf("empty table hit")
	}
	tt.store(key, 4, 120, ttExact, mv)
	e, ok := tt.probe(key)
	if !ok || e.Move != mv || e.Score != 120 || e.Depth != 4 || e.Flag != ttExact {
		t.Fatalf("probe: ok=%v entry=%+v", ok, e)
	}

	// 没有着法的覆盖保留旧着法
	tt.store(key, 2, -30, ttUpper, shogi.NoMove)
	e, _ = tt.probe(key)
	if e.Move != mv || e.Depth != 2 || e.Flag != ttUpper {
		t.Fatalf("overwrite: entry=%+v", e)
	}

	// 同一槽位的不同 key
	other := uint64(key + 256)
	if _, ok := tt.probe(other); ok {
		t.Fatalf("different key in the same slot should miss")
	}
	tt.store(other, 1, 0, ttLower, shogi.NoMove)
	if e, _ := tt.probe(other); e.Move != shogi.NoMove {
		t.Fatalf("move leaked across keys: %s", e.Move)
	}

	tt.clear()
	if _, ok := tt.probe(other); ok {
		t.Fatalf("clear left entries behind")
	}
}

func TestTransTableHashfull(t *testing.T) {
	tt := newTransTable(8)
	if got := tt.hashfull(); got != 0 {
		t.Fatalf("empty table: got=%d", got)
	}
	for key := uint64(0); key < 64; key++ {
		tt.store(key, 1, 0, ttExact, shogi.NoMove)
	}
	if got := tt.hashfull(); got != 250 {
		t.Fatalf("quarter full: got=%d want=250", got)
	}
	tt.clear()
	if got := tt.hashfull(); got != 0 {
		t.Fatalf("after clear: got=%d", got)
	}
}
