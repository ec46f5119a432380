package shogi

import (
	"sort"
	"testing"
)

func mustDecode(t *testing.T, sfen string) *Position {
	t.Helper()
	pos, err := DecodeSFEN(sfen)
	if err != nil {
		t.Fatalf("decode %q: %v", sfen, err)
	}
	return pos
}

func usiList(moves []Move) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.USI()
	}
	sort.Strings(out)
	return out
}

func TestInitialPositionMoveCount(t *testing.T) {
	pos := NewInitialPosition()
	pseudo := pos.GeneratePseudoMoves()
	if len(pseudo) != 26 {
		t.Fatalf("pseudo-legal moves: got=%d want=26 (%v)", len(pseudo), usiList(pseudo))
	}
	legal := pos.LegalMoves()
	if len(legal) != 26 {
		t.Fatalf("legal moves: got=%d want=26", len(legal))
	}
}

func TestGenerateMovesPerPiece(t *testing.T) {
	cases := []struct {
		name string
		sfen string
		from string
		want int
	}{
		{"elephant never steps straight back", "1k7/9/9/9/4E4/9/9/9/1K7 b - 1", "5e", 7},
		{"gote elephant mirrored", "1k7/9/9/9/4e4/9/9/9/1K7 w - 1", "5e", 7},
		{"prince moves like a king", "1k7/9/9/9/4D4/9/9/9/1K7 b - 1", "5e", 8},
		{"rook promotes entering the zone", "1k7/9/9/9/4R4/9/9/9/1K7 b - 1", "5e", 19},
		{"dragon adds diagonal steps", "1k7/9/9/9/4+R4/9/9/9/1K7 b - 1", "5e", 20},
		{"horse adds orthogonal steps", "1k7/9/9/9/4+B4/9/9/9/1K7 b - 1", "5e", 20},
		{"lance stops at first piece inclusive", "1k7/9/4p4/9/4L4/9/9/9/1K7 b - 1", "5e", 3},
		{"knight jumps into the zone", "1k7/9/9/9/4N4/9/9/9/1K7 b - 1", "5e", 4},
		{"silver cannot step sideways", "1k7/9/9/9/4S4/9/9/9/1K7 b - 1", "5e", 5},
		{"tokin moves like gold", "1k7/9/9/9/4+P4/9/9/9/1K7 b - 1", "5e", 6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustDecode(t, tc.sfen)
			from, err := squareFromUSI(tc.from)
			if err != nil {
				t.Fatal(err)
			}
			var got []Move
			for _, mv := range pos.GeneratePseudoMoves() {
				if !mv.IsDrop() && mv.From() == from {
					got = append(got, mv)
				}
			}
			if len(got) != tc.want {
				t.Fatalf("moves from %s: got=%d want=%d (%v)", tc.from, len(got), tc.want, usiList(got))
			}
		})
	}
}

func squareFromUSI(s string) (int, error) {
	sq, ok := parseUSISquare(s)
	if !ok {
		return -1, ErrInvalidUSI
	}
	return sq, nil
}

func TestElephantNeverMovesStraightBack(t *testing.T) {
	pos := mustDecode(t, "1k7/9/9/9/4E4/9/9/9/1K7 b - 1")
	for _, mv := range pos.GeneratePseudoMoves() {
		if mv.USI() == "5e5f" {
			t.Fatalf("sente elephant moved straight back: %s", mv)
		}
	}
}

func TestPromotionRules(t *testing.T) {
	cases := []struct {
		name string
		sfen string
		want []string
	}{
		// 歩到最后一段只能成
		{"pawn on last rank must promote", "4k4/P8/9/9/9/9/9/9/4K4 b - 1", []string{"9b9a+"}},
		// 桂到倒数第二段也只能成
		{"knight on second last rank must promote", "4k4/9/9/4N4/9/9/9/9/K8 b - 1", []string{"5d4b+", "5d6b+"}},
		{"knight into third rank may choose", "4k4/9/9/9/4N4/9/9/9/K8 b - 1", []string{"5e4c", "5e4c+", "5e6c", "5e6c+"}},
		{"silver leaving zone may promote", "4k4/9/4S4/9/9/9/9/9/K8 b - 1", []string{
			"5c4b", "5c4b+", "5c4d", "5c4d+", "5c5b", "5c5b+", "5c6b", "5c6b+", "5c6d", "5c6d+",
		}},
		{"gold never promotes", "4k4/9/4G4/9/9/9/9/9/K8 b - 1", []string{
			"5c4b", "5c4c", "5c5b", "5c5d", "5c6b", "5c6c",
		}},
		{"gote pawn promotes on rank 9", "4k4/9/9/9/9/9/9/p8/4K4 w - 1", []string{"9h9i+"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustDecode(t, tc.sfen)
			kingSq := pos.KingSq[pos.SideToMove]
			var got []Move
			for _, mv := range pos.GeneratePseudoMoves() {
				if !mv.IsDrop() && mv.From() != kingSq {
					got = append(got, mv)
				}
			}
			gotUSI := usiList(got)
			if len(gotUSI) != len(tc.want) {
				t.Fatalf("got=%v want=%v", gotUSI, tc.want)
			}
			for i := range gotUSI {
				if gotUSI[i] != tc.want[i] {
					t.Fatalf("got=%v want=%v", gotUSI, tc.want)
				}
			}
		})
	}
}

func TestDropRestrictions(t *testing.T) {
	pos := mustDecode(t, "4k4/9/9/9/9/9/4P4/9/K8 b PLN 1")
	for _, mv := range pos.GeneratePseudoMoves() {
		if !mv.IsDrop() {
			continue
		}
		row, col := rowOf(mv.To()), colOf(mv.To())
		switch mv.Piece() {
		case Pawn:
			if row == 0 {
				t.Fatalf("pawn dropped on last rank: %s", mv)
			}
			if col == 4 {
				t.Fatalf("two pawns on one file: %s", mv)
			}
		case Lance:
			if row == 0 {
				t.Fatalf("lance dropped on last rank: %s", mv)
			}
		case Knight:
			if row <= 1 {
				t.Fatalf("knight dropped on last two ranks: %s", mv)
			}
		}
	}

	// 空格 78；歩去掉第一段 8 格和 5 筋 7 格得 63，桂去掉前两段 17 格得 61
	counts := map[PieceType]int{}
	for _, mv := range pos.GeneratePseudoMoves() {
		if mv.IsDrop() {
			counts[mv.Piece()]++
		}
	}
	if counts[Pawn] != 63 || counts[Lance] != 70 || counts[Knight] != 61 {
		t.Fatalf("drop counts: pawn=%d lance=%d knight=%d want 63/70/61",
			counts[Pawn], counts[Lance], counts[Knight])
	}
}

func TestTokinDoesNotBlockPawnDrop(t *testing.T) {
	pos := mustDecode(t, "4k4/9/9/9/9/9/4+P4/9/K8 b P 1")
	found := false
	for _, mv := range pos.GeneratePseudoMoves() {
		if mv.IsDrop() && colOf(mv.To()) == 4 {
			found = true
		}
	}
	if !found {
		t.Fatalf("tokin should not count for the two-pawn rule")
	}
}

func TestGenerateCapturesOnlyCaptures(t *testing.T) {
	pos := mustDecode(t, "ln1g3nl/1r1sk1gb1/p1pppp1pp/1p4p2/9/2P1e1P2/PP1PPP1PP/1BG2S1R1/LNS1KG1NL b Ss 17")
	var buf [MaxMoves]Move
	n := pos.GenerateCaptures(buf[:])
	want := 0
	for _, mv := range pos.GeneratePseudoMoves() {
		if mv.IsCapture() {
			want++
		}
	}
	if n != want {
		t.Fatalf("captures: got=%d want=%d", n, want)
	}
	for _, mv := range buf[:n] {
		if !mv.IsCapture() || mv.IsDrop() {
			t.Fatalf("non-capture from GenerateCaptures: %s", mv)
		}
	}
}

func TestLegalMovesNeverLeaveKingInCheck(t *testing.T) {
	pos := NewInitialPosition()
	for ply := 0; ply < 60; ply++ {
		moves := pos.LegalMoves()
		if len(moves) == 0 {
			break
		}
		side := pos.SideToMove
		for _, mv := range moves {
			pos.Make(mv)
			if pos.InCheck(side) {
				t.Fatalf("legal move %s leaves %v in check", mv, side)
			}
			pos.Unmake(mv)
		}
		pos.Make(moves[(ply*13+5)%len(moves)])
	}
}
