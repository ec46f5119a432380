package shogi

import (
	"errors"
	"testing"
)

func TestSFENRoundTrip(t *testing.T) {
	sfens := []string{
		InitialSFEN,
		"ln1g3nl/1r1sk1gb1/p1pppp1pp/1p4p2/9/2P1e1P2/PP1PPP1PP/1BG2S1R1/LNS1KG1NL b Ss 17",
		"4k4/2+R6/9/3E5/9/5b3/9/1+p7/4K4 w GN2Pr 40",
		"l3k3l/2g1d1g2/1n2+b2n1/9/4L4/9/1N2+R2N1/2G1E1G2/L3K3L b - 1",
		"8k/9/7G1/9/9/9/9/9/K8 b RB2G3S4N4L18P 1",
	}
	for _, sfen := range sfens {
		pos := mustDecode(t, sfen)
		if got := pos.EncodeSFEN(); got != sfen {
			t.Fatalf("round trip: got=%q want=%q", got, sfen)
		}
	}
}

func TestInitialPositionLayout(t *testing.T) {
	pos := NewInitialPosition()
	want := map[int]Piece{
		10: -Piece(Rook), 13: -Piece(Elephant), 16: -Piece(Bishop), 4: -Piece(King),
		64: Piece(Bishop), 67: Piece(Elephant), 70: Piece(Rook), 76: Piece(King),
	}
	for sq, pc := range want {
		if pos.Board.Squares[sq] != pc {
			t.Fatalf("square %d: got=%d want=%d", sq, pos.Board.Squares[sq], pc)
		}
	}
	for sq := 18; sq <= 26; sq++ {
		if pos.Board.Squares[sq] != -Piece(Pawn) || pos.Board.Squares[sq+36] != Piece(Pawn) {
			t.Fatalf("pawn rows broken at %d", sq)
		}
	}
	if pos.KingSq != [2]int{76, 4} {
		t.Fatalf("king squares: got=%v", pos.KingSq)
	}
	if pos.Material != 0 || pos.Placement != 0 {
		t.Fatalf("symmetric start should score zero: material=%d placement=%d", pos.Material, pos.Placement)
	}
}

func TestDecodeSFENRejectsBadInput(t *testing.T) {
	bad := []string{
		"",
		"lnsgkgsnl/1r2e2b1/ppppppppp/9/9/9/PPPPPPPPP/1B2E2R1 b - 1",
		"lnsgkgsnl/1r2e2b1/ppppppppp/9/9/9/PPPPPPPPP/1B2E2R1/LNSGKGSN b - 1",
		"lnsgkgsnl/1r2e2b1/ppppppppp/9/9/9/PPPPPPPPP/1B2E2R1/LNSGKGSNL x - 1",
		"lnsgkgsnl/1r2e2b1/ppppppppp/9/9/9/PPPPPPPPP/1B2E2R1/LNSGKGSNX b - 1",
		"lnsgkgsnl/1r2e2b1/ppppppppp/9/9/9/PPPPPPPPP/1B2E2R1/LNS+GKGSNL b - 1",
		"lnsgkgsnl/1r2e2b1/ppppppppp/9/9/9/PPPPPPPPP/1B2E2R1/LNSGKGSNL b K 1",
		"lnsgkgsnl/1r2e2b1/ppppppppp/9/9/9/PPPPPPPPP/1B2E2R1/LNSGKGSNL b - 0",
		"4k4/9/9/9/9/9/9/9/4K4 b 19P 1",
		"4k4/9/9/9/9/9/9/9/4K4 b 18446744073709551617P 1", // 溢出成小数目
	}
	for _, s := range bad {
		if _, err := DecodeSFEN(s); !errors.Is(err, ErrInvalidSFEN) {
			t.Fatalf("DecodeSFEN(%q): got err=%v want ErrInvalidSFEN", s, err)
		}
	}
}

func TestParseUSI(t *testing.T) {
	pos := NewInitialPosition()
	mv, err := pos.ParseUSI("7g7f")
	if err != nil {
		t.Fatalf("parse 7g7f: %v", err)
	}
	if mv.From() != Square(7, 7) || mv.To() != Square(7, 6) || mv.Piece() != Pawn {
		t.Fatalf("7g7f decoded wrong: from=%d to=%d piece=%d", mv.From(), mv.To(), mv.Piece())
	}
	if mv.USI() != "7g7f" {
		t.Fatalf("USI: got=%q", mv.USI())
	}

	if _, err := pos.ParseUSI("7g7e"); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("7g7e should be illegal, got err=%v", err)
	}
	if _, err := pos.ParseUSI("zz"); !errors.Is(err, ErrInvalidUSI) {
		t.Fatalf("zz should be malformed, got err=%v", err)
	}

	drop := mustDecode(t, "4k4/9/9/9/9/9/9/9/4K4 b P 1")
	mv, err = drop.ParseUSI("P*5e")
	if err != nil {
		t.Fatalf("parse P*5e: %v", err)
	}
	if !mv.IsDrop() || mv.Piece() != Pawn || mv.To() != Square(5, 5) || mv.USI() != "P*5e" {
		t.Fatalf("P*5e decoded wrong: %s", mv)
	}

	promo := mustDecode(t, "4k4/9/9/4S4/9/9/9/9/4K4 b - 1")
	mv, err = promo.ParseUSI("5d5c+")
	if err != nil {
		t.Fatalf("parse 5d5c+: %v", err)
	}
	if !mv.IsPromote() {
		t.Fatalf("5d5c+ should promote")
	}
}

func TestMoveCodecFields(t *testing.T) {
	m := NewMove(80, 0, Elephant, Dragon, true)
	if m.From() != 80 || m.To() != 0 || m.Piece() != Elephant || m.Captured() != Dragon || !m.IsPromote() || m.IsDrop() {
		t.Fatalf("codec fields: from=%d to=%d piece=%d cap=%d promote=%v drop=%v",
			m.From(), m.To(), m.Piece(), m.Captured(), m.IsPromote(), m.IsDrop())
	}
	d := NewDrop(40, Rook)
	if d.From() != DropFrom || d.To() != 40 || d.Piece() != Rook || !d.IsDrop() || d.IsCapture() {
		t.Fatalf("drop codec fields wrong: %032b", uint32(d))
	}
	if NoMove.USI() != "resign" {
		t.Fatalf("NoMove USI: %q", NoMove.USI())
	}
}
