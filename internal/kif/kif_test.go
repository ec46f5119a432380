package kif

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"

	"zoushogi/internal/shogi"
)

var openingUSI = []string{"7g7f", "3c3d", "8h2b+", "3a2b", "B*4e"}

func replay(t *testing.T, usi []string) []shogi.Move {
	t.Helper()
	pos := shogi.NewInitialPosition()
	moves := make([]shogi.Move, 0, len(usi))
	for _, s := range usi {
		mv, err := pos.ParseUSI(s)
		if err != nil {
			t.Fatalf("parse %s: %v", s, err)
		}
		pos.Make(mv)
		moves = append(moves, mv)
	}
	return moves
}

func TestWriteFormatsMoves(t *testing.T) {
	rec := Record{Sente: "先手さん", Gote: "後手さん", Moves: replay(t, openingUSI), Result: "投了"}
	var buf bytes.Buffer
	if err := Write(&buf, rec, UTF8); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"先手：先手さん",
		"   1 ７六歩(77)",
		"   2 ３四歩(33)",
		"   3 ２二角成(88)",
		"   4 同　銀(31)",
		"   5 ４五角打",
		"   6 投了",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	rec := Record{Sente: "engine", Gote: "human", Moves: replay(t, openingUSI), Result: "中断"}
	for _, enc := range []Encoding{UTF8, ShiftJIS} {
		var buf bytes.Buffer
		if err := Write(&buf, rec, enc); err != nil {
			t.Fatalf("write enc=%d: %v", enc, err)
		}
		if enc == ShiftJIS && utf8.Valid(buf.Bytes()) {
			t.Fatalf("Shift_JIS output should not be valid UTF-8")
		}
		got, err := Parse(&buf)
		if err != nil {
			t.Fatalf("parse enc=%d: %v", enc, err)
		}
		if diff := cmp.Diff(rec, got); diff != "" {
			t.Fatalf("enc=%d round trip (-want +got):\n%s", enc, diff)
		}
	}
}

func TestRoundTripFromSFEN(t *testing.T) {
	start := "8k/9/7G1/9/9/9/9/9/K8 b G 1"
	pos, err := shogi.DecodeSFEN(start)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	mv, err := pos.ParseUSI("G*1b")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	rec := Record{StartSFEN: start, Moves: []shogi.Move{mv}, Result: "詰み"}
	var buf bytes.Buffer
	if err := Write(&buf, rec, UTF8); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Parse(&buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff(rec, got); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
}

func TestParseHandWritten(t *testing.T) {
	text := "\uFEFF手合割：平手\n" +
		"先手：A\n" +
		"後手：B\n" +
		"手数----指手---------消費時間--\n" +
		"   1 ７六歩(77)   ( 0:01/00:00:01)\n" +
		"   2 ３四歩(33)   ( 0:01/00:00:01)\n" +
		"   3 投了\n"
	rec, err := Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := shogi.FormatMoves(rec.Moves); got != "7g7f 3c3d" {
		t.Fatalf("moves: got=%q", got)
	}
	if rec.Result != "投了" || rec.Sente != "A" || rec.Gote != "B" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestParseRejectsIllegalMove(t *testing.T) {
	text := "手数----指手---------消費時間--\n   1 ５五歩(57)\n"
	if _, err := Parse(strings.NewReader(text)); !errors.Is(err, ErrParse) {
		t.Fatalf("got err=%v want ErrParse", err)
	}
	text = "   1 同　歩(77)\n"
	if _, err := Parse(strings.NewReader(text)); !errors.Is(err, ErrParse) {
		t.Fatalf("同 on first move: got err=%v want ErrParse", err)
	}
}

func TestWriteRejectsIllegalMove(t *testing.T) {
	bad := shogi.NewMove(40, 31, shogi.Pawn, shogi.Empty, false)
	if err := Write(&bytes.Buffer{}, Record{Moves: []shogi.Move{bad}}, UTF8); !errors.Is(err, shogi.ErrIllegalMove) {
		t.Fatalf("got err=%v want ErrIllegalMove", err)
	}
}
