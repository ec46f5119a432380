// Package kif 读写 KIF 棋谱（UTF-8 或 Shift_JIS）。
package kif

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"zoushogi/internal/shogi"
)

type Encoding int

const (
	UTF8 Encoding = iota
	ShiftJIS
)

var ErrParse = errors.New("kif: parse error")

// Record 一局棋谱
type Record struct {
	Sente     string
	Gote      string
	StartSFEN string // 空串表示平手初始局面
	Moves     []shogi.Move
	Result    string // 终局记号，如 投了、詰み；空串表示未结束
}

const (
	headerSente = "先手"
	headerGote  = "後手"
	headerStart = "開始局面"
	headerTitle = "# ---- 酔象将棋 棋譜ファイル ----"
	moveHeader  = "手数----指手---------消費時間--"
)

var (
	moveLineRe   = regexp.MustCompile(`^\s*(\d+)\s+(\S+)`)
	fromSquareRe = regexp.MustCompile(`\(([1-9])([1-9])\)`)
)

var fileRunes = []rune("０１２３４５６７８９")
var rankRunes = []rune("〇一二三四五六七八九")

// 长名字在前，前缀匹配时不会被短名字截走
var pieceNames = []struct {
	name string
	pt   shogi.PieceType
}{
	{"成香", shogi.ProLance},
	{"成桂", shogi.ProKnight},
	{"成銀", shogi.ProSilver},
	{"太子", shogi.Prince},
	{"酔象", shogi.Elephant},
	{"と", shogi.ProPawn},
	{"馬", shogi.Horse},
	{"龍", shogi.Dragon},
	{"竜", shogi.Dragon},
	{"玉", shogi.King},
	{"王", shogi.King},
	{"飛", shogi.Rook},
	{"角", shogi.Bishop},
	{"金", shogi.Gold},
	{"銀", shogi.Silver},
	{"桂", shogi.Knight},
	{"香", shogi.Lance},
	{"歩", shogi.Pawn},
	{"象", shogi.Elephant},
}

func pieceName(pt shogi.PieceType) string {
	for _, p := range pieceNames {
		if p.pt == pt {
			return p.name
		}
	}
	return "?"
}

var dropLetters = map[shogi.PieceType]string{
	shogi.Pawn: "P", shogi.Lance: "L", shogi.Knight: "N", shogi.Silver: "S",
	shogi.Gold: "G", shogi.Bishop: "B", shogi.Rook: "R",
}

var terminalTokens = map[string]bool{
	"投了": true, "中断": true, "持将棋": true, "千日手": true, "詰み": true,
	"切れ負け": true, "反則勝ち": true, "反則負け": true, "入玉勝ち": true,
}

func startPosition(sfen string) (*shogi.Position, error) {
	if sfen == "" {
		return shogi.NewInitialPosition(), nil
	}
	return shogi.DecodeSFEN(sfen)
}

// Write 输出 KIF。着法先在局面上重放一遍，非法着法返回错误。
func Write(w io.Writer, rec Record, enc Encoding) (err error) {
	if enc == ShiftJIS {
		tw := transform.NewWriter(w, japanese.ShiftJIS.NewEncoder())
		defer func() {
			if cerr := tw.Close(); err == nil {
				err = cerr
			}
		}()
		w = tw
	}

	pos, err := startPosition(rec.StartSFEN)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, headerTitle)
	if rec.StartSFEN == "" {
		fmt.Fprintln(bw, "手合割：平手")
	} else {
		fmt.Fprintf(bw, "%s：%s\n", headerStart, rec.StartSFEN)
	}
	fmt.Fprintf(bw, "%s：%s\n", headerSente, rec.Sente)
	fmt.Fprintf(bw, "%s：%s\n", headerGote, rec.Gote)
	fmt.Fprintln(bw, moveHeader)

	prevTo := -1
	for i, mv := range rec.Moves {
		legal, err := pos.FindLegal(mv)
		if err != nil {
			return fmt.Errorf("move %d: %w", i+1, err)
		}
		fmt.Fprintf(bw, "%4d %s\n", i+1, formatMove(legal, prevTo))
		pos.Make(legal)
		prevTo = legal.To()
	}
	if rec.Result != "" {
		fmt.Fprintf(bw, "%4d %s\n", len(rec.Moves)+1, rec.Result)
	}
	return bw.Flush()
}

func formatMove(mv shogi.Move, prevTo int) string {
	var sb strings.Builder
	to := mv.To()
	if to == prevTo {
		sb.WriteString("同　")
	} else {
		file, rank := shogi.FileRank(to)
		sb.WriteRune(fileRunes[file])
		sb.WriteRune(rankRunes[rank])
	}
	sb.WriteString(pieceName(mv.Piece()))
	if mv.IsDrop() {
		sb.WriteString("打")
		return sb.String()
	}
	if mv.IsPromote() {
		sb.WriteString("成")
	}
	file, rank := shogi.FileRank(mv.From())
	fmt.Fprintf(&sb, "(%d%d)", file, rank)
	return sb.String()
}

// Parse 读取 KIF；自动识别 UTF-8（可带 BOM）和 Shift_JIS。
func Parse(r io.Reader) (Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Record{}, err
	}
	text, err := decode(data)
	if err != nil {
		return Record{}, err
	}

	var rec Record
	var pos *shogi.Position
	prevTo := -1
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if key, val, ok := headerLine(line); ok {
			switch key {
			case headerSente:
				rec.Sente = val
			case headerGote:
				rec.Gote = val
			case headerStart:
				rec.StartSFEN = val
			}
			continue
		}
		m := moveLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		token := m[2]
		if terminalTokens[token] {
			rec.Result = token
			break
		}
		if pos == nil {
			if pos, err = startPosition(rec.StartSFEN); err != nil {
				return Record{}, fmt.Errorf("%w: start position: %v", ErrParse, err)
			}
		}
		usi, err := tokenToUSI(token, prevTo)
		if err != nil {
			return Record{}, fmt.Errorf("%w: line %d: %v", ErrParse, i+1, err)
		}
		mv, err := pos.ParseUSI(usi)
		if err != nil {
			return Record{}, fmt.Errorf("%w: line %d: %v", ErrParse, i+1, err)
		}
		pos.Make(mv)
		rec.Moves = append(rec.Moves, mv)
		prevTo = mv.To()
	}
	return rec, nil
}

func decode(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), japanese.ShiftJIS.NewDecoder()))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(decoded) {
		return "", fmt.Errorf("%w: not UTF-8 or Shift_JIS", ErrParse)
	}
	return string(decoded), nil
}

func headerLine(line string) (key, val string, ok bool) {
	key, val, ok = strings.Cut(line, "：")
	if !ok || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	return strings.TrimSpace(key), strings.TrimSpace(val), true
}

func tokenToUSI(token string, prevTo int) (string, error) {
	work := token
	var to int
	if rest, ok := strings.CutPrefix(work, "同"); ok {
		if prevTo < 0 {
			return "", errors.New("同 without a previous move")
		}
		to = prevTo
		work = strings.TrimLeft(rest, " 　")
	} else {
		runes := []rune(work)
		if len(runes) < 2 {
			return "", fmt.Errorf("short move %q", token)
		}
		file, ok1 := parseFileRune(runes[0])
		rank, ok2 := parseRankRune(runes[1])
		if !ok1 || !ok2 {
			return "", fmt.Errorf("bad destination in %q", token)
		}
		to = shogi.Square(file, rank)
		work = string(runes[2:])
	}

	var pt shogi.PieceType
	for _, p := range pieceNames {
		if rest, ok := strings.CutPrefix(work, p.name); ok {
			pt, work = p.pt, rest
			break
		}
	}
	if pt == shogi.Empty {
		return "", fmt.Errorf("unknown piece in %q", token)
	}
	dest := squareUSI(to)

	if strings.HasPrefix(work, "打") {
		letter, ok := dropLetters[pt]
		if !ok {
			return "", fmt.Errorf("piece cannot be dropped in %q", token)
		}
		return letter + "*" + dest, nil
	}

	fm := fromSquareRe.FindStringSubmatch(work)
	if fm == nil {
		return "", fmt.Errorf("missing source square in %q", token)
	}
	from := squareUSI(shogi.Square(int(fm[1][0]-'0'), int(fm[2][0]-'0')))
	usi := from + dest
	if strings.HasPrefix(work, "成") {
		usi += "+"
	}
	return usi, nil
}

func squareUSI(sq int) string {
	file, rank := shogi.FileRank(sq)
	return fmt.Sprintf("%d%c", file, 'a'+rank-1)
}

func parseFileRune(r rune) (int, bool) {
	if r >= '1' && r <= '9' {
		return int(r - '0'), true
	}
	if r >= '１' && r <= '９' {
		return int(r-'１') + 1, true
	}
	return 0, false
}

func parseRankRune(r rune) (int, bool) {
	for i, k := range rankRunes[1:] {
		if r == k {
			return i + 1, true
		}
	}
	if r >= '1' && r <= '9' {
		return int(r - '0'), true
	}
	return 0, false
}
