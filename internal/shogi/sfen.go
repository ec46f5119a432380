package shogi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

var (
	ErrInvalidSFEN = errors.New("invalid SFEN")
	ErrInvalidUSI  = errors.New("invalid USI move")
)

var sfenLetters = [NumPieceTypes]string{
	Pawn: "P", Lance: "L", Knight: "N", Silver: "S", Gold: "G", Bishop: "B", Rook: "R", King: "K",
	ProPawn: "+P", ProLance: "+L", ProKnight: "+N", ProSilver: "+S", Horse: "+B", Dragon: "+R",
	Elephant: "E", Prince: "D",
}

var letterToPieceType = map[rune]PieceType{
	'P': Pawn, 'L': Lance, 'N': Knight, 'S': Silver, 'G': Gold, 'B': Bishop, 'R': Rook, 'K': King,
	'E': Elephant, 'D': Prince,
}

// 持驹书写顺序
var handOrder = [...]PieceType{Rook, Bishop, Gold, Silver, Knight, Lance, Pawn}

func pieceToSFEN(pc Piece) string {
	s := sfenLetters[pc.Type()]
	if pc.Side() == Gote {
		return strings.ToLower(s)
	}
	return s
}

// EncodeSFEN 输出 "盘面 手番 持驹 手数"。
func (p *Position) EncodeSFEN() string {
	var sb strings.Builder
	sb.WriteString(p.BoardSFEN())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.Ply + 1))
	return sb.String()
}

// BoardSFEN 不带手数的 SFEN，用作定式库的键。
func (p *Position) BoardSFEN() string {
	var sb strings.Builder
	for r := 0; r < Rows; r++ {
		if r > 0 {
			sb.WriteByte('/')
		}
		empty := 0
		for c := 0; c < Cols; c++ {
			pc := p.Board.Squares[indexOf(r, c)]
			if pc == 0 {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteString(pieceToSFEN(pc))
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
	}
	if p.SideToMove == Sente {
		sb.WriteString(" b ")
	} else {
		sb.WriteString(" w ")
	}

	n := sb.Len()
	for _, side := range []Side{Sente, Gote} {
		for _, pt := range handOrder {
			cnt := p.Hands[side][pt]
			if cnt <= 0 {
				continue
			}
			if cnt > 1 {
				sb.WriteString(strconv.Itoa(int(cnt)))
			}
			sb.WriteString(pieceToSFEN(MakePiece(side, pt)))
		}
	}
	if sb.Len() == n {
		sb.WriteByte('-')
	}
	return sb.String()
}

// DecodeSFEN 解析 SFEN；手数可省略。
func DecodeSFEN(sfen string) (*Position, error) {
	fields := strings.Fields(sfen)
	if len(fields) < 3 {
		return nil, fmt.Errorf("%w: need board, side and hands", ErrInvalidSFEN)
	}
	pos := &Position{LastMove: -1}

	rows := strings.Split(fields[0], "/")
	if len(rows) != Rows {
		return nil, fmt.Errorf("%w: %d ranks", ErrInvalidSFEN, len(rows))
	}
	for r, row := range rows {
		c := 0
		promoted := false
		for _, ch := range row {
			switch {
			case ch >= '1' && ch <= '9':
				if promoted {
					return nil, fmt.Errorf("%w: dangling '+'", ErrInvalidSFEN)
				}
				c += int(ch - '0')
				continue
			case ch == '+':
				promoted = true
				continue
			}
			if c >= Cols {
				return nil, fmt.Errorf("%w: rank %d too long", ErrInvalidSFEN, r+1)
			}
			pt, ok := letterToPieceType[unicode.ToUpper(ch)]
			if !ok {
				return nil, fmt.Errorf("%w: piece %q", ErrInvalidSFEN, ch)
			}
			if promoted {
				if pt = pt.Promote(); pt == Empty {
					return nil, fmt.Errorf("%w: %q cannot promote", ErrInvalidSFEN, ch)
				}
				promoted = false
			}
			side := Gote
			if unicode.IsUpper(ch) {
				side = Sente
			}
			pos.Board.Squares[indexOf(r, c)] = MakePiece(side, pt)
			c++
		}
		if c != Cols || promoted {
			return nil, fmt.Errorf("%w: rank %d has %d files", ErrInvalidSFEN, r+1, c)
		}
	}

	switch fields[1] {
	case "b":
		pos.SideToMove = Sente
	case "w":
		pos.SideToMove = Gote
	default:
		return nil, fmt.Errorf("%w: side %q", ErrInvalidSFEN, fields[1])
	}

	if fields[2] != "-" {
		cnt := 0
		for _, ch := range fields[2] {
			if ch >= '0' && ch <= '9' {
				cnt = cnt*10 + int(ch-'0')
				if cnt > MaxHandCount {
					return nil, fmt.Errorf("%w: hand count %d", ErrInvalidSFEN, cnt)
				}
				continue
			}
			pt, ok := letterToPieceType[unicode.ToUpper(ch)]
			if !ok || !pt.Droppable() {
				return nil, fmt.Errorf("%w: hand piece %q", ErrInvalidSFEN, ch)
			}
			if cnt == 0 {
				cnt = 1
			}
			side := Gote
			if unicode.IsUpper(ch) {
				side = Sente
			}
			total := int(pos.Hands[side][pt]) + cnt
			if total > MaxHandCount {
				return nil, fmt.Errorf("%w: too many %q in hand", ErrInvalidSFEN, ch)
			}
			pos.Hands[side][pt] = int8(total)
			cnt = 0
		}
	}

	if len(fields) >= 4 {
		n, err := strconv.Atoi(fields[3])
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: move number %q", ErrInvalidSFEN, fields[3])
		}
		pos.Ply = n - 1
		pos.MoveCount = n - 1
	}

	pos.refresh()
	pos.GameOver = !pos.HasLegalMove()
	return pos, nil
}

func parseUSISquare(s string) (int, bool) {
	if len(s) != 2 || s[0] < '1' || s[0] > '9' || s[1] < 'a' || s[1] > 'i' {
		return -1, false
	}
	return Square(int(s[0]-'0'), int(s[1]-'a')+1), true
}

// ParseUSI 把 USI 着法字符串解析成当前局面下的合法着法。
func (p *Position) ParseUSI(s string) (Move, error) {
	s = strings.TrimSpace(s)
	var m Move
	switch {
	case len(s) == 4 && s[1] == '*':
		pt, ok := letterToPieceType[rune(s[0])]
		if !ok || !pt.Droppable() {
			return NoMove, fmt.Errorf("%w: %q", ErrInvalidUSI, s)
		}
		to, ok := parseUSISquare(s[2:4])
		if !ok {
			return NoMove, fmt.Errorf("%w: %q", ErrInvalidUSI, s)
		}
		m = NewDrop(to, pt)
	case len(s) == 4 || len(s) == 5 && s[4] == '+':
		from, ok1 := parseUSISquare(s[0:2])
		to, ok2 := parseUSISquare(s[2:4])
		if !ok1 || !ok2 {
			return NoMove, fmt.Errorf("%w: %q", ErrInvalidUSI, s)
		}
		pt := p.Board.Squares[from].Type()
		m = NewMove(from, to, pt, p.Board.Squares[to].Type(), len(s) == 5)
	default:
		return NoMove, fmt.Errorf("%w: %q", ErrInvalidUSI, s)
	}
	return p.FindLegal(m)
}
