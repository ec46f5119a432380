package shogi

import "sync"

// 持驹最多 18 枚歩，计数 0..18
const MaxHandCount = 18

var (
	zobristOnce sync.Once

	zobristPieces [2][NumPieceTypes][NumSquares]uint64
	zobristHands  [2][HandSize][MaxHandCount + 1]uint64 // 计数 0 的键恒为 0
	zobristSide   uint64
)

func initZobrist() {
	zobristOnce.Do(func() {
		seed := uint64(0x9E3779B97F4A7C15)
		next := func() uint64 {
			seed += 0x9E3779B97F4A7C15
			z := seed
			z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
			z = (z ^ (z >> 27)) * 0x94D049BB133111EB
			return z ^ (z >> 31)
		}

		for side := 0; side < 2; side++ {
			for pt := 1; pt < NumPieceTypes; pt++ {
				for sq := 0; sq < NumSquares; sq++ {
					zobristPieces[side][pt][sq] = next()
				}
			}
			for pt := Pawn; pt <= Rook; pt++ {
				for n := 1; n <= MaxHandCount; n++ {
					zobristHands[side][pt][n] = next()
				}
			}
		}
		zobristSide = next()
	})
}

func pieceHashKey(pc Piece, sq int) uint64 {
	if pc == 0 || sq < 0 || sq >= NumSquares {
		return 0
	}
	return zobristPieces[pc.Side()][pc.Type()][sq]
}

func handHashKey(side Side, pt PieceType, count int8) uint64 {
	if count <= 0 || count > MaxHandCount {
		return 0
	}
	return zobristHands[side][pt][count]
}

// CalculateHash 全量计算当前局面的 Zobrist 哈希。
func (p *Position) CalculateHash() uint64 {
	initZobrist()

	var h uint64
	for sq := 0; sq < NumSquares; sq++ {
		pc := p.Board.Squares[sq]
		if pc == 0 {
			continue
		}
		h ^= pieceHashKey(pc, sq)
	}
	for _, side := range []Side{Sente, Gote} {
		for pt := Pawn; pt <= Rook; pt++ {
			h ^= handHashKey(side, pt, p.Hands[side][pt])
		}
	}
	if p.SideToMove == Gote {
		h ^= zobristSide
	}
	return h
}
