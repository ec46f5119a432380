package shogi

// Perft 数 depth 层内的合法着法叶子数，用来核对走法生成和 Make/Unmake。
func (p *Position) Perft(depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	var buf [MaxMoves]Move
	n := p.GenerateMoves(buf[:])
	side := p.SideToMove
	var nodes uint64
	for _, mv := range buf[:n] {
		p.Make(mv)
		if !p.InCheck(side) {
			if depth == 1 {
				nodes++
			} else {
				nodes += p.Perft(depth - 1)
			}
		}
		p.Unmake(mv)
	}
	return nodes
}

// Divide 按第一手拆开的 Perft，key 为 USI。
func (p *Position) Divide(depth int) map[string]uint64 {
	out := make(map[string]uint64)
	if depth <= 0 {
		return out
	}
	for _, mv := range p.LegalMoves() {
		p.Make(mv)
		out[mv.USI()] = p.Perft(depth - 1)
		p.Unmake(mv)
	}
	return out
}
