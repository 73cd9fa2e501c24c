package game

import "github.com/shopspring/decimal"

// chainLength 从第 0 列起连续匹配的列数
func (v *Variant) chainLength(g Grid, symbol int) int {
	chain := 0
	for c := 0; c < len(g); c++ {
		hit := false
		for r := range g[c] {
			if g[c][r].matches(symbol) {
				hit = true
				break
			}
		}
		if !hit {
			break
		}
		chain++
	}
	return chain
}

// evaluateWins 中奖检测。中奖必须从第 0 列起连续至少 3 列，
// 符号中奖收集连线列内所有匹配格子；纯百搭连线单独检出，
// 避免无法归属到任何符号时漏奖。
func (v *Variant) evaluateWins(g Grid) (normal, wild []Pos) {
	inNormal := make(map[Pos]struct{})
	for sym := 0; sym < v.SymbolCount; sym++ {
		chain := v.chainLength(g, sym)
		if chain < minMatchCols {
			continue
		}
		for c := 0; c < chain; c++ {
			for r := range g[c] {
				p := Pos{C: c, R: r}
				if !g[c][r].matches(sym) {
					continue
				}
				if _, ok := inNormal[p]; ok {
					continue
				}
				inNormal[p] = struct{}{}
				normal = append(normal, p)
			}
		}
	}

	// 纯百搭连线
	wildChain := 0
	for c := 0; c < len(g); c++ {
		hit := false
		for r := range g[c] {
			if g[c][r].Kind == KindWild {
				hit = true
				break
			}
		}
		if !hit {
			break
		}
		wildChain++
	}
	if wildChain >= minMatchCols {
		for c := 0; c < wildChain; c++ {
			for r := range g[c] {
				p := Pos{C: c, R: r}
				if g[c][r].Kind != KindWild {
					continue
				}
				if _, ok := inNormal[p]; ok {
					continue
				}
				wild = append(wild, p)
			}
		}
	}
	return normal, wild
}

// payoutRate 查赔付表，列索引按连线列数截断
func payoutRate(table [][]float64, symbol, chain int) float64 {
	if symbol < 0 || symbol >= len(table) {
		return 0
	}
	row := table[symbol]
	if len(row) == 0 {
		return 0
	}
	idx := chain - minMatchCols
	if idx < 0 {
		return 0
	}
	if idx >= len(row) {
		idx = len(row) - 1
	}
	return row[idx]
}

// computeBaseWin 本轮基础奖金（未乘连消倍数）
func (v *Variant) computeBaseWin(cfg *RuntimeConfig, g Grid, bet decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for sym := 0; sym < v.SymbolCount; sym++ {
		chain := v.chainLength(g, sym)
		if chain < minMatchCols {
			continue
		}
		rate := decimal.NewFromFloat(payoutRate(cfg.PayoutTable, sym, chain))
		if rate.IsZero() {
			continue
		}
		win := rate.Mul(bet)
		if v.PayMode == PayWays {
			ways := int64(1)
			for c := 0; c < chain; c++ {
				cnt := int64(0)
				for r := range g[c] {
					if g[c][r].matches(sym) {
						cnt++
					}
				}
				ways *= cnt
			}
			win = win.Mul(decimal.NewFromInt(ways))
		}
		if v.BaseBet > 0 {
			win = win.Div(decimal.NewFromInt(v.BaseBet))
		}
		total = total.Add(win)
	}
	return total
}
