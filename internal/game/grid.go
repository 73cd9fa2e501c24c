package game

import "math/rand/v2"

// Grid 列优先的符号网格，各列行数可不同
type Grid [][]Cell

func newGrid(heights []int) Grid {
	g := make(Grid, len(heights))
	for c, h := range heights {
		g[c] = make([]Cell, h)
	}
	return g
}

func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	for c := range g {
		col := make([]Cell, len(g[c]))
		copy(col, g[c])
		out[c] = col
	}
	return out
}

func (g Grid) at(p Pos) Cell { return g[p.C][p.R] }

func (g Grid) set(p Pos, cell Cell) { g[p.C][p.R] = cell }

func (g Grid) clear(p Pos) { g[p.C][p.R] = Cell{Kind: KindNormal, Symbol: clearedSymbol} }

// scatterCount 统计夺宝符号个数
func (g Grid) scatterCount() int64 {
	var n int64
	for c := range g {
		for r := range g[c] {
			if g[c][r].Kind == KindScatter {
				n++
			}
		}
	}
	return n
}

// eligibleCopyTargets 红百搭复制的候选位置（非夺宝、非百搭、非自身）
func (g Grid) eligibleCopyTargets(src Pos) []Pos {
	var pool []Pos
	for c := range g {
		for r := range g[c] {
			p := Pos{C: c, R: r}
			if p == src {
				continue
			}
			switch g[c][r].Kind {
			case KindScatter, KindWild:
			default:
				pool = append(pool, p)
			}
		}
	}
	return pool
}

// rollCell 随机生成一个新格子。金色符号只出现在指定列。
func (v *Variant) rollCell(cfg *RuntimeConfig, col int, rng *rand.Rand) Cell {
	if rng.Float64() < cfg.ScatterChance {
		return scatterCell()
	}
	symbol := rng.IntN(v.SymbolCount)
	if v.goldenEligible(col) && rng.Float64() < cfg.GoldenChance {
		return goldenCell(symbol)
	}
	return normalCell(symbol)
}

// fill 整盘随机填充
func (v *Variant) fill(cfg *RuntimeConfig, rng *rand.Rand) Grid {
	g := newGrid(v.Rows)
	for c := range g {
		for r := range g[c] {
			g[c][r] = v.rollCell(cfg, c, rng)
		}
	}
	return g
}

// collapse 上方符号下落补位，顶部进新符号
func (v *Variant) collapse(g Grid, cfg *RuntimeConfig, rng *rand.Rand) {
	for c := range g {
		kept := make([]Cell, 0, len(g[c]))
		for r := 0; r < len(g[c]); r++ {
			if !g[c][r].isCleared() {
				kept = append(kept, g[c][r])
			}
		}
		miss := len(g[c]) - len(kept)
		col := make([]Cell, 0, len(g[c]))
		for i := 0; i < miss; i++ {
			col = append(col, v.rollCell(cfg, c, rng))
		}
		col = append(col, kept...)
		copy(g[c], col)
	}
}

// refill 只补空位，其余格子不动
func (v *Variant) refill(g Grid, cfg *RuntimeConfig, rng *rand.Rand) {
	for c := range g {
		for r := range g[c] {
			if g[c][r].isCleared() {
				g[c][r] = v.rollCell(cfg, c, rng)
			}
		}
	}
}

func (v *Variant) applyGravity(g Grid, cfg *RuntimeConfig, rng *rand.Rand) {
	if v.Gravity == GravityCollapse {
		v.collapse(g, cfg, rng)
		return
	}
	v.refill(g, cfg, rng)
}
