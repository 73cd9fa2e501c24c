package game

import (
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
)

func testRng(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func testConfig() *RuntimeConfig {
	table := make([][]float64, 8)
	for i := range table {
		table[i] = []float64{1, 2, 3}
	}
	return &RuntimeConfig{
		ScatterChance: 0,
		GoldenChance:  0,
		RedWildChance: 0,
		NoWinRate:     0,
		MaxBet:        10000,
		PayoutTable:   table,
	}
}

// emptyTestGrid 全清空的盘面，避免零值符号干扰
func emptyTestGrid(v *Variant) Grid {
	g := newGrid(v.Rows)
	for c := range g {
		for r := range g[c] {
			g.clear(Pos{C: c, R: r})
		}
	}
	return g
}

func TestChainLength(t *testing.T) {
	v := SuperAceVariant()
	g := emptyTestGrid(v)
	g.set(Pos{C: 0, R: 1}, normalCell(0))
	g.set(Pos{C: 1, R: 3}, normalCell(0))
	g.set(Pos{C: 2, R: 0}, normalCell(0))
	g.set(Pos{C: 4, R: 0}, normalCell(0)) // 断列后不计

	if got := v.chainLength(g, 0); got != 3 {
		t.Fatalf("chainLength = %d, want 3", got)
	}
	if got := v.chainLength(g, 1); got != 0 {
		t.Fatalf("chainLength for absent symbol = %d, want 0", got)
	}
}

func TestEvaluateWinsChainColumnsOnly(t *testing.T) {
	v := SuperAceVariant()
	g := emptyTestGrid(v)
	g.set(Pos{C: 0, R: 0}, normalCell(2))
	g.set(Pos{C: 1, R: 1}, normalCell(2))
	g.set(Pos{C: 2, R: 2}, normalCell(2))
	g.set(Pos{C: 4, R: 0}, normalCell(2)) // 连线外，不应计入

	normal, wild := v.evaluateWins(g)
	if len(wild) != 0 {
		t.Fatalf("unexpected wild wins: %v", wild)
	}
	if len(normal) != 3 {
		t.Fatalf("win cells = %v, want 3 cells", normal)
	}
	for _, p := range normal {
		if p.C > 2 {
			t.Fatalf("win cell %v outside chain columns", p)
		}
	}
}

func TestEvaluateWinsBelowMinChain(t *testing.T) {
	v := SuperAceVariant()
	g := emptyTestGrid(v)
	g.set(Pos{C: 0, R: 0}, normalCell(1))
	g.set(Pos{C: 1, R: 0}, normalCell(1))

	normal, wild := v.evaluateWins(g)
	if len(normal) != 0 || len(wild) != 0 {
		t.Fatalf("two columns should not win: normal=%v wild=%v", normal, wild)
	}
}

func TestEvaluateWinsWildExtendsChain(t *testing.T) {
	v := SuperAceVariant()
	g := emptyTestGrid(v)
	g.set(Pos{C: 0, R: 0}, normalCell(3))
	g.set(Pos{C: 1, R: 2}, wildCell(WildBlue))
	g.set(Pos{C: 2, R: 1}, goldenCell(3))

	normal, _ := v.evaluateWins(g)
	if len(normal) != 3 {
		t.Fatalf("wild should bridge the chain, got %v", normal)
	}
	found := false
	for _, p := range normal {
		if p == (Pos{C: 1, R: 2}) {
			found = true
		}
	}
	if !found {
		t.Fatalf("wild cell missing from win cells: %v", normal)
	}
}

func TestEvaluateWinsScatterNeverMatches(t *testing.T) {
	v := SuperAceVariant()
	g := emptyTestGrid(v)
	g.set(Pos{C: 0, R: 0}, normalCell(0))
	g.set(Pos{C: 1, R: 0}, scatterCell())
	g.set(Pos{C: 2, R: 0}, normalCell(0))

	normal, wild := v.evaluateWins(g)
	if len(normal) != 0 || len(wild) != 0 {
		t.Fatalf("scatter must not bridge: normal=%v wild=%v", normal, wild)
	}
}

func TestPayoutRate(t *testing.T) {
	table := [][]float64{{2, 5, 10}}
	cases := []struct {
		sym, chain int
		want       float64
	}{
		{0, 3, 2},
		{0, 4, 5},
		{0, 5, 10},
		{0, 7, 10}, // 超出表宽取末列
		{1, 4, 0},  // 符号越界
	}
	for _, c := range cases {
		if got := payoutRate(table, c.sym, c.chain); got != c.want {
			t.Fatalf("payoutRate(%d,%d) = %v, want %v", c.sym, c.chain, got, c.want)
		}
	}
}

func TestComputeBaseWinChainMode(t *testing.T) {
	v := SuperAceVariant() // BaseBet=0 直接乘注
	cfg := testConfig()
	g := emptyTestGrid(v)
	g.set(Pos{C: 0, R: 0}, normalCell(0))
	g.set(Pos{C: 1, R: 0}, normalCell(0))
	g.set(Pos{C: 2, R: 0}, normalCell(0))

	got := v.computeBaseWin(cfg, g, decimal.NewFromInt(10))
	if !got.Equal(decimal.NewFromInt(10)) { // rate 1 * bet 10
		t.Fatalf("base win = %s, want 10", got)
	}
}

func TestComputeBaseWinBaseBetDivisor(t *testing.T) {
	v := MahjongWayVariant() // BaseBet=20
	cfg := testConfig()
	g := emptyTestGrid(v)
	g.set(Pos{C: 0, R: 0}, normalCell(0))
	g.set(Pos{C: 1, R: 0}, normalCell(0))
	g.set(Pos{C: 2, R: 0}, normalCell(0))

	got := v.computeBaseWin(cfg, g, decimal.NewFromInt(40))
	if !got.Equal(decimal.NewFromInt(2)) { // 1 * 40 / 20
		t.Fatalf("base win = %s, want 2", got)
	}
}

func TestComputeBaseWinWays(t *testing.T) {
	v := MahjongWay2Variant()
	cfg := testConfig()
	g := emptyTestGrid(v)
	// 列命中数 2,1,3 → 6 路
	g.set(Pos{C: 0, R: 0}, normalCell(0))
	g.set(Pos{C: 0, R: 1}, normalCell(0))
	g.set(Pos{C: 1, R: 2}, normalCell(0))
	g.set(Pos{C: 2, R: 0}, normalCell(0))
	g.set(Pos{C: 2, R: 1}, goldenCell(0))
	g.set(Pos{C: 2, R: 2}, normalCell(0))

	got := v.computeBaseWin(cfg, g, decimal.NewFromInt(20))
	if !got.Equal(decimal.NewFromInt(6)) { // 1 * 20 * 6 / 20
		t.Fatalf("ways win = %s, want 6", got)
	}
}

func TestCollapseKeepsOrder(t *testing.T) {
	v := MahjongWayVariant()
	cfg := testConfig()
	g := emptyTestGrid(v)
	g.set(Pos{C: 0, R: 1}, normalCell(5))
	g.set(Pos{C: 0, R: 3}, normalCell(6))

	v.collapse(g, cfg, testRng(7))

	// 留存符号沉底且保持相对顺序，新符号从顶部进入
	if g[0][2].Symbol != 5 || g[0][3].Symbol != 6 {
		t.Fatalf("kept cells misplaced: %+v", g[0])
	}
	for r := 0; r < 2; r++ {
		if g[0][r].isCleared() {
			t.Fatalf("top cell %d not refilled", r)
		}
	}
}

func TestRefillOnlyTouchesCleared(t *testing.T) {
	v := SuperAceVariant()
	cfg := testConfig()
	g := emptyTestGrid(v)
	g.set(Pos{C: 2, R: 2}, goldenCell(4))

	v.refill(g, cfg, testRng(9))

	if c := g.at(Pos{C: 2, R: 2}); c.Kind != KindGolden || c.Symbol != 4 {
		t.Fatalf("surviving cell was replaced: %+v", c)
	}
	for c := range g {
		for r := range g[c] {
			if g[c][r].isCleared() {
				t.Fatalf("cell (%d,%d) left unfilled", c, r)
			}
		}
	}
}

func TestFillGoldenColumns(t *testing.T) {
	v := MahjongWayVariant() // 金色仅 1~3 列
	cfg := testConfig()
	cfg.GoldenChance = 1

	g := v.fill(cfg, testRng(11))
	for c := range g {
		for r := range g[c] {
			golden := g[c][r].Kind == KindGolden
			if v.goldenEligible(c) && !golden {
				t.Fatalf("col %d should be all golden", c)
			}
			if !v.goldenEligible(c) && golden {
				t.Fatalf("golden leaked into col %d", c)
			}
		}
	}
}

func TestFillRowHeights(t *testing.T) {
	v := MahjongWay2Variant()
	g := v.fill(testConfig(), testRng(13))
	want := []int{4, 5, 5, 5, 4}
	for c := range g {
		if len(g[c]) != want[c] {
			t.Fatalf("col %d height = %d, want %d", c, len(g[c]), want[c])
		}
	}
}

func TestSpinScatterTrigger(t *testing.T) {
	v := SuperAceVariant()
	cfg := testConfig()
	cfg.ScatterChance = 1 // 满盘夺宝

	eng := NewEngine(v)
	out := eng.Spin(cfg, decimal.NewFromInt(10), false, testRng(17))

	if len(out.Steps) != 1 || out.Steps[0].HasNext {
		t.Fatalf("scatter-only spin should emit one terminal step, got %d", len(out.Steps))
	}
	if !out.TotalWin.IsZero() {
		t.Fatalf("scatter-only spin should not pay, got %s", out.TotalWin)
	}
	if out.ScatterCount != 20 {
		t.Fatalf("scatter count = %d, want 20", out.ScatterCount)
	}
	if !out.FreeTrigger {
		t.Fatal("free spins not triggered")
	}
	want := v.FreeSpinAward + (20-3)*v.ExtraPerScatter
	if out.FreeAwarded != want {
		t.Fatalf("free awarded = %d, want %d", out.FreeAwarded, want)
	}
}

func TestSpinForcedNoWin(t *testing.T) {
	v := SuperAceVariant()
	cfg := testConfig()
	cfg.NoWinRate = 1

	eng := NewEngine(v)
	for seed := uint64(1); seed <= 20; seed++ {
		out := eng.Spin(cfg, decimal.NewFromInt(10), false, testRng(seed))
		if !out.TotalWin.IsZero() {
			t.Fatalf("seed %d: forced no-win paid %s", seed, out.TotalWin)
		}
		if out.FreeTrigger {
			t.Fatalf("seed %d: forced no-win triggered free spins", seed)
		}
		if len(out.Steps) != 1 || out.Steps[0].HasNext {
			t.Fatalf("seed %d: want single terminal step", seed)
		}
	}
}

func TestSpinFreeSpinMultiplier(t *testing.T) {
	v := SuperAceVariant()
	cfg := testConfig()
	cfg.ScatterChance = 1 // 强制单轮便于断言

	eng := NewEngine(v)
	out := eng.Spin(cfg, decimal.NewFromInt(10), true, testRng(19))
	if got := out.Steps[0].Multiplier; got != v.FreeMultipliers[0] {
		t.Fatalf("free spin multiplier = %d, want %d", got, v.FreeMultipliers[0])
	}
}

func TestSpinInvariants(t *testing.T) {
	variants := []*Variant{SuperAceVariant(), MahjongWayVariant(), MahjongWay2Variant()}
	cfg := testConfig()
	cfg.GoldenChance = 0.2
	cfg.RedWildChance = 0.5
	cfg.ScatterChance = 0.02
	bet := decimal.NewFromInt(20)

	for _, v := range variants {
		eng := NewEngine(v)
		for seed := uint64(1); seed <= 100; seed++ {
			out := eng.Spin(cfg, bet, seed%2 == 0, testRng(seed))

			if len(out.Steps) == 0 {
				t.Fatalf("%s seed %d: no steps", v.Name, seed)
			}
			sum := decimal.Zero
			for i, s := range out.Steps {
				if s.Index != i {
					t.Fatalf("%s seed %d: step index %d != %d", v.Name, seed, s.Index, i)
				}
				last := i == len(out.Steps)-1
				if s.HasNext == last {
					t.Fatalf("%s seed %d: hasNext wrong at step %d", v.Name, seed, i)
				}
				if s.StepWin.IsNegative() {
					t.Fatalf("%s seed %d: negative step win", v.Name, seed)
				}
				sum = sum.Add(s.StepWin)
			}
			if !sum.Equal(out.TotalWin) {
				t.Fatalf("%s seed %d: total %s != sum %s", v.Name, seed, out.TotalWin, sum)
			}
			if out.FreeTrigger {
				if out.ScatterCount < 3 {
					t.Fatalf("%s seed %d: trigger with %d scatters", v.Name, seed, out.ScatterCount)
				}
				want := v.FreeSpinAward + (out.ScatterCount-3)*v.ExtraPerScatter
				if out.FreeAwarded != want {
					t.Fatalf("%s seed %d: awarded %d, want %d", v.Name, seed, out.FreeAwarded, want)
				}
			}
		}
	}
}

func TestEligibleCopyTargets(t *testing.T) {
	v := SuperAceVariant()
	g := emptyTestGrid(v)
	src := Pos{C: 2, R: 2}
	g.set(src, wildCell(WildRed))
	g.set(Pos{C: 0, R: 0}, scatterCell())
	g.set(Pos{C: 1, R: 1}, wildCell(WildBlue))

	pool := g.eligibleCopyTargets(src)
	for _, p := range pool {
		if p == src {
			t.Fatal("source in pool")
		}
		if k := g.at(p).Kind; k == KindScatter || k == KindWild {
			t.Fatalf("ineligible cell %v in pool", p)
		}
	}
	// 20 格减去自身、1 夺宝、1 蓝百搭
	if len(pool) != 17 {
		t.Fatalf("pool size = %d, want 17", len(pool))
	}
}

func TestFillSymbolRange(t *testing.T) {
	for _, v := range []*Variant{SuperAceVariant(), MahjongWayVariant(), MahjongWay2Variant()} {
		cfg := testConfig()
		cfg.ScatterChance = 0.1
		cfg.GoldenChance = 0.3
		g := v.fill(cfg, testRng(23))
		for c := range g {
			for r := range g[c] {
				cell := g[c][r]
				switch cell.Kind {
				case KindNormal, KindGolden:
					if cell.Symbol < 0 || cell.Symbol >= v.SymbolCount {
						t.Fatalf("%s: symbol %d out of range", v.Name, cell.Symbol)
					}
				case KindScatter:
				default:
					t.Fatalf("%s: fill produced %v", v.Name, cell.Kind)
				}
			}
		}
	}
}

func TestBaseWinMonotoneInChain(t *testing.T) {
	v := SuperAceVariant()
	cfg := testConfig() // 每行 {1,2,3} 递增
	bet := decimal.NewFromInt(10)

	prev := decimal.Zero
	for chain := 3; chain <= 5; chain++ {
		g := emptyTestGrid(v)
		for c := 0; c < chain; c++ {
			g.set(Pos{C: c, R: 0}, normalCell(0))
		}
		win := v.computeBaseWin(cfg, g, bet)
		if win.LessThan(prev) {
			t.Fatalf("win decreased at chain %d: %s < %s", chain, win, prev)
		}
		prev = win
	}
}

func TestGoldenFlipInvariant(t *testing.T) {
	v := MahjongWayVariant()
	cfg := testConfig()
	cfg.GoldenChance = 1 // 金色列全金，必然有中奖金色
	cfg.RedWildChance = 0

	eng := NewEngine(v)
	for seed := uint64(1); seed <= 50; seed++ {
		out := eng.Spin(cfg, decimal.NewFromInt(10), false, testRng(seed))
		for _, s := range out.Steps {
			for _, f := range s.Flips {
				if c := s.NextGrid.at(f.Pos); c.Kind != KindWild {
					t.Fatalf("seed %d: flip at %v not wild in next grid", seed, f.Pos)
				}
				if f.Color != WildBlue {
					t.Fatalf("seed %d: red wild with zero chance", seed)
				}
				won := false
				for _, p := range s.WinCells {
					if p == f.Pos && s.Grid.at(p).Kind == KindGolden {
						won = true
						break
					}
				}
				if !won {
					t.Fatalf("seed %d: flip at %v without a golden win there", seed, f.Pos)
				}
			}
		}
	}
}

func TestRedWildCopiesAndDowngrades(t *testing.T) {
	v := SuperAceVariant()
	cfg := testConfig()
	cfg.GoldenChance = 1
	cfg.RedWildChance = 1 // 翻出的百搭必为红，必复制

	eng := NewEngine(v)
	for seed := uint64(1); seed <= 50; seed++ {
		out := eng.Spin(cfg, decimal.NewFromInt(10), false, testRng(seed))
		for _, s := range out.Steps {
			for _, cp := range s.Copies {
				if c := s.NextGrid.at(cp.Pos); c.Kind != KindWild || c.Color != WildBlue {
					t.Fatalf("seed %d: copy target %v not a blue wild", seed, cp.Pos)
				}
				// 红百搭复制后自降为蓝
				if c := s.NextGrid.at(cp.Source); c.Kind != KindWild || c.Color != WildBlue {
					t.Fatalf("seed %d: source %v did not downgrade", seed, cp.Source)
				}
			}
			for _, f := range s.Flips {
				n := 0
				for _, cp := range s.Copies {
					if cp.Source == f.Pos {
						n++
					}
				}
				if n > redWildCopyCount {
					t.Fatalf("seed %d: %d copies from one red wild", seed, n)
				}
			}
		}
	}
}
