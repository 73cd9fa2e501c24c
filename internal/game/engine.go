package game

import (
	"math/rand/v2"

	"github.com/shopspring/decimal"
)

const (
	forcedNoWinTries = 30
	redWildCopyCount = 2
)

// Engine 纯计算：给定运行时配置和注额产出一次完整结果，
// 不做任何 IO，入参已由配置适配层校验。
type Engine interface {
	Variant() *Variant
	Spin(cfg *RuntimeConfig, bet decimal.Decimal, freeSpin bool, rng *rand.Rand) *SpinOutcome
}

type cascadeEngine struct {
	v *Variant
}

func NewEngine(v *Variant) Engine { return &cascadeEngine{v: v} }

func (e *cascadeEngine) Variant() *Variant { return e.v }

// initialFill 初始填充。命中控奖率时重摇至无奖且夺宝少于 3 个，
// 超出重试次数则接受最后一次结果。
func (e *cascadeEngine) initialFill(cfg *RuntimeConfig, freeSpin bool, rng *rand.Rand) Grid {
	forced := !freeSpin && cfg.NoWinRate > 0 && rng.Float64() < cfg.NoWinRate
	grid := e.v.fill(cfg, rng)
	if !forced {
		return grid
	}
	for i := 0; i < forcedNoWinTries; i++ {
		normal, wild := e.v.evaluateWins(grid)
		if len(normal) == 0 && len(wild) == 0 && grid.scatterCount() < minMatchCols {
			break
		}
		grid = e.v.fill(cfg, rng)
	}
	return grid
}

func (e *cascadeEngine) Spin(cfg *RuntimeConfig, bet decimal.Decimal, freeSpin bool, rng *rand.Rand) *SpinOutcome {
	v := e.v
	grid := e.initialFill(cfg, freeSpin, rng)
	mults := v.multipliers(freeSpin)

	out := &SpinOutcome{TotalWin: decimal.Zero}
	var carry []Pos // 上一轮翻出的百搭，本轮强制消除
	cascade := 0

	for {
		snap := grid.Clone()
		normalWins, wildWins := v.evaluateWins(grid)
		winCount := len(normalWins) + len(wildWins)

		if winCount == 0 && len(carry) == 0 {
			// 开局即无奖：产出单独一轮告知客户端盘面
			out.Steps = append(out.Steps, &CascadeStep{
				Index:      len(out.Steps),
				Grid:       snap,
				StepWin:    decimal.Zero,
				Multiplier: mults[0],
				NextGrid:   snap,
				HasNext:    false,
			})
			break
		}

		mult := mults[min(cascade, len(mults)-1)]
		stepWin := decimal.Zero
		if winCount > 0 {
			stepWin = v.computeBaseWin(cfg, grid, bet).Mul(decimal.NewFromInt(mult))
		}
		out.TotalWin = out.TotalWin.Add(stepWin)

		// 中奖的金色符号随本轮一起消除，消除后在原位翻百搭
		var goldenWins []Pos
		clearList := make([]Pos, 0, winCount)
		for _, p := range normalWins {
			cell := grid.at(p)
			if cell.Kind == KindGolden {
				goldenWins = append(goldenWins, p)
			}
			if cell.Kind != KindWild {
				clearList = append(clearList, p)
			}
		}
		for _, p := range dedupPos(append(clearList, carry...)) {
			grid.clear(p)
		}

		v.applyGravity(grid, cfg, rng)

		// 补位后在金色原位生成百搭；红百搭落地即复制两个
		// 永久蓝百搭，随后自降为蓝，复制只发生一次。
		var flips []FlipEvent
		var copies []CopyEvent
		carryNext := make([]Pos, 0, len(goldenWins))
		for _, p := range goldenWins {
			color := WildBlue
			if rng.Float64() < cfg.RedWildChance {
				color = WildRed
			}
			grid.set(p, wildCell(color))
			flips = append(flips, FlipEvent{Pos: p, Color: color})
			carryNext = append(carryNext, p)

			if color == WildRed {
				pool := grid.eligibleCopyTargets(p)
				rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
				for i := 0; i < redWildCopyCount && i < len(pool); i++ {
					tgt := pool[i]
					grid.set(tgt, wildCell(WildBlue))
					copies = append(copies, CopyEvent{Pos: tgt, Source: p, Color: WildRed})
				}
				grid.set(p, wildCell(WildBlue))
			}
		}

		nextGrid := grid.Clone()
		futureNormal, futureWild := v.evaluateWins(grid)
		hasNext := len(futureNormal)+len(futureWild) > 0 || len(carryNext) > 0

		out.Steps = append(out.Steps, &CascadeStep{
			Index:      len(out.Steps),
			Grid:       snap,
			WinCells:   normalWins,
			WildWins:   wildWins,
			Flips:      flips,
			Copies:     copies,
			StepWin:    stepWin,
			Multiplier: mult,
			NextGrid:   nextGrid,
			HasNext:    hasNext,
		})

		if !hasNext {
			break
		}
		carry = carryNext
		cascade++
	}

	// 夺宝统计用最终盘面：refill 模式下夺宝跨轮存续，数量会变化
	out.ScatterCount = grid.scatterCount()
	if out.ScatterCount >= minMatchCols {
		out.FreeTrigger = true
		out.FreeAwarded = v.FreeSpinAward + (out.ScatterCount-minMatchCols)*v.ExtraPerScatter
	}
	return out
}
