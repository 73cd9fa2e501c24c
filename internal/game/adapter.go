package game

import "fmt"

// Adapter 配置适配：缺省值、合并、校验、转运行时。
// 引擎拿到的配置一定经过这里，坏配置在此挡下。
type Adapter interface {
	GameID() int64
	Name() string
	Defaults() *RawConfig
	Merge(base, override *RawConfig) *RawConfig
	Validate(raw *RawConfig) error
	ToRuntime(raw *RawConfig) (*RuntimeConfig, error)
}

type variantAdapter struct {
	v        *Variant
	defaults func() *RawConfig
}

func (a *variantAdapter) GameID() int64 { return a.v.GameID }
func (a *variantAdapter) Name() string  { return a.v.Name }

func (a *variantAdapter) Defaults() *RawConfig { return a.defaults() }

func overlay(dst, src *RawConfig) {
	if src == nil {
		return
	}
	if src.ScatterChance != nil {
		dst.ScatterChance = src.ScatterChance
	}
	if src.GoldenChance != nil {
		dst.GoldenChance = src.GoldenChance
	}
	if src.RedWildChance != nil {
		dst.RedWildChance = src.RedWildChance
	}
	if src.NoWinRate != nil {
		dst.NoWinRate = src.NoWinRate
	}
	if src.MaxBet != nil {
		dst.MaxBet = src.MaxBet
	}
	if src.PayoutTable != nil {
		dst.PayoutTable = src.PayoutTable // 数组整体替换
	}
}

func (a *variantAdapter) Merge(base, override *RawConfig) *RawConfig {
	merged := a.defaults()
	overlay(merged, base)
	overlay(merged, override)
	return merged
}

func (a *variantAdapter) Validate(raw *RawConfig) error {
	if raw == nil {
		return fmt.Errorf("%s: empty config", a.v.Name)
	}
	if len(raw.PayoutTable) != a.v.SymbolCount {
		return fmt.Errorf("%s: payoutTable must have %d rows, got %d",
			a.v.Name, a.v.SymbolCount, len(raw.PayoutTable))
	}
	for i, row := range raw.PayoutTable {
		if len(row) == 0 {
			return fmt.Errorf("%s: payoutTable row %d is empty", a.v.Name, i)
		}
		for _, rate := range row {
			if rate < 0 {
				return fmt.Errorf("%s: payoutTable row %d has negative rate", a.v.Name, i)
			}
		}
	}
	for name, p := range map[string]*float64{
		"scatterChance": raw.ScatterChance,
		"goldenChance":  raw.GoldenChance,
		"redWildChance": raw.RedWildChance,
		"noWinRate":     raw.NoWinRate,
	} {
		if p == nil {
			return fmt.Errorf("%s: %s is required", a.v.Name, name)
		}
		if *p < 0 || *p > 1 {
			return fmt.Errorf("%s: %s must be between 0..1", a.v.Name, name)
		}
	}
	if raw.MaxBet == nil || *raw.MaxBet <= 0 {
		return fmt.Errorf("%s: maxBet must be positive", a.v.Name)
	}
	return nil
}

func (a *variantAdapter) ToRuntime(raw *RawConfig) (*RuntimeConfig, error) {
	if err := a.Validate(raw); err != nil {
		return nil, err
	}
	return &RuntimeConfig{
		ScatterChance: clamp01(*raw.ScatterChance),
		GoldenChance:  clamp01(*raw.GoldenChance),
		RedWildChance: clamp01(*raw.RedWildChance),
		NoWinRate:     clamp01(*raw.NoWinRate),
		MaxBet:        *raw.MaxBet,
		PayoutTable:   raw.PayoutTable,
	}, nil
}

func f64(x float64) *float64 { return &x }
