package game

// RuntimeConfig 运行时配置（已合并校验）
type RuntimeConfig struct {
	ScatterChance float64     `json:"scatterChance"`
	GoldenChance  float64     `json:"goldenChance"`
	RedWildChance float64     `json:"redWildChance"`
	NoWinRate     float64     `json:"noWinRate"`
	MaxBet        float64     `json:"maxBet"`
	PayoutTable   [][]float64 `json:"payoutTable"`
}

// VersionedConfig 带版本的运行时配置，版本为生成时间戳，单调递增。
type VersionedConfig struct {
	Version int64          `json:"ver"`
	Config  *RuntimeConfig `json:"cfg"`
}

// RawConfig 入库的原始配置。指针字段缺省表示未设置，
// 合并时覆盖项整体替换，数组不做深合并。
type RawConfig struct {
	ScatterChance *float64    `json:"scatterChance,omitempty"`
	GoldenChance  *float64    `json:"goldenChance,omitempty"`
	RedWildChance *float64    `json:"redWildChance,omitempty"`
	NoWinRate     *float64    `json:"noWinRate,omitempty"`
	MaxBet        *float64    `json:"maxBet,omitempty"`
	PayoutTable   [][]float64 `json:"payoutTable,omitempty"`
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
