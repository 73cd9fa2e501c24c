package game

// 各玩法的缺省配置。线上以 games 表的基础配置为准，
// 这里保证冷启动和字段缺失时引擎拿到的值完整。

func SuperAceAdapter() Adapter {
	return &variantAdapter{
		v: SuperAceVariant(),
		defaults: func() *RawConfig {
			return &RawConfig{
				ScatterChance: f64(0.05),
				GoldenChance:  f64(0.12),
				RedWildChance: f64(0.3),
				NoWinRate:     f64(0),
				MaxBet:        f64(10000),
				PayoutTable: [][]float64{
					{2, 5, 10},      // Ace
					{1.5, 4, 8},     // King
					{1, 3, 6},       // Queen
					{0.8, 2, 5},     // Jack
					{0.5, 1.5, 3},   // Spade
					{0.4, 1, 2},     // Heart
					{0.3, 0.8, 1.5}, // Diamond
					{0.2, 0.5, 1},   // Club
				},
			}
		},
	}
}

func MahjongWayAdapter() Adapter {
	return &variantAdapter{
		v: MahjongWayVariant(),
		defaults: func() *RawConfig {
			return &RawConfig{
				ScatterChance: f64(0.03),
				GoldenChance:  f64(0.15),
				RedWildChance: f64(0.25),
				NoWinRate:     f64(0),
				MaxBet:        f64(10000),
				PayoutTable: [][]float64{
					{12, 60, 100}, // Fa
					{10, 40, 80},  // Zhong
					{8, 20, 60},   // TileBlue
					{6, 15, 40},   // TileWan
					{4, 10, 20},   // Dots4
					{3, 10, 20},   // Bamboo4
					{2, 5, 10},    // Dots1
					{2, 5, 10},    // Bamboo2
				},
			}
		},
	}
}

func MahjongWay2Adapter() Adapter {
	return &variantAdapter{
		v: MahjongWay2Variant(),
		defaults: func() *RawConfig {
			return &RawConfig{
				ScatterChance: f64(0.03),
				GoldenChance:  f64(0.15),
				RedWildChance: f64(0.25),
				NoWinRate:     f64(0),
				MaxBet:        f64(10000),
				PayoutTable: [][]float64{
					{12, 60, 100},
					{10, 40, 80},
					{8, 20, 60},
					{6, 15, 40},
					{4, 10, 20},
					{3, 10, 20},
					{2, 5, 10},
					{2, 5, 10},
				},
			}
		},
	}
}
