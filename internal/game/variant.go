package game

// Gravity 消除后的补位方式
type Gravity int8

const (
	GravityCollapse Gravity = iota // 下落补位
	GravityRefill                  // 原位补充
)

// PayMode 赔付模式
type PayMode int8

const (
	PayChain PayMode = iota // 按连续列数查表
	PayWays                 // 按路数乘积查表
)

const minMatchCols = 3

// Variant 玩法定义。三个玩法共用一套消除流程，
// 差异全部收敛到这里。
type Variant struct {
	GameID      int64
	Name        string
	SymbolCount int
	Rows        []int // 每列行数
	Gravity     Gravity
	PayMode     PayMode
	GoldenCols  []int // 金色符号可出现的列
	BaseBet     int64 // 赔付表基准注（0 表示直接乘下注额）

	BaseMultipliers []int64 // 普通模式连消倍数
	FreeMultipliers []int64 // 免费模式连消倍数

	FreeSpinAward   int64 // 触发免费游戏基础次数
	ExtraPerScatter int64 // 每个额外夺宝增加次数
}

func (v *Variant) goldenEligible(col int) bool {
	for _, c := range v.GoldenCols {
		if c == col {
			return true
		}
	}
	return false
}

func (v *Variant) multipliers(freeSpin bool) []int64 {
	if freeSpin {
		return v.FreeMultipliers
	}
	return v.BaseMultipliers
}

func uniformRows(cols, rows int) []int {
	out := make([]int, cols)
	for i := range out {
		out[i] = rows
	}
	return out
}

// SuperAce 5x4，原位补充，金色全列可出
func SuperAceVariant() *Variant {
	return &Variant{
		GameID:          1001,
		Name:            "SuperAce",
		SymbolCount:     8,
		Rows:            uniformRows(5, 4),
		Gravity:         GravityRefill,
		PayMode:         PayChain,
		GoldenCols:      []int{0, 1, 2, 3, 4},
		BaseBet:         0,
		BaseMultipliers: []int64{1, 2, 3, 5},
		FreeMultipliers: []int64{2, 4, 6, 10},
		FreeSpinAward:   12,
		ExtraPerScatter: 3,
	}
}

// MahjongWay 5x4，下落补位，金色只出 2~4 列
func MahjongWayVariant() *Variant {
	return &Variant{
		GameID:          1003,
		Name:            "MahjongWay",
		SymbolCount:     8,
		Rows:            uniformRows(5, 4),
		Gravity:         GravityCollapse,
		PayMode:         PayChain,
		GoldenCols:      []int{1, 2, 3},
		BaseBet:         20,
		BaseMultipliers: []int64{1, 2, 3, 5},
		FreeMultipliers: []int64{2, 4, 6, 10},
		FreeSpinAward:   12,
		ExtraPerScatter: 3,
	}
}

// MahjongWay2 外列短内列长（4,5,5,5,4），按路数赔付
func MahjongWay2Variant() *Variant {
	return &Variant{
		GameID:          1002,
		Name:            "MahjongWay2",
		SymbolCount:     8,
		Rows:            []int{4, 5, 5, 5, 4},
		Gravity:         GravityCollapse,
		PayMode:         PayWays,
		GoldenCols:      []int{1, 2, 3},
		BaseBet:         20,
		BaseMultipliers: []int64{1, 2, 3, 5},
		FreeMultipliers: []int64{2, 4, 6, 10},
		FreeSpinAward:   12,
		ExtraPerScatter: 3,
	}
}
