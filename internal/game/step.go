package game

import "github.com/shopspring/decimal"

// FlipEvent 金色符号消除后翻成百搭
type FlipEvent struct {
	Pos
	Color WildColor
}

// CopyEvent 红百搭落地时复制出的永久蓝百搭
type CopyEvent struct {
	Pos
	Source Pos
	Color  WildColor
}

// CascadeStep 一轮消除。产出后不再修改。
type CascadeStep struct {
	Index      int
	Grid       Grid  // 本轮开始时的网格
	WinCells   []Pos // 符号中奖位置
	WildWins   []Pos // 纯百搭连线位置
	Flips      []FlipEvent
	Copies     []CopyEvent
	StepWin    decimal.Decimal
	Multiplier int64
	NextGrid   Grid // 消除补位后的网格
	HasNext    bool
}

// SpinOutcome 单次旋转的聚合结果
type SpinOutcome struct {
	Steps        []*CascadeStep
	TotalWin     decimal.Decimal
	ScatterCount int64
	FreeTrigger  bool
	FreeAwarded  int64
	UsedFreeSpin bool // 由结算层填充
}
