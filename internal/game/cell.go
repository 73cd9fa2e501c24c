package game

// Kind 格子类型
type Kind int8

const (
	KindNormal Kind = iota // 普通符号
	KindGolden             // 金色符号
	KindScatter            // 夺宝符号
	KindWild               // 百搭符号
)

// WildColor 百搭颜色
type WildColor int8

const (
	WildNone WildColor = iota
	WildBlue
	WildRed
)

const clearedSymbol = -1

// Cell 单个格子。Kind 决定哪些字段有效：Symbol 仅对
// Normal/Golden 有效，Color 仅对 Wild 有效。
type Cell struct {
	Kind   Kind
	Symbol int
	Color  WildColor
}

func normalCell(symbol int) Cell { return Cell{Kind: KindNormal, Symbol: symbol} }
func goldenCell(symbol int) Cell { return Cell{Kind: KindGolden, Symbol: symbol} }
func scatterCell() Cell          { return Cell{Kind: KindScatter} }
func wildCell(color WildColor) Cell {
	return Cell{Kind: KindWild, Color: color}
}

func (c Cell) isCleared() bool { return c.Kind == KindNormal && c.Symbol == clearedSymbol }

// matches 是否匹配指定符号（夺宝不参与，百搭通配）
func (c Cell) matches(symbol int) bool {
	switch c.Kind {
	case KindWild:
		return true
	case KindNormal, KindGolden:
		return c.Symbol == symbol && !c.isCleared()
	default:
		return false
	}
}

// Pos 格子坐标（列，行）
type Pos struct {
	C int `json:"c"`
	R int `json:"r"`
}

func dedupPos(in []Pos) []Pos {
	seen := make(map[Pos]struct{}, len(in))
	out := make([]Pos, 0, len(in))
	for _, p := range in {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
