package service

import (
	"egame-ws/internal/biz"
	"egame-ws/internal/game"

	"github.com/shopspring/decimal"
)

// Cell kinds and wild colors on the wire.
const (
	cellNormal  = "n"
	cellGolden  = "g"
	cellWild    = "w"
	cellScatter = "s"

	wildBlue = "blue"
	wildRed  = "red"
)

// noSymbol marks cells that carry no symbol index on the wire.
const noSymbol = -1

type packedCell struct {
	I  int    `json:"i"`
	T  string `json:"t"`
	WT string `json:"wt,omitempty"`
}

type packedFlip struct {
	C        int    `json:"c"`
	R        int    `json:"r"`
	WildType string `json:"wildType"`
}

type packedCopy struct {
	C         int      `json:"c"`
	R         int      `json:"r"`
	SourcePos game.Pos `json:"sourcePos"`
	WildType  string   `json:"wildType"`
}

type packedWin struct {
	Normal []game.Pos `json:"normal"`
	Wild   []game.Pos `json:"wild"`
}

type packedRound struct {
	Index      int             `json:"index"`
	Grid       [][]packedCell  `json:"grid"`
	Win        packedWin       `json:"win"`
	Flips      []packedFlip    `json:"flips"`
	Copies     []packedCopy    `json:"copies"`
	StepWin    decimal.Decimal `json:"stepWin"`
	Multiplier int64           `json:"multiplier"`
	NextGrid   [][]packedCell  `json:"nextGrid"`
	HasNext    bool            `json:"hasNext"`
}

type packedFree struct {
	Triggered bool  `json:"triggered"`
	Awarded   int64 `json:"awarded"`
}

type spinResultPayload struct {
	Success       bool            `json:"success"`
	TotalWin      decimal.Decimal `json:"totalWin"`
	Balance       decimal.Decimal `json:"balance"`
	FreeSpinsLeft int64           `json:"freeSpinsLeft"`
	UsingFreeSpin bool            `json:"usingFreeSpin"`
	Free          packedFree      `json:"free"`
	ScatterCount  int64           `json:"scatterCount"`
	ConfigVersion int64           `json:"configVersion"`
	Rounds        []packedRound   `json:"rounds"`
}

type profilePayload struct {
	PlayerID  int64           `json:"playerId"`
	Username  string          `json:"username"`
	Balance   decimal.Decimal `json:"balance"`
	FreeSpins int64           `json:"freeSpins"`
}

type logsPayload struct {
	Records []*biz.SpinLogView `json:"records"`
}

func packWildColor(c game.WildColor) string {
	if c == game.WildRed {
		return wildRed
	}
	return wildBlue
}

func packCell(c game.Cell) packedCell {
	switch c.Kind {
	case game.KindGolden:
		return packedCell{I: c.Symbol, T: cellGolden}
	case game.KindWild:
		return packedCell{I: noSymbol, T: cellWild, WT: packWildColor(c.Color)}
	case game.KindScatter:
		return packedCell{I: noSymbol, T: cellScatter}
	default:
		return packedCell{I: c.Symbol, T: cellNormal}
	}
}

func packGrid(g game.Grid) [][]packedCell {
	out := make([][]packedCell, len(g))
	for c, col := range g {
		out[c] = make([]packedCell, len(col))
		for r, cell := range col {
			out[c][r] = packCell(cell)
		}
	}
	return out
}

func packRound(s *game.CascadeStep) packedRound {
	flips := make([]packedFlip, 0, len(s.Flips))
	for _, f := range s.Flips {
		flips = append(flips, packedFlip{C: f.C, R: f.R, WildType: packWildColor(f.Color)})
	}
	copies := make([]packedCopy, 0, len(s.Copies))
	for _, cp := range s.Copies {
		copies = append(copies, packedCopy{C: cp.C, R: cp.R, SourcePos: cp.Source, WildType: packWildColor(cp.Color)})
	}
	return packedRound{
		Index:      s.Index,
		Grid:       packGrid(s.Grid),
		Win:        packedWin{Normal: emptyIfNil(s.WinCells), Wild: emptyIfNil(s.WildWins)},
		Flips:      flips,
		Copies:     copies,
		StepWin:    s.StepWin,
		Multiplier: s.Multiplier,
		NextGrid:   packGrid(s.NextGrid),
		HasNext:    s.HasNext,
	}
}

func packSpinResult(res *biz.SpinResult) *spinResultPayload {
	rounds := make([]packedRound, 0, len(res.Outcome.Steps))
	for _, s := range res.Outcome.Steps {
		rounds = append(rounds, packRound(s))
	}
	return &spinResultPayload{
		Success:       true,
		TotalWin:      res.Outcome.TotalWin,
		Balance:       res.Balance,
		FreeSpinsLeft: res.FreeSpinsLeft,
		UsingFreeSpin: res.Outcome.UsedFreeSpin,
		Free:          packedFree{Triggered: res.Outcome.FreeTrigger, Awarded: res.Outcome.FreeAwarded},
		ScatterCount:  res.Outcome.ScatterCount,
		ConfigVersion: res.ConfigVersion,
		Rounds:        rounds,
	}
}

func emptyIfNil(in []game.Pos) []game.Pos {
	if in == nil {
		return []game.Pos{}
	}
	return in
}
