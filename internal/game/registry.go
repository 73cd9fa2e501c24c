package game

import "fmt"

// Entry 玩法注册项
type Entry struct {
	Variant *Variant
	Engine  Engine
	Adapter Adapter
}

// Registry 游戏ID到玩法的映射。显式构造，不用全局单例。
type Registry struct {
	entries map[int64]*Entry
}

func NewRegistry() *Registry {
	r := &Registry{entries: make(map[int64]*Entry)}
	r.register(SuperAceVariant(), SuperAceAdapter())
	r.register(MahjongWay2Variant(), MahjongWay2Adapter())
	r.register(MahjongWayVariant(), MahjongWayAdapter())
	return r
}

func (r *Registry) register(v *Variant, a Adapter) {
	r.entries[v.GameID] = &Entry{Variant: v, Engine: NewEngine(v), Adapter: a}
}

func (r *Registry) Get(gameID int64) (*Entry, error) {
	e, ok := r.entries[gameID]
	if !ok {
		return nil, fmt.Errorf("no adapter for gameId=%d", gameID)
	}
	return e, nil
}

// GameIDs 已注册的游戏ID，供启动时预热配置
func (r *Registry) GameIDs() []int64 {
	ids := make([]int64, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	return ids
}
