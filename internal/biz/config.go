package biz

import (
	"context"
	"sync"
	"time"

	"egame-ws/internal/game"

	"github.com/yola1107/kratos/v2/log"
)

// DefaultPartner is the partner id used when a connection carries none.
const DefaultPartner = 0

// ConfigSourceRepo reads raw configs from the durable store.
type ConfigSourceRepo interface {
	// BaseConfig returns the base config for a game, nil when the row has
	// no config yet.
	BaseConfig(ctx context.Context, gameID int64) (*game.RawConfig, error)
	// PartnerOverride returns the partner override, nil when absent.
	PartnerOverride(ctx context.Context, gameID, partnerID int64) (*game.RawConfig, error)
}

// ConfigCache is the shared versioned cache plus the invalidation bus. The
// shared cache is the single source of truth across processes; the
// in-process cache inside ConfigUsecase is a read-through optimization.
type ConfigCache interface {
	// GetEffective returns the cached runtime config and its version.
	// ok=false when the shared cache has no entry at all.
	GetEffective(ctx context.Context, gameID, partnerID int64) (cfg *game.RuntimeConfig, ver int64, ok bool, err error)
	// GetVersion returns the version marker, 0 when absent.
	GetVersion(ctx context.Context, gameID, partnerID int64) (int64, error)
	// SetEffective writes config and version markers together.
	SetEffective(ctx context.Context, gameID, partnerID, ver int64, cfg *game.RuntimeConfig) error
	// PublishWarmed notifies other processes that a rebuild landed.
	PublishWarmed(ctx context.Context, gameID, partnerID, ver int64) error
	// PublishInvalidate fans an admin invalidation out to every process,
	// including this one.
	PublishInvalidate(ctx context.Context, gameID, partnerID int64) error
	// SubscribeInvalidate delivers admin invalidation events until the
	// returned stop func is called.
	SubscribeInvalidate(ctx context.Context, fn func(gameID, partnerID int64)) (stop func(), err error)
}

type cachedConfig struct {
	ver int64
	cfg *game.RuntimeConfig
}

// ConfigUsecase merges, validates and distributes runtime configs. It is
// explicitly constructed with injected store/cache handles and has an
// explicit Start/Stop lifecycle; nothing reaches it through globals.
type ConfigUsecase struct {
	registry *game.Registry
	source   ConfigSourceRepo
	cache    ConfigCache
	log      *log.Helper

	mu    sync.RWMutex
	local map[[2]int64]cachedConfig

	stopSub func()
}

func NewConfigUsecase(registry *game.Registry, source ConfigSourceRepo, cache ConfigCache, logger log.Logger) *ConfigUsecase {
	return &ConfigUsecase{
		registry: registry,
		source:   source,
		cache:    cache,
		log:      log.NewHelper(logger),
		local:    make(map[[2]int64]cachedConfig),
	}
}

// Start subscribes to invalidation events and seeds every registered game
// that has no shared-cache entry yet.
func (uc *ConfigUsecase) Start(ctx context.Context) error {
	stop, err := uc.cache.SubscribeInvalidate(ctx, func(gameID, partnerID int64) {
		if err := uc.Refresh(context.Background(), gameID, partnerID); err != nil {
			uc.log.Errorf("config refresh on invalidate failed: g=%d p=%d err=%v", gameID, partnerID, err)
		}
	})
	if err != nil {
		return err
	}
	uc.stopSub = stop

	for _, gid := range uc.registry.GameIDs() {
		ver, err := uc.cache.GetVersion(ctx, gid, DefaultPartner)
		if err != nil {
			uc.log.Errorf("config bootstrap failed: g=%d err=%v", gid, err)
			continue
		}
		if ver == 0 {
			if err := uc.Refresh(ctx, gid, DefaultPartner); err != nil {
				uc.log.Errorf("config bootstrap failed: g=%d err=%v", gid, err)
			}
		}
	}
	return nil
}

func (uc *ConfigUsecase) Stop() {
	if uc.stopSub != nil {
		uc.stopSub()
		uc.stopSub = nil
	}
}

// Refresh rebuilds the effective config for (game, partner). A validation
// failure aborts the refresh and leaves the previous cached version in
// place.
func (uc *ConfigUsecase) Refresh(ctx context.Context, gameID, partnerID int64) error {
	entry, err := uc.registry.Get(gameID)
	if err != nil {
		return ErrUnknownGame
	}
	base, err := uc.source.BaseConfig(ctx, gameID)
	if err != nil {
		return err
	}
	override, err := uc.source.PartnerOverride(ctx, gameID, partnerID)
	if err != nil {
		return err
	}

	merged := entry.Adapter.Merge(base, override)
	runtime, err := entry.Adapter.ToRuntime(merged)
	if err != nil {
		uc.log.Errorf("config validation failed, keeping previous version: g=%d p=%d err=%v", gameID, partnerID, err)
		return err
	}

	// Two rebuilds inside the same millisecond must still advance.
	ver := time.Now().UnixMilli()
	if c, ok := uc.loadLocal(gameID, partnerID); ok && ver <= c.ver {
		ver = c.ver + 1
	}
	if err := uc.cache.SetEffective(ctx, gameID, partnerID, ver, runtime); err != nil {
		return err
	}
	uc.storeLocal(gameID, partnerID, ver, runtime)
	if err := uc.cache.PublishWarmed(ctx, gameID, partnerID, ver); err != nil {
		uc.log.Warnf("config warmed publish failed: g=%d p=%d err=%v", gameID, partnerID, err)
	}
	uc.log.Infof("config warmed g=%d p=%d v=%d", gameID, partnerID, ver)
	return nil
}

// Invalidate is the admin entry point: it broadcasts on the invalidation
// channel so every subscribed process, this one included, rebuilds.
func (uc *ConfigUsecase) Invalidate(ctx context.Context, gameID, partnerID int64) error {
	if _, err := uc.registry.Get(gameID); err != nil {
		return ErrUnknownGame
	}
	return uc.cache.PublishInvalidate(ctx, gameID, partnerID)
}

// GetConfigWithVersion returns the current effective config. The version a
// caller observes never goes backwards for the same (game, partner).
func (uc *ConfigUsecase) GetConfigWithVersion(ctx context.Context, gameID, partnerID int64) (int64, *game.RuntimeConfig, error) {
	remoteVer, err := uc.cache.GetVersion(ctx, gameID, partnerID)
	if err != nil {
		// Shared cache unreachable: a still-valid local snapshot beats
		// failing the spin outright.
		if c, ok := uc.loadLocal(gameID, partnerID); ok {
			return c.ver, c.cfg, nil
		}
		return 0, nil, ErrConfigUnavailable
	}

	if c, ok := uc.loadLocal(gameID, partnerID); ok && c.ver >= remoteVer && remoteVer != 0 {
		return c.ver, c.cfg, nil
	}

	cfg, ver, ok, err := uc.cache.GetEffective(ctx, gameID, partnerID)
	if err != nil {
		return 0, nil, err
	}
	if !ok {
		// Cold start: the shared cache has no entry at all.
		if err := uc.Refresh(ctx, gameID, partnerID); err != nil {
			return 0, nil, ErrConfigUnavailable
		}
		c, _ := uc.loadLocal(gameID, partnerID)
		return c.ver, c.cfg, nil
	}
	if ver == 0 {
		ver = time.Now().UnixMilli()
	}
	uc.storeLocal(gameID, partnerID, ver, cfg)
	c, _ := uc.loadLocal(gameID, partnerID)
	return c.ver, c.cfg, nil
}

func (uc *ConfigUsecase) storeLocal(gameID, partnerID, ver int64, cfg *game.RuntimeConfig) {
	key := [2]int64{gameID, partnerID}
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if cur, ok := uc.local[key]; ok && cur.ver >= ver {
		return // never step a caller-visible version backwards
	}
	uc.local[key] = cachedConfig{ver: ver, cfg: cfg}
}

func (uc *ConfigUsecase) loadLocal(gameID, partnerID int64) (cachedConfig, bool) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	c, ok := uc.local[[2]int64{gameID, partnerID}]
	return c, ok
}
