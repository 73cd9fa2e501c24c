package data

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"egame-ws/internal/biz"
	"egame-ws/internal/game"

	"github.com/redis/go-redis/v9"
	"github.com/yola1107/kratos/v2/log"
)

const (
	invalidateChannel = "cfg.invalidate"
	warmedChannel     = "cfg.warmed"
)

func effKey(gameID, partnerID int64) string {
	return fmt.Sprintf("game:%d:config:eff:%d", gameID, partnerID)
}

func verKey(gameID, partnerID int64) string {
	return fmt.Sprintf("game:%d:config:ver:%d", gameID, partnerID)
}

type configCache struct {
	data *Data
	log  *log.Helper
}

// NewConfigCache .
func NewConfigCache(data *Data, logger log.Logger) biz.ConfigCache {
	return &configCache{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// cfgEvent is the wire shape on both pub/sub channels.
type cfgEvent struct {
	GameID    int64 `json:"gameId"`
	PartnerID int64 `json:"partnerId"`
	Ver       int64 `json:"ver,omitempty"`
}

func (c *configCache) GetEffective(ctx context.Context, gameID, partnerID int64) (*game.RuntimeConfig, int64, bool, error) {
	raw, err := c.data.rdb.Get(ctx, effKey(gameID, partnerID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, err
	}
	cfg := &game.RuntimeConfig{}
	if err = _json.UnmarshalFromString(raw, cfg); err != nil {
		return nil, 0, false, err
	}
	ver, err := c.GetVersion(ctx, gameID, partnerID)
	if err != nil {
		return nil, 0, false, err
	}
	return cfg, ver, true, nil
}

func (c *configCache) GetVersion(ctx context.Context, gameID, partnerID int64) (int64, error) {
	raw, err := c.data.rdb.Get(ctx, verKey(gameID, partnerID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	ver, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// SetEffective writes config body and version marker in one round trip so
// readers never observe one without the other.
func (c *configCache) SetEffective(ctx context.Context, gameID, partnerID, ver int64, cfg *game.RuntimeConfig) error {
	body, err := _json.MarshalToString(cfg)
	if err != nil {
		return err
	}
	pipe := c.data.rdb.TxPipeline()
	pipe.Set(ctx, effKey(gameID, partnerID), body, 0)
	pipe.Set(ctx, verKey(gameID, partnerID), strconv.FormatInt(ver, 10), 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (c *configCache) PublishWarmed(ctx context.Context, gameID, partnerID, ver int64) error {
	body, err := _json.Marshal(&cfgEvent{GameID: gameID, PartnerID: partnerID, Ver: ver})
	if err != nil {
		return err
	}
	return c.data.rdb.Publish(ctx, warmedChannel, body).Err()
}

func (c *configCache) SubscribeInvalidate(ctx context.Context, fn func(gameID, partnerID int64)) (func(), error) {
	sub := c.data.rdb.Subscribe(ctx, invalidateChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range sub.Channel() {
			ev := &cfgEvent{}
			if err := _json.UnmarshalFromString(msg.Payload, ev); err != nil {
				c.log.Warnf("bad invalidate payload: %q err=%v", msg.Payload, err)
				continue
			}
			fn(ev.GameID, ev.PartnerID)
		}
	}()

	stop := func() {
		_ = sub.Close()
		<-done
	}
	return stop, nil
}

// PublishInvalidate is the admin-facing trigger; it rides the same channel
// every process subscribes to, including this one.
func (c *configCache) PublishInvalidate(ctx context.Context, gameID, partnerID int64) error {
	body, err := _json.Marshal(&cfgEvent{GameID: gameID, PartnerID: partnerID})
	if err != nil {
		return err
	}
	return c.data.rdb.Publish(ctx, invalidateChannel, body).Err()
}
