package data

import (
	"context"

	"egame-ws/internal/biz"
	"egame-ws/internal/game"

	"github.com/yola1107/kratos/v2/log"
)

type gameRow struct {
	ID     int64  `xorm:"'id' pk"`
	Name   string `xorm:"'name'"`
	Config string `xorm:"'config'"` // JSON, may be empty
}

func (gameRow) TableName() string { return "games" }

type partnerGameConfigRow struct {
	GameID    int64  `xorm:"'game_id' pk"`
	PartnerID int64  `xorm:"'partner_id' pk"`
	Config    string `xorm:"'config'"`
}

func (partnerGameConfigRow) TableName() string { return "partner_game_configs" }

type configSourceRepo struct {
	data *Data
	log  *log.Helper
}

// NewConfigSourceRepo .
func NewConfigSourceRepo(data *Data, logger log.Logger) biz.ConfigSourceRepo {
	return &configSourceRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *configSourceRepo) BaseConfig(ctx context.Context, gameID int64) (*game.RawConfig, error) {
	var row gameRow
	has, err := r.data.db.Context(ctx).Where("id = ?", gameID).Get(&row)
	if err != nil {
		return nil, err
	}
	if !has || row.Config == "" {
		return nil, nil
	}
	return unmarshalRaw(row.Config)
}

func (r *configSourceRepo) PartnerOverride(ctx context.Context, gameID, partnerID int64) (*game.RawConfig, error) {
	var row partnerGameConfigRow
	has, err := r.data.db.Context(ctx).
		Where("game_id = ? AND partner_id = ?", gameID, partnerID).
		Get(&row)
	if err != nil {
		return nil, err
	}
	if !has || row.Config == "" {
		return nil, nil
	}
	return unmarshalRaw(row.Config)
}

func unmarshalRaw(s string) (*game.RawConfig, error) {
	raw := &game.RawConfig{}
	if err := _json.UnmarshalFromString(s, raw); err != nil {
		return nil, err
	}
	return raw, nil
}
