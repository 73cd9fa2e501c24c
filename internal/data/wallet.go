package data

import (
	"context"

	"egame-ws/internal/biz"

	"github.com/shopspring/decimal"
	"github.com/yola1107/kratos/v2/log"
	"xorm.io/xorm"
)

type accountRow struct {
	PlayerID  int64  `xorm:"'player_id' pk"`
	GameID    int64  `xorm:"'game_id' pk"`
	Username  string `xorm:"'username'"`
	Balance   string `xorm:"'balance'"`
	Locked    string `xorm:"'locked_balance'"`
	FreeSpins int64  `xorm:"'free_spins'"`
}

func (accountRow) TableName() string { return "player_accounts" }

type walletRepo struct {
	data *Data
	log  *log.Helper
}

// NewWalletRepo .
func NewWalletRepo(data *Data, logger log.Logger) biz.WalletRepo {
	return &walletRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func toDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (r *walletRepo) Account(ctx context.Context, playerID, gameID int64) (*biz.WalletAccount, error) {
	var row accountRow
	has, err := r.data.db.Context(ctx).
		Where("player_id = ? AND game_id = ?", playerID, gameID).
		Get(&row)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, biz.ErrStorage
	}
	return &biz.WalletAccount{
		PlayerID:      row.PlayerID,
		GameID:        row.GameID,
		Username:      row.Username,
		Balance:       toDecimal(row.Balance),
		LockedBalance: toDecimal(row.Locked),
		FreeSpins:     row.FreeSpins,
	}, nil
}

// Debit 条件原子扣款：余额不足时零改动
func (r *walletRepo) Debit(ctx context.Context, playerID, gameID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.inTx(ctx, func(sess *xorm.Session) error {
		res, err := sess.Exec(
			`UPDATE player_accounts SET balance = balance - ? WHERE player_id = ? AND game_id = ? AND balance >= ?`,
			amount.String(), playerID, gameID, amount.String(),
		)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return biz.ErrInsufficientFunds
		}
		var row accountRow
		has, err := sess.SQL(
			`SELECT balance FROM player_accounts WHERE player_id = ? AND game_id = ?`,
			playerID, gameID,
		).Get(&row)
		if err != nil {
			return err
		}
		if !has {
			return biz.ErrStorage
		}
		balance = toDecimal(row.Balance)
		return nil
	})
	return balance, err
}

// Credit 无条件原子加款
func (r *walletRepo) Credit(ctx context.Context, playerID, gameID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.inTx(ctx, func(sess *xorm.Session) error {
		res, err := sess.Exec(
			`UPDATE player_accounts SET balance = balance + ? WHERE player_id = ? AND game_id = ?`,
			amount.String(), playerID, gameID,
		)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return biz.ErrStorage
		}
		var row accountRow
		has, err := sess.SQL(
			`SELECT balance FROM player_accounts WHERE player_id = ? AND game_id = ?`,
			playerID, gameID,
		).Get(&row)
		if err != nil {
			return err
		}
		if !has {
			return biz.ErrStorage
		}
		balance = toDecimal(row.Balance)
		return nil
	})
	return balance, err
}

// ConsumeFreeSpin 行锁下先查后减，防止同账号并发双扣
func (r *walletRepo) ConsumeFreeSpin(ctx context.Context, playerID, gameID int64) (int64, error) {
	var left int64
	err := r.inTx(ctx, func(sess *xorm.Session) error {
		var row accountRow
		has, err := sess.SQL(
			`SELECT free_spins FROM player_accounts WHERE player_id = ? AND game_id = ? FOR UPDATE`,
			playerID, gameID,
		).Get(&row)
		if err != nil {
			return err
		}
		if !has || row.FreeSpins < 1 {
			return biz.ErrNoFreeSpin
		}
		if _, err = sess.Exec(
			`UPDATE player_accounts SET free_spins = free_spins - 1 WHERE player_id = ? AND game_id = ?`,
			playerID, gameID,
		); err != nil {
			return err
		}
		left = row.FreeSpins - 1
		return nil
	})
	return left, err
}

// AwardFreeSpins 行锁下加次数
func (r *walletRepo) AwardFreeSpins(ctx context.Context, playerID, gameID int64, n int64) (int64, error) {
	var left int64
	err := r.inTx(ctx, func(sess *xorm.Session) error {
		var row accountRow
		has, err := sess.SQL(
			`SELECT free_spins FROM player_accounts WHERE player_id = ? AND game_id = ? FOR UPDATE`,
			playerID, gameID,
		).Get(&row)
		if err != nil {
			return err
		}
		if !has {
			return biz.ErrStorage
		}
		if _, err = sess.Exec(
			`UPDATE player_accounts SET free_spins = free_spins + ? WHERE player_id = ? AND game_id = ?`,
			n, playerID, gameID,
		); err != nil {
			return err
		}
		left = row.FreeSpins + n
		return nil
	})
	return left, err
}

func (r *walletRepo) inTx(ctx context.Context, fn func(sess *xorm.Session) error) error {
	sess := r.data.db.NewSession().Context(ctx)
	defer sess.Close()
	if err := sess.Begin(); err != nil {
		return err
	}
	if err := fn(sess); err != nil {
		_ = sess.Rollback()
		return err
	}
	return sess.Commit()
}
