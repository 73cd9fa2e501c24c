package biz

import (
	"context"
	"time"

	"egame-ws/internal/game"

	"github.com/shopspring/decimal"
	"github.com/yola1107/kratos/v2/log"
)

const creditRetries = 3

// SpinResult aggregates one fully settled spin.
type SpinResult struct {
	Outcome       *game.SpinOutcome
	Balance       decimal.Decimal
	FreeSpinsLeft int64
	ConfigVersion int64
}

// SpinUsecase composes the ledger, the config distribution and the grid
// engine into one spin transaction. From the player's observable-balance
// standpoint a spin either fully settles or fully does not.
type SpinUsecase struct {
	registry *game.Registry
	wallet   WalletRepo
	audit    AuditRepo
	cfg      *ConfigUsecase
	log      *log.Helper
}

func NewSpinUsecase(registry *game.Registry, wallet WalletRepo, audit AuditRepo, cfg *ConfigUsecase, logger log.Logger) *SpinUsecase {
	return &SpinUsecase{
		registry: registry,
		wallet:   wallet,
		audit:    audit,
		cfg:      cfg,
		log:      log.NewHelper(logger),
	}
}

func (uc *SpinUsecase) Spin(ctx context.Context, playerID, gameID, partnerID int64, bet decimal.Decimal) (*SpinResult, error) {
	entry, err := uc.registry.Get(gameID)
	if err != nil {
		return nil, ErrUnknownGame
	}

	// Config is snapshotted once at the start of the spin; a rebuild that
	// lands mid-spin never applies retroactively.
	ver, cfg, err := uc.cfg.GetConfigWithVersion(ctx, gameID, partnerID)
	if err != nil {
		return nil, err
	}

	if bet.LessThanOrEqual(decimal.Zero) || bet.GreaterThan(decimal.NewFromFloat(cfg.MaxBet)) {
		return nil, ErrInvalidBet
	}

	// Consume a free spin when one is available, otherwise debit the bet.
	// Both paths are conditional atomics: a failure mutates nothing.
	usedFree := false
	var balBefore, balance decimal.Decimal
	freeLeft, err := uc.wallet.ConsumeFreeSpin(ctx, playerID, gameID)
	switch {
	case err == nil:
		usedFree = true
		acct, aerr := uc.wallet.Account(ctx, playerID, gameID)
		if aerr != nil {
			return nil, ErrStorage
		}
		balBefore, balance = acct.Balance, acct.Balance
	case IsReason(err, ErrNoFreeSpin.Reason):
		balance, err = uc.wallet.Debit(ctx, playerID, gameID, bet)
		if err != nil {
			if IsReason(err, ErrInsufficientFunds.Reason) {
				return nil, ErrInsufficientFunds
			}
			return nil, ErrStorage
		}
		balBefore = balance.Add(bet)
	default:
		return nil, ErrStorage
	}

	rng := game.AcquireRand()
	outcome := entry.Engine.Spin(cfg, bet, usedFree, rng)
	game.ReleaseRand(rng)
	outcome.UsedFreeSpin = usedFree

	if outcome.TotalWin.IsPositive() {
		balance, err = uc.creditWithRetry(ctx, playerID, gameID, outcome.TotalWin)
		if err != nil {
			// The bet is already taken; this win must not vanish.
			uc.log.Errorf("pending win needs reconciliation: player=%d game=%d win=%s err=%v",
				playerID, gameID, outcome.TotalWin, err)
			return nil, ErrStorage
		}
	}

	if outcome.FreeTrigger {
		freeLeft, err = uc.wallet.AwardFreeSpins(ctx, playerID, gameID, outcome.FreeAwarded)
		if err != nil {
			uc.log.Errorf("free spin award needs reconciliation: player=%d game=%d n=%d err=%v",
				playerID, gameID, outcome.FreeAwarded, err)
			return nil, ErrStorage
		}
	}

	rec := &SpinRecord{
		Time:          time.Now(),
		GameID:        gameID,
		PartnerID:     partnerID,
		PlayerID:      playerID,
		Bet:           bet,
		Win:           outcome.TotalWin,
		FreeSpin:      usedFree,
		FreeSpinsLeft: freeLeft,
		ConfigVersion: ver,
		BalanceBefore: balBefore,
		BalanceAfter:  balance,
	}
	if err := uc.audit.Append(ctx, rec); err != nil {
		// The settlement already happened; the audit write is retried by
		// the repo and only logged here.
		uc.log.Errorf("spin audit append failed: player=%d game=%d err=%v", playerID, gameID, err)
	}

	return &SpinResult{
		Outcome:       outcome,
		Balance:       balance,
		FreeSpinsLeft: freeLeft,
		ConfigVersion: ver,
	}, nil
}

func (uc *SpinUsecase) creditWithRetry(ctx context.Context, playerID, gameID int64, win decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	var err error
	for i := 0; i < creditRetries; i++ {
		balance, err = uc.wallet.Credit(ctx, playerID, gameID, win)
		if err == nil {
			return balance, nil
		}
		time.Sleep(time.Duration(i+1) * 50 * time.Millisecond)
	}
	return balance, err
}
