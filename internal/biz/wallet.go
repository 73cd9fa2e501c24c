package biz

import (
	"context"

	"github.com/shopspring/decimal"
)

// WalletAccount is the durable per (player, game) money state. It is only
// ever mutated through the atomic single-row operations of WalletRepo.
type WalletAccount struct {
	PlayerID      int64
	GameID        int64
	Username      string
	Balance       decimal.Decimal
	LockedBalance decimal.Decimal
	FreeSpins     int64
}

// WalletRepo is the balance ledger. Debit and ConsumeFreeSpin are
// conditional: they fail without mutating when the precondition does not
// hold, and concurrent callers can never overdraw the same account.
type WalletRepo interface {
	Account(ctx context.Context, playerID, gameID int64) (*WalletAccount, error)

	// Debit subtracts amount if balance >= amount and returns the new
	// balance. Returns ErrInsufficientFunds without mutating otherwise.
	Debit(ctx context.Context, playerID, gameID int64, amount decimal.Decimal) (decimal.Decimal, error)

	// Credit adds amount unconditionally and returns the new balance.
	Credit(ctx context.Context, playerID, gameID int64, amount decimal.Decimal) (decimal.Decimal, error)

	// ConsumeFreeSpin decrements the free-spin count under a row lock.
	// Returns ErrNoFreeSpin without mutating when the count is zero.
	ConsumeFreeSpin(ctx context.Context, playerID, gameID int64) (int64, error)

	// AwardFreeSpins increments the free-spin count under a row lock and
	// returns the new count.
	AwardFreeSpins(ctx context.Context, playerID, gameID int64, n int64) (int64, error)
}
