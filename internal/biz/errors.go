package biz

import (
	"github.com/yola1107/kratos/v2/errors"
)

var (
	// ErrInvalidBet is returned before any wallet mutation happens.
	ErrInvalidBet = errors.BadRequest("INVALID_BET", "invalid bet amount")
	// ErrInsufficientFunds maps to wire code "01".
	ErrInsufficientFunds = errors.New(402, "INSUFFICIENT_FUNDS", "balance not enough")
	// ErrNoFreeSpin reports an empty free-spin counter; callers fall back to a balance debit.
	ErrNoFreeSpin = errors.New(402, "NO_FREE_SPIN", "free spin count is zero")
	// ErrAuthFailed covers every handshake rejection: bad token, expired
	// token, replayed token. The close frame carries no detail.
	ErrAuthFailed = errors.Unauthorized("AUTH_FAILED", "authentication failed")
	// ErrUnknownGame is returned for game ids without a registered variant.
	ErrUnknownGame = errors.NotFound("UNKNOWN_GAME", "no adapter for game")
	// ErrConfigUnavailable means no cached config exists and a refresh failed: fail closed.
	ErrConfigUnavailable = errors.InternalServer("CONFIG_UNAVAILABLE", "game config unavailable")
	// ErrStorage hides infrastructure failures from clients.
	ErrStorage = errors.InternalServer("STORAGE", "storage unavailable")
)

// IsReason reports whether err carries the given kratos error reason.
func IsReason(err error, reason string) bool {
	if err == nil {
		return false
	}
	return errors.FromError(err).Reason == reason
}
