package biz

import (
	"context"

	"github.com/yola1107/kratos/v2/log"
)

// Session is the authenticated identity behind one connection.
type Session struct {
	PlayerID  int64
	PartnerID int64
	Username  string
}

// SessionRepo resolves one-time connection tokens. Claim consumes the
// token: a second Claim with the same token fails.
type SessionRepo interface {
	Claim(ctx context.Context, token string) (*Session, error)
}

// AuthUsecase gates the websocket handshake.
type AuthUsecase struct {
	repo SessionRepo
	log  *log.Helper
}

func NewAuthUsecase(repo SessionRepo, logger log.Logger) *AuthUsecase {
	return &AuthUsecase{repo: repo, log: log.NewHelper(logger)}
}

// Authenticate validates and consumes a connection token. Failures are
// logged with the reason but reported to the client uniformly.
func (uc *AuthUsecase) Authenticate(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrAuthFailed
	}
	sess, err := uc.repo.Claim(ctx, token)
	if err != nil {
		uc.log.Warnf("auth rejected: %v", err)
		return nil, ErrAuthFailed
	}
	return sess, nil
}
