package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"egame-ws/internal/biz"
	"egame-ws/internal/conf"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/yola1107/kratos/v2/log"
)

// usedTraceTTL keeps a consumed session around briefly so replays are
// distinguishable from unknown tokens in the logs.
const usedTraceTTL = 60 * time.Second

func sessionKey(token string) string { return "session:" + token }

// sessionRecord is the JSON stored under session:{token} by the lobby at
// game-launch time.
type sessionRecord struct {
	PlayerID  int64  `json:"playerId"`
	PartnerID int64  `json:"partnerId"`
	Username  string `json:"username"`
	Used      bool   `json:"used"`
}

type tokenClaims struct {
	PlayerID  int64 `json:"playerId"`
	PartnerID int64 `json:"partnerId"`
	jwt.RegisteredClaims
}

type sessionStore struct {
	data   *Data
	secret []byte
	log    *log.Helper
}

// NewSessionStore .
func NewSessionStore(data *Data, c *conf.Auth, logger log.Logger) biz.SessionRepo {
	return &sessionStore{
		data:   data,
		secret: []byte(c.JwtSecret),
		log:    log.NewHelper(logger),
	}
}

func (s *sessionStore) Claim(ctx context.Context, token string) (*biz.Session, error) {
	claims, err := s.verify(token)
	if err != nil {
		return nil, err
	}

	raw, err := s.data.rdb.Get(ctx, sessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("unknown session token")
	}
	if err != nil {
		return nil, err
	}
	rec := &sessionRecord{}
	if err = _json.UnmarshalFromString(raw, rec); err != nil {
		return nil, err
	}
	if rec.Used {
		return nil, fmt.Errorf("session token replayed: uid=%d", rec.PlayerID)
	}
	if rec.PlayerID != claims.PlayerID {
		return nil, fmt.Errorf("token/session player mismatch")
	}

	rec.Used = true
	body, err := _json.MarshalToString(rec)
	if err != nil {
		return nil, err
	}
	if err = s.data.rdb.Set(ctx, sessionKey(token), body, usedTraceTTL).Err(); err != nil {
		return nil, err
	}

	return &biz.Session{
		PlayerID:  rec.PlayerID,
		PartnerID: rec.PartnerID,
		Username:  rec.Username,
	}, nil
}

func (s *sessionStore) verify(token string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
