package biz

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yola1107/kratos/v2/log"
)

// SpinRecord is one append-only audit entry. It is written after every
// settled spin whether or not the client is still connected.
type SpinRecord struct {
	Time          time.Time
	GameID        int64
	PartnerID     int64
	PlayerID      int64
	Bet           decimal.Decimal
	Win           decimal.Decimal
	FreeSpin      bool
	FreeSpinsLeft int64
	ConfigVersion int64
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
}

// LogQuery filters the audit history of one player.
type LogQuery struct {
	PlayerID  int64
	GameID    int64 // 0 = all games
	PartnerID int64 // 0 = all partners
	Limit     int
	Offset    int
	Sort      string // one of logSortKeys
	DateFrom  *time.Time
	DateTo    *time.Time
}

// SpinLogView is the client-facing projection of a SpinRecord.
type SpinLogView struct {
	ID            string          `json:"id"`
	Timestamp     time.Time       `json:"timestamp"`
	GameID        int64           `json:"gameId"`
	PartnerID     int64           `json:"partnerId"`
	Bet           decimal.Decimal `json:"bet"`
	Win           decimal.Decimal `json:"win"`
	IsFreeSpin    bool            `json:"isFreeSpin"`
	FreeSpinsLeft int64           `json:"freeSpinsLeft"`
	BalanceBefore decimal.Decimal `json:"balanceBefore"`
	BalanceAfter  decimal.Decimal `json:"balanceAfter"`
	ConfigVersion int64           `json:"configVersion"`
}

// AuditRepo is the append-only spin log store.
type AuditRepo interface {
	Append(ctx context.Context, rec *SpinRecord) error
	Query(ctx context.Context, q *LogQuery) ([]*SpinLogView, error)
}

const (
	defaultLogLimit = 20
	maxLogLimit     = 100
)

var logSortKeys = map[string]struct{}{
	"t.desc": {}, "t.asc": {},
	"win.desc": {}, "win.asc": {},
	"bet.desc": {}, "bet.asc": {},
}

// LogUsecase serves the getLogs history request.
type LogUsecase struct {
	audit AuditRepo
	log   *log.Helper
}

func NewLogUsecase(audit AuditRepo, logger log.Logger) *LogUsecase {
	return &LogUsecase{audit: audit, log: log.NewHelper(logger)}
}

func (uc *LogUsecase) Fetch(ctx context.Context, q *LogQuery) ([]*SpinLogView, error) {
	if q.Limit <= 0 {
		q.Limit = defaultLogLimit
	}
	if q.Limit > maxLogLimit {
		q.Limit = maxLogLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if _, ok := logSortKeys[q.Sort]; !ok {
		q.Sort = "t.desc"
	}
	return uc.audit.Query(ctx, q)
}
