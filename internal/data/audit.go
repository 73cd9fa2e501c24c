package data

import (
	"context"
	"fmt"
	"time"

	"egame-ws/internal/biz"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/yola1107/kratos/v2/log"
)

var _json = jsoniter.ConfigCompatibleWithStandardLibrary

type spinLogRow struct {
	ID     int64     `xorm:"'id' pk autoincr"`
	T      time.Time `xorm:"'t'"`
	GID    int64     `xorm:"'gid'"`
	PID    int64     `xorm:"'pid'"`
	UID    int64     `xorm:"'uid'"`
	Bet    string    `xorm:"'bet'"`
	Win    string    `xorm:"'win'"`
	Free   bool      `xorm:"'free'"`
	FSL    int64     `xorm:"'fsl'"`
	CfgV   int64     `xorm:"'cfgv'"`
	BalB   string    `xorm:"'bal_b'"`
	BalA   string    `xorm:"'bal_a'"`
}

func (spinLogRow) TableName() string { return "spin_logs" }

type auditRepo struct {
	data *Data
	log  *log.Helper
}

// NewAuditRepo .
func NewAuditRepo(data *Data, logger log.Logger) biz.AuditRepo {
	return &auditRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// settledEvent mirrors the row that just landed; it rides the fanout
// exchange for downstream reconciliation.
type settledEvent struct {
	T    time.Time       `json:"t"`
	GID  int64           `json:"gid"`
	PID  int64           `json:"pid"`
	UID  int64           `json:"uid"`
	Bet  decimal.Decimal `json:"bet"`
	Win  decimal.Decimal `json:"win"`
	Free bool            `json:"free"`
	FSL  int64           `json:"fsl"`
	CfgV int64           `json:"cfgv"`
	BalB decimal.Decimal `json:"balB"`
	BalA decimal.Decimal `json:"balA"`
}

func (r *auditRepo) Append(ctx context.Context, rec *biz.SpinRecord) error {
	row := &spinLogRow{
		T:    rec.Time,
		GID:  rec.GameID,
		PID:  rec.PartnerID,
		UID:  rec.PlayerID,
		Bet:  rec.Bet.String(),
		Win:  rec.Win.String(),
		Free: rec.FreeSpin,
		FSL:  rec.FreeSpinsLeft,
		CfgV: rec.ConfigVersion,
		BalB: rec.BalanceBefore.String(),
		BalA: rec.BalanceAfter.String(),
	}
	if _, err := r.data.db.Context(ctx).Insert(row); err != nil {
		return err
	}

	body, err := _json.Marshal(&settledEvent{
		T: rec.Time, GID: rec.GameID, PID: rec.PartnerID, UID: rec.PlayerID,
		Bet: rec.Bet, Win: rec.Win, Free: rec.FreeSpin, FSL: rec.FreeSpinsLeft,
		CfgV: rec.ConfigVersion, BalB: rec.BalanceBefore, BalA: rec.BalanceAfter,
	})
	if err == nil {
		err = r.data.pub.Publish(body)
	}
	if err != nil {
		r.log.Warnf("settled event publish failed: uid=%d err=%v", rec.PlayerID, err)
	}
	return nil
}

// sortColumns maps the whitelisted sort keys onto real columns. Keys not
// in this map never reach the repo (the usecase defaults them).
var sortColumns = map[string]string{
	"t.desc":   "t DESC",
	"t.asc":    "t ASC",
	"win.desc": "win DESC",
	"win.asc":  "win ASC",
	"bet.desc": "bet DESC",
	"bet.asc":  "bet ASC",
}

func (r *auditRepo) Query(ctx context.Context, q *biz.LogQuery) ([]*biz.SpinLogView, error) {
	sess := r.data.db.Context(ctx).Where("uid = ?", q.PlayerID)
	if q.GameID != 0 {
		sess = sess.And("gid = ?", q.GameID)
	}
	if q.PartnerID != 0 {
		sess = sess.And("pid = ?", q.PartnerID)
	}
	if q.DateFrom != nil {
		sess = sess.And("t >= ?", *q.DateFrom)
	}
	if q.DateTo != nil {
		sess = sess.And("t <= ?", *q.DateTo)
	}
	order, ok := sortColumns[q.Sort]
	if !ok {
		order = sortColumns["t.desc"]
	}

	var rows []spinLogRow
	if err := sess.OrderBy(order).Limit(q.Limit, q.Offset).Find(&rows); err != nil {
		return nil, err
	}

	views := make([]*biz.SpinLogView, 0, len(rows))
	for _, row := range rows {
		views = append(views, &biz.SpinLogView{
			ID:            fmt.Sprintf("%d", row.ID),
			Timestamp:     row.T,
			GameID:        row.GID,
			PartnerID:     row.PID,
			Bet:           toDecimal(row.Bet),
			Win:           toDecimal(row.Win),
			IsFreeSpin:    row.Free,
			FreeSpinsLeft: row.FSL,
			BalanceBefore: toDecimal(row.BalB),
			BalanceAfter:  toDecimal(row.BalA),
			ConfigVersion: row.CfgV,
		})
	}
	return views, nil
}
