package biz

import (
	"context"
	"sync"
	"testing"

	"egame-ws/internal/game"

	"github.com/shopspring/decimal"
	"github.com/yola1107/kratos/v2/log"
)

type fakeWallet struct {
	mu        sync.Mutex
	balance   decimal.Decimal
	freeSpins int64

	debits  int
	credits int
}

func newFakeWallet(balance int64, freeSpins int64) *fakeWallet {
	return &fakeWallet{balance: decimal.NewFromInt(balance), freeSpins: freeSpins}
}

func (w *fakeWallet) Account(context.Context, int64, int64) (*WalletAccount, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return &WalletAccount{PlayerID: 1, GameID: 1001, Username: "tester", Balance: w.balance, FreeSpins: w.freeSpins}, nil
}

func (w *fakeWallet) Debit(_ context.Context, _, _ int64, amount decimal.Decimal) (decimal.Decimal, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.balance.LessThan(amount) {
		return w.balance, ErrInsufficientFunds
	}
	w.balance = w.balance.Sub(amount)
	w.debits++
	return w.balance, nil
}

func (w *fakeWallet) Credit(_ context.Context, _, _ int64, amount decimal.Decimal) (decimal.Decimal, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balance = w.balance.Add(amount)
	w.credits++
	return w.balance, nil
}

func (w *fakeWallet) ConsumeFreeSpin(context.Context, int64, int64) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.freeSpins < 1 {
		return 0, ErrNoFreeSpin
	}
	w.freeSpins--
	return w.freeSpins, nil
}

func (w *fakeWallet) AwardFreeSpins(_ context.Context, _, _ int64, n int64) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.freeSpins += n
	return w.freeSpins, nil
}

type fakeAudit struct {
	mu   sync.Mutex
	recs []*SpinRecord
}

func (a *fakeAudit) Append(_ context.Context, rec *SpinRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recs = append(a.recs, rec)
	return nil
}

func (a *fakeAudit) Query(context.Context, *LogQuery) ([]*SpinLogView, error) {
	return nil, nil
}

type fakeSource struct {
	base     map[int64]*game.RawConfig
	override map[[2]int64]*game.RawConfig
}

func (s *fakeSource) BaseConfig(_ context.Context, gameID int64) (*game.RawConfig, error) {
	return s.base[gameID], nil
}

func (s *fakeSource) PartnerOverride(_ context.Context, gameID, partnerID int64) (*game.RawConfig, error) {
	return s.override[[2]int64{gameID, partnerID}], nil
}

type fakeCache struct {
	mu   sync.Mutex
	cfgs map[[2]int64]*game.RuntimeConfig
	vers map[[2]int64]int64

	verErr     error
	warmed     int
	invalidate func(gameID, partnerID int64)
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		cfgs: make(map[[2]int64]*game.RuntimeConfig),
		vers: make(map[[2]int64]int64),
	}
}

func (c *fakeCache) GetEffective(_ context.Context, gameID, partnerID int64) (*game.RuntimeConfig, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := [2]int64{gameID, partnerID}
	cfg, ok := c.cfgs[key]
	if !ok {
		return nil, 0, false, nil
	}
	return cfg, c.vers[key], true, nil
}

func (c *fakeCache) GetVersion(_ context.Context, gameID, partnerID int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.verErr != nil {
		return 0, c.verErr
	}
	return c.vers[[2]int64{gameID, partnerID}], nil
}

func (c *fakeCache) SetEffective(_ context.Context, gameID, partnerID, ver int64, cfg *game.RuntimeConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := [2]int64{gameID, partnerID}
	c.cfgs[key] = cfg
	c.vers[key] = ver
	return nil
}

func (c *fakeCache) PublishWarmed(context.Context, int64, int64, int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warmed++
	return nil
}

func (c *fakeCache) PublishInvalidate(_ context.Context, gameID, partnerID int64) error {
	if c.invalidate != nil {
		c.invalidate(gameID, partnerID)
	}
	return nil
}

func (c *fakeCache) SubscribeInvalidate(_ context.Context, fn func(gameID, partnerID int64)) (func(), error) {
	c.invalidate = fn
	return func() {}, nil
}

func newTestSpinUsecase(t *testing.T, wallet *fakeWallet) (*SpinUsecase, *fakeAudit) {
	t.Helper()
	logger := log.DefaultLogger
	registry := game.NewRegistry()
	cfg := NewConfigUsecase(registry, &fakeSource{}, newFakeCache(), logger)
	audit := &fakeAudit{}
	return NewSpinUsecase(registry, wallet, audit, cfg, logger), audit
}

func TestSpinDebitsAndSettles(t *testing.T) {
	wallet := newFakeWallet(1000, 0)
	uc, audit := newTestSpinUsecase(t, wallet)

	bet := decimal.NewFromInt(10)
	res, err := uc.Spin(context.Background(), 1, 1001, 0, bet)
	if err != nil {
		t.Fatalf("spin failed: %v", err)
	}
	if res.Outcome.UsedFreeSpin {
		t.Fatal("no free spins were available")
	}
	if wallet.debits != 1 {
		t.Fatalf("debits = %d, want 1", wallet.debits)
	}

	want := decimal.NewFromInt(1000).Sub(bet).Add(res.Outcome.TotalWin)
	if !res.Balance.Equal(want) {
		t.Fatalf("balance = %s, want %s", res.Balance, want)
	}

	if len(audit.recs) != 1 {
		t.Fatalf("audit records = %d, want 1", len(audit.recs))
	}
	rec := audit.recs[0]
	if !rec.BalanceBefore.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("balance before = %s", rec.BalanceBefore)
	}
	if !rec.BalanceAfter.Equal(res.Balance) || !rec.Win.Equal(res.Outcome.TotalWin) {
		t.Fatalf("audit mismatch: %+v", rec)
	}
	if rec.ConfigVersion == 0 {
		t.Fatal("audit missing config version")
	}
}

func TestSpinPrefersFreeSpin(t *testing.T) {
	wallet := newFakeWallet(1000, 2)
	uc, _ := newTestSpinUsecase(t, wallet)

	res, err := uc.Spin(context.Background(), 1, 1001, 0, decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("spin failed: %v", err)
	}
	if !res.Outcome.UsedFreeSpin {
		t.Fatal("free spin not consumed")
	}
	if wallet.debits != 0 {
		t.Fatal("balance debited despite free spin")
	}
	// A trigger during the spin can push the count back up, but one was
	// consumed either way.
	if res.FreeSpinsLeft < 1 && !res.Outcome.FreeTrigger {
		t.Fatalf("free spins left = %d", res.FreeSpinsLeft)
	}
}

func TestSpinInsufficientFunds(t *testing.T) {
	wallet := newFakeWallet(5, 0)
	uc, audit := newTestSpinUsecase(t, wallet)

	_, err := uc.Spin(context.Background(), 1, 1001, 0, decimal.NewFromInt(10))
	if !IsReason(err, ErrInsufficientFunds.Reason) {
		t.Fatalf("err = %v, want insufficient funds", err)
	}
	if !wallet.balance.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("balance mutated: %s", wallet.balance)
	}
	if len(audit.recs) != 0 {
		t.Fatal("failed spin must not be audited")
	}
}

func TestSpinRejectsBadBet(t *testing.T) {
	wallet := newFakeWallet(100000, 0)
	uc, _ := newTestSpinUsecase(t, wallet)

	for _, bet := range []decimal.Decimal{
		decimal.Zero,
		decimal.NewFromInt(-5),
		decimal.NewFromInt(10001), // 超过 maxBet
	} {
		_, err := uc.Spin(context.Background(), 1, 1001, 0, bet)
		if !IsReason(err, ErrInvalidBet.Reason) {
			t.Fatalf("bet %s: err = %v, want invalid bet", bet, err)
		}
	}
	if wallet.debits != 0 {
		t.Fatal("rejected bet touched the wallet")
	}
}

func TestSpinUnknownGame(t *testing.T) {
	wallet := newFakeWallet(1000, 0)
	uc, _ := newTestSpinUsecase(t, wallet)

	_, err := uc.Spin(context.Background(), 1, 4242, 0, decimal.NewFromInt(10))
	if !IsReason(err, ErrUnknownGame.Reason) {
		t.Fatalf("err = %v, want unknown game", err)
	}
}

func TestLogFetchClamps(t *testing.T) {
	captured := &LogQuery{}
	uc := NewLogUsecase(queryCapture{captured}, log.DefaultLogger)

	_, err := uc.Fetch(context.Background(), &LogQuery{PlayerID: 1, Limit: 500, Offset: -3, Sort: "balance.desc"})
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if captured.Limit != maxLogLimit {
		t.Fatalf("limit = %d, want %d", captured.Limit, maxLogLimit)
	}
	if captured.Offset != 0 {
		t.Fatalf("offset = %d, want 0", captured.Offset)
	}
	if captured.Sort != "t.desc" {
		t.Fatalf("sort = %q, want t.desc", captured.Sort)
	}

	_, _ = uc.Fetch(context.Background(), &LogQuery{PlayerID: 1})
	if captured.Limit != defaultLogLimit {
		t.Fatalf("default limit = %d, want %d", captured.Limit, defaultLogLimit)
	}
}

type queryCapture struct {
	dst *LogQuery
}

func (q queryCapture) Append(context.Context, *SpinRecord) error { return nil }

func (q queryCapture) Query(_ context.Context, in *LogQuery) ([]*SpinLogView, error) {
	*q.dst = *in
	return []*SpinLogView{}, nil
}

func TestDebitConcurrentExactlyAffordable(t *testing.T) {
	// 100 parallel debits of 10 against a balance of 250: exactly 25
	// succeed, the rest fail without touching the balance.
	wallet := newFakeWallet(250, 0)
	amount := decimal.NewFromInt(10)

	var wg sync.WaitGroup
	var ok, insufficient int64
	var mu sync.Mutex
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := wallet.Debit(context.Background(), 1, 1001, amount)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case IsReason(err, ErrInsufficientFunds.Reason):
				insufficient++
			default:
				t.Errorf("unexpected debit error: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok != 25 || insufficient != 75 {
		t.Fatalf("ok=%d insufficient=%d, want 25/75", ok, insufficient)
	}
	if !wallet.balance.IsZero() {
		t.Fatalf("balance = %s, want 0", wallet.balance)
	}
}

func TestDebitCreditRoundTrip(t *testing.T) {
	wallet := newFakeWallet(100, 0)
	amount := decimal.NewFromInt(37)

	if _, err := wallet.Debit(context.Background(), 1, 1001, amount); err != nil {
		t.Fatalf("debit failed: %v", err)
	}
	bal, err := wallet.Credit(context.Background(), 1, 1001, amount)
	if err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	if !bal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("balance = %s, want 100", bal)
	}
}
