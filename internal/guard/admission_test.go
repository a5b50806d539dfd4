package guard

import (
	"errors"
	"math"
	"testing"

	"github.com/rthefinder/USDG/internal/domain"
)

func tradingLaunch(cfg *domain.LaunchConfig) *domain.Launch {
	launched := int64(0)
	return &domain.Launch{
		LaunchID:   "launch1",
		Creator:    "creator1",
		TokenMint:  "mint1",
		Config:     *cfg,
		Phase:      domain.PhaseTradingOpen,
		LaunchedAt: &launched,
	}
}

func TestAdmitPurchase_PhaseGuard(t *testing.T) {
	l := tradingLaunch(validConfig())

	l.Phase = domain.PhaseInitialized
	if _, err := AdmitPurchase(l, nil, 100, 10); !errors.Is(err, ErrTradingNotEnabled) {
		t.Errorf("Initialized: expected ErrTradingNotEnabled, got %v", err)
	}

	l.Phase = domain.PhaseFinalized
	if _, err := AdmitPurchase(l, nil, 100, 10); !errors.Is(err, ErrLaunchFinalized) {
		t.Errorf("Finalized: expected ErrLaunchFinalized, got %v", err)
	}

	l.Phase = domain.PhaseTradingRestricted
	if _, err := AdmitPurchase(l, nil, 100, 10); err != nil {
		t.Errorf("TradingRestricted should admit purchases, got %v", err)
	}
}

func TestAdmitPurchase_ZeroAmount(t *testing.T) {
	l := tradingLaunch(validConfig())
	if _, err := AdmitPurchase(l, nil, 0, 10); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Expected ErrInvalidAmount, got %v", err)
	}
}

// Scenario: cap 1000 of 100000 supply at 5% concentration. The full cap
// is only 1% of supply, so the wallet cap binds first.
func TestAdmitPurchase_WalletCapBeforeConcentration(t *testing.T) {
	l := tradingLaunch(validConfig())

	d, err := AdmitPurchase(l, nil, 1000, 10)
	if err != nil {
		t.Fatalf("AdmitPurchase failed: %v", err)
	}
	if d.WalletTotal != 1000 {
		t.Errorf("WalletTotal = %d, want 1000", d.WalletTotal)
	}
	if !d.FirstPurchase {
		t.Error("Expected FirstPurchase for new wallet")
	}
	if d.ParticipantCount != 1 {
		t.Errorf("ParticipantCount = %d, want 1", d.ParticipantCount)
	}

	p := &domain.Participant{
		LaunchID:       l.LaunchID,
		Wallet:         "walletA",
		TotalPurchased: d.WalletTotal,
		PurchaseCount:  d.PurchaseCount,
		LastPurchaseAt: d.LastPurchaseAt,
	}
	l.TotalPurchased = d.LaunchTotal
	l.ParticipantCount = d.ParticipantCount

	if _, err := AdmitPurchase(l, p, 1, 20); !errors.Is(err, ErrMaxBuyExceeded) {
		t.Errorf("Expected ErrMaxBuyExceeded (cap is 1000, not concentration), got %v", err)
	}
}

// Scenario: 1% concentration with a 2000 cap. 1000 of 100000 is exactly
// 1% and admitted; one more unit tips concentration.
func TestAdmitPurchase_ConcentrationBoundary(t *testing.T) {
	cfg := validConfig()
	cfg.AntiSnipe.MaxBuyPerWallet = 2000
	cfg.AntiBundle.MaxWalletConcentration = 1
	cfg.AntiBundle.OneActionPerTx = false
	l := tradingLaunch(cfg)

	d, err := AdmitPurchase(l, nil, 1000, 10)
	if err != nil {
		t.Fatalf("Purchase at exactly 1%% should be admitted: %v", err)
	}

	p := &domain.Participant{
		TotalPurchased: d.WalletTotal,
		PurchaseCount:  d.PurchaseCount,
		LastPurchaseAt: d.LastPurchaseAt,
	}
	l.TotalPurchased = d.LaunchTotal
	l.ParticipantCount = d.ParticipantCount

	if _, err := AdmitPurchase(l, p, 1, 20); !errors.Is(err, ErrConcentrationExceeded) {
		t.Errorf("Expected ErrConcentrationExceeded, got %v", err)
	}
}

// Scenario: one_action_per_tx enforces a 1s inter-purchase gap.
func TestAdmitPurchase_RateLimit(t *testing.T) {
	l := tradingLaunch(validConfig())

	d, err := AdmitPurchase(l, nil, 100, 100)
	if err != nil {
		t.Fatalf("First purchase failed: %v", err)
	}

	p := &domain.Participant{
		TotalPurchased: d.WalletTotal,
		PurchaseCount:  d.PurchaseCount,
		LastPurchaseAt: d.LastPurchaseAt,
	}
	l.TotalPurchased = d.LaunchTotal
	l.ParticipantCount = d.ParticipantCount

	// Same instant: rejected.
	if _, err := AdmitPurchase(l, p, 100, 100); !errors.Is(err, ErrPurchaseTooSoon) {
		t.Errorf("Expected ErrPurchaseTooSoon at same instant, got %v", err)
	}

	// One second later: admitted.
	if _, err := AdmitPurchase(l, p, 100, 101); err != nil {
		t.Errorf("Purchase at now=101 should be admitted: %v", err)
	}
}

func TestAdmitPurchase_RateLimitSkipsFirstPurchase(t *testing.T) {
	l := tradingLaunch(validConfig())
	// A brand-new wallet has no last purchase; the gap check must not fire.
	if _, err := AdmitPurchase(l, nil, 100, 0); err != nil {
		t.Errorf("First purchase at now=0 should be admitted: %v", err)
	}
}

func TestAdmitPurchase_RateLimitDisabled(t *testing.T) {
	cfg := validConfig()
	cfg.AntiBundle.OneActionPerTx = false
	l := tradingLaunch(cfg)

	p := &domain.Participant{
		TotalPurchased: 100,
		PurchaseCount:  1,
		LastPurchaseAt: 100,
	}
	if _, err := AdmitPurchase(l, p, 100, 100); err != nil {
		t.Errorf("Gap check disabled, purchase should be admitted: %v", err)
	}
}

func TestAdmitPurchase_WalletOverflow(t *testing.T) {
	cfg := validConfig()
	cfg.AntiSnipe.MaxBuyPerWallet = math.MaxUint64
	cfg.AntiBundle.MaxWalletConcentration = 100
	cfg.AntiBundle.OneActionPerTx = false
	cfg.Distribution.TotalSupply = math.MaxUint64
	l := tradingLaunch(cfg)

	p := &domain.Participant{
		TotalPurchased: math.MaxUint64 - 5,
		PurchaseCount:  1,
	}
	if _, err := AdmitPurchase(l, p, 10, 10); !errors.Is(err, ErrMaxBuyExceeded) {
		t.Errorf("Wallet accumulator overflow: expected ErrMaxBuyExceeded, got %v", err)
	}
}

func TestAdmitPurchase_LaunchOverflow(t *testing.T) {
	cfg := validConfig()
	cfg.AntiSnipe.MaxBuyPerWallet = math.MaxUint64
	cfg.AntiBundle.MaxWalletConcentration = 100
	cfg.AntiBundle.OneActionPerTx = false
	cfg.Distribution.TotalSupply = math.MaxUint64
	l := tradingLaunch(cfg)
	l.TotalPurchased = math.MaxUint64 - 5

	// Wallet side is fine; the launch accumulator would wrap.
	if _, err := AdmitPurchase(l, nil, 10, 10); !errors.Is(err, ErrMaxBuyExceeded) {
		t.Errorf("Launch accumulator overflow: expected ErrMaxBuyExceeded, got %v", err)
	}
}

func TestAdmitPurchase_RepeatWalletDoesNotRecount(t *testing.T) {
	cfg := validConfig()
	cfg.AntiBundle.OneActionPerTx = false
	l := tradingLaunch(cfg)
	l.ParticipantCount = 3

	p := &domain.Participant{
		TotalPurchased: 100,
		PurchaseCount:  2,
		LastPurchaseAt: 5,
	}
	d, err := AdmitPurchase(l, p, 100, 10)
	if err != nil {
		t.Fatalf("AdmitPurchase failed: %v", err)
	}
	if d.FirstPurchase {
		t.Error("Repeat wallet must not be a first purchase")
	}
	if d.ParticipantCount != 3 {
		t.Errorf("ParticipantCount = %d, want 3 (unchanged)", d.ParticipantCount)
	}
	if d.PurchaseCount != 3 {
		t.Errorf("PurchaseCount = %d, want 3", d.PurchaseCount)
	}
}

// Conservation across a sequence: the launch total tracks the sum of
// wallet totals when every delta is applied.
func TestAdmitPurchase_Conservation(t *testing.T) {
	cfg := validConfig()
	cfg.AntiBundle.OneActionPerTx = false
	l := tradingLaunch(cfg)

	participants := map[string]*domain.Participant{}
	wallets := []string{"a", "b", "c", "a", "b", "a"}
	now := int64(100)

	for i, w := range wallets {
		d, err := AdmitPurchase(l, participants[w], 50, now+int64(i))
		if err != nil {
			t.Fatalf("Purchase %d failed: %v", i, err)
		}
		participants[w] = &domain.Participant{
			LaunchID:       l.LaunchID,
			Wallet:         w,
			TotalPurchased: d.WalletTotal,
			PurchaseCount:  d.PurchaseCount,
			LastPurchaseAt: d.LastPurchaseAt,
		}
		l.TotalPurchased = d.LaunchTotal
		l.ParticipantCount = d.ParticipantCount
	}

	var sum uint64
	for _, p := range participants {
		sum += p.TotalPurchased
	}
	if l.TotalPurchased != sum {
		t.Errorf("Launch total %d != sum of wallet totals %d", l.TotalPurchased, sum)
	}
	if l.ParticipantCount != 3 {
		t.Errorf("ParticipantCount = %d, want 3", l.ParticipantCount)
	}
}

// A rejected admission returns no delta, so the caller has nothing to
// apply and records stay untouched.
func TestAdmitPurchase_RejectionReturnsNoDelta(t *testing.T) {
	l := tradingLaunch(validConfig())
	p := &domain.Participant{TotalPurchased: 1000, PurchaseCount: 1, LastPurchaseAt: 5}

	d, err := AdmitPurchase(l, p, 1, 10)
	if err == nil {
		t.Fatal("Expected rejection")
	}
	if d != nil {
		t.Errorf("Rejected admission must not return a delta, got %+v", d)
	}
}
