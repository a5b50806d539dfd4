package domain

import "testing"

func TestPhaseValid(t *testing.T) {
	for _, p := range []Phase{PhaseInitialized, PhaseTradingRestricted, PhaseTradingOpen, PhaseFinalized} {
		if !p.Valid() {
			t.Errorf("%s should be valid", p)
		}
	}
	if Phase("OPEN").Valid() {
		t.Error("unknown phase should be invalid")
	}
	if Phase("").Valid() {
		t.Error("empty phase should be invalid")
	}
}

func TestPhaseTrading(t *testing.T) {
	cases := map[Phase]bool{
		PhaseInitialized:       false,
		PhaseTradingRestricted: true,
		PhaseTradingOpen:       true,
		PhaseFinalized:         false,
	}
	for p, want := range cases {
		if got := p.Trading(); got != want {
			t.Errorf("%s.Trading() = %v, want %v", p, got, want)
		}
	}
}

func TestLiquidityRecordLocked(t *testing.T) {
	until := int64(1700086400)
	rec := LiquidityRecord{LockedUntil: &until}

	if !rec.Locked(until - 1) {
		t.Error("expected locked before expiry")
	}
	if rec.Locked(until) {
		t.Error("expected unlocked at expiry")
	}

	unlocked := LiquidityRecord{}
	if unlocked.Locked(0) {
		t.Error("no lock means never locked")
	}
}
