package verify

import (
	"fmt"

	"github.com/rthefinder/USDG/internal/domain"
)

const (
	// Buy limits above this are treated as effectively unlimited.
	maxReasonableBuyLimit = 10_000_000

	// minFairLaunchDelay is what the verifier considers a meaningful
	// delay. Stricter than the engine, which accepts any configured
	// value.
	minFairLaunchDelay = 300

	minUnlockDuration = 60

	antiSnipeWarnRatio = 0.6
)

// VerifyAntiSnipe grades the anti-snipe configuration against the
// observed purchase history.
func VerifyAntiSnipe(cfg domain.AntiSnipeConfig, purchases []Purchase) CheckGroup {
	var checks []Check

	reasonable := cfg.MaxBuyPerWallet > 0 && cfg.MaxBuyPerWallet < maxReasonableBuyLimit
	msg := "Buy limit is not within reasonable range"
	if reasonable {
		msg = fmt.Sprintf("Max buy per wallet: %d", cfg.MaxBuyPerWallet)
	}
	checks = append(checks, Check{Name: "Reasonable Buy Limit", Passed: reasonable, Message: msg})

	if cfg.PhasedUnlock {
		valid := cfg.UnlockDuration != nil && *cfg.UnlockDuration >= minUnlockDuration
		msg := "Phased unlock improperly configured"
		if valid {
			msg = fmt.Sprintf("Unlock duration: %ds", *cfg.UnlockDuration)
		}
		checks = append(checks, Check{Name: "Phased Unlock Configured", Passed: valid, Message: msg})
	}

	hasDelay := cfg.FairLaunchDelay != nil && *cfg.FairLaunchDelay >= minFairLaunchDelay
	msg = "No or insufficient fair launch delay"
	if hasDelay {
		msg = fmt.Sprintf("Fair launch delay: %ds", *cfg.FairLaunchDelay)
	}
	checks = append(checks, Check{Name: "Fair Launch Delay", Passed: hasDelay, Message: msg})

	if len(purchases) > 0 {
		totals := walletTotals(purchases)
		violations := 0
		for _, total := range totals {
			if total > cfg.MaxBuyPerWallet {
				violations++
			}
		}
		msg := "All purchases within limits"
		if violations > 0 {
			msg = fmt.Sprintf("%d wallets exceeded limits", violations)
		}
		checks = append(checks, Check{Name: "No Limit Violations", Passed: violations == 0, Message: msg})
	}

	return CheckGroup{
		Status: statusFor(countPassed(checks), len(checks), antiSnipeWarnRatio),
		Checks: checks,
	}
}

func walletTotals(purchases []Purchase) map[string]uint64 {
	totals := make(map[string]uint64)
	for _, p := range purchases {
		totals[p.Wallet] += p.Amount
	}
	return totals
}

func countPassed(checks []Check) int {
	n := 0
	for _, c := range checks {
		if c.Passed {
			n++
		}
	}
	return n
}
