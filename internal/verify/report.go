package verify

import (
	"github.com/rthefinder/USDG/internal/domain"
	"github.com/rthefinder/USDG/internal/observability"
)

const maxStandardConcentration = 20

// GenerateReport runs all rule families and grades the launch with the
// most restrictive family status.
func GenerateReport(launchID string, cfg domain.LaunchConfig, purchases []Purchase, authorities Authorities, verifiedBy string, now int64) *Report {
	antiSnipe := VerifyAntiSnipe(cfg.AntiSnipe, purchases)
	antiBundle := VerifyAntiBundle(cfg.AntiBundle, purchases, cfg.Distribution.TotalSupply)
	antiRug := VerifyAntiRug(cfg.AntiRug, authorities)

	overall := StatusPass
	for _, s := range []Status{antiSnipe.Status, antiBundle.Status, antiRug.Status} {
		switch s {
		case StatusFail:
			overall = StatusFail
		case StatusWarn:
			if overall != StatusFail {
				overall = StatusWarn
			}
		}
	}

	observability.DefaultMetrics.ReportsGenerated.WithLabelValues(string(overall)).Inc()

	return &Report{
		LaunchID:    launchID,
		AntiSnipe:   antiSnipe,
		AntiBundle:  antiBundle,
		AntiRug:     antiRug,
		Overall:     overall,
		GeneratedAt: now,
		VerifiedBy:  verifiedBy,
	}
}

// MeetsMinimumStandards checks a configuration against the floor a
// launch must clear regardless of report grading.
func MeetsMinimumStandards(cfg domain.LaunchConfig) (bool, []string) {
	var violations []string

	if cfg.AntiSnipe.MaxBuyPerWallet == 0 {
		violations = append(violations, "Must set max buy per wallet")
	}

	if !cfg.AntiBundle.DetectBundles {
		violations = append(violations, "Bundle detection must be enabled")
	}
	if cfg.AntiBundle.MaxWalletConcentration > maxStandardConcentration {
		violations = append(violations, "Max wallet concentration too high (>20%)")
	}

	if !cfg.AntiRug.FixedSupply {
		violations = append(violations, "CRITICAL: Fixed supply must be enabled")
	}
	if !cfg.AntiRug.RevokeMintAuthority {
		violations = append(violations, "CRITICAL: Mint authority must be revoked")
	}
	if !cfg.AntiRug.RevokeFreezeAuthority {
		violations = append(violations, "CRITICAL: Freeze authority must be revoked")
	}

	return len(violations) == 0, violations
}
