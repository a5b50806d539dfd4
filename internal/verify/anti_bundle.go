package verify

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rthefinder/USDG/internal/domain"
)

const (
	// DefaultBundleWindow is the time window, in seconds, within which
	// purchases from different wallets look coordinated.
	DefaultBundleWindow = 5

	// Concentration limits above this are graded down even though the
	// engine accepts anything up to 100.
	maxReasonableConcentration = 15

	antiBundleWarnRatio = 0.6
)

// DetectBundles finds groups of purchases that look coordinated:
// multiple purchases sharing a transaction signature, and purchases
// from different wallets landing within windowSeconds of each other.
func DetectBundles(purchases []Purchase, windowSeconds int64) [][]string {
	var bundles [][]string

	txGroups := make(map[string][]Purchase)
	for _, p := range purchases {
		if p.TxSignature == "" {
			continue
		}
		txGroups[p.TxSignature] = append(txGroups[p.TxSignature], p)
	}

	// Deterministic output order for tests and report stability.
	sigs := make([]string, 0, len(txGroups))
	for sig := range txGroups {
		sigs = append(sigs, sig)
	}
	sort.Strings(sigs)

	for _, sig := range sigs {
		group := txGroups[sig]
		if len(group) > 1 {
			wallets := make([]string, len(group))
			for i, p := range group {
				wallets[i] = p.Wallet
			}
			bundles = append(bundles, wallets)
		}
	}

	sorted := make([]Purchase, len(purchases))
	copy(sorted, purchases)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Timestamp < sorted[j].Timestamp })

	for i := 0; i+1 < len(sorted); i++ {
		gap := sorted[i+1].Timestamp - sorted[i].Timestamp
		if gap < windowSeconds && sorted[i].Wallet != sorted[i+1].Wallet {
			bundles = append(bundles, []string{sorted[i].Wallet, sorted[i+1].Wallet})
		}
	}

	return bundles
}

// VerifyAntiBundle grades the anti-bundle configuration against the
// observed purchase history.
func VerifyAntiBundle(cfg domain.AntiBundleConfig, purchases []Purchase, totalSupply uint64) CheckGroup {
	var checks []Check

	msg := "Bundle detection is not enabled"
	if cfg.DetectBundles {
		msg = "Bundle detection is active"
	}
	checks = append(checks, Check{Name: "Bundle Detection Enabled", Passed: cfg.DetectBundles, Message: msg})

	msg = "Multiple actions per transaction allowed"
	if cfg.OneActionPerTx {
		msg = "Single action per transaction enforced"
	}
	checks = append(checks, Check{Name: "One Action Per Transaction", Passed: cfg.OneActionPerTx, Message: msg})

	reasonable := cfg.MaxWalletConcentration <= maxReasonableConcentration
	checks = append(checks, Check{
		Name:    "Reasonable Concentration Limit",
		Passed:  reasonable,
		Message: fmt.Sprintf("Max wallet concentration: %d%%", cfg.MaxWalletConcentration),
	})

	if len(purchases) > 0 {
		bundles := DetectBundles(purchases, DefaultBundleWindow)
		msg := "No bundled transactions detected"
		if len(bundles) > 0 {
			msg = fmt.Sprintf("%d bundles detected", len(bundles))
		}
		checks = append(checks, Check{Name: "No Bundle Violations", Passed: len(bundles) == 0, Message: msg})

		violations := concentrationViolations(purchases, totalSupply, cfg.MaxWalletConcentration)
		msg = "All wallets within concentration limits"
		if violations > 0 {
			msg = fmt.Sprintf("%d wallets exceed concentration limit", violations)
		}
		checks = append(checks, Check{Name: "Concentration Limits Respected", Passed: violations == 0, Message: msg})
	}

	return CheckGroup{
		Status: statusFor(countPassed(checks), len(checks), antiBundleWarnRatio),
		Checks: checks,
	}
}

// concentrationViolations counts wallets holding more than limitPct of
// the total supply. Exact decimal comparison, same as the admission
// path.
func concentrationViolations(purchases []Purchase, totalSupply uint64, limitPct uint8) int {
	allowed := decimal.NewFromUint64(totalSupply).Mul(decimal.NewFromInt(int64(limitPct)))

	violations := 0
	for _, total := range walletTotals(purchases) {
		held := decimal.NewFromUint64(total).Mul(decimal.NewFromInt(100))
		if held.GreaterThan(allowed) {
			violations++
		}
	}
	return violations
}
