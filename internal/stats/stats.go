// Package stats computes launch statistics from the purchase history.
package stats

import (
	"github.com/shopspring/decimal"

	"github.com/rthefinder/USDG/internal/verify"
)

// LaunchStats summarizes a launch's purchase activity.
type LaunchStats struct {
	LaunchID            string          `json:"launch_id"`
	TotalParticipants   int             `json:"total_participants"`
	TotalVolume         uint64          `json:"total_volume"`
	AveragePurchase     uint64          `json:"average_purchase"`
	TopHolderPercentage decimal.Decimal `json:"top_holder_percentage"`
	LastUpdated         int64           `json:"last_updated"`
}

// Compute derives stats from a launch's purchase history. Returns nil
// when there are no purchases; a launch with no activity has no stats
// row.
func Compute(launchID string, purchases []verify.Purchase, totalSupply uint64, now int64) *LaunchStats {
	if len(purchases) == 0 {
		return nil
	}

	var totalVolume uint64
	walletTotals := make(map[string]uint64)
	for _, p := range purchases {
		totalVolume += p.Amount
		walletTotals[p.Wallet] += p.Amount
	}

	var topHolder uint64
	for _, total := range walletTotals {
		if total > topHolder {
			topHolder = total
		}
	}

	topPct := decimal.Zero
	if totalSupply > 0 {
		topPct = decimal.NewFromUint64(topHolder).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromUint64(totalSupply))
	}

	return &LaunchStats{
		LaunchID:            launchID,
		TotalParticipants:   len(walletTotals),
		TotalVolume:         totalVolume,
		AveragePurchase:     totalVolume / uint64(len(purchases)),
		TopHolderPercentage: topPct,
		LastUpdated:         now,
	}
}
