package guard

import (
	"github.com/shopspring/decimal"

	"github.com/rthefinder/USDG/internal/domain"
)

// minPurchaseGap is the minimum time between admitted purchases from
// the same wallet when one_action_per_tx is configured, in seconds.
const minPurchaseGap = 1

// Delta is the set of state updates produced by an admitted purchase.
// The caller applies it atomically, or not at all.
type Delta struct {
	// Participant updates.
	WalletTotal    uint64
	PurchaseCount  uint32
	LastPurchaseAt int64
	// FirstPurchase marks the wallet's first-ever admitted purchase:
	// the participant record is created and participant_count increments.
	FirstPurchase bool

	// Launch updates.
	LaunchTotal      uint64
	ParticipantCount uint64
}

// AdmitPurchase decides whether a proposed purchase may proceed.
// Pure: reads launch and participant state plus the caller-supplied
// current time, mutates nothing. A nil participant means the wallet has
// no record yet and is treated as all-zero.
//
// Checks run in a fixed order so callers observe deterministic error
// kinds: phase guard, per-wallet cap, purchase-rate gap, wallet
// concentration, launch accumulator.
func AdmitPurchase(launch *domain.Launch, participant *domain.Participant, amount uint64, now int64) (*Delta, error) {
	if amount == 0 {
		return nil, ErrInvalidAmount
	}

	if !launch.Phase.Trading() {
		if launch.Phase == domain.PhaseFinalized {
			return nil, ErrLaunchFinalized
		}
		return nil, ErrTradingNotEnabled
	}

	var walletTotal uint64
	var purchaseCount uint32
	var lastPurchaseAt int64
	if participant != nil {
		walletTotal = participant.TotalPurchased
		purchaseCount = participant.PurchaseCount
		lastPurchaseAt = participant.LastPurchaseAt
	}

	// Per-wallet cap. Overflow reports the same kind as cap-exceeded.
	newWalletTotal := walletTotal + amount
	if newWalletTotal < walletTotal {
		return nil, ErrMaxBuyExceeded
	}
	if newWalletTotal > launch.Config.AntiSnipe.MaxBuyPerWallet {
		return nil, ErrMaxBuyExceeded
	}

	// Minimum inter-purchase gap, only after the wallet's first purchase.
	if launch.Config.AntiBundle.OneActionPerTx && purchaseCount > 0 {
		if now-lastPurchaseAt < minPurchaseGap {
			return nil, ErrPurchaseTooSoon
		}
	}

	// Wallet concentration as a fraction of total supply. Exact decimal
	// comparison: wallet_total * 100 <= limit * total_supply, no
	// truncation at the boundary.
	if exceedsConcentration(newWalletTotal, launch.Config.Distribution.TotalSupply, launch.Config.AntiBundle.MaxWalletConcentration) {
		return nil, ErrConcentrationExceeded
	}

	newLaunchTotal := launch.TotalPurchased + amount
	if newLaunchTotal < launch.TotalPurchased {
		return nil, ErrMaxBuyExceeded
	}

	d := &Delta{
		WalletTotal:      newWalletTotal,
		PurchaseCount:    purchaseCount + 1,
		LastPurchaseAt:   now,
		FirstPurchase:    purchaseCount == 0,
		LaunchTotal:      newLaunchTotal,
		ParticipantCount: launch.ParticipantCount,
	}
	if d.FirstPurchase {
		d.ParticipantCount++
	}
	return d, nil
}

// exceedsConcentration reports whether walletTotal/totalSupply*100
// exceeds the configured percentage limit.
func exceedsConcentration(walletTotal, totalSupply uint64, limitPct uint8) bool {
	held := decimal.NewFromUint64(walletTotal).Mul(decimal.NewFromInt(100))
	allowed := decimal.NewFromUint64(totalSupply).Mul(decimal.NewFromInt(int64(limitPct)))
	return held.GreaterThan(allowed)
}
