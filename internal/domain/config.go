package domain

// AntiSnipeConfig limits single-wallet purchase size and timing.
type AntiSnipeConfig struct {
	MaxBuyPerWallet uint64 `json:"max_buy_per_wallet"` // required, > 0
	PhasedUnlock    bool   `json:"phased_unlock"`      // reserved
	UnlockDuration  *int64 `json:"unlock_duration"`    // seconds, reserved
	FairLaunchDelay *int64 `json:"fair_launch_delay"`  // seconds between revocation and open trading
}

// AntiBundleConfig limits coordinated or rapid multi-purchase abuse.
type AntiBundleConfig struct {
	DetectBundles          bool  `json:"detect_bundles"`           // informational; report-side heuristic only
	MaxWalletConcentration uint8 `json:"max_wallet_concentration"` // percentage of total supply, 0-100
	OneActionPerTx         bool  `json:"one_action_per_tx"`        // enforces >= 1s gap between purchases per wallet
}

// AntiRugConfig requires irreversible supply/authority guarantees before trading.
type AntiRugConfig struct {
	FixedSupply           bool   `json:"fixed_supply"`            // must be true
	RevokeMintAuthority   bool   `json:"revoke_mint_authority"`   // must be true
	RevokeFreezeAuthority bool   `json:"revoke_freeze_authority"` // must be true
	LPLockDuration        *int64 `json:"lp_lock_duration"`        // seconds, optional
}

// DistributionConfig holds economic parameters of the launch.
// TotalSupply is the denominator for concentration checks.
type DistributionConfig struct {
	InitialPrice      uint64 `json:"initial_price"`
	TotalSupply       uint64 `json:"total_supply"` // > 0
	LiquidityAmount   uint64 `json:"liquidity_amount"`
	CreatorAllocation uint64 `json:"creator_allocation"`
}

// LaunchConfig is the full rule set for one launch.
// Immutable after the launch record is created.
type LaunchConfig struct {
	AntiSnipe    AntiSnipeConfig    `json:"anti_snipe"`
	AntiBundle   AntiBundleConfig   `json:"anti_bundle"`
	AntiRug      AntiRugConfig      `json:"anti_rug"`
	Distribution DistributionConfig `json:"distribution"`
}
