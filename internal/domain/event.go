package domain

// EventType identifies a notification event emitted on a successful operation.
type EventType string

const (
	EventLaunchCreated       EventType = "LAUNCH_CREATED"
	EventAuthoritiesRevoked  EventType = "AUTHORITIES_REVOKED"
	EventTradingEnabled      EventType = "TRADING_ENABLED"
	EventPurchaseExecuted    EventType = "PURCHASE_EXECUTED"
	EventLiquidityRegistered EventType = "LIQUIDITY_REGISTERED"
	EventLaunchFinalized     EventType = "LAUNCH_FINALIZED"
)

// Event is a notification record for audit and observability.
// Exactly one is produced per successful operation; events never drive
// control flow.
type Event struct {
	Type      EventType `json:"type"`
	LaunchID  string    `json:"launch_id"`
	TokenMint string    `json:"token_mint"`
	Timestamp int64     `json:"timestamp"` // Unix seconds

	// LAUNCH_CREATED
	Creator string `json:"creator,omitempty"`

	// AUTHORITIES_REVOKED
	MintAuthorityRevoked   bool `json:"mint_authority_revoked,omitempty"`
	FreezeAuthorityRevoked bool `json:"freeze_authority_revoked,omitempty"`

	// PURCHASE_EXECUTED
	Wallet               string `json:"wallet,omitempty"`
	Amount               uint64 `json:"amount,omitempty"`
	TotalWalletPurchased uint64 `json:"total_wallet_purchased,omitempty"`

	// PURCHASE_EXECUTED and LAUNCH_FINALIZED
	TotalLaunchPurchased uint64 `json:"total_launch_purchased,omitempty"`
	ParticipantCount     uint64 `json:"participant_count,omitempty"`

	// LIQUIDITY_REGISTERED
	LPMint      string `json:"lp_mint,omitempty"`
	LPAmount    uint64 `json:"lp_amount,omitempty"`
	LockedUntil *int64 `json:"locked_until,omitempty"`
}
