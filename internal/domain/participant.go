package domain

// Participant is a wallet's cumulative purchase record for one launch.
// Corresponds to the participants table in PostgreSQL.
// Created lazily, as part of the wallet's first admitted purchase.
type Participant struct {
	LaunchID       string
	Wallet         string // base58 wallet identity
	TotalPurchased uint64 // never exceeds max_buy_per_wallet
	PurchaseCount  uint32
	LastPurchaseAt int64 // Unix seconds of most recent admitted purchase
	CreatedAt      int64
}
