package storage

import (
	"context"

	"github.com/rthefinder/USDG/internal/domain"
)

// Records are created and mutated in place but never deleted; they
// persist for audit.

// LaunchStore provides access to launches storage.
type LaunchStore interface {
	// Insert adds a new launch. Returns ErrDuplicateKey if launch_id exists.
	Insert(ctx context.Context, l *domain.Launch) error

	// GetByID retrieves a launch by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, launchID string) (*domain.Launch, error)

	// GetByMint retrieves the launch for a token mint. Returns ErrNotFound if not exists.
	GetByMint(ctx context.Context, mint string) (*domain.Launch, error)

	// Update overwrites the mutable launch fields (phase, timestamps,
	// accumulators). Returns ErrNotFound if the launch does not exist.
	Update(ctx context.Context, l *domain.Launch) error

	// List retrieves launches ordered by created_at DESC, newest first.
	List(ctx context.Context, limit int) ([]*domain.Launch, error)
}

// ParticipantStore provides access to participants storage.
type ParticipantStore interface {
	// Insert adds a new participant. Returns ErrDuplicateKey if the
	// (launch, wallet) pair exists.
	Insert(ctx context.Context, p *domain.Participant) error

	// GetByKey retrieves the participant for a (launch, wallet) pair.
	// Returns ErrNotFound if the wallet has no record yet.
	GetByKey(ctx context.Context, launchID, wallet string) (*domain.Participant, error)

	// Update overwrites the participant's accumulators.
	// Returns ErrNotFound if the record does not exist.
	Update(ctx context.Context, p *domain.Participant) error

	// GetByLaunch retrieves all participants of a launch, ordered by
	// total_purchased DESC.
	GetByLaunch(ctx context.Context, launchID string) ([]*domain.Participant, error)
}

// LiquidityStore provides access to liquidity_records storage.
type LiquidityStore interface {
	// Insert adds a new liquidity record.
	Insert(ctx context.Context, r *domain.LiquidityRecord) error

	// GetByLaunch retrieves all liquidity records for a launch, ordered
	// by created_at ASC.
	GetByLaunch(ctx context.Context, launchID string) ([]*domain.LiquidityRecord, error)
}

// PurchaseWriter applies an admitted purchase's effects: the
// participant insert-or-update and the launch accumulator update
// either both persist or neither does, so the conservation invariant
// (launch total equals the sum over participants) holds across
// failures.
type PurchaseWriter interface {
	// ApplyPurchase persists the updated participant and launch.
	// firstPurchase selects insert over update for the participant.
	ApplyPurchase(ctx context.Context, l *domain.Launch, p *domain.Participant, firstPurchase bool) error
}

// EventStore provides append-only access to the notification event
// history used for audit, verification, and stats.
type EventStore interface {
	// Insert appends an event.
	Insert(ctx context.Context, e *domain.Event) error

	// GetByLaunch retrieves all events for a launch, ordered by timestamp ASC.
	GetByLaunch(ctx context.Context, launchID string) ([]*domain.Event, error)

	// GetPurchases retrieves PURCHASE_EXECUTED events for a launch,
	// ordered by timestamp ASC.
	GetPurchases(ctx context.Context, launchID string) ([]*domain.Event, error)
}
