package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/rthefinder/USDG/internal/domain"
	"github.com/rthefinder/USDG/internal/observability"
	"github.com/rthefinder/USDG/internal/storage"
)

// EventStore implements storage.EventStore using ClickHouse.
// Events are append-only audit rows; MergeTree never rewrites them.
type EventStore struct {
	conn *Conn
}

// NewEventStore creates a new EventStore.
func NewEventStore(conn *Conn) *EventStore {
	return &EventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.EventStore = (*EventStore)(nil)

const eventColumns = `
	event_type, launch_id, token_mint, timestamp,
	creator, mint_authority_revoked, freeze_authority_revoked,
	wallet, amount, total_wallet_purchased,
	total_launch_purchased, participant_count,
	lp_mint, lp_amount, locked_until
`

// Insert appends an event.
func (s *EventStore) Insert(ctx context.Context, e *domain.Event) (err error) {
	defer observability.ObserveDBQuery("clickhouse", "event_insert", time.Now(), &err)

	if e == nil || e.LaunchID == "" {
		return storage.ErrInvalidInput
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO launch_events (`+eventColumns+`)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	var lockedUntil int64
	if e.LockedUntil != nil {
		lockedUntil = *e.LockedUntil
	}

	err = batch.Append(
		string(e.Type), e.LaunchID, e.TokenMint, e.Timestamp,
		e.Creator, e.MintAuthorityRevoked, e.FreezeAuthorityRevoked,
		e.Wallet, e.Amount, e.TotalWalletPurchased,
		e.TotalLaunchPurchased, e.ParticipantCount,
		e.LPMint, e.LPAmount, lockedUntil,
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByLaunch retrieves all events for a launch, ordered by timestamp ASC.
func (s *EventStore) GetByLaunch(ctx context.Context, launchID string) (_ []*domain.Event, err error) {
	defer observability.ObserveDBQuery("clickhouse", "event_get_by_launch", time.Now(), &err)

	query := `
		SELECT ` + eventColumns + `
		FROM launch_events
		WHERE launch_id = ?
		ORDER BY timestamp ASC
	`

	rows, err := s.conn.Query(ctx, query, launchID)
	if err != nil {
		return nil, fmt.Errorf("query events by launch: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetPurchases retrieves PURCHASE_EXECUTED events for a launch,
// ordered by timestamp ASC.
func (s *EventStore) GetPurchases(ctx context.Context, launchID string) (_ []*domain.Event, err error) {
	defer observability.ObserveDBQuery("clickhouse", "event_get_purchases", time.Now(), &err)

	query := `
		SELECT ` + eventColumns + `
		FROM launch_events
		WHERE launch_id = ? AND event_type = ?
		ORDER BY timestamp ASC
	`

	rows, err := s.conn.Query(ctx, query, launchID, string(domain.EventPurchaseExecuted))
	if err != nil {
		return nil, fmt.Errorf("query purchase events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows driver.Rows) ([]*domain.Event, error) {
	var events []*domain.Event
	for rows.Next() {
		var e domain.Event
		var eventType string
		var lockedUntil int64

		err := rows.Scan(
			&eventType, &e.LaunchID, &e.TokenMint, &e.Timestamp,
			&e.Creator, &e.MintAuthorityRevoked, &e.FreezeAuthorityRevoked,
			&e.Wallet, &e.Amount, &e.TotalWalletPurchased,
			&e.TotalLaunchPurchased, &e.ParticipantCount,
			&e.LPMint, &e.LPAmount, &lockedUntil,
		)
		if err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}

		e.Type = domain.EventType(eventType)
		if lockedUntil != 0 {
			e.LockedUntil = &lockedUntil
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}

	return events, nil
}
