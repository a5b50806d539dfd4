package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rthefinder/USDG/internal/domain"
	"github.com/rthefinder/USDG/internal/observability"
	"github.com/rthefinder/USDG/internal/storage"
)

// ParticipantStore implements storage.ParticipantStore using PostgreSQL.
type ParticipantStore struct {
	pool *Pool
}

// NewParticipantStore creates a new ParticipantStore.
func NewParticipantStore(pool *Pool) *ParticipantStore {
	return &ParticipantStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ParticipantStore = (*ParticipantStore)(nil)

// Insert adds a new participant. Returns ErrDuplicateKey if the
// (launch, wallet) pair exists.
func (s *ParticipantStore) Insert(ctx context.Context, p *domain.Participant) (err error) {
	defer observability.ObserveDBQuery("postgres", "participant_insert", time.Now(), &err)

	query := `
		INSERT INTO participants (
			launch_id, wallet, total_purchased, purchase_count, last_purchase_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = s.pool.Exec(ctx, query,
		p.LaunchID,
		p.Wallet,
		int64(p.TotalPurchased),
		int32(p.PurchaseCount),
		p.LastPurchaseAt,
		p.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

// GetByKey retrieves the participant for a (launch, wallet) pair.
// Returns ErrNotFound if the wallet has no record yet.
func (s *ParticipantStore) GetByKey(ctx context.Context, launchID, wallet string) (_ *domain.Participant, err error) {
	defer observability.ObserveDBQuery("postgres", "participant_get_by_key", time.Now(), &err)

	query := `
		SELECT launch_id, wallet, total_purchased, purchase_count, last_purchase_at, created_at
		FROM participants
		WHERE launch_id = $1 AND wallet = $2
	`

	row := s.pool.QueryRow(ctx, query, launchID, wallet)
	p, err := scanParticipant(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get participant by key: %w", err)
	}
	return p, nil
}

// Update overwrites the participant's accumulators. Returns ErrNotFound
// if the record does not exist.
func (s *ParticipantStore) Update(ctx context.Context, p *domain.Participant) (err error) {
	defer observability.ObserveDBQuery("postgres", "participant_update", time.Now(), &err)

	query := `
		UPDATE participants
		SET total_purchased = $3,
			purchase_count = $4,
			last_purchase_at = $5
		WHERE launch_id = $1 AND wallet = $2
	`

	tag, err := s.pool.Exec(ctx, query,
		p.LaunchID,
		p.Wallet,
		int64(p.TotalPurchased),
		int32(p.PurchaseCount),
		p.LastPurchaseAt,
	)
	if err != nil {
		return fmt.Errorf("update participant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetByLaunch retrieves all participants of a launch, ordered by
// total_purchased DESC.
func (s *ParticipantStore) GetByLaunch(ctx context.Context, launchID string) (_ []*domain.Participant, err error) {
	defer observability.ObserveDBQuery("postgres", "participant_get_by_launch", time.Now(), &err)

	query := `
		SELECT launch_id, wallet, total_purchased, purchase_count, last_purchase_at, created_at
		FROM participants
		WHERE launch_id = $1
		ORDER BY total_purchased DESC, wallet ASC
	`

	rows, err := s.pool.Query(ctx, query, launchID)
	if err != nil {
		return nil, fmt.Errorf("get participants by launch: %w", err)
	}
	defer rows.Close()

	var participants []*domain.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participant row: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participant rows: %w", err)
	}

	return participants, nil
}

// scanParticipant scans a single row into a Participant.
func scanParticipant(row pgx.Row) (*domain.Participant, error) {
	var p domain.Participant
	var totalPurchased int64
	var purchaseCount int32

	err := row.Scan(
		&p.LaunchID,
		&p.Wallet,
		&totalPurchased,
		&purchaseCount,
		&p.LastPurchaseAt,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.TotalPurchased = uint64(totalPurchased)
	p.PurchaseCount = uint32(purchaseCount)
	return &p, nil
}
