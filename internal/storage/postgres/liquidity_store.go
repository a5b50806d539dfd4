package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/rthefinder/USDG/internal/domain"
	"github.com/rthefinder/USDG/internal/observability"
	"github.com/rthefinder/USDG/internal/storage"
)

// LiquidityStore implements storage.LiquidityStore using PostgreSQL.
type LiquidityStore struct {
	pool *Pool
}

// NewLiquidityStore creates a new LiquidityStore.
func NewLiquidityStore(pool *Pool) *LiquidityStore {
	return &LiquidityStore{pool: pool}
}

// Compile-time interface check.
var _ storage.LiquidityStore = (*LiquidityStore)(nil)

// Insert adds a new liquidity record.
func (s *LiquidityStore) Insert(ctx context.Context, r *domain.LiquidityRecord) (err error) {
	defer observability.ObserveDBQuery("postgres", "liquidity_insert", time.Now(), &err)

	if r == nil || r.LaunchID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO liquidity_records (
			launch_id, lp_mint, lp_amount, locked_until, created_at
		) VALUES ($1, $2, $3, $4, $5)
	`

	_, err = s.pool.Exec(ctx, query,
		r.LaunchID,
		r.LPMint,
		int64(r.LPAmount),
		r.LockedUntil,
		r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert liquidity record: %w", err)
	}
	return nil
}

// GetByLaunch retrieves all liquidity records for a launch, ordered by
// created_at ASC.
func (s *LiquidityStore) GetByLaunch(ctx context.Context, launchID string) (_ []*domain.LiquidityRecord, err error) {
	defer observability.ObserveDBQuery("postgres", "liquidity_get_by_launch", time.Now(), &err)

	query := `
		SELECT launch_id, lp_mint, lp_amount, locked_until, created_at
		FROM liquidity_records
		WHERE launch_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, launchID)
	if err != nil {
		return nil, fmt.Errorf("get liquidity records by launch: %w", err)
	}
	defer rows.Close()

	var records []*domain.LiquidityRecord
	for rows.Next() {
		var r domain.LiquidityRecord
		var lpAmount int64
		if err := rows.Scan(&r.LaunchID, &r.LPMint, &lpAmount, &r.LockedUntil, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan liquidity record row: %w", err)
		}
		r.LPAmount = uint64(lpAmount)
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate liquidity record rows: %w", err)
	}

	return records, nil
}
