package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/rthefinder/USDG/internal/domain"
	"github.com/rthefinder/USDG/internal/observability"
	"github.com/rthefinder/USDG/internal/storage"
)

// PurchaseWriter implements storage.PurchaseWriter using PostgreSQL.
// Both writes run in one transaction.
type PurchaseWriter struct {
	pool *Pool
}

// NewPurchaseWriter creates a new PurchaseWriter.
func NewPurchaseWriter(pool *Pool) *PurchaseWriter {
	return &PurchaseWriter{pool: pool}
}

// Compile-time interface check.
var _ storage.PurchaseWriter = (*PurchaseWriter)(nil)

// ApplyPurchase persists the participant insert-or-update and the
// launch accumulator update atomically. Any failure rolls back both.
func (w *PurchaseWriter) ApplyPurchase(ctx context.Context, l *domain.Launch, p *domain.Participant, firstPurchase bool) (err error) {
	defer observability.ObserveDBQuery("postgres", "apply_purchase", time.Now(), &err)

	if l == nil || p == nil {
		return storage.ErrInvalidInput
	}

	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin purchase tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if firstPurchase {
		insert := `
			INSERT INTO participants (
				launch_id, wallet, total_purchased, purchase_count, last_purchase_at, created_at
			) VALUES ($1, $2, $3, $4, $5, $6)
		`
		_, err = tx.Exec(ctx, insert,
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
	} else {
		update := `
			UPDATE participants
			SET total_purchased = $3,
				purchase_count = $4,
				last_purchase_at = $5
			WHERE launch_id = $1 AND wallet = $2
		`
		tag, execErr := tx.Exec(ctx, update,
			p.LaunchID,
			p.Wallet,
			int64(p.TotalPurchased),
			int32(p.PurchaseCount),
			p.LastPurchaseAt,
		)
		if execErr != nil {
			return fmt.Errorf("update participant: %w", execErr)
		}
		if tag.RowsAffected() == 0 {
			return storage.ErrNotFound
		}
	}

	launchUpdate := `
		UPDATE launches
		SET total_purchased = $2,
			participant_count = $3
		WHERE launch_id = $1
	`
	tag, err := tx.Exec(ctx, launchUpdate,
		l.LaunchID,
		int64(l.TotalPurchased),
		int64(l.ParticipantCount),
	)
	if err != nil {
		return fmt.Errorf("update launch accumulators: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit purchase tx: %w", err)
	}
	return nil
}
