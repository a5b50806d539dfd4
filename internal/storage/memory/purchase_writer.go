package memory

import (
	"context"

	"github.com/rthefinder/USDG/internal/domain"
	"github.com/rthefinder/USDG/internal/storage"
)

// PurchaseWriter is an in-memory implementation of
// storage.PurchaseWriter over a launch store and a participant store.
type PurchaseWriter struct {
	launches     *LaunchStore
	participants *ParticipantStore
}

// NewPurchaseWriter creates a PurchaseWriter over the given stores.
func NewPurchaseWriter(launches *LaunchStore, participants *ParticipantStore) *PurchaseWriter {
	return &PurchaseWriter{launches: launches, participants: participants}
}

// Compile-time interface check.
var _ storage.PurchaseWriter = (*PurchaseWriter)(nil)

// ApplyPurchase persists the participant and launch updates. The
// launch row is checked first so a missing launch fails before any
// write; after that point map writes cannot fail partway.
func (w *PurchaseWriter) ApplyPurchase(ctx context.Context, l *domain.Launch, p *domain.Participant, firstPurchase bool) error {
	if l == nil || p == nil {
		return storage.ErrInvalidInput
	}

	if _, err := w.launches.GetByID(ctx, l.LaunchID); err != nil {
		return err
	}

	if firstPurchase {
		if err := w.participants.Insert(ctx, p); err != nil {
			return err
		}
	} else {
		if err := w.participants.Update(ctx, p); err != nil {
			return err
		}
	}

	return w.launches.Update(ctx, l)
}
