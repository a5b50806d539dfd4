package notify

import (
	"context"
	"fmt"

	"github.com/rthefinder/USDG/internal/domain"
	"github.com/rthefinder/USDG/internal/storage"
)

// Store persists events into the audit event store. It is the sink that
// feeds verification and stats with purchase history.
type Store struct {
	events storage.EventStore
}

// NewStore creates a sink over an event store.
func NewStore(events storage.EventStore) *Store {
	return &Store{events: events}
}

// Publish appends the event.
func (s *Store) Publish(ctx context.Context, e *domain.Event) error {
	if err := s.events.Insert(ctx, e); err != nil {
		return fmt.Errorf("store event: %w", err)
	}
	return nil
}

var _ Sink = (*Store)(nil)
