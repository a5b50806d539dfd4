package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/rthefinder/USDG/internal/domain"
	"github.com/rthefinder/USDG/internal/storage"
)

// EventStore is an in-memory implementation of storage.EventStore.
type EventStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.Event // keyed by launch_id, append order
}

// NewEventStore creates a new in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{
		data: make(map[string][]*domain.Event),
	}
}

// Insert appends an event.
func (s *EventStore) Insert(_ context.Context, e *domain.Event) error {
	if e == nil || e.LaunchID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	eventCopy := *e
	s.data[e.LaunchID] = append(s.data[e.LaunchID], &eventCopy)
	return nil
}

// GetByLaunch retrieves all events for a launch, ordered by timestamp ASC.
func (s *EventStore) GetByLaunch(_ context.Context, launchID string) ([]*domain.Event, error) {
	return s.filter(launchID, func(*domain.Event) bool { return true })
}

// GetPurchases retrieves PURCHASE_EXECUTED events for a launch, ordered
// by timestamp ASC.
func (s *EventStore) GetPurchases(_ context.Context, launchID string) ([]*domain.Event, error) {
	return s.filter(launchID, func(e *domain.Event) bool {
		return e.Type == domain.EventPurchaseExecuted
	})
}

func (s *EventStore) filter(launchID string, keep func(*domain.Event) bool) ([]*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Event
	for _, e := range s.data[launchID] {
		if keep(e) {
			eventCopy := *e
			result = append(result, &eventCopy)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp < result[j].Timestamp
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.EventStore = (*EventStore)(nil)
