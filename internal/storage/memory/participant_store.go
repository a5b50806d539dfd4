package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/rthefinder/USDG/internal/domain"
	"github.com/rthefinder/USDG/internal/storage"
)

// participantKey identifies a participant by its (launch, wallet) pair.
type participantKey struct {
	launchID string
	wallet   string
}

// ParticipantStore is an in-memory implementation of storage.ParticipantStore.
type ParticipantStore struct {
	mu   sync.RWMutex
	data map[participantKey]*domain.Participant
}

// NewParticipantStore creates a new in-memory participant store.
func NewParticipantStore() *ParticipantStore {
	return &ParticipantStore{
		data: make(map[participantKey]*domain.Participant),
	}
}

// Insert adds a new participant. Returns ErrDuplicateKey if the
// (launch, wallet) pair exists.
func (s *ParticipantStore) Insert(_ context.Context, p *domain.Participant) error {
	if p == nil || p.LaunchID == "" || p.Wallet == "" {
		return storage.ErrInvalidInput
	}

	key := participantKey{p.LaunchID, p.Wallet}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	participantCopy := *p
	s.data[key] = &participantCopy
	return nil
}

// GetByKey retrieves the participant for a (launch, wallet) pair.
// Returns ErrNotFound if the wallet has no record yet.
func (s *ParticipantStore) GetByKey(_ context.Context, launchID, wallet string) (*domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.data[participantKey{launchID, wallet}]
	if !exists {
		return nil, storage.ErrNotFound
	}

	participantCopy := *p
	return &participantCopy, nil
}

// Update overwrites the participant's accumulators. Returns ErrNotFound
// if the record does not exist.
func (s *ParticipantStore) Update(_ context.Context, p *domain.Participant) error {
	if p == nil || p.LaunchID == "" || p.Wallet == "" {
		return storage.ErrInvalidInput
	}

	key := participantKey{p.LaunchID, p.Wallet}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; !exists {
		return storage.ErrNotFound
	}

	participantCopy := *p
	s.data[key] = &participantCopy
	return nil
}

// GetByLaunch retrieves all participants of a launch, ordered by
// total_purchased DESC.
func (s *ParticipantStore) GetByLaunch(_ context.Context, launchID string) ([]*domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Participant
	for key, p := range s.data {
		if key.launchID == launchID {
			participantCopy := *p
			result = append(result, &participantCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalPurchased != result[j].TotalPurchased {
			return result[i].TotalPurchased > result[j].TotalPurchased
		}
		return result[i].Wallet < result[j].Wallet
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.ParticipantStore = (*ParticipantStore)(nil)
