package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/rthefinder/USDG/internal/domain"
	"github.com/rthefinder/USDG/internal/storage"
)

// LaunchStore is an in-memory implementation of storage.LaunchStore.
type LaunchStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Launch // keyed by launch_id
}

// NewLaunchStore creates a new in-memory launch store.
func NewLaunchStore() *LaunchStore {
	return &LaunchStore{
		data: make(map[string]*domain.Launch),
	}
}

// Insert adds a new launch. Returns ErrDuplicateKey if launch_id exists.
func (s *LaunchStore) Insert(_ context.Context, l *domain.Launch) error {
	if l == nil || l.LaunchID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[l.LaunchID]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	launchCopy := copyLaunch(l)
	s.data[l.LaunchID] = launchCopy
	return nil
}

// GetByID retrieves a launch by its ID. Returns ErrNotFound if not exists.
func (s *LaunchStore) GetByID(_ context.Context, launchID string) (*domain.Launch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, exists := s.data[launchID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyLaunch(l), nil
}

// GetByMint retrieves the launch for a token mint. Returns ErrNotFound if not exists.
func (s *LaunchStore) GetByMint(_ context.Context, mint string) (*domain.Launch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range s.data {
		if l.TokenMint == mint {
			return copyLaunch(l), nil
		}
	}
	return nil, storage.ErrNotFound
}

// Update overwrites the mutable launch fields. Returns ErrNotFound if
// the launch does not exist.
func (s *LaunchStore) Update(_ context.Context, l *domain.Launch) error {
	if l == nil || l.LaunchID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[l.LaunchID]; !exists {
		return storage.ErrNotFound
	}
	s.data[l.LaunchID] = copyLaunch(l)
	return nil
}

// List retrieves launches ordered by created_at DESC, newest first.
func (s *LaunchStore) List(_ context.Context, limit int) ([]*domain.Launch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Launch, 0, len(s.data))
	for _, l := range s.data {
		result = append(result, copyLaunch(l))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt > result[j].CreatedAt
		}
		return result[i].LaunchID < result[j].LaunchID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// copyLaunch deep-copies a launch, including optional timestamps.
func copyLaunch(l *domain.Launch) *domain.Launch {
	launchCopy := *l
	if l.LaunchedAt != nil {
		ts := *l.LaunchedAt
		launchCopy.LaunchedAt = &ts
	}
	if l.FinalizedAt != nil {
		ts := *l.FinalizedAt
		launchCopy.FinalizedAt = &ts
	}
	if l.Config.AntiSnipe.FairLaunchDelay != nil {
		d := *l.Config.AntiSnipe.FairLaunchDelay
		launchCopy.Config.AntiSnipe.FairLaunchDelay = &d
	}
	if l.Config.AntiSnipe.UnlockDuration != nil {
		d := *l.Config.AntiSnipe.UnlockDuration
		launchCopy.Config.AntiSnipe.UnlockDuration = &d
	}
	if l.Config.AntiRug.LPLockDuration != nil {
		d := *l.Config.AntiRug.LPLockDuration
		launchCopy.Config.AntiRug.LPLockDuration = &d
	}
	return &launchCopy
}

// Verify interface compliance at compile time.
var _ storage.LaunchStore = (*LaunchStore)(nil)
