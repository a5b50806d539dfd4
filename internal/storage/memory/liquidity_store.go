package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/rthefinder/USDG/internal/domain"
	"github.com/rthefinder/USDG/internal/storage"
)

// LiquidityStore is an in-memory implementation of storage.LiquidityStore.
type LiquidityStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.LiquidityRecord // keyed by launch_id
}

// NewLiquidityStore creates a new in-memory liquidity store.
func NewLiquidityStore() *LiquidityStore {
	return &LiquidityStore{
		data: make(map[string][]*domain.LiquidityRecord),
	}
}

// Insert adds a new liquidity record.
func (s *LiquidityStore) Insert(_ context.Context, r *domain.LiquidityRecord) error {
	if r == nil || r.LaunchID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recordCopy := copyLiquidity(r)
	s.data[r.LaunchID] = append(s.data[r.LaunchID], recordCopy)
	return nil
}

// GetByLaunch retrieves all liquidity records for a launch, ordered by
// created_at ASC.
func (s *LiquidityStore) GetByLaunch(_ context.Context, launchID string) ([]*domain.LiquidityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.data[launchID]
	result := make([]*domain.LiquidityRecord, 0, len(records))
	for _, r := range records {
		result = append(result, copyLiquidity(r))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt < result[j].CreatedAt
	})

	return result, nil
}

func copyLiquidity(r *domain.LiquidityRecord) *domain.LiquidityRecord {
	recordCopy := *r
	if r.LockedUntil != nil {
		ts := *r.LockedUntil
		recordCopy.LockedUntil = &ts
	}
	return &recordCopy
}

// Verify interface compliance at compile time.
var _ storage.LiquidityStore = (*LiquidityStore)(nil)
