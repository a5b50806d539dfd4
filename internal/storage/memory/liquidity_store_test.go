package memory

import (
	"context"
	"testing"

	"github.com/rthefinder/USDG/internal/domain"
)

func TestLiquidityStore_InsertAndGet(t *testing.T) {
	store := NewLiquidityStore()
	ctx := context.Background()

	until := int64(5000)
	r := &domain.LiquidityRecord{
		LaunchID:    "launch1",
		LPMint:      "lpmint1",
		LPAmount:    1000,
		CreatedAt:   100,
		LockedUntil: &until,
	}
	if err := store.Insert(ctx, r); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByLaunch(ctx, "launch1")
	if err != nil {
		t.Fatalf("GetByLaunch failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].LockedUntil == nil || *got[0].LockedUntil != 5000 {
		t.Errorf("LockedUntil = %v, want 5000", got[0].LockedUntil)
	}
}

func TestLiquidityStore_EmptyLaunch(t *testing.T) {
	store := NewLiquidityStore()
	ctx := context.Background()

	got, err := store.GetByLaunch(ctx, "missing")
	if err != nil {
		t.Fatalf("GetByLaunch failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestLiquidityStore_OrderedByCreatedAt(t *testing.T) {
	store := NewLiquidityStore()
	ctx := context.Background()

	for _, createdAt := range []int64{300, 100, 200} {
		r := &domain.LiquidityRecord{LaunchID: "launch1", LPMint: "lp", CreatedAt: createdAt}
		if err := store.Insert(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	got, _ := store.GetByLaunch(ctx, "launch1")
	if got[0].CreatedAt != 100 || got[1].CreatedAt != 200 || got[2].CreatedAt != 300 {
		t.Errorf("Records not ordered by created_at ASC: %d, %d, %d",
			got[0].CreatedAt, got[1].CreatedAt, got[2].CreatedAt)
	}
}
