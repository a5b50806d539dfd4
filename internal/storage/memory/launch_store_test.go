package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/rthefinder/USDG/internal/domain"
	"github.com/rthefinder/USDG/internal/storage"
)

func sampleLaunch(id, mint string, createdAt int64) *domain.Launch {
	return &domain.Launch{
		LaunchID:  id,
		Creator:   "creator1",
		TokenMint: mint,
		Config: domain.LaunchConfig{
			AntiSnipe:  domain.AntiSnipeConfig{MaxBuyPerWallet: 1000},
			AntiBundle: domain.AntiBundleConfig{MaxWalletConcentration: 5},
			AntiRug: domain.AntiRugConfig{
				FixedSupply:           true,
				RevokeMintAuthority:   true,
				RevokeFreezeAuthority: true,
			},
			Distribution: domain.DistributionConfig{TotalSupply: 100000},
		},
		Phase:     domain.PhaseInitialized,
		CreatedAt: createdAt,
	}
}

func TestLaunchStore_InsertAndGet(t *testing.T) {
	store := NewLaunchStore()
	ctx := context.Background()

	l := sampleLaunch("launch1", "mint1", 100)
	if err := store.Insert(ctx, l); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "launch1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.TokenMint != "mint1" {
		t.Errorf("TokenMint = %s, want mint1", got.TokenMint)
	}
	if got.Phase != domain.PhaseInitialized {
		t.Errorf("Phase = %s, want Initialized", got.Phase)
	}

	got, err = store.GetByMint(ctx, "mint1")
	if err != nil {
		t.Fatalf("GetByMint failed: %v", err)
	}
	if got.LaunchID != "launch1" {
		t.Errorf("LaunchID = %s, want launch1", got.LaunchID)
	}
}

func TestLaunchStore_DuplicateKey(t *testing.T) {
	store := NewLaunchStore()
	ctx := context.Background()

	l := sampleLaunch("launch1", "mint1", 100)
	if err := store.Insert(ctx, l); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}
	if err := store.Insert(ctx, l); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestLaunchStore_NotFound(t *testing.T) {
	store := NewLaunchStore()
	ctx := context.Background()

	if _, err := store.GetByID(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetByID: expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetByMint(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetByMint: expected ErrNotFound, got %v", err)
	}
	if err := store.Update(ctx, sampleLaunch("missing", "m", 0)); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Update: expected ErrNotFound, got %v", err)
	}
}

func TestLaunchStore_Update(t *testing.T) {
	store := NewLaunchStore()
	ctx := context.Background()

	l := sampleLaunch("launch1", "mint1", 100)
	if err := store.Insert(ctx, l); err != nil {
		t.Fatal(err)
	}

	l.Phase = domain.PhaseTradingRestricted
	launched := int64(150)
	l.LaunchedAt = &launched
	l.TotalPurchased = 500
	if err := store.Update(ctx, l); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.GetByID(ctx, "launch1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Phase != domain.PhaseTradingRestricted {
		t.Errorf("Phase = %s, want TradingRestricted", got.Phase)
	}
	if got.LaunchedAt == nil || *got.LaunchedAt != 150 {
		t.Errorf("LaunchedAt = %v, want 150", got.LaunchedAt)
	}
	if got.TotalPurchased != 500 {
		t.Errorf("TotalPurchased = %d, want 500", got.TotalPurchased)
	}
}

// Mutating a returned launch must not leak into the store.
func TestLaunchStore_CopyOnRead(t *testing.T) {
	store := NewLaunchStore()
	ctx := context.Background()

	if err := store.Insert(ctx, sampleLaunch("launch1", "mint1", 100)); err != nil {
		t.Fatal(err)
	}

	got, _ := store.GetByID(ctx, "launch1")
	got.TotalPurchased = 999
	launched := int64(7)
	got.LaunchedAt = &launched

	again, _ := store.GetByID(ctx, "launch1")
	if again.TotalPurchased != 0 || again.LaunchedAt != nil {
		t.Error("Store state mutated through a returned copy")
	}
}

func TestLaunchStore_ListNewestFirst(t *testing.T) {
	store := NewLaunchStore()
	ctx := context.Background()

	for i, id := range []string{"a", "b", "c"} {
		if err := store.Insert(ctx, sampleLaunch(id, "mint-"+id, int64(100+i))); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].LaunchID != "c" || got[1].LaunchID != "b" {
		t.Errorf("List order = %s, %s; want c, b", got[0].LaunchID, got[1].LaunchID)
	}
}
