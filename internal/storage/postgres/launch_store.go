package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rthefinder/USDG/internal/domain"
	"github.com/rthefinder/USDG/internal/observability"
	"github.com/rthefinder/USDG/internal/storage"
)

// LaunchStore implements storage.LaunchStore using PostgreSQL.
type LaunchStore struct {
	pool *Pool
}

// NewLaunchStore creates a new LaunchStore.
func NewLaunchStore(pool *Pool) *LaunchStore {
	return &LaunchStore{pool: pool}
}

// Compile-time interface check.
var _ storage.LaunchStore = (*LaunchStore)(nil)

const launchColumns = `
	launch_id, creator, token_mint, phase,
	created_at, launched_at, finalized_at,
	total_purchased, participant_count,
	max_buy_per_wallet, phased_unlock, unlock_duration, fair_launch_delay,
	detect_bundles, max_wallet_concentration, one_action_per_tx,
	fixed_supply, revoke_mint_authority, revoke_freeze_authority, lp_lock_duration,
	initial_price, total_supply, liquidity_amount, creator_allocation
`

// Insert adds a new launch. Returns ErrDuplicateKey if launch_id exists.
func (s *LaunchStore) Insert(ctx context.Context, l *domain.Launch) (err error) {
	defer observability.ObserveDBQuery("postgres", "launch_insert", time.Now(), &err)

	query := `
		INSERT INTO launches (` + launchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
	`

	_, err = s.pool.Exec(ctx, query,
		l.LaunchID,
		l.Creator,
		l.TokenMint,
		string(l.Phase),
		l.CreatedAt,
		l.LaunchedAt,
		l.FinalizedAt,
		int64(l.TotalPurchased),
		int64(l.ParticipantCount),
		int64(l.Config.AntiSnipe.MaxBuyPerWallet),
		l.Config.AntiSnipe.PhasedUnlock,
		l.Config.AntiSnipe.UnlockDuration,
		l.Config.AntiSnipe.FairLaunchDelay,
		l.Config.AntiBundle.DetectBundles,
		int16(l.Config.AntiBundle.MaxWalletConcentration),
		l.Config.AntiBundle.OneActionPerTx,
		l.Config.AntiRug.FixedSupply,
		l.Config.AntiRug.RevokeMintAuthority,
		l.Config.AntiRug.RevokeFreezeAuthority,
		l.Config.AntiRug.LPLockDuration,
		int64(l.Config.Distribution.InitialPrice),
		int64(l.Config.Distribution.TotalSupply),
		int64(l.Config.Distribution.LiquidityAmount),
		int64(l.Config.Distribution.CreatorAllocation),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert launch: %w", err)
	}
	return nil
}

// GetByID retrieves a launch by its ID. Returns ErrNotFound if not exists.
func (s *LaunchStore) GetByID(ctx context.Context, launchID string) (_ *domain.Launch, err error) {
	defer observability.ObserveDBQuery("postgres", "launch_get_by_id", time.Now(), &err)

	query := `SELECT ` + launchColumns + ` FROM launches WHERE launch_id = $1`

	row := s.pool.QueryRow(ctx, query, launchID)
	l, err := scanLaunch(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get launch by id: %w", err)
	}
	return l, nil
}

// GetByMint retrieves the launch for a token mint. Returns ErrNotFound if not exists.
func (s *LaunchStore) GetByMint(ctx context.Context, mint string) (_ *domain.Launch, err error) {
	defer observability.ObserveDBQuery("postgres", "launch_get_by_mint", time.Now(), &err)

	query := `SELECT ` + launchColumns + ` FROM launches WHERE token_mint = $1`

	row := s.pool.QueryRow(ctx, query, mint)
	l, err := scanLaunch(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get launch by mint: %w", err)
	}
	return l, nil
}

// Update overwrites the mutable launch fields. Returns ErrNotFound if
// the launch does not exist. The config columns are immutable and not
// touched.
func (s *LaunchStore) Update(ctx context.Context, l *domain.Launch) (err error) {
	defer observability.ObserveDBQuery("postgres", "launch_update", time.Now(), &err)

	query := `
		UPDATE launches
		SET phase = $2,
			launched_at = $3,
			finalized_at = $4,
			total_purchased = $5,
			participant_count = $6
		WHERE launch_id = $1
	`

	tag, err := s.pool.Exec(ctx, query,
		l.LaunchID,
		string(l.Phase),
		l.LaunchedAt,
		l.FinalizedAt,
		int64(l.TotalPurchased),
		int64(l.ParticipantCount),
	)
	if err != nil {
		return fmt.Errorf("update launch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// List retrieves launches ordered by created_at DESC, newest first.
func (s *LaunchStore) List(ctx context.Context, limit int) (_ []*domain.Launch, err error) {
	defer observability.ObserveDBQuery("postgres", "launch_list", time.Now(), &err)

	query := `SELECT ` + launchColumns + `
		FROM launches
		ORDER BY created_at DESC, launch_id ASC
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list launches: %w", err)
	}
	defer rows.Close()

	var launches []*domain.Launch
	for rows.Next() {
		l, err := scanLaunch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan launch row: %w", err)
		}
		launches = append(launches, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate launch rows: %w", err)
	}

	return launches, nil
}

// scanLaunch scans a single row into a Launch.
func scanLaunch(row pgx.Row) (*domain.Launch, error) {
	var l domain.Launch
	var phaseStr string
	var totalPurchased, participantCount int64
	var maxBuy, initialPrice, totalSupply, liquidityAmount, creatorAllocation int64
	var concentration int16

	err := row.Scan(
		&l.LaunchID,
		&l.Creator,
		&l.TokenMint,
		&phaseStr,
		&l.CreatedAt,
		&l.LaunchedAt,
		&l.FinalizedAt,
		&totalPurchased,
		&participantCount,
		&maxBuy,
		&l.Config.AntiSnipe.PhasedUnlock,
		&l.Config.AntiSnipe.UnlockDuration,
		&l.Config.AntiSnipe.FairLaunchDelay,
		&l.Config.AntiBundle.DetectBundles,
		&concentration,
		&l.Config.AntiBundle.OneActionPerTx,
		&l.Config.AntiRug.FixedSupply,
		&l.Config.AntiRug.RevokeMintAuthority,
		&l.Config.AntiRug.RevokeFreezeAuthority,
		&l.Config.AntiRug.LPLockDuration,
		&initialPrice,
		&totalSupply,
		&liquidityAmount,
		&creatorAllocation,
	)
	if err != nil {
		return nil, err
	}

	l.Phase = domain.Phase(phaseStr)
	l.TotalPurchased = uint64(totalPurchased)
	l.ParticipantCount = uint64(participantCount)
	l.Config.AntiSnipe.MaxBuyPerWallet = uint64(maxBuy)
	l.Config.AntiBundle.MaxWalletConcentration = uint8(concentration)
	l.Config.Distribution.InitialPrice = uint64(initialPrice)
	l.Config.Distribution.TotalSupply = uint64(totalSupply)
	l.Config.Distribution.LiquidityAmount = uint64(liquidityAmount)
	l.Config.Distribution.CreatorAllocation = uint64(creatorAllocation)
	return &l, nil
}
