// Package launchpad is the stateful boundary around the admission
// engine: it loads records, runs the pure checks, and applies their
// effects atomically per launch.
package launchpad

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/rthefinder/USDG/internal/authority"
	"github.com/rthefinder/USDG/internal/domain"
	"github.com/rthefinder/USDG/internal/guard"
	"github.com/rthefinder/USDG/internal/idhash"
	"github.com/rthefinder/USDG/internal/notify"
	"github.com/rthefinder/USDG/internal/observability"
	"github.com/rthefinder/USDG/internal/storage"
)

// ErrLaunchExists is returned when a launch for the token mint has
// already been created.
var ErrLaunchExists = errors.New("launch already exists for token mint")

// ErrLaunchNotFound is returned when the referenced launch does not exist.
var ErrLaunchNotFound = errors.New("launch not found")

// Service orchestrates launch lifecycle and purchase admission.
//
// All writes to one launch (and its participants) run under that
// launch's mutex, so a decision and its effects are applied without
// interleaving. Rejected operations never write.
type Service struct {
	launches     storage.LaunchStore
	participants storage.ParticipantStore
	liquidity    storage.LiquidityStore
	purchases    storage.PurchaseWriter
	revoker      authority.Revoker
	sink         notify.Sink
	clock        Clock
	log          *logrus.Entry

	mu       sync.Mutex
	launchMu map[string]*sync.Mutex
}

// Config wires the service's collaborators. Sink and Clock are
// optional; Revoker defaults to the static revoker.
type Config struct {
	Launches     storage.LaunchStore
	Participants storage.ParticipantStore
	Liquidity    storage.LiquidityStore
	// Purchases applies a purchase's participant and launch writes
	// atomically. Required.
	Purchases storage.PurchaseWriter
	Revoker   authority.Revoker
	Sink         notify.Sink
	Clock        Clock
	Log          *logrus.Entry
}

// NewService creates a Service.
func NewService(cfg Config) *Service {
	if cfg.Revoker == nil {
		cfg.Revoker = authority.NewStatic()
	}
	if cfg.Sink == nil {
		cfg.Sink = notify.NewMemory()
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}
	if cfg.Log == nil {
		cfg.Log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Service{
		launches:     cfg.Launches,
		participants: cfg.Participants,
		liquidity:    cfg.Liquidity,
		purchases:    cfg.Purchases,
		revoker:      cfg.Revoker,
		sink:         cfg.Sink,
		clock:        cfg.Clock,
		log:          cfg.Log,
		launchMu:     make(map[string]*sync.Mutex),
	}
}

// lockLaunch returns the per-launch writer mutex, locked.
func (s *Service) lockLaunch(launchID string) *sync.Mutex {
	s.mu.Lock()
	mu, ok := s.launchMu[launchID]
	if !ok {
		mu = &sync.Mutex{}
		s.launchMu[launchID] = mu
	}
	s.mu.Unlock()

	mu.Lock()
	return mu
}

// CreateLaunch validates the configuration and creates the launch in
// the Initialized phase. The launch ID is deterministic over
// (creator, mint), so retries are idempotent conflicts, not duplicates.
func (s *Service) CreateLaunch(ctx context.Context, creator, tokenMint string, cfg domain.LaunchConfig) (*domain.Launch, error) {
	if creator == "" || tokenMint == "" {
		return nil, fmt.Errorf("%w: creator and token mint required", guard.ErrInvalidConfig)
	}
	if err := guard.ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	launch := &domain.Launch{
		LaunchID:  idhash.ComputeLaunchID(creator, tokenMint),
		Creator:   creator,
		TokenMint: tokenMint,
		Config:    cfg,
		Phase:     domain.PhaseInitialized,
		CreatedAt: now,
	}

	if err := s.launches.Insert(ctx, launch); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, ErrLaunchExists
		}
		return nil, fmt.Errorf("insert launch: %w", err)
	}

	observability.RecordLaunchCreated()
	s.log.WithFields(logrus.Fields{
		"launch_id":  launch.LaunchID,
		"token_mint": tokenMint,
		"creator":    creator,
	}).Info("launch created")

	s.sink.Publish(ctx, &domain.Event{
		Type:      domain.EventLaunchCreated,
		LaunchID:  launch.LaunchID,
		TokenMint: tokenMint,
		Timestamp: now,
		Creator:   creator,
	})

	return launch, nil
}

// RevokeAuthorities revokes the token's mint and freeze authorities and
// moves the launch into TradingRestricted. Only valid from Initialized;
// the creator alone may call it. If the external revocation fails the
// phase does not change.
func (s *Service) RevokeAuthorities(ctx context.Context, caller, launchID string) (*domain.Launch, error) {
	mu := s.lockLaunch(launchID)
	defer mu.Unlock()

	launch, err := s.loadLaunch(ctx, launchID)
	if err != nil {
		return nil, err
	}
	if launch.Creator != caller {
		return nil, guard.ErrUnauthorized
	}
	if err := guard.CheckRevokeAuthorities(launch); err != nil {
		return nil, err
	}

	res, err := s.revoker.Revoke(ctx, launch.TokenMint,
		launch.Config.AntiRug.RevokeMintAuthority,
		launch.Config.AntiRug.RevokeFreezeAuthority,
	)
	if err != nil {
		return nil, fmt.Errorf("revoke authorities: %w", err)
	}

	now := s.clock.Now()
	guard.MarkAuthoritiesRevoked(launch, now)

	if err := s.launches.Update(ctx, launch); err != nil {
		return nil, fmt.Errorf("update launch: %w", err)
	}

	observability.RecordPhaseTransition(string(domain.PhaseTradingRestricted))
	s.log.WithField("launch_id", launchID).Info("authorities revoked")

	s.sink.Publish(ctx, &domain.Event{
		Type:                   domain.EventAuthoritiesRevoked,
		LaunchID:               launchID,
		TokenMint:              launch.TokenMint,
		Timestamp:              now,
		MintAuthorityRevoked:   res.MintRevoked,
		FreezeAuthorityRevoked: res.FreezeRevoked,
	})

	return launch, nil
}

// EnableTrading opens public trading. Only valid from TradingRestricted
// and, when a fair-launch delay is configured, after the delay has
// elapsed since revocation. Creator only.
func (s *Service) EnableTrading(ctx context.Context, caller, launchID string) (*domain.Launch, error) {
	mu := s.lockLaunch(launchID)
	defer mu.Unlock()

	launch, err := s.loadLaunch(ctx, launchID)
	if err != nil {
		return nil, err
	}
	if launch.Creator != caller {
		return nil, guard.ErrUnauthorized
	}

	now := s.clock.Now()
	if err := guard.EnableTrading(launch, now); err != nil {
		return nil, err
	}

	if err := s.launches.Update(ctx, launch); err != nil {
		return nil, fmt.Errorf("update launch: %w", err)
	}

	observability.RecordPhaseTransition(string(domain.PhaseTradingOpen))
	s.log.WithField("launch_id", launchID).Info("trading enabled")

	s.sink.Publish(ctx, &domain.Event{
		Type:      domain.EventTradingEnabled,
		LaunchID:  launchID,
		TokenMint: launch.TokenMint,
		Timestamp: now,
	})

	return launch, nil
}

// Purchase admits or rejects a proposed purchase and, when admitted,
// applies the wallet and launch accumulator updates atomically. The
// participant record is created on the wallet's first admitted
// purchase.
func (s *Service) Purchase(ctx context.Context, launchID, wallet string, amount uint64) (*domain.Participant, error) {
	if wallet == "" {
		return nil, guard.ErrInvalidWallet
	}

	mu := s.lockLaunch(launchID)
	defer mu.Unlock()

	launch, err := s.loadLaunch(ctx, launchID)
	if err != nil {
		return nil, err
	}

	participant, err := s.participants.GetByKey(ctx, launchID, wallet)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("get participant: %w", err)
		}
		participant = nil
	}

	now := s.clock.Now()
	delta, err := guard.AdmitPurchase(launch, participant, amount, now)
	if err != nil {
		observability.RecordPurchaseRejected(rejectionReason(err))
		return nil, err
	}

	if delta.FirstPurchase {
		participant = &domain.Participant{
			LaunchID:  launchID,
			Wallet:    wallet,
			CreatedAt: now,
		}
	}
	participant.TotalPurchased = delta.WalletTotal
	participant.PurchaseCount = delta.PurchaseCount
	participant.LastPurchaseAt = delta.LastPurchaseAt

	launch.TotalPurchased = delta.LaunchTotal
	launch.ParticipantCount = delta.ParticipantCount

	// Both writes commit together or not at all, keeping the launch
	// total equal to the sum over its participants.
	if err := s.purchases.ApplyPurchase(ctx, launch, participant, delta.FirstPurchase); err != nil {
		return nil, fmt.Errorf("apply purchase: %w", err)
	}

	observability.RecordPurchaseAdmitted(amount)
	s.log.WithFields(logrus.Fields{
		"launch_id": launchID,
		"wallet":    wallet,
		"amount":    amount,
	}).Debug("purchase admitted")

	s.sink.Publish(ctx, &domain.Event{
		Type:                 domain.EventPurchaseExecuted,
		LaunchID:             launchID,
		TokenMint:            launch.TokenMint,
		Timestamp:            now,
		Wallet:               wallet,
		Amount:               amount,
		TotalWalletPurchased: delta.WalletTotal,
		TotalLaunchPurchased: delta.LaunchTotal,
		ParticipantCount:     delta.ParticipantCount,
	})

	return participant, nil
}

// RegisterLiquidity records the launch's LP deposit, computing the lock
// expiry from the configured lock duration. Creator only; valid in
// either trading phase.
func (s *Service) RegisterLiquidity(ctx context.Context, caller, launchID, lpMint string, lpAmount uint64) (*domain.LiquidityRecord, error) {
	mu := s.lockLaunch(launchID)
	defer mu.Unlock()

	launch, err := s.loadLaunch(ctx, launchID)
	if err != nil {
		return nil, err
	}
	if launch.Creator != caller {
		return nil, guard.ErrUnauthorized
	}

	now := s.clock.Now()
	rec, err := guard.RegisterLiquidity(launch, lpMint, lpAmount, now)
	if err != nil {
		return nil, err
	}

	if err := s.liquidity.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("insert liquidity record: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"launch_id": launchID,
		"lp_mint":   lpMint,
		"lp_amount": lpAmount,
	}).Info("liquidity registered")

	s.sink.Publish(ctx, &domain.Event{
		Type:        domain.EventLiquidityRegistered,
		LaunchID:    launchID,
		TokenMint:   launch.TokenMint,
		Timestamp:   now,
		LPMint:      lpMint,
		LPAmount:    lpAmount,
		LockedUntil: rec.LockedUntil,
	})

	return rec, nil
}

// Finalize closes the launch permanently. Creator only; valid from any
// phase except Finalized.
func (s *Service) Finalize(ctx context.Context, caller, launchID string) (*domain.Launch, error) {
	mu := s.lockLaunch(launchID)
	defer mu.Unlock()

	launch, err := s.loadLaunch(ctx, launchID)
	if err != nil {
		return nil, err
	}
	if launch.Creator != caller {
		return nil, guard.ErrUnauthorized
	}

	now := s.clock.Now()
	if err := guard.Finalize(launch, now); err != nil {
		return nil, err
	}

	if err := s.launches.Update(ctx, launch); err != nil {
		return nil, fmt.Errorf("update launch: %w", err)
	}

	observability.RecordLaunchFinalized()
	s.log.WithField("launch_id", launchID).Info("launch finalized")

	s.sink.Publish(ctx, &domain.Event{
		Type:                 domain.EventLaunchFinalized,
		LaunchID:             launchID,
		TokenMint:            launch.TokenMint,
		Timestamp:            now,
		TotalLaunchPurchased: launch.TotalPurchased,
		ParticipantCount:     launch.ParticipantCount,
	})

	return launch, nil
}

// GetLaunch retrieves a launch by ID.
func (s *Service) GetLaunch(ctx context.Context, launchID string) (*domain.Launch, error) {
	return s.loadLaunch(ctx, launchID)
}

// GetLaunchByMint retrieves the launch for a token mint.
func (s *Service) GetLaunchByMint(ctx context.Context, tokenMint string) (*domain.Launch, error) {
	launch, err := s.launches.GetByMint(ctx, tokenMint)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrLaunchNotFound
		}
		return nil, fmt.Errorf("get launch by mint: %w", err)
	}
	return launch, nil
}

// ListLaunches retrieves launches, newest first.
func (s *Service) ListLaunches(ctx context.Context, limit int) ([]*domain.Launch, error) {
	return s.launches.List(ctx, limit)
}

// GetParticipant retrieves a wallet's purchase state for a launch.
func (s *Service) GetParticipant(ctx context.Context, launchID, wallet string) (*domain.Participant, error) {
	return s.participants.GetByKey(ctx, launchID, wallet)
}

// GetParticipants retrieves all participants of a launch, largest
// holders first.
func (s *Service) GetParticipants(ctx context.Context, launchID string) ([]*domain.Participant, error) {
	return s.participants.GetByLaunch(ctx, launchID)
}

// GetLiquidity retrieves the launch's liquidity records.
func (s *Service) GetLiquidity(ctx context.Context, launchID string) ([]*domain.LiquidityRecord, error) {
	return s.liquidity.GetByLaunch(ctx, launchID)
}

func (s *Service) loadLaunch(ctx context.Context, launchID string) (*domain.Launch, error) {
	launch, err := s.launches.GetByID(ctx, launchID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrLaunchNotFound
		}
		return nil, fmt.Errorf("get launch: %w", err)
	}
	return launch, nil
}

// rejectionReason maps an admission error to a stable metrics label.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, guard.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, guard.ErrTradingNotEnabled):
		return "trading_not_enabled"
	case errors.Is(err, guard.ErrLaunchFinalized):
		return "launch_finalized"
	case errors.Is(err, guard.ErrMaxBuyExceeded):
		return "max_buy_exceeded"
	case errors.Is(err, guard.ErrPurchaseTooSoon):
		return "purchase_too_soon"
	case errors.Is(err, guard.ErrConcentrationExceeded):
		return "concentration_exceeded"
	default:
		return "other"
	}
}
