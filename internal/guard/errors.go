package guard

import "errors"

// Authorization errors.
var (
	// ErrUnauthorized is returned when the caller identity does not match
	// the launch creator.
	ErrUnauthorized = errors.New("unauthorized")
)

// Phase violation errors. The operation is invalid for the launch's
// current lifecycle state.
var (
	ErrTradingNotEnabled     = errors.New("trading not yet enabled")
	ErrTradingAlreadyOpen    = errors.New("trading already open")
	ErrLaunchFinalized       = errors.New("launch already finalized")
	ErrAuthoritiesNotRevoked = errors.New("authorities not yet revoked")
)

// Configuration violation errors. Raised once, at launch creation,
// never later.
var (
	ErrInvalidConfig             = errors.New("invalid configuration")
	ErrFixedSupplyRequired       = errors.New("fixed supply required")
	ErrMintAuthorityMustRevoke   = errors.New("mint authority must be revoked")
	ErrFreezeAuthorityMustRevoke = errors.New("freeze authority must be revoked")
)

// Admission violation errors.
var (
	// ErrMaxBuyExceeded covers both the per-wallet cap and arithmetic
	// overflow of any purchase accumulator.
	ErrMaxBuyExceeded        = errors.New("max buy per wallet exceeded")
	ErrConcentrationExceeded = errors.New("wallet concentration limit exceeded")
	ErrPurchaseTooSoon       = errors.New("purchase too soon after last purchase")
	// ErrBundleDetected is reserved for bundling heuristics beyond the
	// minimum-gap check. The admission path never returns it; the
	// report-side verifier covers bundle detection.
	ErrBundleDetected = errors.New("bundle detected")
	// ErrInvalidAmount rejects zero-amount purchases.
	ErrInvalidAmount = errors.New("purchase amount must be positive")
	// ErrInvalidWallet rejects purchases with no wallet identity.
	ErrInvalidWallet = errors.New("wallet identity required")
)

// Timing violation errors.
var (
	ErrFairLaunchDelayNotElapsed = errors.New("fair launch delay not elapsed")
	// ErrLPLockNotExpired is surfaced by the liquidity-withdrawal
	// collaborator; the engine only computes the lock timestamp.
	ErrLPLockNotExpired = errors.New("LP lock not yet expired")
)
