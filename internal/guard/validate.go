package guard

import "github.com/rthefinder/USDG/internal/domain"

// ValidateConfig checks a proposed launch configuration for internal
// consistency. Pure, no side effects; the first failing check is
// reported.
//
// The anti-rug trio (fixed supply, mint revocation, freeze revocation)
// is mandatory at creation time, not deferred to phase transitions.
func ValidateConfig(cfg *domain.LaunchConfig) error {
	if !cfg.AntiRug.FixedSupply {
		return ErrFixedSupplyRequired
	}
	if !cfg.AntiRug.RevokeMintAuthority {
		return ErrMintAuthorityMustRevoke
	}
	if !cfg.AntiRug.RevokeFreezeAuthority {
		return ErrFreezeAuthorityMustRevoke
	}
	if cfg.AntiSnipe.MaxBuyPerWallet == 0 {
		return ErrInvalidConfig
	}
	if cfg.AntiBundle.MaxWalletConcentration > 100 {
		return ErrInvalidConfig
	}
	// Total supply is the concentration denominator; zero would make
	// every concentration check undefined.
	if cfg.Distribution.TotalSupply == 0 {
		return ErrInvalidConfig
	}
	return nil
}
