package guard

import (
	"errors"
	"testing"

	"github.com/rthefinder/USDG/internal/domain"
)

func validConfig() *domain.LaunchConfig {
	return &domain.LaunchConfig{
		AntiSnipe: domain.AntiSnipeConfig{
			MaxBuyPerWallet: 1000,
		},
		AntiBundle: domain.AntiBundleConfig{
			DetectBundles:          true,
			MaxWalletConcentration: 5,
			OneActionPerTx:         true,
		},
		AntiRug: domain.AntiRugConfig{
			FixedSupply:           true,
			RevokeMintAuthority:   true,
			RevokeFreezeAuthority: true,
		},
		Distribution: domain.DistributionConfig{
			InitialPrice: 100,
			TotalSupply:  100000,
		},
	}
}

func TestValidateConfig_OK(t *testing.T) {
	if err := ValidateConfig(validConfig()); err != nil {
		t.Fatalf("ValidateConfig failed: %v", err)
	}
}

func TestValidateConfig_AntiRugRequired(t *testing.T) {
	cfg := validConfig()
	cfg.AntiRug.FixedSupply = false
	if err := ValidateConfig(cfg); !errors.Is(err, ErrFixedSupplyRequired) {
		t.Errorf("Expected ErrFixedSupplyRequired, got %v", err)
	}

	cfg = validConfig()
	cfg.AntiRug.RevokeMintAuthority = false
	if err := ValidateConfig(cfg); !errors.Is(err, ErrMintAuthorityMustRevoke) {
		t.Errorf("Expected ErrMintAuthorityMustRevoke, got %v", err)
	}

	cfg = validConfig()
	cfg.AntiRug.RevokeFreezeAuthority = false
	if err := ValidateConfig(cfg); !errors.Is(err, ErrFreezeAuthorityMustRevoke) {
		t.Errorf("Expected ErrFreezeAuthorityMustRevoke, got %v", err)
	}
}

func TestValidateConfig_FirstFailureWins(t *testing.T) {
	// fixed_supply is checked before the revocation flags.
	cfg := validConfig()
	cfg.AntiRug.FixedSupply = false
	cfg.AntiRug.RevokeMintAuthority = false
	if err := ValidateConfig(cfg); !errors.Is(err, ErrFixedSupplyRequired) {
		t.Errorf("Expected ErrFixedSupplyRequired first, got %v", err)
	}
}

func TestValidateConfig_InvalidValues(t *testing.T) {
	cfg := validConfig()
	cfg.AntiSnipe.MaxBuyPerWallet = 0
	if err := ValidateConfig(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for zero max buy, got %v", err)
	}

	cfg = validConfig()
	cfg.AntiBundle.MaxWalletConcentration = 101
	if err := ValidateConfig(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for concentration > 100, got %v", err)
	}

	cfg = validConfig()
	cfg.AntiBundle.MaxWalletConcentration = 100
	if err := ValidateConfig(cfg); err != nil {
		t.Errorf("Concentration 100 is inclusive, got %v", err)
	}

	cfg = validConfig()
	cfg.Distribution.TotalSupply = 0
	if err := ValidateConfig(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for zero supply, got %v", err)
	}
}
