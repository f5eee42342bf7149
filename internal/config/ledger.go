package config

import (
	"fmt"
	"time"
)

type LedgerConfig struct {
	// Endpoint is the base URL of the ledger node's REST API.
	Endpoint string `mapstructure:"endpoint"`
	// EscrowAddress is the ledger account that holds every pool's assets;
	// inbound transfer legs must target it and dispenses are sent from it.
	EscrowAddress string        `mapstructure:"escrow-address"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxRetryTimes uint          `mapstructure:"max-retry-times"`
	RetryInterval time.Duration `mapstructure:"retry-interval"`
}

func (cfg *LedgerConfig) Validate() error {
	if cfg.Endpoint == "" {
		return fmt.Errorf("ledger endpoint is required")
	}
	if cfg.EscrowAddress == "" {
		return fmt.Errorf("ledger escrow address is required")
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("ledger timeout must be positive")
	}
	if cfg.MaxRetryTimes == 0 {
		return fmt.Errorf("ledger max-retry-times must be positive")
	}
	if cfg.RetryInterval <= 0 {
		return fmt.Errorf("ledger retry-interval must be positive")
	}
	return nil
}
