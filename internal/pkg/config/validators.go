// internal/pkg/config/validators.go
package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingRequiredConfig indicates a required configuration value is absent
var ErrMissingRequiredConfig = errors.New("missing required configuration")

// Validator checks a loaded configuration
type Validator interface {
	Validate(cfg *Config) error
}

// BasicValidator performs basic configuration validation
type BasicValidator struct{}

// Validate performs basic validation
func (v *BasicValidator) Validate(cfg *Config) error {
	if cfg.Database.Host == "" {
		return fmt.Errorf("%w: database host", ErrMissingRequiredConfig)
	}
	if cfg.Database.Name == "" {
		return fmt.Errorf("%w: database name", ErrMissingRequiredConfig)
	}
	if cfg.Database.MaxConnections < cfg.Database.MinConnections {
		return fmt.Errorf("database max_connections must be >= min_connections")
	}
	if cfg.Redis.Enabled && cfg.Redis.PoolSize <= 0 {
		return fmt.Errorf("redis pool_size must be positive")
	}
	if cfg.POS.CatalogFile == "" {
		return fmt.Errorf("%w: catalog file", ErrMissingRequiredConfig)
	}
	if cfg.POS.UsersFile == "" {
		return fmt.Errorf("%w: users file", ErrMissingRequiredConfig)
	}
	return nil
}

// ProductionValidator performs strict validation for production environments
type ProductionValidator struct{}

// Validate performs production-specific validation
func (v *ProductionValidator) Validate(cfg *Config) error {
	if strings.Contains(cfg.Database.Password, "MISSING_") {
		return fmt.Errorf("%w: database password", ErrMissingRequiredConfig)
	}
	if strings.Contains(cfg.Database.Password, "_dev_") {
		return fmt.Errorf("development database password cannot be used in production")
	}
	if cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("database SSL must be enabled in production")
	}
	return nil
}
