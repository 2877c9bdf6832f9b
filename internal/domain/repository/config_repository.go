package repository

import (
	"github.com/diillson/finly-dashboard-go/internal/shared/types"
)

// ConfigRepository defines the interface for loading configuration files.
type ConfigRepository interface {
	LoadConfigFile(filePath string) (*types.Config, error)
	// ApplyEnv overrides config values from the environment (and an optional .env file).
	ApplyEnv(cfg *types.Config) error
}
