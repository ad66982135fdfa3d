package nodeworker

import (
	"fmt"
	"time"

	"infomaniak-workers/internal/common/config"
	"infomaniak-workers/internal/common/infomaniak"
)

type Config struct {
	Enabled               bool          `mapstructure:"enabled"`
	MaxJobsActive         int           `mapstructure:"max_jobs_active"`
	Timeout               time.Duration `mapstructure:"timeout"`
	DefaultLimit          int           `mapstructure:"default_limit"`
	DefaultAuthentication string        `mapstructure:"default_authentication"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:               true,
		MaxJobsActive:         5,
		Timeout:               30 * time.Second,
		DefaultLimit:          infomaniak.DefaultLimit,
		DefaultAuthentication: infomaniak.AuthAPIKey,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.DefaultLimit <= 0 {
		return fmt.Errorf("default_limit must be positive")
	}
	switch c.DefaultAuthentication {
	case infomaniak.AuthAPIKey, infomaniak.AuthOAuth2:
	default:
		return fmt.Errorf("default_authentication must be %s or %s", infomaniak.AuthAPIKey, infomaniak.AuthOAuth2)
	}
	return nil
}

func createConfigFromAppConfig(appConfig *config.Config, node string, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()
	if appConfig == nil {
		return cfg
	}

	workerCfg := config.GetWorkerConfig(appConfig, node)
	cfg.Enabled = workerCfg.Enabled
	if workerCfg.MaxJobsActive > 0 {
		cfg.MaxJobsActive = workerCfg.MaxJobsActive
	}
	if workerCfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(workerCfg.Timeout)
	}

	if appConfig.Infomaniak.DefaultLimit > 0 {
		cfg.DefaultLimit = appConfig.Infomaniak.DefaultLimit
	}
	if appConfig.Infomaniak.Authentication != "" {
		cfg.DefaultAuthentication = appConfig.Infomaniak.Authentication
	}
	return cfg
}
