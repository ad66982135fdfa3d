package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	AuthAPIKey = "apiKey"
	AuthOAuth2 = "oauth2"
)

// Load reads configs/config.yaml, merges config.<env>.yaml on top and applies
// environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional overlay

	return finish(v)
}

// LoadFromFile reads a single config file without environment overlays.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok || !strings.Contains(strVal, "$") {
			continue
		}
		if expanded := os.ExpandEnv(strVal); expanded != strVal {
			v.Set(key, expanded)
		}
	}
}

// overrideEmptyConfig fills secrets from well-known variables when the file leaves them blank.
func overrideEmptyConfig(cfg *Config) {
	setIfEmpty(&cfg.Infomaniak.APIToken, "INFOMANIAK_API_TOKEN")
	setIfEmpty(&cfg.Infomaniak.OAuth2.ClientID, "INFOMANIAK_OAUTH_CLIENT_ID")
	setIfEmpty(&cfg.Infomaniak.OAuth2.ClientSecret, "INFOMANIAK_OAUTH_CLIENT_SECRET")
	setIfEmpty(&cfg.Infomaniak.OAuth2.RefreshToken, "INFOMANIAK_OAUTH_REFRESH_TOKEN")
	setIfEmpty(&cfg.Camunda.BrokerAddress, "ZEEBE_ADDRESS")
	setIfEmpty(&cfg.Database.Postgres.User, "DB_USER")
	setIfEmpty(&cfg.Database.Postgres.Password, "DB_PASSWORD")
	setIfEmpty(&cfg.Database.Redis.Password, "REDIS_PASSWORD")
	setIfEmpty(&cfg.Alerts.SNS.TopicARN, "ALERTS_SNS_TOPIC_ARN")
}

func setIfEmpty(dst *string, envKey string) {
	if *dst != "" {
		return
	}
	if val := os.Getenv(envKey); val != "" {
		*dst = val
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "infomaniak-workers"
	}
	if cfg.App.HTTPPort == 0 {
		cfg.App.HTTPPort = 8080
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Infomaniak.BaseURL == "" {
		cfg.Infomaniak.BaseURL = "https://api.infomaniak.com"
	}
	if cfg.Infomaniak.Authentication == "" {
		cfg.Infomaniak.Authentication = AuthAPIKey
	}
	if cfg.Infomaniak.OAuth2.TokenURL == "" {
		cfg.Infomaniak.OAuth2.TokenURL = "https://login.infomaniak.com/token"
	}
	if cfg.Infomaniak.OAuth2.CacheKeyPrefix == "" {
		cfg.Infomaniak.OAuth2.CacheKeyPrefix = "infomaniak:oauth2"
	}
	if cfg.Infomaniak.Timeout == 0 {
		cfg.Infomaniak.Timeout = 30000
	}
	if cfg.Infomaniak.PageSize == 0 {
		cfg.Infomaniak.PageSize = 100
	}
	if cfg.Infomaniak.MaxPages == 0 {
		cfg.Infomaniak.MaxPages = 500
	}
	if cfg.Infomaniak.DefaultLimit == 0 {
		cfg.Infomaniak.DefaultLimit = 50
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	if cfg.Audit.Table == "" {
		cfg.Audit.Table = "infomaniak_request_log"
	}
	if cfg.Audit.Index == "" {
		cfg.Audit.Index = "infomaniak-requests"
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = cfg.App.Name
	}
	if cfg.Observability.SampleRatio == 0 {
		cfg.Observability.SampleRatio = 1
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}

	switch cfg.Infomaniak.Authentication {
	case AuthAPIKey:
		if cfg.Infomaniak.APIToken == "" {
			return fmt.Errorf("infomaniak.api_token is required for apiKey authentication")
		}
	case AuthOAuth2:
		o := cfg.Infomaniak.OAuth2
		if o.ClientID == "" || o.ClientSecret == "" || o.RefreshToken == "" {
			return fmt.Errorf("infomaniak.oauth2 client_id, client_secret and refresh_token are required for oauth2 authentication")
		}
	default:
		return fmt.Errorf("infomaniak.authentication must be %q or %q, got %q", AuthAPIKey, AuthOAuth2, cfg.Infomaniak.Authentication)
	}

	if cfg.Infomaniak.PageSize < 1 {
		return fmt.Errorf("infomaniak.page_size must be positive")
	}

	if cfg.Audit.Postgres && cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required when audit.postgres is enabled")
	}
	if cfg.Audit.Elasticsearch && cfg.Database.Elasticsearch.GetURL() == "" {
		return fmt.Errorf("database.elasticsearch.addresses or url is required when audit.elasticsearch is enabled")
	}
	if cfg.Infomaniak.OAuth2.CacheTokens && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when oauth2.cache_tokens is enabled")
	}
	if cfg.Alerts.SNS.Enabled && cfg.Alerts.SNS.TopicARN == "" {
		return fmt.Errorf("alerts.sns.topic_arn is required when sns alerts are enabled")
	}
	if cfg.Alerts.SES.Enabled && (cfg.Alerts.SES.FromEmail == "" || len(cfg.Alerts.SES.To) == 0) {
		return fmt.Errorf("alerts.ses.from_email and alerts.ses.to are required when ses alerts are enabled")
	}

	return nil
}

func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}
