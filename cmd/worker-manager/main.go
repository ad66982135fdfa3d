package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"infomaniak-workers/internal/common/alerts"
	"infomaniak-workers/internal/common/audit"
	"infomaniak-workers/internal/common/camunda"
	"infomaniak-workers/internal/common/config"
	"infomaniak-workers/internal/common/database"
	httpclient "infomaniak-workers/internal/common/http"
	"infomaniak-workers/internal/common/infomaniak"
	"infomaniak-workers/internal/common/logger"
	"infomaniak-workers/internal/common/nodeworker"
	"infomaniak-workers/internal/common/observability"
	"infomaniak-workers/internal/workers/infomaniak/nodes"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	bootLog := logger.New("info", "console")
	defer bootLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format).With(zap.String("service", cfg.App.Name))
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...", zap.String("version", cfg.App.Version))

	obs := observability.New(cfg.Observability.ServiceName, log)
	defer obs.Shutdown()

	tracer, err := observability.NewTracer(cfg.Observability, cfg.App.Version)
	if err != nil {
		zapLog.Fatal("tracer setup failed", zap.Error(err))
	}

	ctx := context.Background()

	// --- Zeebe ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(camunda.ConfigFromApp(cfg.Camunda))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	readiness := map[string]func(context.Context) error{
		"camunda": camundaClient.HealthCheck,
	}
	hooks := []infomaniak.ExecutionHook{obs.Hook()}

	// --- Audit sinks ---
	var recorders audit.Multi

	if cfg.Audit.Postgres {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()

		if err := audit.Migrate(ctx, pg.DB, cfg.Audit.Table); err != nil {
			zapLog.Fatal("audit table migration failed", zap.Error(err))
		}
		recorders = append(recorders, audit.NewPostgresRecorder(pg.DB, cfg.Audit.Table))
		readiness["postgres"] = pg.Ping
		zapLog.Info("PostgreSQL audit sink ready", zap.String("table", cfg.Audit.Table))
	}

	if cfg.Audit.Elasticsearch {
		var es *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}

		recorders = append(recorders, audit.NewElasticsearchRecorder(es.Client, cfg.Audit.Index))
		readiness["elasticsearch"] = es.Ping
		zapLog.Info("Elasticsearch audit sink ready", zap.String("index", cfg.Audit.Index))
	}

	if len(recorders) > 0 {
		hooks = append(hooks, audit.Hook(recorders, log))
	}

	// --- Infomaniak API client ---
	httpClient := httpclient.NewClient(config.GetDuration(cfg.Infomaniak.Timeout))
	clientOpts := []infomaniak.ClientOption{}

	if cfg.Infomaniak.APIToken != "" {
		clientOpts = append(clientOpts, infomaniak.WithAPIToken(cfg.Infomaniak.APIToken))
	}

	if oc := cfg.Infomaniak.OAuth2; oc.ClientID != "" && oc.RefreshToken != "" {
		tokens := infomaniak.NewOAuth2TokenSource(infomaniak.OAuth2Settings{
			ClientID:     oc.ClientID,
			ClientSecret: oc.ClientSecret,
			TokenURL:     oc.TokenURL,
			RefreshToken: oc.RefreshToken,
			Scopes:       oc.Scopes,
		}, httpClient.HTTPClient())

		if oc.CacheTokens {
			redisClient := database.NewRedis(cfg.Database.Redis)
			err = retryWithBackoff(func() error {
				return redisClient.Ping(ctx)
			}, 10, 2*time.Second, zapLog, "Redis connection")
			if err != nil {
				zapLog.Fatal("redis failed after retries", zap.Error(err))
			}
			defer redisClient.Close()

			key := fmt.Sprintf("%s:%s", oc.CacheKeyPrefix, oc.ClientID)
			tokens = infomaniak.NewRedisTokenSource(redisClient.Client, key, tokens, log)
			readiness["redis"] = redisClient.Ping
			zapLog.Info("OAuth2 token cache ready", zap.String("key", key))
		}
		clientOpts = append(clientOpts, infomaniak.WithTokenSource(infomaniak.AuthOAuth2, tokens))
	}

	apiClient := infomaniak.NewClient(infomaniak.ClientConfig{
		BaseURL:               cfg.Infomaniak.BaseURL,
		UserAgent:             cfg.Infomaniak.UserAgent,
		PageSize:              cfg.Infomaniak.PageSize,
		MaxPages:              cfg.Infomaniak.MaxPages,
		DefaultAuthentication: cfg.Infomaniak.Authentication,
	}, httpClient, log, clientOpts...)

	notifier, err := alerts.NewFromConfig(ctx, cfg.Alerts, log)
	if err != nil {
		zapLog.Fatal("alert notifier setup failed", zap.Error(err))
	}

	// --- Node workers ---
	var handlers []*nodeworker.Handler
	for _, spec := range nodes.All() {
		handler, err := spec.NewHandler(nodeworker.HandlerOptions{
			AppConfig:  cfg,
			Camunda:    camundaClient,
			Logger:     log.WithFields(map[string]interface{}{"worker": spec.TaskType}),
			Transports: apiClient,
			Hooks:      hooks,
			Notifier:   notifier,
		})
		if err != nil {
			zapLog.Fatal("failed to create handler", zap.String("taskType", spec.TaskType), zap.Error(err))
		}
		if err := handler.Register(); err != nil {
			zapLog.Fatal("failed to register handler", zap.String("taskType", spec.TaskType), zap.Error(err))
		}
		if handler.IsEnabled() {
			readiness[spec.Name] = handler.HealthCheck
		}
		handlers = append(handlers, handler)
	}
	zapLog.Info("All node workers registered", zap.Int("count", len(handlers)))

	// --- Health / metrics server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", readinessHandler(readiness))
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, h := range handlers {
		h.Close()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}
	if err := tracer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing traces", zap.Error(err))
	}
	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
