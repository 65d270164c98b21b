package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/walterreed/referral-api/internal/config"
	healthHandler "github.com/walterreed/referral-api/internal/handler/health"
	prometheusHandler "github.com/walterreed/referral-api/internal/handler/prometheus"
	referralHandler "github.com/walterreed/referral-api/internal/handler/referral"
	"github.com/walterreed/referral-api/internal/registry"
	"github.com/walterreed/referral-api/internal/repository"
	"github.com/walterreed/referral-api/internal/repository/memory"
	"github.com/walterreed/referral-api/internal/repository/postgres"
	"github.com/walterreed/referral-api/internal/repository/redisstore"
	"github.com/walterreed/referral-api/internal/router"
	"github.com/walterreed/referral-api/internal/rules"
	"github.com/walterreed/referral-api/internal/service/adjudication"
	"github.com/walterreed/referral-api/internal/service/clinical"
	"github.com/walterreed/referral-api/internal/service/insurance"
	"github.com/walterreed/referral-api/internal/service/provider"
	"github.com/walterreed/referral-api/internal/service/scheduler"
	"github.com/walterreed/referral-api/internal/service/triage"
	"github.com/walterreed/referral-api/pkg/logger"
	"github.com/walterreed/referral-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      parseLevel(cfg.Logging.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
	})

	ruleSet, err := rules.Load(cfg.Rules.File)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load rule set")
	}

	m := metrics.NewMetrics("referral", "engine")

	registryClient := registry.NewClient(registry.ClientConfig{
		BaseURL:    cfg.Registry.BaseURL,
		Timeout:    cfg.Registry.Timeout,
		MaxRetries: cfg.Registry.MaxRetries,
		Backoff:    cfg.Registry.Backoff,
		RateLimit:  rate.Limit(cfg.Registry.RateLimit),
		RateBurst:  cfg.Registry.RateBurst,
		CacheTTL:   cfg.Registry.CacheTTL,
	}, appLogger)
	registryClient.OnRetry = m.RegistryRetries.Inc
	registryClient.OnLookup = func(result string, elapsed time.Duration) {
		m.RegistryLookups.WithLabelValues(result).Inc()
		m.RegistryLookupLatency.Observe(elapsed.Seconds())
	}

	slotRepo, db, err := newSlotRepository(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize calendar backend")
	}
	if db != nil {
		defer db.Close()
	}

	weekdays, err := cfg.Scheduling.ParseWeekdays()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid scheduling configuration")
	}

	schedulerSvc := scheduler.NewService(slotRepo, scheduler.Config{
		Weekdays:  weekdays,
		StartHour: cfg.Scheduling.StartHour,
		EndHour:   cfg.Scheduling.EndHour,
		Horizon:   cfg.Scheduling.Horizon(),
		Location:  cfg.Scheduling.Location,
	}, appLogger, m)

	adjudicationSvc := adjudication.NewService(
		triage.NewService(ruleSet, appLogger),
		provider.NewService(registryClient, appLogger),
		insurance.NewService(ruleSet),
		clinical.NewService(ruleSet, appLogger),
		schedulerSvc,
		appLogger,
		m,
	)

	r := router.NewRouter(
		referralHandler.NewHandler(adjudicationSvc),
		healthHandler.NewHandler(db),
		prometheusHandler.New(),
		router.Config{
			Timeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		appLogger.Info("server started", "port", cfg.Server.Port, "calendar_backend", cfg.Calendar.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}

// newSlotRepository builds the configured calendar backend. The returned DB
// handle is non-nil only for the postgres backend; the readiness probe pings
// it.
func newSlotRepository(cfg *config.Config) (repository.SlotRepository, *sqlx.DB, error) {
	switch cfg.Calendar.Backend {
	case "postgres":
		db, err := postgres.NewDB(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewSlotRepository(db), db, nil
	case "redis":
		client := redisclient.NewClient(&redisclient.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return redisstore.NewSlotRepository(client), nil, nil
	default:
		return memory.NewSlotRepository(), nil, nil
	}
}

func parseLevel(level string) logger.Level {
	switch level {
	case "debug":
		return logger.DebugLevel
	case "warn":
		return logger.WarnLevel
	case "error":
		return logger.ErrorLevel
	default:
		return logger.InfoLevel
	}
}
