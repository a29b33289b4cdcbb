package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	quotamod "github.com/fleetward/quotakit/modules/quota"
	"github.com/fleetward/quotakit/pkg/alert"
	"github.com/fleetward/quotakit/pkg/config"
	"github.com/fleetward/quotakit/pkg/httpserver"
	"github.com/fleetward/quotakit/pkg/logger"
	"github.com/fleetward/quotakit/pkg/pg"
	"github.com/fleetward/quotakit/pkg/plan"
	"github.com/fleetward/quotakit/pkg/quota"
	"github.com/fleetward/quotakit/pkg/redis"
	"github.com/fleetward/quotakit/pkg/subscription"
	"github.com/fleetward/quotakit/pkg/tenant"
	"github.com/fleetward/quotakit/pkg/usage"
)

type appConfig struct {
	PlansPath    string        `env:"PLANS_PATH" envDefault:"plans.yaml"`
	PlanCacheTTL time.Duration `env:"PLAN_CACHE_TTL" envDefault:"5m"`

	DB     pg.Config
	Redis  redis.Config
	HTTP   httpserver.Config
	Paddle subscription.PaddleConfig
}

func main() {
	if err := run(); err != nil {
		slog.Error("quotad exited", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	if _, err := os.Stat(".env"); err == nil {
		if err := config.LoadEnv(".env"); err != nil {
			return fmt.Errorf("load .env: %w", err)
		}
	}

	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(
		logger.WithProduction("quotad"),
		logger.WithContextExtractors(tenant.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	pool, err := pg.Connect(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.DB, log); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	rdb, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer rdb.Close()

	subStore := subscription.NewPostgresStore(pool)
	alertStore := alert.NewPostgresStore(pool)

	resolver, err := plan.NewResolver(ctx, plan.NewYAMLSource(cfg.PlansPath), subStore,
		plan.WithCache(plan.NewRedisCache(rdb), cfg.PlanCacheTTL))
	if err != nil {
		return fmt.Errorf("load plan catalog: %w", err)
	}

	svc := quota.NewService(resolver, subStore,
		usage.NewPostgresStore(pool), alertStore,
		quota.WithLogger(log))

	provider, err := subscription.NewPaddleProvider(cfg.Paddle)
	if err != nil {
		return fmt.Errorf("init billing provider: %w", err)
	}
	lifecycle := subscription.NewLifecycle(subStore, plan.CycleResolverFor(resolver),
		subscription.WithLogger(log))

	r := chi.NewRouter()
	r.Use(chimw.RealIP, chimw.Recoverer)
	r.Get("/healthz", httpserver.HealthCheckHandler(ctx, log))
	r.Get("/readyz", httpserver.HealthCheckHandler(ctx, log,
		pg.Healthcheck(pool), redis.Healthcheck(rdb)))
	r.Mount("/v1", quotamod.Router(quotamod.RouterOptions{
		Service:   svc,
		Alerts:    alertStore,
		Tenants:   tenant.NewPostgresProvider(pool),
		Provider:  provider,
		Lifecycle: lifecycle,
		Logger:    log,
	}))

	srv := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(l *slog.Logger) {
			l.Info("quotad listening", slog.String("addr", cfg.HTTP.Addr))
		}),
	)
	return srv.Run(ctx, r)
}
