package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"catalogsearch/internal/config"
	"catalogsearch/internal/handlers"
	"catalogsearch/internal/metrics"
	"catalogsearch/internal/middleware"
	"catalogsearch/internal/models"
	"catalogsearch/internal/repositories"
	"catalogsearch/internal/search"
	"catalogsearch/internal/services"
	"catalogsearch/internal/woocommerce"
	"catalogsearch/pkg/rabbitmq"
)

// App is the wired service: the HTTP app plus the background machinery main
// has to drive and shut down.
type App struct {
	Fiber   *fiber.App
	Monitor *services.FreshnessMonitor
	Config  *config.Config

	logger  *zap.Logger
	broker  *rabbitmq.Client
	closers []func() error
}

// NewApp builds every component from cfg and registers the routes.
func NewApp(cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{Config: cfg, logger: log}

	// --- Storage ---
	store, err := a.openSnapshotStore(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	runs, err := a.openSyncRunStore(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// --- Events (optional) ---
	var publisher services.SyncPublisher
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			// The search path does not depend on the broker.
			log.Warn("RabbitMQ unavailable, catalog events disabled", zap.Error(err))
		} else {
			publisher = mqClient
			a.broker = mqClient
		}
	}

	// --- Services ---
	provider := woocommerce.NewClient(woocommerce.Config{
		BaseURL:        cfg.WooCommerce.URL,
		ConsumerKey:    cfg.WooCommerce.ConsumerKey,
		ConsumerSecret: cfg.WooCommerce.ConsumerSecret,
		Timeout:        cfg.WooCommerce.Timeout,
	}, log.Named("woocommerce"))

	builder := services.NewSnapshotBuilder(provider, store, services.BuilderConfig{
		Runs:             runs,
		Publisher:        publisher,
		Metrics:          m,
		Logger:           log.Named("builder"),
		PlaceholderImage: cfg.PlaceholderImage,
		PageSize:         cfg.WooCommerce.PageSize,
	})
	monitor := services.NewFreshnessMonitor(store, builder, services.MonitorConfig{
		StaleAfter:     cfg.Cache.StaleAfter,
		RebuildTimeout: cfg.RebuildTimeout,
		Logger:         log.Named("freshness"),
	})
	searchService := services.NewSearchService(monitor, search.New(nil), m, log.Named("search"))
	recommendations := services.NewRecommendationService(monitor, log.Named("recommendations"))
	a.Monitor = monitor

	if snapshot, ok, err := store.Read(context.Background()); err == nil && ok {
		m.SetSnapshot(snapshot.TotalProducts, snapshot.LastSyncedAt)
	}

	if mqClient != nil {
		err := mqClient.ConsumeRebuildRequests(func(msg amqp.Delivery) error {
			triggered := monitor.TriggerRebuild(services.TriggerEvent)
			log.Info("Rebuild requested over AMQP",
				zap.String("message_id", msg.MessageId),
				zap.Bool("triggered", triggered),
			)
			return nil
		})
		if err != nil {
			log.Warn("Failed to start rebuild request consumer", zap.Error(err))
		}
	}

	// --- Handlers ---
	app := fiber.New(fiber.Config{
		AppName:               "catalogsearch",
		DisableStartupMessage: cfg.IsProduction(),
	})
	app.Use(recover.New())
	app.Use(logger.New())

	handlers.NewHealthHandler(monitor, runs, log.Named("health")).RegisterRoutes(app)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := app.Group("/api")
	handlers.NewSearchHandler(searchService).RegisterRoutes(api)
	handlers.NewCategoryHandler(provider, log.Named("categories")).RegisterRoutes(api)
	handlers.NewProductHandler(recommendations, log.Named("products")).RegisterRoutes(api)

	if cfg.CronSecret == "" {
		log.Warn("CRON_SECRET is empty, sync routes will reject every request")
	}
	protected := api.Group("", middleware.SecretRequired(cfg.CronSecret, log.Named("auth")))
	handlers.NewSyncHandler(monitor, runs, log.Named("sync")).RegisterRoutes(protected)

	a.Fiber = app
	return a, nil
}

func (a *App) openSnapshotStore(cfg *config.Config) (repositories.SnapshotRepository, error) {
	switch cfg.Cache.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		a.closers = append(a.closers, client.Close)
		a.logger.Info("Using redis snapshot store", zap.String("addr", cfg.Redis.Addr), zap.String("key", cfg.Redis.Key))
		return repositories.NewRedisSnapshotRepository(client, cfg.Redis.Key), nil
	case "memory":
		a.logger.Warn("Using in-memory snapshot store, the catalog is rebuilt on every start")
		return repositories.NewMemorySnapshotRepository(), nil
	default:
		if dir := filepath.Dir(cfg.Cache.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create cache directory: %w", err)
			}
		}
		store := repositories.NewFileSnapshotRepository(afero.NewOsFs(), cfg.Cache.File)
		a.logger.Info("Using file snapshot store", zap.String("path", store.Path()))
		return store, nil
	}
}

func (a *App) openSyncRunStore(cfg *config.Config) (repositories.SyncRunRepository, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.Database.DSN)
	default:
		dialector = sqlite.Open(cfg.Database.DSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&models.SyncRun{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	sqlDB, err := db.DB()
	if err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}
	return repositories.NewGORMSyncRunRepository(db), nil
}

// Close stops the rebuild consumer, waits for background rebuilds and then
// releases the stores they write to.
func (a *App) Close() error {
	var errs []error
	if a.broker != nil {
		if err := a.broker.Close(); err != nil {
			errs = append(errs, err)
		}
		a.broker = nil
	}
	if a.Monitor != nil {
		a.Monitor.Shutdown()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
