package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	httpin "tracking/internal/adapters/in/http"
	"tracking/internal/adapters/out/inmemory"
	"tracking/internal/adapters/out/postgres"
	"tracking/internal/adapters/out/postgres/orderrepo"
	"tracking/internal/adapters/out/postgres/statsrepo"
	"tracking/internal/adapters/out/redis/statscache"
	"tracking/internal/adapters/out/stagecatalog"
	"tracking/internal/core/application/usecases/commands"
	"tracking/internal/core/application/usecases/queries"
	"tracking/internal/core/domain/model/stage"
	"tracking/internal/core/domain/services"
	"tracking/internal/core/ports"
	"tracking/internal/jobs"
	"tracking/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// CompositionRoot owns the long-lived dependencies of the process and builds handlers
// on top of them. Close releases storage and cache connections.
type CompositionRoot struct {
	config     Config
	catalog    *stage.Registry
	uowFactory ports.UnitOfWorkFactory
	orders     ports.OrderReader
	stats      ports.StatsReader
	// nil without a cache
	invalidator ports.StatsInvalidator
	estimator   services.ETAEstimator
	registry    *prometheus.Registry
	recorder    *metrics.Recorder
	now         func() time.Time
	logger      *slog.Logger
	closers     []func() error
}

func NewCompositionRoot(ctx context.Context, config Config, logger *slog.Logger) (*CompositionRoot, error) {
	catalog, err := stagecatalog.Load(config.StageCatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load stage catalog: %w", err)
	}

	estimator, err := services.NewETAEstimator(config.ETAMinSamples, config.ETAMinMinutes)
	if err != nil {
		return nil, fmt.Errorf("invalid ETA configuration: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c := &CompositionRoot{
		config:    config,
		catalog:   catalog,
		estimator: estimator,
		registry:  registry,
		recorder:  metrics.NewRecorder(registry),
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger,
	}

	if err = c.openStorage(); err != nil {
		return nil, errors.Join(err, c.Close())
	}
	if err = c.openStatsCache(ctx); err != nil {
		return nil, errors.Join(err, c.Close())
	}

	logger.InfoContext(ctx, "Composition root ready",
		"storage", config.Storage,
		"categories", catalog.Categories(),
		"statsCache", c.invalidator != nil)
	return c, nil
}

func (c *CompositionRoot) openStorage() error {
	switch c.config.Storage {
	case StorageMemory:
		store := inmemory.NewStore(c.catalog)
		c.uowFactory = store
		c.orders = store
		c.stats = store
		return nil
	case StoragePostgres:
		db, err := gorm.Open(gormpostgres.Open(c.config.DSN()), &gorm.Config{
			TranslateError: true,
			Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		c.closers = append(c.closers, sqlDB.Close)

		if err = postgres.Migrate(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}

		c.uowFactory = postgres.NewGormUnitOfWorkFactory(db, c.catalog)
		c.orders = orderrepo.NewGormOrderRepository(db, c.catalog)
		c.stats = statsrepo.NewGormStatsRepository(db)
		return nil
	default:
		return fmt.Errorf("unsupported storage %q", c.config.Storage)
	}
}

// openStatsCache puts redis in front of the statistics when configured. An unreachable
// redis at startup is logged, not fatal: the cache falls back to storage per read.
func (c *CompositionRoot) openStatsCache(ctx context.Context) error {
	if c.config.RedisURL == "" {
		return nil
	}

	client, err := statscache.NewClient(c.config.RedisURL)
	if err != nil {
		return err
	}
	cache := statscache.NewCache(client, c.stats, c.config.StatsCacheTTL, c.logger)
	c.closers = append(c.closers, cache.Close)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err = cache.Ping(pingCtx); err != nil {
		c.logger.WarnContext(ctx, "Redis is unreachable, statistics will be read from storage until it recovers",
			"error", err)
	}

	c.stats = cache
	c.invalidator = cache
	return nil
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f, c.catalog)
}

func (c *CompositionRoot) CreateApplyTransitionCommandHandler() commands.ApplyTransitionCommandHandler {
	var f commands.TransitionUoWFactory = FuncTransitionUoWFactory(func() commands.TransitionUoW {
		return c.uowFactory.Create()
	})
	return commands.NewApplyTransitionCommandHandler(f, c.catalog, c.invalidator, c.recorder, c.logger)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(c.CreateApplyTransitionCommandHandler())
}

func (c *CompositionRoot) CreateRecomputeStageStatsCommandHandler() commands.RecomputeStageStatsCommandHandler {
	var f commands.StatsUoWFactory = FuncStatsUoWFactory(func() commands.StatsUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRecomputeStageStatsCommandHandler(f, c.catalog, c.invalidator)
}

func (c *CompositionRoot) CreateTrackOrderQueryHandler() queries.TrackOrderQueryHandler {
	return queries.NewTrackOrderQueryHandler(c.orders, c.stats, c.catalog, c.estimator, c.recorder, c.now, c.logger)
}

func (c *CompositionRoot) CreateHTTPRouter() (*echo.Echo, error) {
	server := httpin.NewServer(
		c.CreateCreateOrderCommandHandler(),
		c.CreateApplyTransitionCommandHandler(),
		c.CreateCancelOrderCommandHandler(),
		c.CreateTrackOrderQueryHandler(),
		c.now,
		c.logger,
	)
	return httpin.NewRouter(server, c.recorder, c.registry, c.logger)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.CreateRecomputeStageStatsCommandHandler(), c.config.StatsRecomputeSchedule, c.logger)
}

// Close releases connections in reverse order of acquisition.
func (c *CompositionRoot) Close() error {
	var err error
	for i := len(c.closers) - 1; i >= 0; i-- {
		err = errors.Join(err, c.closers[i]())
	}
	c.closers = nil
	return err
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncTransitionUoWFactory func() commands.TransitionUoW

func (f FuncTransitionUoWFactory) Create() commands.TransitionUoW {
	return f()
}

type FuncStatsUoWFactory func() commands.StatsUoW

func (f FuncStatsUoWFactory) Create() commands.StatsUoW {
	return f()
}
