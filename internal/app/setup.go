package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mselser95/finsight/internal/generator"
	"github.com/mselser95/finsight/internal/holdings"
	"github.com/mselser95/finsight/internal/insights"
	"github.com/mselser95/finsight/internal/metadata"
	"github.com/mselser95/finsight/internal/sentiment"
	"github.com/mselser95/finsight/internal/storage"
	"github.com/mselser95/finsight/pkg/cache"
	"github.com/mselser95/finsight/pkg/config"
	"github.com/mselser95/finsight/pkg/healthprobe"
	"github.com/mselser95/finsight/pkg/httpserver"
	"go.uber.org/zap"
)

const connectTimeout = 10 * time.Second

// Stores groups the persistence backends selected by STORAGE_MODE.
type Stores struct {
	Insights insights.Store
	Holdings holdings.Store
	// DB is the shared connection pool in postgres mode, nil in memory mode.
	DB *sqlx.DB
}

// Close releases every store. The stores share DB, and closing it twice is harmless.
func (s *Stores) Close() error {
	var firstErr error
	for _, c := range []interface{ Close() error }{s.Insights, s.Holdings} {
		err := c.Close()
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger, opts *Options) (*App, error) {
	if opts == nil {
		opts = &Options{}
	}

	analyzer, err := sentiment.NewAnalyzer()
	if err != nil {
		return nil, fmt.Errorf("create sentiment analyzer: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	healthChecker := setupHealthChecker()

	stores, err := OpenStores(ctx, cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup storage: %w", err)
	}
	if stores.DB != nil {
		healthChecker.AddCheck("postgres", stores.DB.PingContext)
	}

	gen := opts.Generator
	if gen == nil {
		gen, err = setupGenerator(ctx, cfg, logger)
		if err != nil {
			cancel()
			_ = stores.Close()
			return nil, fmt.Errorf("setup generator: %w", err)
		}
	}

	manager, err := insights.New(&insights.Config{
		Store:     stores.Insights,
		Generator: gen,
		Logger:    logger,
		TTL:       cfg.InsightsTTL,
	})
	if err != nil {
		cancel()
		_ = stores.Close()
		return nil, fmt.Errorf("create insights manager: %w", err)
	}

	var metadataCache cache.Cache
	provider := opts.MetadataProvider
	if provider == nil {
		provider, metadataCache, err = setupMetadata(cfg, logger)
		if err != nil {
			cancel()
			_ = stores.Close()
			return nil, fmt.Errorf("setup metadata: %w", err)
		}
	}

	holdingsService, err := holdings.NewService(&holdings.Config{
		Store:       stores.Holdings,
		Metadata:    provider,
		Logger:      logger,
		Concurrency: cfg.SummaryConcurrency,
	})
	if err != nil {
		cancel()
		if metadataCache != nil {
			metadataCache.Close()
		}
		_ = stores.Close()
		return nil, fmt.Errorf("create holdings service: %w", err)
	}

	httpServer := setupHTTPServer(cfg, logger, healthChecker, manager, holdingsService, analyzer)

	return &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		stores:        stores,
		insights:      manager,
		holdings:      holdingsService,
		metadataCache: metadataCache,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func setupHealthChecker() *healthprobe.HealthChecker {
	return healthprobe.New()
}

// OpenStores builds the insights and holdings stores for cfg.StorageMode.
// In postgres mode it connects, and migrates when AutoMigrate is set.
func OpenStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	if cfg.StorageMode != config.StorageModePostgres {
		logger.Info("storage-mode-memory",
			zap.String("note", "cache and holdings are lost on restart"))
		return &Stores{
			Insights: storage.NewMemoryInsightsStore(logger),
			Holdings: storage.NewMemoryHoldingsStore(logger),
		}, nil
	}

	db, err := OpenDB(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		err = storage.MigrateUp(db.DB, logger)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	return &Stores{
		Insights: storage.NewPostgresInsightsStore(db, logger),
		Holdings: storage.NewPostgresHoldingsStore(db, logger),
		DB:       db,
	}, nil
}

// OpenDB connects to PostgreSQL with the pool settings from cfg.
func OpenDB(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sqlx.DB, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	db, err := storage.OpenPostgres(connectCtx, &storage.PostgresConfig{
		DSN:             cfg.PostgresDSN(),
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// NewInsightsManager builds a manager over store with the configured generator.
func NewInsightsManager(ctx context.Context, cfg *config.Config, logger *zap.Logger, store insights.Store) (*insights.Manager, error) {
	gen, err := setupGenerator(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	return insights.New(&insights.Config{
		Store:     store,
		Generator: gen,
		Logger:    logger,
		TTL:       cfg.InsightsTTL,
	})
}

// setupGenerator falls back to a generator that always fails when no key is
// set, so cached insights can still be served.
func setupGenerator(ctx context.Context, cfg *config.Config, logger *zap.Logger) (insights.Generator, error) {
	if cfg.GeminiAPIKey == "" {
		logger.Warn("gemini-api-key-missing",
			zap.String("effect", "only cached insights will be served"))
		return generator.Unavailable{Reason: "GEMINI_API_KEY is not set"}, nil
	}

	return generator.NewGemini(ctx, &generator.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
		Timeout: cfg.GeminiTimeout,
		Logger:  logger,
	})
}

// setupMetadata builds the RapidAPI client behind an in-process cache. The
// cache is returned so shutdown can close it.
func setupMetadata(cfg *config.Config, logger *zap.Logger) (holdings.MetadataProvider, cache.Cache, error) {
	client, err := metadata.NewClient(&metadata.ClientConfig{
		BaseURL: cfg.MetadataBaseURL,
		APIKey:  cfg.RapidAPIKey,
		APIHost: cfg.RapidAPIHost,
		Timeout: cfg.MetadataTimeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create metadata client: %w", err)
	}

	metadataCache, err := cache.NewRistrettoCache(&cache.RistrettoConfig{
		Name:        "metadata",
		NumCounters: 10000,
		MaxCost:     1000,
		BufferItems: 64,
		Logger:      logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create metadata cache: %w", err)
	}

	return metadata.NewCachedClient(client, metadataCache, cfg.MetadataCacheTTL), metadataCache, nil
}

func setupHTTPServer(
	cfg *config.Config,
	logger *zap.Logger,
	healthChecker *healthprobe.HealthChecker,
	manager *insights.Manager,
	holdingsService *holdings.Service,
	analyzer *sentiment.Analyzer,
) *httpserver.Server {
	return httpserver.New(&httpserver.Config{
		Port:           cfg.HTTPPort,
		Logger:         logger,
		HealthChecker:  healthChecker,
		Insights:       manager,
		Holdings:       holdingsService,
		Sentiment:      analyzer,
		JWTSecret:      cfg.JWTSecret,
		RequestTimeout: cfg.HTTPRequestTimeout,
		WriteTimeout:   cfg.HTTPWriteTimeout,
	})
}
