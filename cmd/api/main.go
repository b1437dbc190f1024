package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	importapp "github.com/mohammadpnp/customer-import/internal/application/importing"
	"github.com/mohammadpnp/customer-import/internal/bootstrap"
	"github.com/mohammadpnp/customer-import/internal/config"
	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
	"github.com/mohammadpnp/customer-import/internal/infrastructure/cache"
	"github.com/mohammadpnp/customer-import/internal/infrastructure/chunk"
	"github.com/mohammadpnp/customer-import/internal/infrastructure/db"
	infrafile "github.com/mohammadpnp/customer-import/internal/infrastructure/file"
	"github.com/mohammadpnp/customer-import/internal/infrastructure/parser"
	"github.com/mohammadpnp/customer-import/internal/infrastructure/repository"
	"github.com/mohammadpnp/customer-import/internal/infrastructure/storage"
	"github.com/mohammadpnp/customer-import/internal/logger"
	"github.com/mohammadpnp/customer-import/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.Get()
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	if cfg.Database.URL == "" {
		log.Fatal().Msg("database.url (or DATABASE_URL) is required")
	}

	ctx := context.Background()

	gdb, err := gorm.Open(postgres.Open(cfg.Database.URL), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	if cfg.Database.AutoMigrate {
		if err := db.Migrate(gdb); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid database url")
	}
	if cfg.Database.MaxConnections > 0 {
		poolCfg.MaxConns = int32(cfg.Database.MaxConnections)
	}
	pgPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create pgx pool")
	}
	defer pgPool.Close()

	countCache := newCountCache(ctx, cfg)

	taskRepo := repository.NewUploadTaskRepository(gdb)
	customerRepo := repository.NewCustomerRepository(gdb)
	operationLogRepo := repository.NewOperationLogRepository(gdb)

	orchestrator := importapp.NewOrchestrator(
		taskRepo,
		repository.NewCustomerBulkRepository(pgPool),
		parser.NewOpener(cfg.Import.HeaderRows).WithMaxWorkbookSize(cfg.Import.MaxWorkbookSize),
		countCache,
		importapp.OrchestratorConfig{BatchSize: cfg.Import.BatchSize},
		logger.Component("orchestrator"),
	).WithOperationLog(operationLogRepo)

	if cfg.Storage.S3.Enabled {
		archive, err := storage.NewS3Archive(cfg.Storage.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create s3 archive")
		}
		orchestrator = orchestrator.WithArchive(archive)
	}

	assembler, err := chunk.NewAssembler(cfg.Import.ChunkDir, cfg.Import.MaxFileSize, logger.Component("chunk"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare chunk directory")
	}

	if *cfg.Import.ReconcileOnStart {
		if _, err := importapp.NewReconcileTasks(taskRepo, logger.Component("reconcile")).Execute(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to reconcile interrupted import tasks")
		}
	}

	pool := worker.NewPool(cfg.Import.Workers, cfg.Import.QueueSize, logger.Component("worker"))
	pool.Start()

	server := bootstrap.NewHTTPServer(bootstrap.ServerDeps{
		Config:    cfg,
		Tasks:     taskRepo,
		Customers: customerRepo,
		Remarks:   repository.NewCustomerRemarkRepository(gdb),
		Logs:      operationLogRepo,
		Cache:     countCache,
		Spooler:   infrafile.NewSpooler(cfg.Import.UploadDir),
		Chunks:    assembler,
		Pool:      pool,
		Runner:    orchestrator,
		Log:       logger.Component("http"),
	})

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("http server listening")
		if err := server.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	drainCtx, cancelDrain := context.WithTimeout(context.Background(), cfg.Import.DrainTimeout)
	defer cancelDrain()
	if err := pool.Stop(drainCtx); err != nil {
		log.Warn().Err(err).Msg("import workers did not drain in time")
	}

	if err := assembler.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to remove pending chunk uploads")
	}
}

// newCountCache prefers redis and falls back to an in-process cache when no
// address is configured or the server cannot be reached.
func newCountCache(ctx context.Context, cfg *config.Config) domain.CountCache {
	log := logger.Component("cache")
	if cfg.Redis.Addr == "" {
		log.Info().Msg("redis not configured, using in-memory count cache")
		return cache.NewMemoryCountCache(cfg.Redis.CountTTL)
	}

	client, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, using in-memory count cache")
		return cache.NewMemoryCountCache(cfg.Redis.CountTTL)
	}
	return cache.NewRedisCountCache(client, cfg.Redis.CountTTL)
}
