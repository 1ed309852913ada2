// cmd/pos/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/retailflow/pos-be/internal/adapters/catalog"
	"github.com/retailflow/pos-be/internal/adapters/db"
	"github.com/retailflow/pos-be/internal/adapters/memory"
	redis_a "github.com/retailflow/pos-be/internal/adapters/redis_adapter"
	"github.com/retailflow/pos-be/internal/cli"
	"github.com/retailflow/pos-be/internal/core/ports"
	"github.com/retailflow/pos-be/internal/core/services"
	"github.com/retailflow/pos-be/internal/pkg/config"
	"github.com/retailflow/pos-be/internal/pkg/logger"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

func main() {
	demoMode := flag.Bool("demo", false, "run a scripted demo session and exit")
	inventoryPath := flag.String("inventory", "", "path to the catalog CSV (overrides configured data dir)")
	usersPath := flag.String("users", "", "path to the users CSV (overrides configured data dir)")
	flag.Parse()

	slogger := logger.SetupLogger("info", "text")

	slogger.Info("starting retailflow point of sale",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("go_version", GoVersion),
	)

	cfg, err := config.Load(slogger.Logger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cfg.POS.CatalogOverride = *inventoryPath
	cfg.POS.UsersOverride = *usersPath

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("log_level", cfg.App.LogLevel),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := initializeDependencies(ctx, cfg, slogger.Logger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	if *demoMode {
		demo := cli.NewDemo(deps.engine, deps.ledger, os.Stdout, slogger.Logger)
		if err := demo.Run(ctx); err != nil {
			slogger.Error("demo failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		saveCatalog(cfg, deps, slogger.Logger)
		return
	}

	var tasks ports.TaskEnqueuer
	if deps.asynqClient != nil {
		tasks = deps.asynqClient
	}
	terminal := cli.NewTerminal(
		deps.engine, deps.ledger, deps.auth, tasks,
		cfg.POS.ExportDir, os.Stdin, os.Stdout, slogger.Logger,
	)
	if err := terminal.Run(ctx); err != nil {
		slogger.Error("terminal session ended with error", slog.String("error", err.Error()))
		saveCatalog(cfg, deps, slogger.Logger)
		os.Exit(1)
	}

	saveCatalog(cfg, deps, slogger.Logger)
	slogger.Info("till shutdown complete")
}

// dependencies holds all application dependencies
type dependencies struct {
	database    *db.Database
	redisClient *redis.Client
	redisCache  ports.CacheRepository
	asynqClient *asynq.Client
	receipts    ports.ReceiptRepository
	ledger      *services.Ledger
	engine      *services.Engine
	auth        *services.Authenticator
}

func (d *dependencies) cleanup() {
	if d.database != nil {
		d.database.Close()
	}
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.asynqClient != nil {
		d.asynqClient.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	// Receipt store: postgres when reachable, otherwise the in-memory store
	// so the till keeps ringing sales with the back office down.
	database, err := connectDatabase(ctx, cfg, logger)
	if err != nil {
		logger.Warn("database unavailable, using in-memory receipt store",
			slog.String("error", err.Error()))
		deps.receipts = memory.NewReceiptStore()
	} else {
		deps.database = database
		if !cfg.IsProduction() {
			if err := runMigrations(ctx, cfg, logger); err != nil {
				logger.Error("failed to run migrations", slog.String("error", err.Error()))
			}
		}
		deps.receipts = db.NewReceiptRepository(database, logger)
	}

	if cfg.Redis.Enabled {
		logger.Info("connecting to Redis",
			slog.String("host", cfg.Redis.Host),
			slog.String("port", cfg.Redis.Port),
		)

		redisClient := redis.NewClient(&redis.Options{
			Addr:         cfg.GetRedisAddr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxRetries:   cfg.Redis.MaxRetries,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		})

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, receipt caching disabled",
				slog.String("error", err.Error()))
			redisClient.Close()
		} else {
			deps.redisClient = redisClient
			deps.redisCache = redis_a.NewCache(redisClient, cfg.Redis.TTL, logger)
		}
	}

	if cfg.Asynq.Enabled {
		logger.Info("initializing task queue client")
		deps.asynqClient = asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Asynq.RedisAddr,
			Password: cfg.Asynq.RedisPassword,
			DB:       cfg.Asynq.RedisDB,
		})
	}

	// Catalog and users come off the data files.
	items, err := catalog.LoadCatalog(cfg.CatalogPath(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	users, err := catalog.LoadUsers(cfg.UsersPath(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	deps.ledger, err = services.NewLedger(items, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build ledger: %w", err)
	}
	deps.auth = services.NewAuthenticator(users, cfg.POS.MaxLoginAttempts, logger)

	var tasks ports.TaskEnqueuer
	if deps.asynqClient != nil {
		tasks = deps.asynqClient
	}
	deps.engine = services.NewEngine(deps.ledger, deps.receipts, deps.redisCache, tasks, logger)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

func connectDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*db.Database, error) {
	logger.Info("connecting to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Name),
	)

	return db.NewDatabase(ctx, &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     cfg.Database.MaxConnections,
		MinConnections:     cfg.Database.MinConnections,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}, logger)
}

func runMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("running database migrations")

	migrationConfig := &db.MigrationConfig{
		DatabaseURL: cfg.GetDatabaseURL(),
		SourcePath:  cfg.Database.MigrationPath,
		TableName:   "schema_migrations",
		SchemaName:  "public",
	}

	return db.RunMigrationsWithRetry(ctx, migrationConfig, logger, 3)
}

// saveCatalog writes live on-hand counts back to the data file so the next
// boot starts from today's stock.
func saveCatalog(cfg *config.Config, deps *dependencies, logger *slog.Logger) {
	if !cfg.POS.SaveCatalogOnExit {
		return
	}
	if err := catalog.SaveCatalog(cfg.CatalogPath(), deps.ledger.Items(context.Background())); err != nil {
		logger.Error("failed to save catalog", slog.String("error", err.Error()))
		return
	}
	logger.Info("catalog saved", slog.String("path", cfg.CatalogPath()))
}
