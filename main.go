// main.go
package main

import (
	"log"

	"car-rental/cmd"
	"car-rental/internal/data/cache"
	"car-rental/internal/data/repository"
	"car-rental/internal/data/repository/memory"
	"car-rental/internal/usecase"
	"car-rental/internal/wire"
	"car-rental/pkg/database"
	"car-rental/pkg/queue"
	"car-rental/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.String("db_driver", config.Database.Driver),
		zap.Bool("debug", config.App.Debug),
	)

	var repos *repository.Repository
	switch config.Database.Driver {
	case "memory":
		logger.Warn("Using in-memory store, data is lost on restart")
		repos = memory.NewRepository(logger)
	case "postgres", "":
		db, err := database.InitDB(config.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		logger.Info("Database connected successfully")
		repos = repository.NewRepository(db, logger)
	default:
		logger.Fatal("Unknown database driver", zap.String("driver", config.Database.Driver))
	}

	// Redis and RabbitMQ are optional; without them caching and events are skipped
	var infra usecase.Infra

	if config.Redis.Addr != "" {
		rdb, err := database.InitRedis(config.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, blocked-days cache disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			infra.Cache = cache.NewBlockedDaysCache(rdb, config.Redis.CacheTTL, logger)
			logger.Info("Redis connected successfully", zap.String("addr", config.Redis.Addr))
		}
	}

	if config.RabbitMQ.URL != "" {
		publisher, err := queue.NewPublisher(config.RabbitMQ.URL, config.RabbitMQ.Exchange, logger)
		if err != nil {
			logger.Warn("RabbitMQ unavailable, domain events disabled", zap.Error(err))
		} else {
			defer publisher.Close()
			infra.Publisher = publisher
			logger.Info("RabbitMQ connected successfully", zap.String("exchange", config.RabbitMQ.Exchange))
		}
	}

	if config.Admin.TokenHash == "" {
		logger.Warn("ADMIN_TOKEN_HASH is empty, admin endpoints are disabled")
	}

	// Wire all dependencies
	app := wire.Wiring(repos, config, infra, logger)

	// Start server
	if err := cmd.APIServer(app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server exited with error", zap.Error(err))
	}
}
