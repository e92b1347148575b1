package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"codemint.backend/internal/config"
	"codemint.backend/internal/infrastructure/blockchain"
	"codemint.backend/internal/infrastructure/gateway"
	"codemint.backend/internal/infrastructure/jobs"
	"codemint.backend/internal/infrastructure/pinning"
	"codemint.backend/internal/infrastructure/registry"
	"codemint.backend/internal/infrastructure/repositories"
	"codemint.backend/internal/interfaces/http/handlers"
	"codemint.backend/internal/interfaces/http/middleware"
	"codemint.backend/internal/usecases"
	"codemint.backend/pkg/logger"
	"codemint.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	dialEVM   = blockchain.NewEVMClient
	runServer = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := loadCfg()

	// Initialize Logger
	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	// Initialize Redis. The gateway document cache degrades to direct reads
	// without it, so a missing Redis is a warning, not a startup failure.
	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		logger.Warn(context.Background(), "Redis unavailable, gateway cache disabled", zap.Error(err))
	} else {
		logger.Info(context.Background(), "Redis initialized")
	}

	// Set Gin mode
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database using GORM
	dsn := cfg.Database.URL()
	db, err := openDB(dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		logger.Warn(context.Background(), "Database not available, pin ledger endpoints will return errors", zap.Error(err))
	} else {
		logger.Info(context.Background(), "Connected to PostgreSQL via GORM")
	}

	// Connect to the chain RPC
	evm, err := dialEVM(cfg.Registry.RPCEndpoint())
	if err != nil {
		return fmt.Errorf("failed to connect to chain RPC: %w", err)
	}
	defer evm.Close()

	// Initialize infrastructure
	registryClient := registry.NewClient(evm, cfg.Registry.ContractAddress, cfg.Registry.OperatorPrivateKey, cfg.Registry.ConfirmationTimeout)
	contentStore := pinning.NewClient(cfg.Pinning.APIBaseURL, cfg.Pinning.APIKey, cfg.Pinning.MaxUploadBytes())
	metadataStore := gateway.NewMetadataStore(cfg.Gateway.Host, redis.GetClient(), cfg.Views.MetadataCacheTTL)
	pinRepo := repositories.NewPinRecordRepository(db)

	// Initialize usecases
	notifications := usecases.NewNotificationCenter()
	flows := usecases.NewFlowManager(notifications)
	derivation := usecases.NewDerivationUsecase(cfg.Gateway.SubdomainHost, cfg.Registry.MaxParameters)
	gallery := usecases.NewGalleryUsecase(registryClient, metadataStore, cfg.Registry, cfg.Views)
	authoring := usecases.NewAuthoringUsecase(registryClient, contentStore, pinRepo, derivation, flows, cfg.Pinning.CompensateOnFailure)
	minting := usecases.NewMintUsecase(registryClient, contentStore, metadataStore, pinRepo, derivation, flows)

	// Initialize handlers
	projectHandler := handlers.NewProjectHandler(gallery, authoring, minting)
	tokenHandler := handlers.NewTokenHandler(gallery)
	accountHandler := handlers.NewAccountHandler(gallery)
	flowHandler := handlers.NewFlowHandler(flows)
	notificationHandler := handlers.NewNotificationHandler(notifications)
	pinHandler := handlers.NewPinHandler(contentStore, pinRepo)

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	refreshJob := jobs.NewViewRefreshJob(gallery, cfg.Views.RefreshInterval)
	go refreshJob.Start(ctx)

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		projectHandler:      projectHandler,
		tokenHandler:        tokenHandler,
		accountHandler:      accountHandler,
		flowHandler:         flowHandler,
		notificationHandler: notificationHandler,
		pinHandler:          pinHandler,
	})

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info(context.Background(), "Shutting down server...")
		refreshJob.Stop()
		cancel()
	}()

	// Start server
	logger.Info(context.Background(), "CodeMint backend starting",
		zap.String("port", cfg.Server.Port),
		zap.String("network", cfg.Registry.Network),
		zap.String("registry", cfg.Registry.ContractAddress),
	)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
