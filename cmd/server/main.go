package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/studioware/backoffice/internal/config"
	"github.com/studioware/backoffice/internal/cache"
	"github.com/studioware/backoffice/internal/email"
	"github.com/studioware/backoffice/internal/export"
	httpserver "github.com/studioware/backoffice/internal/interfaces/http"
	"github.com/studioware/backoffice/internal/pdf"
	"github.com/studioware/backoffice/internal/persistence"
	"github.com/studioware/backoffice/internal/repository"
	"github.com/studioware/backoffice/pkg/database"
	"github.com/studioware/backoffice/pkg/utils"
)

func main() {
	// Load .env before viper reads the environment
	_ = gotenv.Load()

	configPath := "configs/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting back-office billing service",
		zap.Int("port", cfg.Server.Port))

	// Durable store
	durableDB, err := database.NewPostgres(database.PostgresConfig{
		DSN:             cfg.Durable.DSN,
		MaxOpenConns:    cfg.Durable.MaxOpenConns,
		MaxIdleConns:    cfg.Durable.MaxIdleConns,
		ConnMaxLifetime: cfg.Durable.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to connect durable store", zap.Error(err))
	}
	defer durableDB.Close()

	migrator := database.NewMigrator(durableDB, database.DialectPostgres, logger)
	if err := migrator.RunMigrations(cfg.Durable.MigrationsDir); err != nil {
		logger.Fatal("Failed to run durable store migrations", zap.Error(err))
	}

	// Local cache
	cacheDB, err := database.NewSQLite(database.SQLiteConfig{
		Path:            cfg.Cache.Path,
		MaxOpenConns:    cfg.Cache.MaxOpenConns,
		MaxIdleConns:    cfg.Cache.MaxIdleConns,
		ConnMaxLifetime: cfg.Cache.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to open local cache", zap.Error(err))
	}
	defer cacheDB.Close()

	cacheStore, err := cache.NewSQLiteStore(cacheDB.DB, logger)
	if err != nil {
		logger.Fatal("Failed to initialize cache store", zap.Error(err))
	}

	// Repositories and coordinator
	customerRepo := repository.NewCustomerRepository(durableDB.DB, logger)
	documentRepo := repository.NewDocumentRepository(durableDB.DB, logger)
	itemRepo := repository.NewLineItemRepository(durableDB.DB, logger)
	emailLogRepo := repository.NewEmailLogRepository(durableDB.DB, logger)

	durableStore := persistence.NewSQLStore(durableDB, customerRepo, documentRepo, itemRepo)
	coordinator := persistence.NewCoordinator(durableStore, cacheStore, logger)

	// Email
	renderer := email.NewRenderer(cfg.Company.Name)
	transport := email.NewSMTPTransport(email.SMTPConfig{
		Host:        cfg.SMTP.Host,
		Port:        cfg.SMTP.Port,
		Username:    cfg.SMTP.Username,
		Password:    cfg.SMTP.Password,
		FromName:    cfg.SMTP.FromName,
		FromAddress: cfg.SMTP.FromAddress,
	})
	sender := email.NewSender(transport, renderer, emailLogRepo, logger)

	pdfGen := pdf.NewGenerator(cfg.Company.Name)
	exporter := export.NewExcelExporter(logger)

	// HTTP server
	httpLogger := httpserver.NewZapLogger(logger.Sugar())
	handlers := httpserver.NewHandlers(
		coordinator, customerRepo, emailLogRepo, sender, pdfGen, exporter, httpLogger)
	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		SessionCookie:  cfg.Admin.SessionCookie,
		SessionToken:   cfg.Admin.SessionToken,
	}, handlers, httpLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}
