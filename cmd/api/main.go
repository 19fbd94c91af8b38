package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pressgate/broker-api/docs"
	"github.com/pressgate/broker-api/internal/auth"
	"github.com/pressgate/broker-api/internal/config"
	"github.com/pressgate/broker-api/internal/database"
	"github.com/pressgate/broker-api/internal/erp"
	"github.com/pressgate/broker-api/internal/http/handler"
	"github.com/pressgate/broker-api/internal/http/middleware"
	"github.com/pressgate/broker-api/internal/http/router"
	"github.com/pressgate/broker-api/internal/invoice"
	"github.com/pressgate/broker-api/internal/jobs"
	"github.com/pressgate/broker-api/internal/logger"
	"github.com/pressgate/broker-api/internal/repository"
	"github.com/pressgate/broker-api/internal/service"
	"github.com/pressgate/broker-api/internal/storage"
)

// @title Pressgate Broker API
// @version 1.0
// @description Brokerage API for print job routing, pricing and settlement

// @contact.name API Support
// @contact.email support@pressgate.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description API key for system operations

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	if basicCfg.Server.EnableSwagger {
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Full configuration with secrets. In development secrets come from the
	// environment, in staging/production from Azure Key Vault.
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Schema migrations run via cmd/migrate in deployed environments
	if cfg.App.Environment == "development" || cfg.App.Environment == "local" {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to run auto-migration: %w", err)
		}
	}

	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// ERP link is optional and read-only. The API runs without it; only
	// reconciliation is unavailable.
	erpClient, err := erp.NewClient(&cfg.ERP, log)
	if err != nil {
		log.Warn("ERP connection failed, continuing without it", zap.Error(err))
		erpClient = nil
	}

	// Repositories
	customerRepo := repository.NewCustomerRepository(db)
	vendorRepo := repository.NewVendorRepository(db)
	jobRepo := repository.NewJobRepository(db)
	lineItemRepo := repository.NewLineItemRepository(db)
	poRepo := repository.NewPurchaseOrderRepository(db)
	splitRepo := repository.NewProfitSplitRepository(db)
	componentRepo := repository.NewJobComponentRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	fileRepo := repository.NewArtworkFileRepository(db)
	userRepo := repository.NewUserRepository(db)
	sequenceRepo := repository.NewNumberSequenceRepository(db)

	// Services
	dispatcher := invoice.NewLogDispatcher(log, cfg.Invoicing.FromAddress)
	jobService := service.NewJobService(jobRepo, lineItemRepo, poRepo, splitRepo, customerRepo, vendorRepo, sequenceRepo, activityRepo, log, db)
	paymentService := service.NewPaymentService(jobRepo, activityRepo, dispatcher, log)
	lifecycleService := service.NewLifecycleService(jobRepo, activityRepo, log)
	readinessService := service.NewReadinessService(jobRepo, componentRepo, vendorRepo, activityRepo, log)
	lineItemService := service.NewLineItemService(lineItemRepo, jobRepo, activityRepo, jobService, log)
	poService := service.NewPurchaseOrderService(poRepo, jobRepo, componentRepo, vendorRepo, activityRepo, jobService, log)
	vendorService := service.NewVendorService(vendorRepo, log)
	customerService := service.NewCustomerService(customerRepo, log)
	activityService := service.NewActivityService(activityRepo, log)
	fileService := service.NewFileService(fileRepo, jobRepo, fileStorage, log)
	userService := service.NewUserService(userRepo, log)
	reconcileService := service.NewReconcileService(jobRepo, erpClient, log)

	// Middleware
	verifier := auth.NewTokenVerifier(cfg.Auth.SigningKey, cfg.Auth.Issuer)
	authMiddleware := auth.NewMiddleware(verifier, cfg.ApiKey.Value, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Handlers
	jobHandler := handler.NewJobHandler(jobService, log)
	paymentHandler := handler.NewPaymentHandler(paymentService, log)
	lifecycleHandler := handler.NewLifecycleHandler(lifecycleService, log)
	readinessHandler := handler.NewReadinessHandler(readinessService, log)
	lineItemHandler := handler.NewLineItemHandler(lineItemService, log)
	poHandler := handler.NewPurchaseOrderHandler(poService, log)
	vendorHandler := handler.NewVendorHandler(vendorService, log)
	customerHandler := handler.NewCustomerHandler(customerService, log)
	activityHandler := handler.NewActivityHandler(activityService, log)
	pricingHandler := handler.NewPricingHandler(log)
	fileHandler := handler.NewFileHandler(fileService, cfg.Storage.MaxUploadSizeMB, log)
	reconcileHandler := handler.NewReconcileHandler(reconcileService, log)
	authHandler := handler.NewAuthHandler(userService, log)

	rt := router.NewRouter(
		cfg,
		log,
		db,
		erpClient,
		authMiddleware,
		rateLimiter,
		jobHandler,
		paymentHandler,
		lifecycleHandler,
		readinessHandler,
		lineItemHandler,
		poHandler,
		vendorHandler,
		customerHandler,
		activityHandler,
		pricingHandler,
		fileHandler,
		reconcileHandler,
		authHandler,
	)

	// Background reconciliation against the accounting system
	var scheduler *jobs.Scheduler
	if erpClient.IsEnabled() && cfg.ERP.ReconcileSchedule != "" {
		scheduler = jobs.NewScheduler(log)
		if err := jobs.RegisterReconcileJob(
			scheduler,
			reconcileService,
			log,
			cfg.ERP.ReconcileSchedule,
			cfg.ERP.QueryTimeoutDuration(),
		); err != nil {
			log.Error("Failed to register reconcile job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with reconcile job",
				zap.String("cron_expr", cfg.ERP.ReconcileSchedule),
			)
		}
	} else {
		log.Info("Periodic reconciliation disabled",
			zap.Bool("erp_enabled", erpClient.IsEnabled()),
			zap.String("schedule", cfg.ERP.ReconcileSchedule),
		)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			stopCtx := scheduler.Stop()
			<-stopCtx.Done()
			log.Info("Scheduler stopped")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if erpClient.IsEnabled() {
			if err := erpClient.Close(); err != nil {
				log.Warn("Error closing ERP connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
