package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/roomhive/service-reservation/internal/application"
	"github.com/roomhive/service-reservation/internal/cache"
	"github.com/roomhive/service-reservation/internal/common/database"
	"github.com/roomhive/service-reservation/internal/common/health"
	"github.com/roomhive/service-reservation/internal/common/kafka"
	"github.com/roomhive/service-reservation/internal/common/logger"
	"github.com/roomhive/service-reservation/internal/common/middleware"
	"github.com/roomhive/service-reservation/internal/config"
	reservationDomain "github.com/roomhive/service-reservation/internal/domain/reservation"
	"github.com/roomhive/service-reservation/internal/events"
	"github.com/roomhive/service-reservation/internal/handler"
	"github.com/roomhive/service-reservation/internal/payment"
	"github.com/roomhive/service-reservation/internal/repository"
	"github.com/roomhive/service-reservation/internal/retry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-reservation")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-reservation",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.ReservationModel{}, &repository.InventoryDayModel{}); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.URL(), cfg.MigrationsPath, log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	reservationRepo := repository.NewGormReservationRepository(db)
	inventoryRepo := repository.NewGormInventoryRepository(db)

	// Initialize pricing and refund policies
	pricingStrategy := reservationDomain.NewStandardPricingStrategy(
		cfg.PricingConfig.TaxRateBps,
		cfg.PricingConfig.ServiceChargeRateBps,
		cfg.PricingConfig.Currency,
	)
	refundPolicy := reservationDomain.DefaultRefundPolicy()

	// Retrier shared by both services; only transient persistence errors
	// are worth a second attempt.
	retrier := retry.New(retry.DefaultPolicy(), repository.IsTransientPersistenceError, log)

	// Payment gateway client; refunds are skipped when no gateway is configured
	var refundProcessor application.RefundProcessor
	if cfg.PaymentConfig.BaseURL != "" {
		refundProcessor = payment.NewClient(cfg.PaymentConfig.BaseURL, log)
	}

	// Redis read cache (optional)
	dtoCache := cache.New(cfg.RedisConfig.Addr, cfg.RedisConfig.Password, cfg.RedisConfig.DB, log)
	defer func() { _ = dtoCache.Close() }()

	// Initialize application services
	reservationService := application.NewReservationService(
		reservationRepo,
		inventoryRepo,
		pricingStrategy,
		refundPolicy,
		retrier,
		kafkaProducer,
		refundProcessor,
		dtoCache,
		log,
	)
	inventoryService := application.NewInventoryService(inventoryRepo, retrier, log)

	// Initialize and start scheduler event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "reservation-service"
	schedulerConsumer := events.NewSchedulerEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		func(ctx context.Context, id uuid.UUID) error {
			_, err := reservationService.MarkNoShow(ctx, id)
			return err
		},
		log,
	)
	defer func() { _ = schedulerConsumer.Close() }()

	go func() {
		log.Info("starting scheduler event consumer")
		if err := schedulerConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("scheduler event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	reservationHandler := handler.NewReservationHandler(reservationService)
	inventoryHandler := handler.NewInventoryHandler(inventoryService)
	adminHandler := handler.NewAdminHandler(reservationService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-reservation")
	healthHandler.RegisterRoutes(router)

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Register routes
	reservationHandler.RegisterRoutes(&router.RouterGroup)
	inventoryHandler.RegisterRoutes(&router.RouterGroup)
	adminHandler.RegisterRoutes(&router.RouterGroup)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-reservation...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-reservation stopped")
}
