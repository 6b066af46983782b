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
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	billapp "github.com/ispnet/backend/internal/application/billing"
	subapp "github.com/ispnet/backend/internal/application/subscription"
	"github.com/ispnet/backend/internal/infrastructure/cache"
	"github.com/ispnet/backend/internal/infrastructure/config"
	"github.com/ispnet/backend/internal/infrastructure/event"
	"github.com/ispnet/backend/internal/infrastructure/logger"
	"github.com/ispnet/backend/internal/infrastructure/notification"
	"github.com/ispnet/backend/internal/infrastructure/payment"
	"github.com/ispnet/backend/internal/infrastructure/persistence"
	"github.com/ispnet/backend/internal/infrastructure/scheduler"
	"github.com/ispnet/backend/internal/interfaces/http/handler"
	"github.com/ispnet/backend/internal/interfaces/http/middleware"
	"github.com/ispnet/backend/internal/interfaces/http/router"
)

const (
	jobInvoiceGeneration  = "invoice-generation"
	jobPaymentReminders   = "payment-reminders"
	jobOverdueEnforcement = "overdue-enforcement"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting ISP billing backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Business timezone drives billing-day matching and job schedules
	location, err := time.LoadLocation(cfg.Billing.Timezone)
	if err != nil {
		log.Fatal("Invalid billing timezone", zap.String("timezone", cfg.Billing.Timezone), zap.Error(err))
	}

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Shared Redis client for the notification queue and idempotency keys
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()

	// Initialize event serializer and register all event types
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)

	// Outbox: events are saved in the same transaction as the aggregate
	// and relayed to the bus by the background processor
	outboxRepo := event.NewGormOutboxRepository(db.DB)
	outboxPublisher := event.NewOutboxPublisher(eventSerializer)
	eventBus := event.NewInMemoryEventBus(log)

	// Initialize repositories
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB, outboxPublisher)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	subscriptionRepo := persistence.NewGormSubscriptionRepository(db.DB, outboxPublisher)
	packageRepo := persistence.NewGormPackageRepository(db.DB)
	workOrderRepo := persistence.NewGormWorkOrderRepository(db.DB)

	// Payment gateway
	gateway, err := payment.NewMidtransAdapter(&payment.MidtransConfig{
		ServerKey:  cfg.Midtrans.ServerKey,
		ClientKey:  cfg.Midtrans.ClientKey,
		Production: cfg.Midtrans.Production,
	})
	if err != nil {
		log.Fatal("Failed to initialize payment gateway", zap.Error(err))
	}

	// Outbound notifications: queued to Redis, fed by the event relay
	notifier := notification.NewRedisNotifier(redisClient, notification.Config{
		QueuePrefix: cfg.Notification.QueuePrefix,
		MaxRetries:  cfg.Notification.MaxRetries,
		RetryDelay:  cfg.Notification.RetryDelay,
	}, log)
	relay := notification.NewEventRelay(notifier, log)
	eventBus.Subscribe(relay, relay.EventTypes()...)

	idempotencyStore := cache.NewRedisIdempotencyStoreWithClient(redisClient, "billing:reminders")

	// Initialize application services
	invoiceService := billapp.NewInvoiceService(
		invoiceRepo, paymentRepo, subscriptionRepo, packageRepo,
		location, cfg.Billing.MaxConcurrentJobs, log,
	)
	reconciler := billapp.NewReconciler(invoiceRepo, subscriptionRepo, workOrderRepo, gateway, log)
	paymentService := billapp.NewPaymentService(invoiceRepo, gateway, log)
	reminderService := billapp.NewReminderService(invoiceRepo, notifier, idempotencyStore, location, log)
	lifecycleService := subapp.NewLifecycleService(subscriptionRepo, packageRepo, log)
	enforcementService := subapp.NewEnforcementService(invoiceRepo, subscriptionRepo, location, log)

	// Outbox processor relays persisted events to the in-process bus
	processor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, event.OutboxProcessorConfig{
		BatchSize:        cfg.Event.BatchSize,
		PollInterval:     cfg.Event.PollInterval,
		CleanupEnabled:   cfg.Event.CleanupEnabled,
		CleanupRetention: cfg.Event.CleanupRetention,
	}, log)
	if cfg.Event.ProcessorEnabled {
		if err := processor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
	}

	// Daily billing jobs
	billingScheduler := scheduler.NewBillingScheduler(scheduler.Config{
		Location:      location,
		CheckInterval: time.Minute,
		JobTimeout:    cfg.Billing.JobTimeout,
	}, log)
	mustRegister := func(name, at string, run scheduler.JobFunc) {
		if err := billingScheduler.Register(name, at, run); err != nil {
			log.Fatal("Failed to register billing job", zap.String("job", name), zap.Error(err))
		}
	}
	mustRegister(jobInvoiceGeneration, cfg.Billing.GenerationTime, func(ctx context.Context) error {
		_, err := invoiceService.GenerateMonthly(ctx)
		return err
	})
	mustRegister(jobPaymentReminders, cfg.Billing.ReminderTime, func(ctx context.Context) error {
		_, err := reminderService.SendReminders(ctx)
		return err
	})
	mustRegister(jobOverdueEnforcement, cfg.Billing.OverdueTime, func(ctx context.Context) error {
		_, err := enforcementService.EnforceOverdue(ctx)
		return err
	})
	if err := billingScheduler.Start(context.Background()); err != nil {
		log.Fatal("Failed to start billing scheduler", zap.Error(err))
	}

	// Setup Gin
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORS())
	engine.Use(middleware.Secure())
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	engine.GET("/health", healthHandler(db))

	// Gateway retries aggressively on failures; cap per-IP bursts
	webhookLimiter := middleware.NewRateLimiter(60, time.Minute)

	// Handlers
	systemHandler := handler.NewSystemHandler()
	subscriptionHandler := handler.NewSubscriptionHandler(lifecycleService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	paymentHandler := handler.NewPaymentHandler(
		paymentService, reconciler,
		cfg.Midtrans.ClientKey, cfg.Midtrans.Production,
		middleware.WebhookRateLimit(webhookLimiter),
	)
	billingJobHandler := handler.NewBillingJobHandler(billingScheduler)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(systemHandler).
		Register(subscriptionHandler).
		Register(invoiceHandler).
		Register(paymentHandler).
		Register(billingJobHandler)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := billingScheduler.Stop(ctx); err != nil {
		log.Error("Billing scheduler forced to stop", zap.Error(err))
	}
	if cfg.Event.ProcessorEnabled {
		if err := processor.Stop(ctx); err != nil {
			log.Error("Outbox processor forced to stop", zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}

// healthHandler reports liveness including database reachability
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
