package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prestiqx/ticket-ledger/internal/di"
	"github.com/prestiqx/ticket-ledger/internal/metrics"
	"github.com/prestiqx/ticket-ledger/internal/repository"
	"github.com/prestiqx/ticket-ledger/internal/service"
	"github.com/prestiqx/ticket-ledger/pkg/config"
	"github.com/prestiqx/ticket-ledger/pkg/database"
	"github.com/prestiqx/ticket-ledger/pkg/logger"
	"github.com/prestiqx/ticket-ledger/pkg/middleware"
	pkgredis "github.com/prestiqx/ticket-ledger/pkg/redis"
	"github.com/prestiqx/ticket-ledger/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logCfg := &logger.Config{
		Level:       "info",
		ServiceName: cfg.App.Name,
		Development: cfg.App.Environment == "development",
	}
	if cfg.App.Debug {
		logCfg.Level = "debug"
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Ticket Ledger...")

	ctx := context.Background()

	// Tracing
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Warn(fmt.Sprintf("Telemetry init failed, continuing without tracing: %v", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = telemetry.Shutdown(shutdownCtx)
	}()

	if err := metrics.Init(); err != nil {
		appLog.Warn(fmt.Sprintf("Metrics init failed: %v", err))
	}

	// Database
	db, err := database.NewPostgres(ctx, &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   1 * time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	appLog.Info("Database connected")

	// Redis holds the live allocation counters; fall back to the
	// in-process store for single-node development setups
	var allocations repository.AllocationStore
	var redisClient *pkgredis.Client
	redisClient, err = pkgredis.NewClient(ctx, &pkgredis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		MaxRetries:    3,
		RetryInterval: 100 * time.Millisecond,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Redis connection failed, using in-process allocation store: %v", err))
		redisClient = nil
		allocations = repository.NewMemoryAllocationStore()
	} else {
		defer redisClient.Close()
		store := repository.NewRedisAllocationStore(redisClient)
		if err := store.LoadScripts(ctx); err != nil {
			appLog.Warn(fmt.Sprintf("Failed to pre-load Lua scripts: %v", err))
		}
		allocations = store
		appLog.Info("Redis connected, Lua scripts loaded")
	}

	// Kafka publisher for the downstream event stream
	var publisher service.LedgerPublisher
	if cfg.Kafka.Enabled {
		publisher, err = service.NewKafkaLedgerPublisher(ctx, &service.LedgerPublisherConfig{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.Topic,
			ServiceName: cfg.App.Name,
			ClientID:    cfg.Kafka.ClientID,
		})
		if err != nil {
			appLog.Warn(fmt.Sprintf("Kafka connection failed, using no-op publisher: %v", err))
			publisher = service.NewNoOpLedgerPublisher()
		} else {
			appLog.Info("Kafka ledger publisher connected")
		}
	} else {
		publisher = service.NewNoOpLedgerPublisher()
	}
	defer publisher.Close()

	// Payment transfers
	var transfers service.TransferClient
	switch cfg.Purchase.TransferMode {
	case "mock":
		transfers = service.NewMockTransferClient(service.DefaultMockTransferConfig())
	default:
		transfers = service.NewNoopTransferClient()
	}

	container := di.NewContainer(&di.ContainerConfig{
		DB:              db,
		Redis:           redisClient,
		EventRepo:       repository.NewPostgresEventRepository(db.Pool()),
		TicketRepo:      repository.NewPostgresTicketRepository(db.Pool()),
		OrganizerRepo:   repository.NewPostgresOrganizerRepository(db.Pool()),
		Allocations:     allocations,
		LedgerPublisher: publisher,
		TransferClient:  transfers,
		FeeRecipient:    cfg.Purchase.FeeRecipient,
	})

	if cfg.App.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(telemetry.TracingMiddleware())

	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	auth := middleware.AuthMiddleware(cfg.JWT.Secret)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/status", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "ok",
				"version": cfg.App.Version,
				"service": cfg.App.Name,
			})
		})

		organizers := v1.Group("/organizers")
		{
			organizers.POST("/authorize", auth, middleware.RequireRole(middleware.RoleAdmin), container.OrganizerHandler.Authorize)
			organizers.GET("/:address", container.OrganizerHandler.GetOrganizer)
		}

		events := v1.Group("/events")
		{
			events.POST("", auth, container.EventHandler.CreateEvent)
			events.POST("/:id/tiers", auth, container.EventHandler.AddTier)
			events.POST("/:id/publish", auth, container.EventHandler.PublishEvent)
			events.POST("/:id/end", auth, container.EventHandler.EndEvent)

			events.GET("", container.EventHandler.ListEvents)
			events.GET("/:id", container.EventHandler.GetEvent)
			events.GET("/:id/tickets", container.PurchaseHandler.GetTicketsByEvent)
		}

		tickets := v1.Group("/tickets")
		{
			tickets.POST("/buy", auth, container.PurchaseHandler.BuyTicket)
			tickets.GET("/owner/:address", container.PurchaseHandler.GetTicketsByOwner)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		appLog.Info(fmt.Sprintf("Ticket Ledger listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}
