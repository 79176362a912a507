package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	billingapp "github.com/billhub/backend/internal/application/billing"
	identityapp "github.com/billhub/backend/internal/application/identity"
	printingapp "github.com/billhub/backend/internal/application/printing"
	reportapp "github.com/billhub/backend/internal/application/report"
	"github.com/billhub/backend/internal/infrastructure/auth"
	"github.com/billhub/backend/internal/infrastructure/config"
	"github.com/billhub/backend/internal/infrastructure/email"
	"github.com/billhub/backend/internal/infrastructure/logger"
	"github.com/billhub/backend/internal/infrastructure/persistence"
	infraprinting "github.com/billhub/backend/internal/infrastructure/printing"
	"github.com/billhub/backend/internal/infrastructure/scheduler"
	"github.com/billhub/backend/internal/infrastructure/storage"
	"github.com/billhub/backend/internal/infrastructure/telemetry"
	"github.com/billhub/backend/internal/interfaces/http/handler"
	"github.com/billhub/backend/internal/interfaces/http/middleware"
	"github.com/billhub/backend/internal/interfaces/http/router"
)

const (
	shutdownTimeout = 30 * time.Second

	// maxRequestBody caps JSON payloads; invoices with many line items
	// stay well below this
	maxRequestBody = 4 << 20
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port))

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	// Telemetry
	ctx := context.Background()
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shut down tracer provider", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry.Enabled, log); err != nil {
		log.Error("Failed to register database tracing", zap.Error(err))
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	reportRepo := persistence.NewGormBillingReportRepository(db.DB)

	// Token infrastructure
	jwtService := auth.NewJWTService(cfg.JWT)
	var blacklist auth.TokenBlacklist
	if cfg.Redis.Enabled {
		redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		blacklist = redisBlacklist
		log.Info("Token blacklist backed by Redis",
			zap.String("host", cfg.Redis.Host), zap.Int("port", cfg.Redis.Port))
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
		log.Info("Token blacklist running in-memory; revocations are lost on restart")
	}

	// Application services
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)
	customerService := billingapp.NewCustomerService(customerRepo)
	invoiceService := billingapp.NewInvoiceService(invoiceRepo, customerRepo, log)
	paymentService := billingapp.NewPaymentService(paymentRepo, invoiceRepo, log)
	reportService := reportapp.NewReportService(reportRepo)

	// PDF rendering and archival
	var printingService *printingapp.Service
	if cfg.Printing.Enabled {
		renderer, err := infraprinting.NewChromedpRenderer(&infraprinting.ChromedpConfig{
			DefaultTimeout: cfg.Printing.Timeout,
			ExecPath:       cfg.Printing.ChromePath,
			RenderDelay:    cfg.Printing.RenderDelay,
			NoSandbox:      true,
			Logger:         log,
		})
		if err != nil {
			log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
		}
		defer func() {
			if err := renderer.Close(); err != nil {
				log.Error("Failed to close PDF renderer", zap.Error(err))
			}
		}()

		var archive printingapp.DocumentArchive
		if cfg.Storage.Enabled {
			store, err := storage.NewS3DocumentStore(&cfg.Storage)
			if err != nil {
				log.Fatal("Failed to initialize document storage", zap.Error(err))
			}
			archive = store
			log.Info("Invoice PDFs archived to object storage",
				zap.String("bucket", cfg.Storage.Bucket))
		}

		printingService = printingapp.NewService(invoiceRepo, customerRepo, userRepo, renderer, archive, log)
	} else {
		log.Info("PDF rendering disabled")
	}

	// Overdue payment reminders
	if cfg.Worker.ReminderEnabled {
		if !cfg.SMTP.Enabled {
			log.Warn("Payment reminders enabled but SMTP is not configured; reminders will not run")
		} else {
			mailer := email.NewSMTPSender(cfg.SMTP, log)
			reminderScheduler := scheduler.NewReminderScheduler(invoiceRepo, customerRepo, mailer,
				scheduler.ReminderSchedulerConfig{
					Enabled:    cfg.Worker.OverdueCheckEnabled,
					Interval:   cfg.Worker.OverdueCheckInterval,
					JobTimeout: 5 * time.Minute,
				}, log)
			reminderScheduler.Start(ctx)
			defer reminderScheduler.Stop()
		}
	}

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	customerHandler := handler.NewCustomerHandler(customerService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, printingService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	reportHandler := handler.NewReportHandler(reportService)
	systemHandler := handler.NewSystemHandler(db)

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(maxRequestBody))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
	}

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = blacklist
	jwtConfig.Logger = log
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	engine.GET("/health", systemHandler.Health)

	// Routes
	authGroup := router.NewDomainGroup("auth", "/auth").
		POST("/register", authHandler.Register).
		POST("/login", authHandler.Login).
		POST("/refresh", authHandler.Refresh).
		POST("/logout", authHandler.Logout).
		GET("/me", authHandler.Me)

	customerGroup := router.NewDomainGroup("customers", "/customers").
		POST("", customerHandler.Create).
		GET("", customerHandler.List).
		GET("/:id", customerHandler.Get).
		PUT("/:id", customerHandler.Update).
		DELETE("/:id", customerHandler.Delete)

	invoiceGroup := router.NewDomainGroup("invoices", "/invoices").
		POST("", invoiceHandler.Create).
		GET("", invoiceHandler.List).
		GET("/:id", invoiceHandler.Get).
		PUT("/:id", invoiceHandler.Update).
		POST("/:id/cancel", invoiceHandler.Cancel).
		DELETE("/:id", invoiceHandler.Delete).
		GET("/:id/pdf", invoiceHandler.DownloadPDF).
		GET("/:id/pdf/url", invoiceHandler.ArchivedPDFURL).
		POST("/:id/payments", paymentHandler.Record).
		GET("/:id/payments", paymentHandler.ListForInvoice)

	paymentGroup := router.NewDomainGroup("payments", "/payments").
		DELETE("/:id", paymentHandler.Delete)

	reportGroup := router.NewDomainGroup("reports", "/reports").
		GET("/customers", reportHandler.Customers).
		GET("/invoices", reportHandler.Invoices).
		GET("/payments", reportHandler.Payments).
		GET("/payments-per-period", reportHandler.PaymentsPerPeriod).
		GET("/dashboard", reportHandler.Dashboard)

	systemGroup := router.NewDomainGroup("system", "/system").
		GET("/info", systemHandler.Info)

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(authGroup).
		Register(customerGroup).
		Register(invoiceGroup).
		Register(paymentGroup).
		Register(reportGroup).
		Register(systemGroup).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shut down", zap.Error(err))
	}

	log.Info("Server exited")
}
