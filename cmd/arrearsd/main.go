package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel"

	"github.com/zedfin/arrears/internal/application/dto"
	"github.com/zedfin/arrears/internal/application/usecase"
	"github.com/zedfin/arrears/internal/domain/service"
	"github.com/zedfin/arrears/internal/infrastructure/config"
	"github.com/zedfin/arrears/internal/infrastructure/kafka"
	"github.com/zedfin/arrears/internal/infrastructure/messaging"
	pgRepo "github.com/zedfin/arrears/internal/infrastructure/postgres"
	"github.com/zedfin/arrears/internal/presentation/rest"
	pkgkafka "github.com/zedfin/arrears/pkg/kafka"
	"github.com/zedfin/arrears/pkg/observability"
	pkgpostgres "github.com/zedfin/arrears/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg := config.Load()
	cfg.Validate()

	// Initialize structured logger via shared observability package.
	logger := observability.InitLogger(observability.LogConfig{
		Level:  cfg.Observability.LogLevel,
		Format: cfg.Observability.LogFormat,
	})
	slog.SetDefault(logger)

	logger.Info("starting arrears-service", "http_port", cfg.HTTPPort)

	// Initialize tracing.
	if cfg.Observability.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: cfg.ServiceName,
			Endpoint:    cfg.Observability.OTLPEndpoint,
			Insecure:    cfg.Observability.OTLPInsecure,
		})
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			defer func() { _ = shutdown(ctx) }() //nolint:errcheck // best-effort tracer shutdown
		}
	}

	// Metrics.
	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	otel.SetMeterProvider(meterProvider)

	// Database connection.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pgCfg := pkgpostgres.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
		MaxConns: int32(cfg.DB.MaxConns),
		MinConns: int32(cfg.DB.MinConns),
	}
	pool, err := pkgpostgres.NewPool(dbCtx, pgCfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	// Run database migrations.
	if migErr := pkgpostgres.RunMigrations(pgCfg.DSN(), "file://"+cfg.MigrationsDir); migErr != nil {
		logger.Warn("migration warning", "error", migErr)
	}

	// Wire infrastructure adapters.
	loanRepo := pgRepo.NewLoanRepo(pool)
	paymentRepo := pgRepo.NewPaymentRepo(pool)
	classificationRepo := pgRepo.NewClassificationRepo(pool)
	caseRepo := pgRepo.NewCaseRepo(pool)
	outboxRepo := pgRepo.NewOutboxRepo(pool)
	reportRepo := pgRepo.NewReportRepo(pool)
	store := pgRepo.NewStore(pool)

	kafkaProducer := pkgkafka.NewProducer(pkgkafka.Config{
		Brokers: cfg.Kafka.Brokers,
	})
	defer kafkaProducer.Close()
	publisher := kafka.NewKafkaEventPublisher(kafkaProducer, cfg.Kafka.Topic, logger)

	// Domain policies.
	classifier := service.NewClassifier(service.DefaultClassificationPolicy())
	escalator := service.NewEscalator(service.DefaultEscalationPolicy())

	// Wire use cases.
	originateUC := usecase.NewOriginateLoanUseCase(store)
	getLoanUC := usecase.NewGetLoanUseCase(loanRepo)
	evaluateUC := usecase.NewEvaluateLoanUseCase(loanRepo, caseRepo, store, classifier, escalator)
	recordPaymentUC := usecase.NewRecordPaymentUseCase(loanRepo, paymentRepo, caseRepo, store, classifier, escalator)
	reconcileUC := usecase.NewReconcilePaymentUseCase(paymentRepo)
	listPaymentsUC := usecase.NewListPaymentsUseCase(paymentRepo)
	listClassificationsUC := usecase.NewListClassificationsUseCase(classificationRepo)
	listUnreconciledUC := usecase.NewListUnreconciledUseCase(paymentRepo)
	getCaseUC := usecase.NewGetCaseUseCase(caseRepo)
	closeCaseUC := usecase.NewCloseCaseUseCase(caseRepo, store)
	sweepUC := usecase.NewSweepPortfolioUseCase(loanRepo, evaluateUC, cfg.Sweep.Workers, logger)
	dashboardUC := usecase.NewGetDashboardUseCase(reportRepo, service.DefaultClassificationPolicy())
	recoveryUC := usecase.NewGetRecoveryReportUseCase(reportRepo)

	// Outbox relay.
	relay := messaging.NewOutboxRelay(outboxRepo, publisher, cfg.Outbox.PollInterval, cfg.Outbox.BatchSize, logger)
	go relay.Start(ctx)

	// Nightly portfolio sweep.
	scheduler := cron.New()
	if _, cronErr := scheduler.AddFunc(cfg.Sweep.Schedule, func() {
		sweepCtx, sweepCancel := context.WithTimeout(ctx, 2*time.Hour)
		defer sweepCancel()
		if _, sweepErr := sweepUC.Execute(sweepCtx, dto.SweepRequest{}); sweepErr != nil {
			logger.Error("scheduled sweep failed", "error", sweepErr)
		}
	}); cronErr != nil {
		logger.Error("invalid sweep schedule", "schedule", cfg.Sweep.Schedule, "error", cronErr)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// HTTP server.
	router := mux.NewRouter()
	metricsMW, err := rest.MetricsMiddleware(meterProvider.Meter(cfg.ServiceName))
	if err != nil {
		logger.Error("failed to initialize request metrics", "error", err)
		os.Exit(1)
	}
	router.Use(metricsMW)
	apiHandler := rest.NewHandler(
		originateUC, getLoanUC, evaluateUC, recordPaymentUC, reconcileUC,
		listPaymentsUC, listClassificationsUC, listUnreconciledUC,
		getCaseUC, closeCaseUC, sweepUC, dashboardUC, recoveryUC,
		logger,
	)
	apiHandler.RegisterRoutes(router)
	rest.NewHealthHandler(pool).RegisterRoutes(router)
	router.Handle("/metrics", metricsHandler).Methods(http.MethodGet)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for shutdown signal.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	// Graceful shutdown.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	// Drain what the relay can before the process exits.
	if err := relay.DrainOnce(shutdownCtx); err != nil {
		logger.Warn("final outbox drain failed", "error", err)
	}

	logger.Info("arrears-service stopped")
}
