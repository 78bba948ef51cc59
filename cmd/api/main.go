package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/fieldforce-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/fieldforce-backend-go/internal/service/attendance"
	feedService "github.com/cmlabs-hris/fieldforce-backend-go/internal/service/feed"
	officeService "github.com/cmlabs-hris/fieldforce-backend-go/internal/service/office"
	payrollService "github.com/cmlabs-hris/fieldforce-backend-go/internal/service/payroll"
	reportService "github.com/cmlabs-hris/fieldforce-backend-go/internal/service/report"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), cfg.Database.MaxConns)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	tx := postgresql.NewTransactor(db)
	officeRepo := postgresql.NewOfficeRepository(db)
	mapRepo := postgresql.NewAttendanceMapRepository(db)
	addendumRepo := postgresql.NewAddendumRepository(db)
	feedRepo := postgresql.NewFeedRepository(db)
	voucherRepo := postgresql.NewVoucherRepository(db)
	claimRepo := postgresql.NewClaimRepository(db)

	var fileStorage storage.FileStorage
	var files http.Handler
	switch cfg.Storage.Type {
	case "local":
		local, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
		if err != nil {
			return fmt.Errorf("failed to initialize local storage: %w", err)
		}
		fileStorage = local
		files = http.FileServer(http.Dir(local.BasePath()))
	case "s3":
		fileStorage, err = storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:    cfg.Storage.S3Bucket,
			Region:    cfg.Storage.S3Region,
			Endpoint:  cfg.Storage.S3Endpoint,
			AccessKey: cfg.Storage.S3AccessKey,
			SecretKey: cfg.Storage.S3SecretKey,
			PublicURL: cfg.Storage.S3PublicURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize s3 storage: %w", err)
		}
	default:
		return fmt.Errorf("unsupported storage type %q", cfg.Storage.Type)
	}

	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		return fmt.Errorf("failed to initialize email service: %w", err)
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	feedSvc := feedService.NewFeedService(feedRepo, sse.NewHub())
	payrollSvc := payrollService.NewPayrollService(tx, officeRepo, mapRepo, voucherRepo, claimRepo)
	aggregator := attendanceService.NewAggregatorService(
		tx,
		officeRepo,
		mapRepo,
		addendumRepo,
		feedRepo,
		feedSvc,
		payrollSvc,
		attendanceService.Config{
			ConflictRetries: cfg.Jobs.ConflictRetries,
			ChunkSize:       cfg.Jobs.BatchChunkSize,
		},
	)
	officeSvc := officeService.NewOfficeService(officeRepo)
	reportSvc := reportService.NewReportService(payrollSvc, fileStorage, emailService)

	if cfg.Jobs.CronEnabled {
		scheduler := cron.NewScheduler(cfg.Jobs.JobTimeout)
		cron.NewAggregationJobs(aggregator, payrollSvc, cfg.Jobs.AddendumStaleAfter).RegisterJobs(scheduler)
		scheduler.Start()
		defer scheduler.Stop()
	}

	router := appHTTP.NewRouter(ctx, cfg.App, JWTService, appHTTP.Handlers{
		Trigger:    appHTTP.NewTriggerHandler(aggregator, payrollSvc, officeSvc),
		Attendance: appHTTP.NewAttendanceHandler(aggregator),
		Payroll:    appHTTP.NewPayrollHandler(payrollSvc),
		Report:     appHTTP.NewReportHandler(reportSvc),
		Update:     appHTTP.NewUpdateHandler(feedSvc, JWTService),
		Files:      files,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Cancelled on shutdown so open update streams return.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env, "version", cfg.App.Version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
