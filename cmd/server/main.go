package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/adscenter/reports/internal/config"
	"github.com/adscenter/reports/internal/repository/memory"
	"github.com/adscenter/reports/internal/repository/mongodb"
	"github.com/adscenter/reports/internal/repository/sheets"
	"github.com/adscenter/reports/internal/scheduler"
	"github.com/adscenter/reports/internal/server/handlers"
	"github.com/adscenter/reports/internal/server/router"
	authsvc "github.com/adscenter/reports/internal/service/auth"
	exportsvc "github.com/adscenter/reports/internal/service/export"
	reportsvc "github.com/adscenter/reports/internal/service/reports"
	"github.com/adscenter/reports/pkg/clients/webhook"
	"github.com/adscenter/reports/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	tokenSecret := cfg.Auth.TokenSecret
	if tokenSecret == "" {
		tokenSecret = randomSecret()
		baseLogger.Warn("AUTH_TOKEN_SECRET not set, using a random secret; sessions will not survive restarts")
	}

	lockoutPolicy := authsvc.DefaultLockoutPolicy()

	var (
		reportRepo  reportsvc.Repository
		userRepo    authsvc.UserRepository
		lockout     authsvc.LockoutStore
		exportRepo  exportsvc.Lister
		mongoClient interface{ Disconnect(context.Context) error }
	)

	if cfg.MongoDB.URI != "" {
		client, err := mongodb.Connect(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if err != nil {
			baseLogger.Fatal("failed to connect to mongodb", zap.Error(err))
		}
		mongoClient = client

		repo, err := mongodb.NewReportRepository(context.Background(), client, cfg.MongoDB.DBName, baseLogger.Named("repo.reports"))
		if err != nil {
			baseLogger.Fatal("failed to init report repository", zap.Error(err))
		}
		users, err := mongodb.NewUserRepository(context.Background(), client, cfg.MongoDB.DBName, baseLogger.Named("repo.users"))
		if err != nil {
			baseLogger.Fatal("failed to init user repository", zap.Error(err))
		}
		attempts, err := mongodb.NewLockoutStore(context.Background(), client, cfg.MongoDB.DBName, lockoutPolicy, baseLogger.Named("repo.lockout"))
		if err != nil {
			baseLogger.Fatal("failed to init lockout store", zap.Error(err))
		}

		reportRepo, userRepo, lockout, exportRepo = repo, users, attempts, repo
	} else {
		baseLogger.Warn("MONGODB_URI not set, running with in-memory storage; data will not persist")
		repo := memory.NewReportRepository()
		reportRepo, userRepo, exportRepo = repo, memory.NewUserRepository(), repo
		lockout = memory.NewLockoutStore(lockoutPolicy)
	}

	if mongoClient != nil {
		defer func() {
			if err := mongoClient.Disconnect(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
	}

	var notifier reportsvc.Notifier
	if cfg.Webhook.URL != "" {
		notifier = webhook.NewClient(cfg.Webhook.URL)
		baseLogger.Info("report webhook notifications enabled")
	}

	reportService := reportsvc.NewService(reportRepo, notifier, baseLogger.Named("svc.reports"))
	exportService := exportsvc.NewService(exportRepo, baseLogger.Named("svc.export"))

	tokens := authsvc.NewTokenIssuer(authsvc.DefaultTokenConfig(tokenSecret))
	authService := authsvc.NewService(userRepo, lockout, tokens, baseLogger.Named("svc.auth"))

	if err := authService.EnsureAdminUser(context.Background(), cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		baseLogger.Error("failed to ensure admin user", zap.Error(err))
	}

	reportHandler := handlers.NewReportHandler(reportService, exportService, baseLogger.Named("handlers.reports"))
	authHandler := handlers.NewAuthHandler(authService, baseLogger.Named("handlers.auth"))
	engine := router.New(reportHandler, authHandler, baseLogger.Named("router"))

	if cfg.Export.Dir != "" {
		var sheetExporter sheets.Exporter
		if cfg.SheetsEnabled() {
			exporter, err := sheets.NewGoogleSheetExporter(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
			if err != nil {
				baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
			}
			sheetExporter = exporter
		}

		sched := scheduler.NewScheduler(cfg.Export, exportService, reportService, sheetExporter, baseLogger.Named("scheduler"))
		sched.Start()
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
