package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/brickline-erp/brickline-erp/internal/app"
	"github.com/brickline-erp/brickline-erp/internal/masterdata"
	"github.com/brickline-erp/brickline-erp/internal/platform/cache"
	"github.com/brickline-erp/brickline-erp/internal/platform/db"
	"github.com/brickline-erp/brickline-erp/internal/procurement"
	"github.com/brickline-erp/brickline-erp/internal/projects"
	"github.com/brickline-erp/brickline-erp/internal/reports"
	"github.com/brickline-erp/brickline-erp/internal/shared"
	"github.com/brickline-erp/brickline-erp/internal/stocknotes"
	"github.com/brickline-erp/brickline-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, report cache degraded", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)
	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)

	projectsService := projects.NewService(projects.NewRepository(pool), auditLogger, reportCache)
	masterdataService := masterdata.NewService(masterdata.NewRepository(pool))
	procurementService := procurement.NewService(procurement.NewRepository(pool), auditLogger, reportCache)
	stockNotesRepo := stocknotes.NewRepository(ctx, pool, logger)
	stockNotesService := stocknotes.NewService(logger, stockNotesRepo, procurementService, auditLogger, reportCache)
	reportsService := reports.NewService(logger, stockNotesRepo, masterdata.NewRepository(pool), procurement.NewRepository(pool), reportCache)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() { _ = inspector.Close() }()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		ProjectsHandler:    projects.NewHandler(logger, projectsService),
		MasterDataHandler:  masterdata.NewHandler(logger, masterdataService),
		ProcurementHandler: procurement.NewHandler(logger, procurementService),
		StockNotesHandler:  stocknotes.NewHandler(logger, stockNotesService),
		ReportsHandler:     reports.NewHandler(logger, reportsService),
		JobHandler:         jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", slog.Any("error", err))
	}
}
