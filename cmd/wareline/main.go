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
	"golang.org/x/sync/errgroup"

	"github.com/wareline/wareline/internal/app"
	"github.com/wareline/wareline/internal/damage"
	"github.com/wareline/wareline/internal/dispatch"
	"github.com/wareline/wareline/internal/journal"
	"github.com/wareline/wareline/internal/notify"
	"github.com/wareline/wareline/internal/observability"
	"github.com/wareline/wareline/internal/platform/cache"
	"github.com/wareline/wareline/internal/platform/db"
	"github.com/wareline/wareline/internal/shared"
	"github.com/wareline/wareline/internal/timeline"
	"github.com/wareline/wareline/internal/transfer"
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
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, stock cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}()

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(pool)
	movementJournal := journal.New(pool, logger)

	notifier := notify.NewQueue(asynq.RedisClientOpt{Addr: cfg.RedisAddr}, logger)
	defer func() { _ = notifier.Close() }()

	dispatchRepo := dispatch.NewRepository(pool)
	dispatchService := dispatch.NewService(dispatchRepo, movementJournal, auditLogger, notifier, logger)

	transferRepo := transfer.NewRepository(pool)
	transferService := transfer.NewService(transferRepo, movementJournal, auditLogger, notifier, logger)
	dispatchService.SetTransfers(transferService)

	damageRepo := damage.NewRepository(pool)
	damageService := damage.NewService(damageRepo, movementJournal, auditLogger, notifier, logger)

	var stockCache *timeline.Cache
	if redisClient != nil {
		stockCache = timeline.NewCache(redisClient, cfg.StockCacheTTL)
	}
	timelineRepo := timeline.NewRepository(pool)
	timelineService := timeline.NewService(timelineRepo, stockCache, logger, cfg.TimelineDefaultLimit)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		DispatchHandler: dispatch.NewHandler(logger, dispatchService, metrics),
		TransferHandler: transfer.NewHandler(logger, transferService, metrics),
		DamageHandler:   damage.NewHandler(logger, damageService, metrics),
		TimelineHandler: timeline.NewHandler(logger, timelineService),
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}
