package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-bot/internal/api/http"
	"github.com/spec-kit/helpdesk-bot/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-bot/internal/auth"
	"github.com/spec-kit/helpdesk-bot/internal/config"
	"github.com/spec-kit/helpdesk-bot/internal/conversation"
	"github.com/spec-kit/helpdesk-bot/internal/events"
	"github.com/spec-kit/helpdesk-bot/internal/gateway"
	"github.com/spec-kit/helpdesk-bot/internal/observability"
	"github.com/spec-kit/helpdesk-bot/internal/persistence"
	"github.com/spec-kit/helpdesk-bot/internal/repository"
	"github.com/spec-kit/helpdesk-bot/internal/service"
	"github.com/spec-kit/helpdesk-bot/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	backend, closeBackend, err := openBackend(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store backend", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer closeBackend()

	operators := make(map[int64]bool, len(cfg.Bot.OperatorIDs))
	for _, id := range cfg.Bot.OperatorIDs {
		operators[id] = true
	}
	if len(operators) == 0 {
		logger.Warn("no operators configured; BOT_OPERATOR_IDS is empty")
	}

	store, err := repository.Open(ctx, backend, repository.Options{
		IsOperator: func(id int64) bool { return operators[id] },
		Logger:     logger.Named("store"),
		Metrics:    metrics,
	})
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	audit := service.NewAuditService(dispatcher, logger, cfg.Bot.AuditCapacity)
	audit.RegisterHandlers()

	tokens := auth.NewTokenManager(cfg.Gateway.Secret, cfg.Gateway.TokenTTLMinutes)
	if cfg.Gateway.OutboundURL == "" {
		logger.Warn("GATEWAY_OUTBOUND_URL is empty; replies will fail")
	}

	orchestrator := conversation.New(conversation.Deps{
		Store:                   store,
		Gateway:                 gateway.NewClient(cfg.Gateway, tokens, logger),
		Dispatcher:              dispatcher,
		OperatorIDs:             cfg.Bot.OperatorIDs,
		FallbackStopWorkMessage: cfg.Bot.DefaultStopWorkMessage,
		Location:                cfg.Bot.Location(),
		Logger:                  logger.Named("conversation"),
		Metrics:                 metrics,
	})

	eventWorker := worker.NewEventWorker(orchestrator, cfg.Bot.EventShards, cfg.Bot.EventQueueDepth, cfg.Bot.EventTimeout(), logger)
	eventWorker.Start()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.Store.Backend, store),
		Events:         handlers.NewEventsHandler(eventWorker, handlers.NewValidator(), logger),
		Audit:          handlers.NewAuditHandler(audit),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
		Gatherer:       registry,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("backend", cfg.Store.Backend))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := eventWorker.Stop(shutdownCtx); err != nil {
		logger.Warn("event worker did not drain", zap.Error(err))
	}
}

// openBackend selects the snapshot backend named by STORE_BACKEND.
func openBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (persistence.SnapshotBackend, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Store.MigrationsDir, logger); err != nil {
				pg.Close()
				return nil, nil, err
			}
		}
		return pg, pg.Close, nil
	case config.BackendRedis:
		rdb, err := persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, nil, err
		}
		return rdb, rdb.Close, nil
	default:
		fb, err := persistence.NewFileBackend(cfg.Store.File, logger)
		if err != nil {
			return nil, nil, err
		}
		return fb, func() {}, nil
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
