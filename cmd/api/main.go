package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/support-portal/internal/api/http"
	"github.com/spec-kit/support-portal/internal/api/http/handlers"
	"github.com/spec-kit/support-portal/internal/auth"
	"github.com/spec-kit/support-portal/internal/config"
	"github.com/spec-kit/support-portal/internal/engine"
	"github.com/spec-kit/support-portal/internal/events"
	"github.com/spec-kit/support-portal/internal/genai"
	"github.com/spec-kit/support-portal/internal/notify"
	"github.com/spec-kit/support-portal/internal/observability"
	"github.com/spec-kit/support-portal/internal/repository"
	"github.com/spec-kit/support-portal/internal/service"
	"github.com/spec-kit/support-portal/internal/store"
	"github.com/spec-kit/support-portal/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	records, closeStore, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to init record store", zap.Error(err))
	}
	defer closeStore()

	clientRepo := repository.NewClientRepository(records)
	specialistRepo := repository.NewSpecialistRepository(records)
	sessionRepo := repository.NewSessionRepository(records)

	verifier := auth.NewVerifier(cfg.Auth.PasswordScheme, cfg.Auth.BcryptCost)

	directoryService := service.NewDirectoryService(service.DirectoryDependencies{
		ClientRepo:     clientRepo,
		SpecialistRepo: specialistRepo,
		Records:        records,
		Verifier:       verifier,
	}, logger)
	if err := directoryService.SeedIfEmpty(ctx); err != nil {
		logger.Fatal("failed to seed directory data", zap.Error(err))
	}

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		ClientRepo:     clientRepo,
		SpecialistRepo: specialistRepo,
		Verifier:       verifier,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), clientRepo, specialistRepo)

	dispatcher := events.NewInMemoryDispatcher()
	ledgerService := service.NewLedgerService(sessionRepo, dispatcher)

	var notifier notify.Notifier = notify.NopNotifier{}
	if cfg.Telegram.Configured() {
		notifier = notify.NewTelegramNotifier(cfg.Telegram, logger)
	}
	notificationService := service.NewNotificationService(dispatcher, notifier, cfg.Telegram.Configured(), logger)
	worker.StartNotificationWorker(notificationService)

	geminiClient := genai.NewClient(cfg.Gemini, logger)
	factory := func(ctx context.Context) (engine.ModelSession, error) {
		session, err := geminiClient.StartSession(ctx)
		if err != nil {
			return nil, err
		}
		return session, nil
	}

	chatEngine := engine.NewEngine(factory, ledgerService, dispatcher, engine.Config{
		HandoffDelay:   cfg.Chat.HandoffDelay(),
		PersistAborted: cfg.Chat.PersistAborted,
	}, logger)
	registry := engine.NewRegistry()

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, records),
		Auth:           handlers.NewAuthHandler(authService, directoryService),
		Clients:        handlers.NewClientsHandler(directoryService),
		Specialists:    handlers.NewSpecialistsHandler(directoryService),
		Sessions:       handlers.NewSessionsHandler(ledgerService),
		Chat:           handlers.NewChatHandler(chatEngine, registry),
		Dev:            handlers.NewDevHandler(directoryService, metrics),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// buildStore selects the record store driver and returns a cleanup func.
func buildStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.RecordStore, func(), error) {
	switch strings.ToLower(cfg.Store.Driver) {
	case "postgres":
		pg, err := store.NewPostgresStore(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Postgres.RunMigrations {
			if err := store.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, nil, err
			}
		}
		return pg, pg.Close, nil
	case "redis":
		rs := store.NewRedisStore(cfg.Redis, cfg.Store.KeyPrefix, logger)
		return rs, rs.Close, nil
	default:
		logger.Info("using in-memory record store", zap.String("driver", cfg.Store.Driver))
		return store.NewMemoryStore(), func() {}, nil
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
