package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/haras-web/internal/api/http"
	"github.com/spec-kit/haras-web/internal/api/http/handlers"
	"github.com/spec-kit/haras-web/internal/auth"
	"github.com/spec-kit/haras-web/internal/config"
	"github.com/spec-kit/haras-web/internal/events"
	"github.com/spec-kit/haras-web/internal/observability"
	"github.com/spec-kit/haras-web/internal/persistence"
	"github.com/spec-kit/haras-web/internal/repository"
	"github.com/spec-kit/haras-web/internal/service"
	"github.com/spec-kit/haras-web/internal/worker"
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

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("invalid postgres configuration", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		persistence.EnsureSchema(ctx, pg.PoolHandle(), logger, 30*time.Second)
	}

	rdb := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer rdb.Close()

	userRepo := repository.NewUserRepository(pg.PoolHandle())

	hasher, err := auth.NewPasswordHasher(cfg.Auth.Pepper, cfg.Auth.BcryptCost, cfg.Auth.HashConcurrency)
	if err != nil {
		logger.Fatal("invalid password hasher configuration", zap.Error(err))
	}
	tokens := auth.NewTokenManager(cfg.Auth.AccessSecret, cfg.Auth.RefreshSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	cookies := auth.NewSessionCookies(cfg.Cookie)

	var denylist auth.Denylist
	if cfg.Auth.RevocationEnabled && rdb != nil {
		denylist = auth.NewRedisDenylist(rdb.Client)
		logger.Info("token revocation enabled")
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	authService, err := service.NewAuthService(ctx, service.AuthDependencies{
		UserRepo:   userRepo,
		Hasher:     hasher,
		Tokens:     tokens,
		Denylist:   denylist,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal("failed to build auth service", zap.Error(err))
	}

	var (
		limiterStorage fiber.Storage
		redisPinger    handlers.Pinger
	)
	if rdb != nil {
		limiterStorage = persistence.NewLimiterStorage(rdb.Client)
		redisPinger = rdb
	}

	metrics := observability.NewMetrics()
	app := httptransport.NewApp(cfg.App, logger)
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:         logger,
		Metrics:        metrics,
		Timeout:        cfg.App.RequestTimeout(),
		CORS:           cfg.CORS,
		RateLimit:      cfg.RateLimit,
		LimiterStorage: limiterStorage,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Auth:           handlers.NewAuthHandler(authService, cookies),
		Status:         handlers.NewStatusHandler(cfg.App.Name, cfg.App.Version, userRepo, pg, redisPinger, logger),
		Pages:          handlers.NewPagesHandler(cfg.App.PublicDir),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, cookies, denylist, logger),
		PublicDir:      cfg.App.PublicDir,
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	metrics.Log(logger)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
