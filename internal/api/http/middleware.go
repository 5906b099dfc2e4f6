package http

import (
	"context"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"github.com/spec-kit/haras-web/internal/config"
	"github.com/spec-kit/haras-web/internal/observability"
	apperrors "github.com/spec-kit/haras-web/pkg/util"
)

// MiddlewareConfig bundles the dependencies of the global middleware chain.
type MiddlewareConfig struct {
	Logger    *zap.Logger
	Metrics   *observability.Metrics
	Timeout   time.Duration
	CORS      config.CORSConfig
	RateLimit config.RateLimitConfig
	// LimiterStorage shares limiter counters between instances; nil keeps them in memory.
	LimiterStorage fiber.Storage
}

// NewApp builds the fiber application with server limits taken from cfg.
func NewApp(cfg config.AppConfig, logger *zap.Logger) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               cfg.Name,
		BodyLimit:             cfg.BodyLimitBytes,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.RequestTimeout() + 5*time.Second,
		IdleTimeout:           60 * time.Second,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(logger, nil),
	})
}

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, cfg MiddlewareConfig) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	app.Use(requestid.New())
	app.Use(errorHandlingMiddleware(logger, cfg.Metrics))
	app.Use(observability.RequestLogger(logger, cfg.Metrics))
	app.Use(helmet.New())
	app.Use(corsMiddleware(cfg.CORS))
	if cfg.RateLimit.Max > 0 {
		app.Use(rateLimitMiddleware(cfg.RateLimit, cfg.LimiterStorage))
	}
	if cfg.Timeout > 0 {
		app.Use(requestTimeoutMiddleware(cfg.Timeout))
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// corsMiddleware allows credentials only for an explicit origin list; with no
// list configured any origin may call the API without cookies.
func corsMiddleware(cfg config.CORSConfig) fiber.Handler {
	if len(cfg.AllowOrigins) == 0 {
		return cors.New(cors.Config{AllowOrigins: "*"})
	}
	return cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowOrigins, ","),
		AllowCredentials: true,
	})
}

// rateLimitMiddleware applies a fixed window per client IP to /api routes.
func rateLimitMiddleware(cfg config.RateLimitConfig, storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Next: func(c *fiber.Ctx) bool {
			return !strings.HasPrefix(c.Path(), "/api")
		},
		Max:        cfg.Max,
		Expiration: cfg.Window,
		Storage:    storage,
		LimitReached: func(c *fiber.Ctx) error {
			return apperrors.NewRateLimited()
		},
	})
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	render := errorHandler(logger, metrics)
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				err = render(c, err)
			}
		}()
		return c.Next()
	}
}

// errorHandler renders err as {success:false, code, message[, field]}.
func errorHandler(logger *zap.Logger, metrics *observability.Metrics) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		domainErr := apperrors.ToDomainError(err)
		metrics.RecordError(c.Route().Path, c.Method(), domainErr.Code)

		response := fiber.Map{
			"success": false,
			"code":    domainErr.Code,
			"message": domainErr.Message,
		}
		if field, ok := domainErr.Details["field"]; ok {
			response["field"] = field
		}
		if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", utils.CopyString(c.Method())),
				zap.String("path", utils.CopyString(c.Path())),
				zap.Error(domainErr),
			)
		}
		return c.Status(domainErr.HTTPStatus).JSON(response)
	}
}
