package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/haras-web/internal/api/dto"
	"github.com/spec-kit/haras-web/internal/repository"
	apperrors "github.com/spec-kit/haras-web/pkg/util"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatusHandler serves the public status endpoint and the liveness and
// readiness probes.
type StatusHandler struct {
	serviceName string
	version     string
	users       repository.UserRepository
	postgres    Pinger
	redis       Pinger
	logger      *zap.Logger
}

// NewStatusHandler returns a new handler instance. redis may be nil when Redis
// is not configured.
func NewStatusHandler(serviceName, version string, users repository.UserRepository, postgres, redis Pinger, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{
		serviceName: serviceName,
		version:     version,
		users:       users,
		postgres:    postgres,
		redis:       redis,
		logger:      logger,
	}
}

// Status handles GET /api/status. A store failure is reported in the body,
// the HTTP status stays 200.
func (h *StatusHandler) Status(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	count, err := h.users.Count(ctx)
	if err != nil {
		h.logger.Warn("status check could not reach the user store", zap.Error(err))
		return c.JSON(dto.StatusResponse{
			Status:  "degraded",
			Message: apperrors.MsgStoreUnavailable,
			Service: h.serviceName,
		})
	}
	return c.JSON(dto.StatusResponse{
		Status:     "operational",
		UsersCount: &count,
		Service:    h.serviceName,
		Version:    h.version,
	})
}

// Live reports service liveness.
func (h *StatusHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking dependencies.
func (h *StatusHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	if err := h.postgres.Ping(ctx); err != nil {
		depStatus["postgres"] = err.Error()
		ready = false
	} else {
		depStatus["postgres"] = "ok"
	}

	if h.redis == nil {
		depStatus["redis"] = "disabled"
	} else if err := h.redis.Ping(ctx); err != nil {
		depStatus["redis"] = err.Error()
		ready = false
	} else {
		depStatus["redis"] = "ok"
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"success":      false,
		"code":         "DEPENDENCY_UNAVAILABLE",
		"message":      "one or more dependencies unavailable",
		"dependencies": depStatus,
	})
}
