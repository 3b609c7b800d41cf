package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lighthouse/backend/internal/core/services"
	"github.com/lighthouse/backend/internal/infrastructure/logger"
)

// RequestID reuses the inbound request id header or mints one, echoes it
// back and stores it in the user context for services.
func RequestID(header string) fiber.Handler {
	if header == "" {
		header = fiber.HeaderXRequestID
	}
	return func(c *fiber.Ctx) error {
		id := c.Get(header)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(header, id)
		c.Locals("request_id", id)
		c.SetUserContext(context.WithValue(c.UserContext(), services.RequestIDKey, id))
		return c.Next()
	}
}

// RequestObserver receives the duration of every handled request.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, d time.Duration)
}

// AccessLog logs each request as http_access and reports it to obs.
// Either side may be disabled with a nil logger or observer.
func AccessLog(log *logger.Logger, obs RequestObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		elapsed := time.Since(start)
		status := c.Response().StatusCode()

		if obs != nil {
			obs.ObserveRequest(c.Method(), c.Route().Path, status, elapsed)
		}
		if log != nil {
			log.Infow("http_access",
				"method", c.Method(),
				"path", c.Path(),
				"status", status,
				"latency_ms", elapsed.Milliseconds(),
				"ip", c.IP(),
				"request_id", c.Locals("request_id"),
			)
		}
		return nil
	}
}
