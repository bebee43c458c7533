package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the id assigned to each request.
const RequestIDHeader = "X-Request-ID"

// Logging logs every request and its response with a generated request id.
func Logging(log *zap.SugaredLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqID := uuid.New().String()
		start := time.Now()

		c.Set(RequestIDHeader, reqID)
		c.Locals("requestID", reqID)

		err := c.Next()
		if err != nil {
			// Let the app's error handler set the final status before logging it.
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		log.Infow("request",
			"request_id", reqID,
			"method", c.Method(),
			"uri", c.OriginalURL(),
			"duration", time.Since(start),
		)
		log.Infow("response",
			"request_id", reqID,
			"status", c.Response().StatusCode(),
			"response_size", strconv.Itoa(len(c.Response().Body()))+"B",
		)
		return nil
	}
}
