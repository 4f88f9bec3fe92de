package middleware

import (
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"certdocs/internal/logging"
)

// Logger is a middleware that logs each HTTP request as one JSON line on stdout.
func Logger() fiber.Handler {
	return LoggerWithWriter(os.Stdout, time.UTC)
}

// LoggerWithWriter logs each HTTP request in JSON format to w, with ts
// rendered in loc. Fields:
// - request_id (taken from the user context set by RequestID middleware)
// - method
// - path
// - status
// - latency (in milliseconds, as float)
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	return RequestLogger(logging.NewJSON(w, loc))
}

// RequestLogger logs each request through log.
func RequestLogger(log logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		status := finish(c, c.Next())

		latency := float64(time.Since(start).Microseconds()) / 1000
		log.Info(c.UserContext(), "request",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", latency,
		)
		return nil
	}
}

// finish renders a chain error through the app's ErrorHandler so the
// response status is final, and returns that status.
func finish(c *fiber.Ctx, err error) int {
	if err != nil {
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}
	return c.Response().StatusCode()
}
