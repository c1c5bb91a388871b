package middleware

import (
	"errors"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"docconvert/internal/logging"
)

// Logger writes one access log line per request through the service logger.
// Fields: ts, request_id, method, path, status, latency (ms, float), ip, bytes.
func Logger(loc *time.Location) fiber.Handler {
	return accessLog(logging.Logger, loc)
}

// LoggerWithWriter is Logger writing JSON lines to w instead.
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	l := zerolog.New(w)
	return accessLog(func() zerolog.Logger { return l }, loc)
}

func accessLog(get func() zerolog.Logger, loc *time.Location) fiber.Handler {
	if loc == nil {
		loc = time.UTC
	}
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		rid, _ := c.Locals(RequestIDLocalKey).(string)
		status := statusOf(c, err)
		latency := float64(time.Since(start).Microseconds()) / 1000

		l := get()
		ev := l.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = l.Error()
		case status >= fiber.StatusBadRequest:
			ev = l.Warn()
		}
		ev.Str("ts", start.In(loc).Format(time.RFC3339Nano)).
			Str("request_id", rid).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Float64("latency", latency).
			Str("ip", c.IP()).
			Int("bytes", responseSize(c)).
			Msg("request")

		return err
	}
}

// responseSize reports the body size without draining a streamed body.
func responseSize(c *fiber.Ctx) int {
	if c.Response().IsBodyStream() {
		return c.Response().Header.ContentLength()
	}
	return len(c.Response().Body())
}

// statusOf returns the status the error handler will write for err, or the
// current response status when err is nil.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
