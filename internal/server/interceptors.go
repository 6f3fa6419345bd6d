package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/industrial-go/opcua/internal/ua/session"
)

// ErrPanicRecovered indicates a service handler panicked and was recovered.
var ErrPanicRecovered = errors.New("panic recovered in service handler")

// LoggingHandler wraps h, logging every dispatched call with its message
// type, duration, and error (if any). Log level is Info for successful
// calls and Warn for calls that return errors.
func LoggingHandler(logger *slog.Logger, msgType session.MessageType, h session.Handler) session.Handler {
	return func(s *session.Session, body any) (any, error) {
		start := time.Now()
		resp, err := h(s, body)
		duration := time.Since(start)

		attrs := []slog.Attr{
			slog.String("message_type", string(msgType)),
			slog.Duration("duration", duration),
		}

		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
			logger.LogAttrs(context.Background(), slog.LevelWarn, "service call completed with error", attrs...)
		} else {
			logger.LogAttrs(context.Background(), slog.LevelInfo, "service call completed", attrs...)
		}

		return resp, err
	}
}

// RecoveryHandler wraps h, recovering from panics. On panic, it logs the
// panic value and stack trace at Error level and returns ErrPanicRecovered
// in place of a response.
func RecoveryHandler(logger *slog.Logger, msgType session.MessageType, h session.Handler) session.Handler {
	return func(s *session.Session, body any) (resp any, retErr error) {
		defer func() {
			if r := recover(); r != nil {
				buf := make([]byte, 4096)
				n := runtime.Stack(buf, false)

				logger.Error("panic recovered in service handler",
					slog.String("message_type", string(msgType)),
					slog.Any("panic", r),
					slog.String("stack", string(buf[:n])),
				)

				retErr = fmt.Errorf("%s: %w", msgType, ErrPanicRecovered)
			}
		}()

		return h(s, body)
	}
}
