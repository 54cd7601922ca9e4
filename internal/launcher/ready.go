package launcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"
)

// ErrNotReady is returned when the port never accepted a connection.
var ErrNotReady = errors.New("backend not ready")

const (
	DefaultReadyAttempts = 10
	DefaultReadyDelay    = time.Second
)

// WaitReady dials addr until it accepts a TCP connection, trying at most
// attempts times with delay between tries.
func WaitReady(ctx context.Context, addr string, attempts int, delay time.Duration, logger *slog.Logger) error {
	if attempts <= 0 {
		attempts = DefaultReadyAttempts
	}
	if delay <= 0 {
		delay = DefaultReadyDelay
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	dialer := net.Dialer{Timeout: delay}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			_ = conn.Close()
			logger.Info("backend ready", "addr", addr, "attempt", attempt)
			return nil
		}
		lastErr = err
		logger.Debug("backend not ready yet", "addr", addr, "attempt", attempt, "of", attempts)

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	logger.Warn("backend did not become ready", "addr", addr, "attempts", attempts, "error", lastErr)
	return fmt.Errorf("%w: %s after %d attempts: %w", ErrNotReady, addr, attempts, lastErr)
}
