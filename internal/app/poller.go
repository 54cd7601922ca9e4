package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/five82/prodwatch/internal/backend"
)

const (
	defaultHealthInterval = 5 * time.Second
	maxBackoff            = 30 * time.Second
)

// Pinger is the part of the backend client the health poller needs.
type Pinger interface {
	Ping(ctx context.Context) (*backend.HelloResponse, error)
}

// StartHealthPoller launches a background goroutine that pings the backend
// until ctx is done. report is called on the first answer and then only when
// reachability changes. It returns immediately.
func StartHealthPoller(ctx context.Context, client Pinger, interval time.Duration, report func(error), logger *slog.Logger) {
	if interval <= 0 {
		interval = defaultHealthInterval
	}
	go runHealthPoller(ctx, client, interval, report, logger)
}

func runHealthPoller(ctx context.Context, client Pinger, interval time.Duration, report func(error), logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	failures := 0
	reported := false
	lastUp := false

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		err := ping(ctx, client, interval)
		if ctx.Err() != nil {
			return
		}
		up := err == nil
		if err != nil {
			failures++
			logger.Debug("backend health check failed", "failures", failures, "error", err)
		} else {
			failures = 0
		}
		if !reported || up != lastUp {
			if up {
				logger.Info("backend reachable")
			} else {
				logger.Warn("backend unreachable", "error", err)
			}
			report(err)
			reported = true
			lastUp = up
		}

		timer.Reset(calculateBackoff(failures, interval))
	}
}

func ping(ctx context.Context, client Pinger, timeout time.Duration) error {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	_, err := client.Ping(callCtx)
	return err
}

// calculateBackoff doubles the base interval per consecutive failure, capped
// at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	delay := base
	for i := 0; i < failures; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	return delay
}
