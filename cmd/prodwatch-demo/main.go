package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/five82/prodwatch/internal/backend"
	"github.com/five82/prodwatch/internal/demo"
	"github.com/five82/prodwatch/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()

	defaultAddr := os.Getenv("PRODWATCH_API_BIND")
	if defaultAddr == "" {
		defaultAddr = backend.DefaultAPIBind
	}
	addr := flag.String("addr", defaultAddr, "listen address")
	step := flag.Duration("step", 1500*time.Millisecond, "delay between simulated stages (0 disables the simulation)")
	level := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	logger := logging.Console(os.Stderr, logging.ParseLevel(*level))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := demo.NewServer(demo.Options{Logger: logger, Step: *step})
	defer srv.Close()
	httpSrv := srv.HTTPServer(*addr)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("demo backend listening", "addr", *addr, "step", *step)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "prodwatch-demo: %v\n", err)
			return 1
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "prodwatch-demo: shutdown: %v\n", err)
			return 1
		}
	}
	return 0
}
