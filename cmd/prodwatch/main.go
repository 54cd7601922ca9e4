package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/five82/prodwatch/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "override prodwatch config path (optional)")
	prefsPath := flag.String("prefs", "", "override preferences path (optional)")
	apiBind := flag.String("api", "", "backend address, e.g. 127.0.0.1:5000 (optional)")
	noBackend := flag.Bool("no-backend", false, "do not launch the backend; attach to one already running")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: prodwatch [flags] [amazon-product-url]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		APIBind:    *apiBind,
		NoBackend:  *noBackend,
		URL:        flag.Arg(0),
	}

	if err := app.Run(ctx, opts); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(os.Stderr, "prodwatch: %v\n", err)
		return 1
	}
	return 0
}
