package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iyow2233/capstone/internal/app"
	"github.com/iyow2233/capstone/internal/config"
	"github.com/iyow2233/capstone/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Console logging until the session log exists
	slog.SetDefault(slog.New(logging.NewConsoleHandler(os.Stdout, slog.LevelInfo)))

	// load config
	cfg := config.Load()

	if err := app.Preflight(); err != nil {
		slog.Error("Preflight check failed", "error", err)
		return app.ExitCode(err)
	}

	// Root Context with cancellation on Interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		return 1
	}
	// Restore the interface and network services on every exit path
	defer application.Cleanup()

	stopLog := context.AfterFunc(ctx, func() {
		application.Logger.Warn("Interrupt received, stopping")
	})
	defer stopLog()

	if err := application.Run(); err != nil {
		slog.Error("Application error", "error", err)
		return app.ExitCode(err)
	}
	return app.ExitOK
}
