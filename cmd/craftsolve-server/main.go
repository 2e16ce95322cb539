// Command craftsolve-server exposes the MacroSolver over a WebSocket
// endpoint so a long-running solve can be kicked off and observed
// remotely.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/lox/craftsolver/internal/server"
)

type CLI struct {
	Addr     string `kong:"default=':8080',help='Listen address'"`
	LogLevel string `kong:"default='info',enum='debug,info,warn,error',help='Log level'"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("craftsolve-server"),
		kong.Description("Streams MacroSolver solves over WebSocket"),
		kong.UsageOnError(),
	)

	level, err := log.ParseLevel(cli.LogLevel)
	ctx.FatalIfErrorf(err)

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           level,
	})

	srv := server.New(logger, server.Config{Addr: cli.Addr})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() { serverErr <- srv.Start() }()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Fatal("server exited", "error", err)
		}
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}
}
