package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/htarver/tidesat/internal/config"
	"github.com/htarver/tidesat/internal/logging"
	"github.com/htarver/tidesat/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Missing .env is fine, the key may come from the environment
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	// Clean shutdown on SIGINT or SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := web.NewServer(cfg, log)
	if err := srv.Run(ctx); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
