package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/Egham-7/fetchstream/internal/config"
	"github.com/Egham-7/fetchstream/internal/services/stream/transport"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration")
	only := flag.String("stream", "", "run only the stream with this name")
	flag.Parse()

	envFiles := []string{".env.local", ".env.development", ".env"}
	config.LoadEnvFiles(envFiles)

	cfg, err := config.LoadFromFile(*configPath)
	if err != nil {
		fiberlog.Fatalf("Failed to load config: %v", err)
	}
	config.ApplyLogLevel(cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	streams, err := selectStreams(cfg, *only)
	if err != nil {
		fiberlog.Fatalf("%v", err)
	}

	if err := run(ctx, cfg.Transport, streams, os.Stdout, transport.NewRegistry()); err != nil {
		fiberlog.Errorf("Streaming failed: %v", err)
		stop()
		os.Exit(1)
	}
}
