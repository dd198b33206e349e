package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/Egham-7/fetchstream/internal/config"
	"github.com/Egham-7/fetchstream/internal/services/stream/simulator"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration")
	flag.Parse()

	config.LoadEnvFiles([]string{".env.local", ".env.development", ".env"})

	cfg, err := config.LoadFromFile(*configPath)
	if err != nil {
		fiberlog.Fatalf("Failed to load config: %v", err)
	}
	config.ApplyLogLevel(cfg.Server.LogLevel)

	app := fiber.New(fiber.Config{
		AppName:               "fetchstream simulator",
		DisableStartupMessage: cfg.Server.Environment == "production",
	})
	app.Use(recover.New())
	simulator.Register(app)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		fiberlog.Info("Shutting down stream simulator")
		if err := app.Shutdown(); err != nil {
			fiberlog.Errorf("Shutdown failed: %v", err)
		}
	}()

	fiberlog.Infof("Stream simulator listening on :%s", cfg.Server.Port)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		fiberlog.Fatalf("Server failed: %v", err)
	}
}
