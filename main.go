package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/trycohn/1337-sub004/app"
	"github.com/trycohn/1337-sub004/config"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-interrupt
		application.Logger.Info("Shutdown signal received")
		cancel()
	}()

	if err := application.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Application error: %v", err)
	}

	if err := application.Close(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}
