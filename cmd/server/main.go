// Command main is the entry point for the blog backend server.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgaponov99/practicum-my-blog/internal/config"
	"github.com/dgaponov99/practicum-my-blog/internal/middleware"
	"github.com/dgaponov99/practicum-my-blog/internal/observability"
	"github.com/dgaponov99/practicum-my-blog/internal/server"
)

// @title My Blog API
// @version 1.0
// @description Blog backend with posts, tags, likes, images and comments

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api
// @schemes http https

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.Logger = middleware.NewLogger(cfg.Env)

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "myblog-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampler,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Println("Shutting down server...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Server stopped: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server resource shutdown error: %v", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		log.Printf("Tracing shutdown error: %v", err)
	}
}
