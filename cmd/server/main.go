// Command main is the entry point for the Dusk Blog backend server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"duskblog/internal/config"
	"duskblog/internal/models"
	"duskblog/internal/observability"
	"duskblog/internal/server"

	"github.com/gofiber/fiber/v2"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize distributed tracing
	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		Enabled:      cfg.TracingEnabled,
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplerRatio: cfg.TracingSampler,
		ServiceName:  "duskblog-api",
		Environment:  cfg.Env,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	// Create server with dependency injection
	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:   "Dusk Blog API",
		BodyLimit: 10 * 1024 * 1024, // 10MB limit, matches the upload cap
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})

	// Setup middleware and routes
	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server resource shutdown error: %v", err)
		}

		if err := shutdownTracing(ctx); err != nil {
			log.Printf("Tracing shutdown error: %v", err)
		}
	}()

	// Start server
	log.Printf("Server starting on port %s...", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
