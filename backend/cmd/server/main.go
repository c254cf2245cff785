package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"graphmem/backend/internal/graph"
	"graphmem/backend/internal/memory"
	"graphmem/backend/internal/projects"
	"graphmem/backend/internal/server"
	"graphmem/backend/internal/tasks"
	"graphmem/backend/pkg/config"
	"graphmem/backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Initialize logger
	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting HTTP API server...")

	// Connect to Neo4j
	ctx := context.Background()
	repo, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		log.Fatal("Failed to connect to Neo4j", zap.Error(err))
	}
	defer repo.Close(context.Background())

	// Initialize dependencies
	svc := memory.NewService(repo, memory.Config{
		DefaultLabel:         cfg.DefaultLabel,
		EnforceLabels:        cfg.EnforceLabels,
		AllowedLabels:        cfg.AllowedLabels,
		EnforceRelationships: cfg.EnforceRelationships,
		AllowedRelationships: cfg.AllowedRelationships,
		DefaultProject:       cfg.DefaultProject,
	})
	taskMgr := tasks.NewManager(svc)
	explorer := projects.NewExplorer(svc)

	router := server.New(svc, taskMgr, explorer).Router(cfg.IsProduction())

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
