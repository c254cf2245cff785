package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"graphmem/backend/internal/graph"
	"graphmem/backend/internal/mcptools"
	"graphmem/backend/internal/memory"
	"graphmem/backend/internal/projects"
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
	log.Info("Starting MCP server...")

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

	srv := server.NewMCPServer(
		"graphmem",
		"1.0.0",
		server.WithLogging(),
	)
	mcptools.Register(srv, svc, taskMgr, explorer)

	// Serve over stdio until the client disconnects
	if err := server.ServeStdio(srv); err != nil {
		log.Fatal("MCP server exited with error", zap.Error(err))
	}
}
