package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mikeboe/devweb/pkg/config"
	"github.com/mikeboe/devweb/pkg/database"
	"github.com/mikeboe/devweb/pkg/mcpserver"
	"github.com/mikeboe/devweb/pkg/search"
	"github.com/mikeboe/devweb/pkg/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, using environment variables")
	}

	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	if config.APIKey() == "" {
		slog.Warn("GEMINI_API_KEY is not set; searches will fail until it is configured")
	}

	// Search history is optional
	var history server.DBTX
	if cfg.DatabaseURL != "" {
		db, err := database.NewPostgresDB(context.Background(), cfg.DatabaseURL)
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.InitSchema(context.Background()); err != nil {
			slog.Error("Failed to initialize schema", "error", err)
			os.Exit(1)
		}
		history = db.Pool
	} else {
		slog.Info("DATABASE_URL not set, search history disabled")
	}

	searcher := search.NewGeminiSearcher()
	svc := server.NewService(history, searcher, cfg.HistoryLimit)
	handler := server.NewHandler(svc, mcpserver.Handler(mcpserver.NewServer(searcher)))

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Mcp-Session-Id", "Mcp-Protocol-Version"},
		ExposeHeaders:    []string{"Content-Length", "Mcp-Session-Id"},
		AllowCredentials: false,
	}))

	handler.RegisterRoutes(r)

	slog.Info("Server starting", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}
