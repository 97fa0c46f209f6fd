package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"notesapp/internal/auth"
	"notesapp/internal/config"
	"notesapp/internal/db"
	mcpserver "notesapp/internal/mcp"
	"notesapp/internal/notes"
	"notesapp/internal/web"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/cors"
)

func main() {
	configPath := flag.String("config", "config.yml", "Path to the config file")
	flag.Parse()

	// Config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Context for startup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Connect to MongoDB
	logger.Info("connecting to MongoDB", "uri", cfg.Mongo.URI)
	database, err := db.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	logger.Info("connected to MongoDB")
	defer func() {
		if err := db.Disconnect(database); err != nil {
			logger.Error("mongo disconnect failed", "error", err)
		}
	}()

	// Wire dependencies: store and provider, then the core components on top
	provider := auth.NewProvider(database, time.Duration(cfg.Session.TTLHours)*time.Hour)
	if err := provider.EnsureIndexes(ctx); err != nil {
		logger.Warn("failed to ensure auth indexes", "error", err)
	}

	noteRepo := notes.NewRepo(database)
	if err := noteRepo.EnsureIndexes(ctx); err != nil {
		logger.Warn("failed to ensure note indexes", "error", err)
	}

	md := notes.NewMarkdown()
	workspaces := notes.NewWorkspaces(noteRepo, md, logger)
	noteHandler := notes.NewHandler(workspaces, md, logger)
	authHandler := auth.NewHandler(provider, logger)

	// MCP server over the same store
	mcpSrv := mcpserver.NewServer(noteRepo, md, provider)

	// HTTP router
	mux := http.NewServeMux()

	// Session provider endpoints
	mux.HandleFunc("POST /api/auth/signup", authHandler.SignUp)
	mux.HandleFunc("POST /api/auth/signin", authHandler.SignIn)
	mux.HandleFunc("POST /api/auth/signout", authHandler.SignOut)
	mux.Handle("GET /api/auth/me", auth.Require(provider, http.HandlerFunc(authHandler.Me)))

	// Note list controller
	protect := func(h http.HandlerFunc) http.Handler { return auth.Require(provider, h) }
	mux.Handle("GET /api/notes", protect(noteHandler.ListNotes))
	mux.Handle("POST /api/notes/refresh", protect(noteHandler.RefreshNotes))
	mux.Handle("GET /api/notes/{id}", protect(noteHandler.GetNote))
	mux.Handle("DELETE /api/notes/{id}", protect(noteHandler.DeleteNote))

	// Editing session
	mux.Handle("GET /api/editor", protect(noteHandler.Editor))
	mux.Handle("POST /api/editor/open", protect(noteHandler.OpenEditor))
	mux.Handle("PATCH /api/editor/draft", protect(noteHandler.EditDraft))
	mux.Handle("POST /api/editor/save", protect(noteHandler.SaveEditor))
	mux.Handle("POST /api/editor/cancel", protect(noteHandler.CancelEditor))

	// MCP endpoint (HTTP transport)
	mcpHTTP := server.NewStreamableHTTPServer(mcpSrv)
	mux.Handle("POST /mcp", mcpHTTP)
	mux.Handle("GET /mcp", mcpHTTP)
	mux.Handle("DELETE /mcp", mcpHTTP)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Middleware chain: rate limit -> logging -> CORS (outermost)
	var handler http.Handler = mux
	handler = web.RateLimit(logger, handler, cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)
	handler = web.Logging(logger, handler)
	handler = newCORS(cfg.HTTP).Handler(handler)

	// Start server
	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(
			context.Background(),
			time.Duration(cfg.Server.GracefulShutdownTimeout)*time.Second,
		)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	logger.Info("server starting", "port", cfg.Server.Port)
	logger.Info("endpoints available",
		"api", "http://localhost:"+strconv.Itoa(cfg.Server.Port)+"/api",
		"mcp", "http://localhost:"+strconv.Itoa(cfg.Server.Port)+"/mcp",
	)

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}

	logger.Info("server stopped")
}

func newCORS(cfg config.HTTPConfig) *cors.Cors {
	origins := strings.Split(cfg.CORSAllowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           86400,
	})
}
