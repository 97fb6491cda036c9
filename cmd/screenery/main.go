// Package main is the entry point for the screenery server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/screenery/screenery/internal/config"
	"github.com/screenery/screenery/internal/database"
	"github.com/screenery/screenery/internal/http/handlers"
	"github.com/screenery/screenery/internal/http/mw"
	"github.com/screenery/screenery/internal/logging"
	"github.com/screenery/screenery/internal/repository"
	"github.com/screenery/screenery/internal/service"
	"github.com/screenery/screenery/internal/version"
)

func main() {
	logger := logging.SetDefault()

	v := version.Get()
	logger.Info("starting screenery",
		"version", v.Version,
		"commit", v.Commit,
		"built", v.Date,
		"go_version", v.GoVersion,
	)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := database.Migrate(db, logger); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(cfg, repos, logger)

	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// IP-level limiting is a fallback; per-key quotas are enforced by mw.Auth.
	router.Use(httprate.LimitByIP(100, time.Minute))
	router.Use(middleware.Throttle(100))

	humaConfig := huma.DefaultConfig("Screenery API", version.Version)
	humaConfig.Info.Description = "Caching proxy that resolves external movie IDs to review aggregator scores and lists."
	humaConfig.Servers = []*huma.Server{
		{URL: cfg.BaseURL, Description: "API Server"},
	}
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"apiKeyAuth": {
			Type:        "apiKey",
			In:          "header",
			Name:        "X-API-Key",
			Description: "API key authentication. Include your key in the X-API-Key header.",
		},
	}

	api := humachi.New(router, humaConfig)

	// Config for protected routes; docs are served by the main API.
	protectedConfig := huma.DefaultConfig("Screenery API", version.Version)
	protectedConfig.Info.Description = humaConfig.Info.Description
	protectedConfig.Servers = humaConfig.Servers
	protectedConfig.DocsPath = ""
	protectedConfig.OpenAPIPath = ""
	protectedConfig.SchemasPath = ""

	// Health check (public, shown in docs)
	huma.Get(api, "/api/v1/health", handlers.HealthCheck)

	movieHandler := handlers.NewMovieHandler(services.Movie)
	listHandler := handlers.NewListHandler(services.List)
	adminHandler := handlers.NewAdminHandler(services.APIKey)

	// Protected routes
	router.Group(func(r chi.Router) {
		r.Use(mw.Auth(services.Auth))

		protectedAPI := humachi.New(r, protectedConfig)

		huma.Get(protectedAPI, "/api/v1/movie/{id}", movieHandler.GetMovie)
		huma.Get(protectedAPI, "/api/v1/list", listHandler.GetList)
		huma.Get(protectedAPI, "/api/v1/lists/curated", listHandler.GetCuratedLists)
		huma.Get(protectedAPI, "/api/v1/lists/curated/{slug}", listHandler.GetCuratedList)
		huma.Get(protectedAPI, "/api/v1/lists/browse/options", listHandler.GetBrowseOptions)
		huma.Get(protectedAPI, "/api/v1/lists/browse", listHandler.Browse)

		// Raw HTTP handler for SSE streaming
		r.Post("/api/v1/movies/batch", movieHandler.StreamBatch)

		// Admin-only key management
		r.Group(func(ar chi.Router) {
			ar.Use(mw.RequireAdmin())

			adminAPI := humachi.New(ar, protectedConfig)
			huma.Post(adminAPI, "/api/v1/admin/keys", adminHandler.CreateKey)
			huma.Get(adminAPI, "/api/v1/admin/keys", adminHandler.ListKeys)
			huma.Delete(adminAPI, "/api/v1/admin/keys/{id}", adminHandler.DeleteKey)
		})
	})

	// Root info endpoint
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"service":"screenery","version":%q,"docs":"/docs"}`, v.Version)
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", server.Addr, "base_url", cfg.BaseURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	logger.Info("server stopped")
}
