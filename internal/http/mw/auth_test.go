package mw

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/screenery/screenery/internal/config"
	"github.com/screenery/screenery/internal/database/migrations"
	"github.com/screenery/screenery/internal/repository"
	"github.com/screenery/screenery/internal/service"

	_ "github.com/tursodatabase/go-libsql"
)

func setupAuthService(t *testing.T, cfg *config.Config) (*service.AuthService, *repository.Repositories) {
	t.Helper()

	db, err := sql.Open("libsql", ":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := migrations.Run(db, nil); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	repos := repository.NewRepositories(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return service.NewAuthService(cfg, repos, logger), repos
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth_MissingKey(t *testing.T) {
	authSvc, _ := setupAuthService(t, &config.Config{DefaultRateLimit: 500})
	handler := Auth(authSvc)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/movie/tt0468569", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuth_UnknownKey(t *testing.T) {
	authSvc, _ := setupAuthService(t, &config.Config{DefaultRateLimit: 500})
	handler := Auth(authSvc)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/movie/tt0468569", nil)
	req.Header.Set("X-API-Key", "bogus")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuth_ValidKeyPassesThrough(t *testing.T) {
	cfg := &config.Config{AdminAPIKey: "env-admin", DefaultRateLimit: 500}
	authSvc, _ := setupAuthService(t, cfg)

	var captured bool
	handler := Auth(authSvc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := GetAPIKey(r.Context())
		captured = key != nil && key.IsAdmin
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/movie/tt0468569", nil)
	req.Header.Set("X-API-Key", "env-admin")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !captured {
		t.Error("expected API key in request context")
	}
}

func TestAuth_RateLimited(t *testing.T) {
	cfg := &config.Config{DefaultRateLimit: 1}
	authSvc, repos := setupAuthService(t, cfg)

	keySvc := service.NewAPIKeyService(repos, slog.New(slog.NewTextHandler(io.Discard, nil)))
	key, err := keySvc.CreateKey(context.Background(), service.CreateKeyInput{Name: "Limited"})
	if err != nil {
		t.Fatalf("CreateKey() error = %v", err)
	}

	handler := Auth(authSvc)(okHandler())

	// The new key's window opens on first use, which burns the whole quota
	// of 1; the next request gets 429 with a Retry-After hint.
	req0 := httptest.NewRequest(http.MethodGet, "/api/v1/movie/tt0468569", nil)
	req0.Header.Set("X-API-Key", key.Key)
	rec0 := httptest.NewRecorder()
	handler.ServeHTTP(rec0, req0)
	if rec0.Code != http.StatusOK {
		t.Fatalf("first request: status = %d, want 200", rec0.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/movie/tt0468569", nil)
	req.Header.Set("X-API-Key", key.Key)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "3600" {
		t.Errorf("Retry-After = %s, want 3600", rec.Header().Get("Retry-After"))
	}
}

func TestRequireAdmin(t *testing.T) {
	cfg := &config.Config{AdminAPIKey: "env-admin", DefaultRateLimit: 500}
	authSvc, repos := setupAuthService(t, cfg)

	keySvc := service.NewAPIKeyService(repos, slog.New(slog.NewTextHandler(io.Discard, nil)))
	regular, err := keySvc.CreateKey(context.Background(), service.CreateKeyInput{Name: "Regular"})
	if err != nil {
		t.Fatalf("CreateKey() error = %v", err)
	}

	handler := Auth(authSvc)(RequireAdmin()(okHandler()))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/keys", nil)
	req.Header.Set("X-API-Key", regular.Key)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("regular key: status = %d, want 403", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/keys", nil)
	req.Header.Set("X-API-Key", "env-admin")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("admin key: status = %d, want 200", rec.Code)
	}
}
