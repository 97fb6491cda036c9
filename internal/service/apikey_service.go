package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/screenery/screenery/internal/models"
	"github.com/screenery/screenery/internal/repository"
)

// APIKeyService handles admin-side credential management.
type APIKeyService struct {
	repos  *repository.Repositories
	logger *slog.Logger
}

// NewAPIKeyService creates a new API key service.
func NewAPIKeyService(repos *repository.Repositories, logger *slog.Logger) *APIKeyService {
	return &APIKeyService{repos: repos, logger: logger}
}

// CreateKeyInput represents input for creating an API key.
type CreateKeyInput struct {
	Name      string
	IsAdmin   bool
	RateLimit *int // nil -> system default
}

// CreateKey creates a new credential with a freshly generated random secret.
// The returned model carries the plaintext secret; this is the only time it
// is ever exposed.
func (s *APIKeyService) CreateKey(ctx context.Context, input CreateKeyInput) (*models.APIKey, error) {
	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	now := time.Now().UTC()
	key := &models.APIKey{
		ID:              ulid.Make().String(),
		Key:             hex.EncodeToString(secretBytes),
		Name:            input.Name,
		IsAdmin:         input.IsAdmin,
		RateLimit:       input.RateLimit,
		RequestsCount:   0,
		RequestsResetAt: now,
		IsActive:        true,
		CreatedAt:       now,
	}

	if err := s.repos.APIKey.Create(ctx, key); err != nil {
		return nil, fmt.Errorf("failed to create API key: %w", err)
	}

	s.logger.Info("api key created", "id", key.ID, "name", key.Name, "is_admin", key.IsAdmin)
	return key, nil
}

// ListKeys returns all credentials. Callers must mask the secret before
// exposing the result.
func (s *APIKeyService) ListKeys(ctx context.Context) ([]*models.APIKey, error) {
	return s.repos.APIKey.List(ctx)
}

// RevokeKey soft-deactivates a credential. Returns false if the ID is unknown.
func (s *APIKeyService) RevokeKey(ctx context.Context, id string) (bool, error) {
	found, err := s.repos.APIKey.Deactivate(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to revoke API key: %w", err)
	}
	if found {
		s.logger.Info("api key revoked", "id", id)
	}
	return found, nil
}
