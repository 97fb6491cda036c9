package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/screenery/screenery/internal/config"
	"github.com/screenery/screenery/internal/models"
	"github.com/screenery/screenery/internal/repository"
)

// AuthService validates API keys and enforces per-key rate limits over a
// rolling one-hour window.
type AuthService struct {
	cfg    *config.Config
	repos  *repository.Repositories
	logger *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(cfg *config.Config, repos *repository.Repositories, logger *slog.Logger) *AuthService {
	return &AuthService{cfg: cfg, repos: repos, logger: logger}
}

// Authenticate validates a presented key and charges the request against its
// quota. Returns ErrUnauthenticated for unknown/inactive keys and
// ErrRateLimited when the quota is spent.
//
// Every successful call mutates the persisted counter; it must not be
// retried blindly.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.APIKey, error) {
	// Env-configured admin key: unlimited, no database round trip.
	if s.cfg.AdminAPIKey != "" && token == s.cfg.AdminAPIKey {
		now := time.Now().UTC()
		return &models.APIKey{
			Key:             token,
			Name:            "Admin (ENV)",
			IsAdmin:         true,
			RequestsResetAt: now,
			IsActive:        true,
			CreatedAt:       now,
		}, nil
	}

	key, err := s.repos.APIKey.GetActiveByKey(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to look up api key: %w", err)
	}
	if key == nil {
		return nil, ErrUnauthenticated
	}

	// Admin keys bypass limiting entirely.
	if key.IsAdmin {
		return key, nil
	}

	now := time.Now().UTC()

	// The call that crosses the window boundary is unconditionally allowed,
	// even if the prior window was exhausted.
	if !now.Before(key.RequestsResetAt) {
		resetAt := now.Add(time.Hour)
		if err := s.repos.APIKey.ResetWindow(ctx, key.ID, resetAt); err != nil {
			return nil, err
		}
		key.RequestsCount = 1
		key.RequestsResetAt = resetAt
		return key, nil
	}

	if key.RequestsCount >= s.effectiveLimit(key) {
		s.logger.Warn("rate limit exceeded", "key_id", key.ID, "name", key.Name)
		return nil, ErrRateLimited
	}

	if err := s.repos.APIKey.IncrementCount(ctx, key.ID); err != nil {
		return nil, err
	}
	key.RequestsCount++

	return key, nil
}

// Remaining reports whether a key would currently be allowed and how many
// requests it has left. Read-only: never mutates counters. A nil remaining
// count means unlimited.
func (s *AuthService) Remaining(ctx context.Context, token string) (bool, *int, error) {
	if s.cfg.AdminAPIKey != "" && token == s.cfg.AdminAPIKey {
		return true, nil, nil
	}

	key, err := s.repos.APIKey.GetActiveByKey(ctx, token)
	if err != nil {
		return false, nil, fmt.Errorf("failed to look up api key: %w", err)
	}
	if key == nil {
		zero := 0
		return false, &zero, nil
	}

	if key.IsAdmin {
		return true, nil, nil
	}

	limit := s.effectiveLimit(key)
	if !time.Now().UTC().Before(key.RequestsResetAt) {
		return true, &limit, nil
	}

	remaining := limit - key.RequestsCount
	if remaining < 0 {
		remaining = 0
	}
	return remaining > 0, &remaining, nil
}

func (s *AuthService) effectiveLimit(key *models.APIKey) int {
	if key.RateLimit != nil {
		return *key.RateLimit
	}
	return s.cfg.DefaultRateLimit
}
