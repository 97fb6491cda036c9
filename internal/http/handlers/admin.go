package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/screenery/screenery/internal/service"
)

// AdminHandler handles API key management endpoints.
type AdminHandler struct {
	apiKeySvc *service.APIKeyService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(apiKeySvc *service.APIKeyService) *AdminHandler {
	return &AdminHandler{apiKeySvc: apiKeySvc}
}

// APIKeyResponse represents an API key in listings. The secret is masked.
type APIKeyResponse struct {
	ID              string `json:"id"`
	Key             string `json:"key" doc:"Masked secret"`
	Name            string `json:"name"`
	IsAdmin         bool   `json:"is_admin"`
	RateLimit       *int   `json:"rate_limit,omitempty"`
	RequestsCount   int    `json:"requests_count"`
	RequestsResetAt string `json:"requests_reset_at"`
	IsActive        bool   `json:"is_active"`
	CreatedAt       string `json:"created_at"`
}

// CreateKeyInput represents API key creation request.
type CreateKeyInput struct {
	Body struct {
		Name      string `json:"name" minLength:"1" doc:"Descriptive name for the key"`
		IsAdmin   bool   `json:"is_admin,omitempty" doc:"Grant admin access"`
		RateLimit *int   `json:"rate_limit,omitempty" minimum:"1" doc:"Requests per hour; omit for the system default"`
	}
}

// CreateKeyOutput represents API key creation response.
type CreateKeyOutput struct {
	Body struct {
		ID        string `json:"id"`
		Key       string `json:"key" doc:"Full API key - only shown once!"`
		Name      string `json:"name"`
		IsAdmin   bool   `json:"is_admin"`
		RateLimit *int   `json:"rate_limit,omitempty"`
		CreatedAt string `json:"created_at"`
	}
}

// CreateKey handles API key creation.
func (h *AdminHandler) CreateKey(ctx context.Context, input *CreateKeyInput) (*CreateKeyOutput, error) {
	key, err := h.apiKeySvc.CreateKey(ctx, service.CreateKeyInput{
		Name:      input.Body.Name,
		IsAdmin:   input.Body.IsAdmin,
		RateLimit: input.Body.RateLimit,
	})
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to create API key")
	}

	out := &CreateKeyOutput{}
	out.Body.ID = key.ID
	out.Body.Key = key.Key
	out.Body.Name = key.Name
	out.Body.IsAdmin = key.IsAdmin
	out.Body.RateLimit = key.RateLimit
	out.Body.CreatedAt = key.CreatedAt.UTC().Format(time.RFC3339)
	return out, nil
}

// ListKeysOutput represents API key list response.
type ListKeysOutput struct {
	Body struct {
		Keys []APIKeyResponse `json:"keys"`
	}
}

// ListKeys handles listing API keys with masked secrets.
func (h *AdminHandler) ListKeys(ctx context.Context, input *struct{}) (*ListKeysOutput, error) {
	keys, err := h.apiKeySvc.ListKeys(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list API keys")
	}

	out := &ListKeysOutput{}
	for _, key := range keys {
		out.Body.Keys = append(out.Body.Keys, APIKeyResponse{
			ID:              key.ID,
			Key:             key.MaskedKey(),
			Name:            key.Name,
			IsAdmin:         key.IsAdmin,
			RateLimit:       key.RateLimit,
			RequestsCount:   key.RequestsCount,
			RequestsResetAt: key.RequestsResetAt.UTC().Format(time.RFC3339),
			IsActive:        key.IsActive,
			CreatedAt:       key.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out, nil
}

// DeleteKeyInput represents API key revocation request.
type DeleteKeyInput struct {
	ID string `path:"id" doc:"API key ID"`
}

// DeleteKeyOutput represents API key revocation response.
type DeleteKeyOutput struct {
	Body struct {
		Revoked bool `json:"revoked"`
	}
}

// DeleteKey handles API key revocation.
func (h *AdminHandler) DeleteKey(ctx context.Context, input *DeleteKeyInput) (*DeleteKeyOutput, error) {
	found, err := h.apiKeySvc.RevokeKey(ctx, input.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to revoke API key")
	}
	if !found {
		return nil, huma.Error404NotFound("API key not found")
	}

	out := &DeleteKeyOutput{}
	out.Body.Revoked = true
	return out, nil
}
