package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/screenery/screenery/internal/models"
	"github.com/screenery/screenery/internal/service"
)

// ListHandler handles list resolution endpoints.
type ListHandler struct {
	listSvc *service.ListService
}

// NewListHandler creates a new list handler.
func NewListHandler(listSvc *service.ListService) *ListHandler {
	return &ListHandler{listSvc: listSvc}
}

// ListResponse represents a resolved list in responses.
type ListResponse struct {
	SourceURL string             `json:"sourceUrl"`
	Title     string             `json:"title"`
	Movies    []models.ListMovie `json:"movies"`
	Status    string             `json:"status"`
	CachedAt  string             `json:"cachedAt"`
}

func listResponse(list *models.CachedList, status service.ResolveStatus) ListResponse {
	movies := list.Movies
	if movies == nil {
		movies = []models.ListMovie{}
	}
	return ListResponse{
		SourceURL: list.SourceURL,
		Title:     list.Title,
		Movies:    movies,
		Status:    string(status),
		CachedAt:  list.CachedAt.UTC().Format(time.RFC3339),
	}
}

func mapListError(err error) error {
	var filterErr *service.InvalidFilterError
	switch {
	case errors.Is(err, service.ErrUnsupportedURL):
		return huma.Error400BadRequest(err.Error())
	case errors.As(err, &filterErr):
		return huma.Error400BadRequest(filterErr.Error())
	case errors.Is(err, service.ErrUpstream):
		return huma.Error502BadGateway("upstream fetch failed")
	default:
		return huma.Error500InternalServerError("failed to resolve list")
	}
}

// GetListInput represents a list lookup request.
type GetListInput struct {
	URL string `query:"url" required:"true" doc:"Editorial guide or browse page URL"`
}

// GetListOutput represents a list lookup response.
type GetListOutput struct {
	Body ListResponse
}

// GetList resolves an arbitrary supported list URL.
func (h *ListHandler) GetList(ctx context.Context, input *GetListInput) (*GetListOutput, error) {
	resolution, err := h.listSvc.Resolve(ctx, input.URL)
	if err != nil {
		return nil, mapListError(err)
	}
	return &GetListOutput{Body: listResponse(resolution.List, resolution.Status)}, nil
}

// CuratedListResponse represents a curated list registry entry.
type CuratedListResponse struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// GetCuratedListsOutput represents the curated registry response.
type GetCuratedListsOutput struct {
	Body struct {
		Lists []CuratedListResponse `json:"lists"`
	}
}

// GetCuratedLists returns the curated list registry.
func (h *ListHandler) GetCuratedLists(ctx context.Context, input *struct{}) (*GetCuratedListsOutput, error) {
	out := &GetCuratedListsOutput{}
	for _, entry := range service.AllCurated() {
		out.Body.Lists = append(out.Body.Lists, CuratedListResponse{
			Slug:        entry.Slug,
			Title:       entry.Title,
			Description: entry.Description,
		})
	}
	return out, nil
}

// GetCuratedListInput represents a curated list lookup request.
type GetCuratedListInput struct {
	Slug string `path:"slug" doc:"Curated list slug, e.g. best-horror"`
}

// GetCuratedList resolves a curated list by slug.
func (h *ListHandler) GetCuratedList(ctx context.Context, input *GetCuratedListInput) (*GetListOutput, error) {
	entry, ok := service.GetCurated(input.Slug)
	if !ok {
		return nil, huma.Error404NotFound("unknown curated list")
	}

	resolution, err := h.listSvc.Resolve(ctx, entry.URL)
	if err != nil {
		return nil, mapListError(err)
	}
	return &GetListOutput{Body: listResponse(resolution.List, resolution.Status)}, nil
}

// GetBrowseOptionsOutput represents the browse vocabulary response.
type GetBrowseOptionsOutput struct {
	Body map[string][]string
}

// GetBrowseOptions returns the valid browse filter vocabularies.
func (h *ListHandler) GetBrowseOptions(ctx context.Context, input *struct{}) (*GetBrowseOptionsOutput, error) {
	return &GetBrowseOptionsOutput{Body: service.BrowseOptions()}, nil
}

// BrowseInput represents a browse request.
type BrowseInput struct {
	Certification string `query:"certification" doc:"Critic certification filter"`
	Genre         string `query:"genre" doc:"Genre filter"`
	Affiliate     string `query:"affiliate" doc:"Streaming service filter"`
	Sort          string `query:"sort" doc:"Sort order"`
	Type          string `query:"type" doc:"Browse section, defaults to movies_at_home"`
	Audience      string `query:"audience" doc:"Audience rating filter"`
}

// Browse resolves a filtered browse page.
func (h *ListHandler) Browse(ctx context.Context, input *BrowseInput) (*GetListOutput, error) {
	resolution, err := h.listSvc.ResolveBrowse(ctx, service.BrowseFilters{
		Certification: input.Certification,
		Genre:         input.Genre,
		Affiliate:     input.Affiliate,
		Sort:          input.Sort,
		Type:          input.Type,
		Audience:      input.Audience,
	})
	if err != nil {
		return nil, mapListError(err)
	}
	return &GetListOutput{Body: listResponse(resolution.List, resolution.Status)}, nil
}
