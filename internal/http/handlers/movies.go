package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/screenery/screenery/internal/models"
	"github.com/screenery/screenery/internal/service"
)

// MovieHandler handles movie resolution endpoints.
type MovieHandler struct {
	movieSvc *service.MovieService
}

// NewMovieHandler creates a new movie handler.
func NewMovieHandler(movieSvc *service.MovieService) *MovieHandler {
	return &MovieHandler{movieSvc: movieSvc}
}

// MovieResponse represents a resolved movie in responses.
type MovieResponse struct {
	IMDBID         string  `json:"imdbId"`
	URL            string  `json:"url"`
	Title          string  `json:"title"`
	Year           *int    `json:"year,omitempty"`
	CriticScore    *int    `json:"criticScore,omitempty"`
	AudienceScore  *int    `json:"audienceScore,omitempty"`
	CriticRating   *string `json:"criticRating,omitempty"`
	AudienceRating *string `json:"audienceRating,omitempty"`
	Consensus      *string `json:"consensus,omitempty"`
	Status         string  `json:"status"`
	CachedAt       string  `json:"cachedAt"`
}

func movieResponse(movie *models.CachedMovie, status service.ResolveStatus) MovieResponse {
	return MovieResponse{
		IMDBID:         movie.IMDBID,
		URL:            movie.URL,
		Title:          movie.Title,
		Year:           movie.Year,
		CriticScore:    movie.CriticScore,
		AudienceScore:  movie.AudienceScore,
		CriticRating:   movie.CriticRating,
		AudienceRating: movie.AudienceRating,
		Consensus:      movie.Consensus,
		Status:         string(status),
		CachedAt:       movie.CachedAt.UTC().Format(time.RFC3339),
	}
}

// GetMovieInput represents a single movie lookup request.
type GetMovieInput struct {
	ID string `path:"id" doc:"External movie ID, e.g. tt0468569"`
}

// GetMovieOutput represents a single movie lookup response.
type GetMovieOutput struct {
	Body MovieResponse
}

// GetMovie resolves a single movie ID.
func (h *MovieHandler) GetMovie(ctx context.Context, input *GetMovieInput) (*GetMovieOutput, error) {
	resolution, err := h.movieSvc.Resolve(ctx, input.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidID):
			return nil, huma.Error400BadRequest(err.Error())
		case errors.Is(err, service.ErrNotFound):
			return nil, huma.Error404NotFound("movie not found")
		case errors.Is(err, service.ErrUpstream):
			return nil, huma.Error502BadGateway("upstream fetch failed")
		default:
			return nil, huma.Error500InternalServerError("failed to resolve movie")
		}
	}

	return &GetMovieOutput{Body: movieResponse(resolution.Movie, resolution.Status)}, nil
}
