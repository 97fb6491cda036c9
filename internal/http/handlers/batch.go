package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/screenery/screenery/internal/service"
)

// batchRequest is the body of a streaming batch resolution request.
type batchRequest struct {
	IDs []string `json:"ids"`
}

// batchErrorReason maps a resolution failure onto the wire vocabulary.
func batchErrorReason(err error) string {
	if errors.Is(err, service.ErrNotFound) {
		return "not_found"
	}
	return "scrape_failed"
}

// StreamBatch handles streaming batch resolution over SSE.
// This is a raw HTTP handler (not Huma) to support SSE.
func (h *MovieHandler) StreamBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"detail":"invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	events, err := h.movieSvc.ResolveBatch(r.Context(), req.IDs)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBatchSize), errors.Is(err, service.ErrInvalidID):
			http.Error(w, `{"detail":"`+err.Error()+`"}`, http.StatusBadRequest)
		default:
			http.Error(w, `{"detail":"failed to start batch"}`, http.StatusInternalServerError)
		}
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, `{"detail":"streaming not supported"}`, http.StatusInternalServerError)
		return
	}

	// Batches can take a while at low scrape concurrency; disable the write
	// deadline for the duration of the stream.
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	for ev := range events {
		switch {
		case ev.Summary != nil:
			sendSSEEvent(w, flusher, "done", ev.Summary)
		case ev.Err != nil:
			sendSSEEvent(w, flusher, "error", map[string]any{
				"imdbId": ev.IMDBID,
				"error":  batchErrorReason(ev.Err),
			})
		default:
			sendSSEEvent(w, flusher, "movie", movieResponse(ev.Resolution.Movie, ev.Resolution.Status))
		}
	}
}

// sendSSEEvent sends a Server-Sent Event.
func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", event)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", jsonData)
	flusher.Flush()
}
