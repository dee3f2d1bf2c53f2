// Package httpapi exposes the orchestrator over HTTP for frontends and
// programmatic callers.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tokensage/tokensage/internal/contextstore"
	"github.com/tokensage/tokensage/pkg/models"
)

// QueryHandler is the orchestrator surface the API depends on.
type QueryHandler interface {
	HandleQuery(ctx context.Context, input string) *models.Result
	Reset()
	Context() contextstore.Snapshot
}

// Handler serves the query API.
type Handler struct {
	orch QueryHandler
}

// NewHandler creates a Handler backed by the given orchestrator.
func NewHandler(orch QueryHandler) *Handler {
	return &Handler{orch: orch}
}

// Router builds the chi router with all routes and middleware attached.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Route("/api", func(r chi.Router) {
		r.Post("/query", h.handleQuery)
		r.Post("/reset", h.handleReset)
		r.Get("/context", h.handleContext)
	})

	return r
}

// queryRequest is the body of POST /api/query.
type queryRequest struct {
	Input *string `json:"input"`
}

func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Input == nil {
		Error(w, http.StatusBadRequest, "missing 'input' field")
		return
	}

	result := h.orch.HandleQuery(r.Context(), *req.Input)
	JSON(w, http.StatusOK, result)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.orch.Reset()
	JSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// contextResponse is the body of GET /api/context.
type contextResponse struct {
	Window   []models.Interaction `json:"window"`
	Metadata map[string]string    `json:"metadata"`
}

func (h *Handler) handleContext(w http.ResponseWriter, r *http.Request) {
	snap := h.orch.Context()
	JSON(w, http.StatusOK, contextResponse{
		Window:   snap.Window,
		Metadata: snap.Metadata,
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
