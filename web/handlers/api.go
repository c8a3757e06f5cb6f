package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/scrypster/schemaground/internal/config"
	"github.com/scrypster/schemaground/internal/engine"
	"github.com/scrypster/schemaground/internal/storage"
)

const apiVersion = "1.0.0"

// maxTopK caps the number of documents a single request can ask for.
const maxTopK = 50

// APIHandlers contains HTTP handlers for the REST API.
type APIHandlers struct {
	grounder *engine.Grounder
	store    storage.DocumentStore
	config   *config.Config
}

// NewAPIHandlers creates a new APIHandlers instance.
func NewAPIHandlers(grounder *engine.Grounder, store storage.DocumentStore, cfg *config.Config) *APIHandlers {
	return &APIHandlers{
		grounder: grounder,
		store:    store,
		config:   cfg,
	}
}

// Ground handles POST /api/ground - expand, retrieve, re-rank and assemble
// a grounding payload for a natural-language question.
func (h *APIHandlers) Ground(w http.ResponseWriter, r *http.Request) {
	var req GroundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if req.Question == "" {
		respondError(w, http.StatusBadRequest, "question is required", nil)
		return
	}

	topK := req.TopK
	if topK < 0 {
		respondError(w, http.StatusBadRequest, "top_k must be non-negative", nil)
		return
	}
	if topK == 0 {
		topK = h.config.Retrieval.TopK
	}
	if topK > maxTopK {
		topK = maxTopK
	}

	start := time.Now()
	result, err := h.grounder.GroundQuestion(r.Context(), req.Question, topK)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrNotInitialized):
			respondError(w, http.StatusServiceUnavailable, "grounding engine not initialized", err)
		case errors.Is(err, engine.ErrRetrieval):
			respondError(w, http.StatusBadGateway, "retrieval failed", err)
		default:
			respondError(w, http.StatusInternalServerError, "grounding failed", err)
		}
		return
	}

	respondJSON(w, http.StatusOK, GroundResponse{
		Grounding: result,
		Duration:  time.Since(start).String(),
	})
}

// GetDocument handles GET /api/documents/{id} - fetch a single indexed document.
func (h *APIHandlers) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "document id is required", nil)
		return
	}

	doc, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "document not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to fetch document", err)
		return
	}

	respondJSON(w, http.StatusOK, DocumentResponse{Document: doc})
}

// Health handles GET /api/health - liveness check plus index stats.
func (h *APIHandlers) Health(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.Count(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "storage unavailable", err)
		return
	}

	respondJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Version:   apiVersion,
		Documents: count,
		Engine:    h.config.Storage.StorageEngine,
	})
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers already sent, log and move on
		fmt.Printf("failed to encode JSON response: %v\n", err)
	}
}

// respondError writes an error response with the given status code.
func respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	errResp := ErrorResponse{
		Error: message,
		Code:  http.StatusText(statusCode),
	}

	if err != nil {
		errResp.Details = map[string]interface{}{
			"error": err.Error(),
		}
	}

	respondJSON(w, statusCode, errResp)
}
