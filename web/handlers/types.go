package handlers

import "github.com/scrypster/schemaground/pkg/types"

// GroundRequest is the JSON body for POST /api/ground.
type GroundRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

// GroundResponse wraps a grounding result for the API.
type GroundResponse struct {
	Grounding *types.GroundingResult `json:"grounding"`
	Duration  string                 `json:"duration"`
}

// DocumentResponse wraps a single document lookup.
type DocumentResponse struct {
	Document *types.Document `json:"document"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Documents int    `json:"documents"`
	Engine    string `json:"engine"`
}

// ErrorResponse is the standard error envelope for API responses.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}
