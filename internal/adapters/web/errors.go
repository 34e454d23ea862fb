package web

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"stockroom/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps a service-layer error to an HTTP response.
// Domain errors carry their own code and message; validation failures map to
// 400, missing records to 404, and rejected state changes to 409. Anything
// else is an unexpected failure and surfaces as a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if derr, ok := core.AsDomainError(err); ok {
		writeError(w, r, derr.Message, strings.ToUpper(derr.Code), domainStatus(derr.Code))
		return
	}
	log.Printf("internal error: %v", err)
	writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
}

func domainStatus(code string) int {
	switch code {
	case core.ErrCodeNotFound:
		return http.StatusNotFound
	case core.ErrCodeInvalidTransition, core.ErrCodeMissingLocation, core.ErrCodeInsufficientStock:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
