package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"
)

// checkRequest is the body of POST /v1/admission/check.
type checkRequest struct {
	// Identifier names the client being limited (API key, user ID).
	Identifier string `json:"identifier"`

	// Cost is the token cost of this request. Zero or absent selects
	// the configured per-request cost.
	Cost int `json:"cost,omitempty"`
}

// checkResponse is the body returned for admission checks.
type checkResponse struct {
	Allowed           bool    `json:"allowed"`
	Reason            string  `json:"reason,omitempty"`
	Scope             string  `json:"scope,omitempty"`
	RetryAfterSeconds float64 `json:"retry_after_seconds,omitempty"`
}

// errorResponse is the body returned for client errors.
type errorResponse struct {
	Error string `json:"error"`
}

// handleCheck serves POST /v1/admission/check. Allowed requests get
// 200, denied requests get 429 with a Retry-After header.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	if req.Identifier == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "identifier is required"})
		return
	}

	result := s.manager.Check(r.Context(), req.Identifier, req.Cost)
	s.setRateLimitHeaders(w, req.Identifier)

	if !result.Allowed {
		retryAfter := int(math.Ceil(result.RetryAfter.Seconds()))
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		writeJSON(w, http.StatusTooManyRequests, checkResponse{
			Allowed:           false,
			Reason:            result.Reason,
			Scope:             string(result.Scope),
			RetryAfterSeconds: result.RetryAfter.Seconds(),
		})
		return
	}

	writeJSON(w, http.StatusOK, checkResponse{Allowed: true})
}

// handleStatus serves GET /v1/admission/status/{identifier}. The read
// never consumes tokens or creates limiting state.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	identifier := r.PathValue("identifier")
	if identifier == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "identifier is required"})
		return
	}

	status := s.manager.Status(identifier)
	s.setRateLimitHeaders(w, identifier)
	writeJSON(w, http.StatusOK, status)
}

// handleReset serves POST /v1/admission/reset/{identifier}.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	identifier := r.PathValue("identifier")
	if identifier == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "identifier is required"})
		return
	}

	s.manager.Reset(identifier)
	slog.InfoContext(r.Context(), "identifier reset", "identifier", identifier)
	w.WriteHeader(http.StatusNoContent)
}

// handleHealth serves GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// setRateLimitHeaders relays minute-window usage as the conventional
// X-RateLimit headers.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, identifier string) {
	status := s.manager.Status(identifier)
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(status.Minute.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(status.Minute.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Minute).Unix(), 10))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
