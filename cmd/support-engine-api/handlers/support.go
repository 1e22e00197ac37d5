// Package handlers provides HTTP handlers for the support engine API.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/omniretail-ai/support-engine/internal/analytics"
	"github.com/omniretail-ai/support-engine/internal/audit"
	"github.com/omniretail-ai/support-engine/internal/lookup"
	"github.com/omniretail-ai/support-engine/internal/observability"
	"github.com/omniretail-ai/support-engine/pkg/engine"
)

// SupportHandler handles lookup and report requests.
type SupportHandler struct {
	logger *observability.Logger
	engine *engine.Engine
}

// NewSupportHandler creates a new support handler.
func NewSupportHandler(logger *observability.Logger, eng *engine.Engine) *SupportHandler {
	return &SupportHandler{
		logger: logger,
		engine: eng,
	}
}

// LookupRequestDTO represents the API request for a fast lookup.
type LookupRequestDTO struct {
	Operation string `json:"operation"`
}

// ReportRequestDTO represents the API request for an analytical query.
type ReportRequestDTO struct {
	SQL string `json:"sql"`
}

// ResultResponseDTO represents the API response for both query paths.
type ResultResponseDTO struct {
	Result    string `json:"result"`
	LatencyMs int64  `json:"latencyMs"`
}

// OperationDTO describes one lookup operation.
type OperationDTO struct {
	Code string `json:"code"`
	Hint string `json:"hint"`
}

// Lookup handles POST /lookup.
func (h *SupportHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var reqDTO LookupRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if reqDTO.Operation == "" {
		h.writeError(w, http.StatusBadRequest, "operation is required", "")
		return
	}

	started := time.Now()
	result := h.engine.Lookup(r.Context(), reqDTO.Operation)

	h.writeJSON(w, ResultResponseDTO{
		Result:    result,
		LatencyMs: time.Since(started).Milliseconds(),
	})
}

// Report handles POST /report.
func (h *SupportHandler) Report(w http.ResponseWriter, r *http.Request) {
	var reqDTO ReportRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if reqDTO.SQL == "" {
		h.writeError(w, http.StatusBadRequest, "sql is required", "")
		return
	}

	started := time.Now()
	result := h.engine.Report(r.Context(), reqDTO.SQL)

	h.writeJSON(w, ResultResponseDTO{
		Result:    result,
		LatencyMs: time.Since(started).Milliseconds(),
	})
}

// Operations handles GET /operations.
func (h *SupportHandler) Operations(w http.ResponseWriter, r *http.Request) {
	ops := make([]OperationDTO, 0, len(lookup.Ops))
	for _, op := range lookup.Ops {
		ops = append(ops, OperationDTO{
			Code: string(op),
			Hint: lookup.OpHint(op),
		})
	}

	h.writeJSON(w, map[string]interface{}{"operations": ops})
}

// Schema handles GET /schema.
func (h *SupportHandler) Schema(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{"schema": analytics.SchemaReference})
}

// Audit handles GET /audit.
func (h *SupportHandler) Audit(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.writeError(w, http.StatusBadRequest, "invalid limit", "")
			return
		}
		limit = n
	}

	events := h.engine.Audit().Recent(limit)
	if events == nil {
		events = []audit.Event{}
	}

	h.writeJSON(w, map[string]interface{}{"events": events})
}

func (h *SupportHandler) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *SupportHandler) writeError(w http.ResponseWriter, status int, message, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]string{"error": message}
	if detail != "" {
		resp["detail"] = detail
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode error response")
	}
}
