// Package rpc provides the Connect service implementation for the support engine.
package rpc

import (
	"context"
	"errors"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/omniretail-ai/support-engine/internal/observability"
	"github.com/omniretail-ai/support-engine/pkg/engine"
)

// Procedure paths for the Connect handlers.
const (
	LookupProcedure = "/omniretail.support.v1.SupportService/Lookup"
	ReportProcedure = "/omniretail.support.v1.SupportService/Report"
)

// SupportService implements the Connect support service.
type SupportService struct {
	logger *observability.Logger
	engine *engine.Engine
}

// NewSupportService creates a new support service.
func NewSupportService(logger *observability.Logger, eng *engine.Engine) *SupportService {
	return &SupportService{
		logger: logger,
		engine: eng,
	}
}

// LookupRequest represents the Connect request message for a fast lookup.
type LookupRequest struct {
	// Operation carries the full "OPERACION:valor" directive.
	Operation string `json:"operation"`
}

// LookupResponse represents the Connect response message for a fast lookup.
type LookupResponse struct {
	Result    string `json:"result"`
	LatencyMs int64  `json:"latency_ms"`
}

// ReportRequest represents the Connect request message for an analytical query.
type ReportRequest struct {
	SQL string `json:"sql"`
}

// ReportResponse represents the Connect response message for an analytical query.
type ReportResponse struct {
	Result    string `json:"result"`
	LatencyMs int64  `json:"latency_ms"`
}

// Lookup handles Connect fast-lookup calls.
func (s *SupportService) Lookup(ctx context.Context, req *connect.Request[LookupRequest]) (*connect.Response[LookupResponse], error) {
	if req.Msg.Operation == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("operation is required"))
	}

	started := time.Now()
	result := s.engine.Lookup(ctx, req.Msg.Operation)

	return connect.NewResponse(&LookupResponse{
		Result:    result,
		LatencyMs: time.Since(started).Milliseconds(),
	}), nil
}

// Report handles Connect analytical query calls.
func (s *SupportService) Report(ctx context.Context, req *connect.Request[ReportRequest]) (*connect.Response[ReportResponse], error) {
	if req.Msg.SQL == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("sql is required"))
	}

	started := time.Now()
	result := s.engine.Report(ctx, req.Msg.SQL)

	return connect.NewResponse(&ReportResponse{
		Result:    result,
		LatencyMs: time.Since(started).Milliseconds(),
	}), nil
}

// Routes returns the procedure paths and handlers to mount on an HTTP mux.
func (s *SupportService) Routes() map[string]http.Handler {
	return map[string]http.Handler{
		LookupProcedure: connect.NewUnaryHandler(LookupProcedure, s.Lookup),
		ReportProcedure: connect.NewUnaryHandler(ReportProcedure, s.Report),
	}
}
