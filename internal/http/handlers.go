package http

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().
		Field("status", "ok").
		Field("timestamp", time.Now().Format(time.RFC3339)).
		Field("uptime", time.Since(s.appMetrics.uptime).Round(time.Second).String()).
		Write(w)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.ready == nil {
		checks["storage"] = "not_configured"
	} else if err := s.ready(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", "error", err)
		checks["storage"] = "failed"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["storage"] = "ok"
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients":      s.limiter.ActiveClients(),
		"auth_active_clients": s.authLimiter.ActiveClients(),
	}

	NewJSONResponse().
		Status(httpStatus).
		Field("status", status).
		Field("timestamp", time.Now().Format(time.RFC3339)).
		Field("checks", checks).
		Write(w)
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.detector.GetMetrics()
	traceMetrics := s.trace.GetMetrics()
	uptime := time.Since(s.appMetrics.uptime)

	w.WriteHeader(http.StatusOK)

	metric := func(name, help, kind string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "Total number of HTTP requests", "counter", traceMetrics.TotalRequests)
	metric("http_server_errors_total", "Responses with a 5xx status", "counter", traceMetrics.ServerErrors)
	metric("transactions_created_total", "Ledger rows created through the API", "counter", s.appMetrics.transactionsCreated.Load())
	metric("exports_total", "Export files generated", "counter", s.appMetrics.exports.Load())
	metric("rate_limit_hits_total", "Requests rejected by the rate limiters", "counter", s.limiter.Rejected()+s.authLimiter.Rejected())
	metric("suspicious_requests_total", "Total suspicious requests detected", "counter", securityMetrics.SuspiciousRequests)
	metric("active_rate_limit_clients", "Currently tracked rate limit clients", "gauge", s.limiter.ActiveClients())
	metric("uptime_seconds", "Application uptime in seconds", "gauge", fmt.Sprintf("%.0f", uptime.Seconds()))
}
