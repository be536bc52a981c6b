package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: ok, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: ok, degraded, or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

// handleHealthCheck reports "ok" unless a component is down. The search
// index is optional, so its problems only degrade the status.
func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	components := map[string]ComponentHealth{
		"database": s.checkDatabase(ctx),
		"search":   s.checkSearchIndex(),
	}

	overall := "ok"
	if components["database"].Status == "unhealthy" {
		overall = "unhealthy"
	} else if components["search"].Status != "ok" {
		overall = "degraded"
	}

	return &HealthOutput{Body: HealthResponse{Status: overall, Components: components}}, nil
}

func (s *Server) checkDatabase(ctx context.Context) ComponentHealth {
	if s.store == nil {
		return ComponentHealth{Status: "unhealthy", Message: "database not configured"}
	}

	start := time.Now()
	err := s.store.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		s.logger.Error("health check: database ping failed", "error", err)
		return ComponentHealth{Status: "unhealthy", Latency: latency.String(), Message: "database unreachable"}
	}
	return ComponentHealth{Status: "ok", Latency: latency.String()}
}

func (s *Server) checkSearchIndex() ComponentHealth {
	if s.search == nil {
		return ComponentHealth{Status: "degraded", Message: "search index not configured"}
	}

	start := time.Now()
	_, err := s.search.DocumentCount()
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{Status: "degraded", Latency: latency.String(), Message: "search index unreachable"}
	}
	return ComponentHealth{Status: "ok", Latency: latency.String()}
}
