package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/lookingglass/internal/panel"
)

// healthCheckTimeout bounds each component check in /api/v1/health.
const healthCheckTimeout = 3 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, "method not allowed")
	})

	// Web form (embedded via go:embed)
	if s.cfg.Panel.Enabled {
		ui := panel.Handler(s.cfg.Panel.Dir)
		r.Get("/", ui.ServeHTTP)
		r.Get("/static/*", ui.ServeHTTP)
	}

	// Legacy routes served to the web front end.
	r.Get("/get_allowed_commands", s.handleLegacyAllowedCommands)
	r.Get("/get_variables", s.handleLegacyVariables)
	r.With(s.rateLimitMiddleware(true)).Post("/execute", s.handleFormExecute)
	r.With(s.rateLimitMiddleware(true)).Post("/api/execute", s.handleLegacyExecute)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)
			r.Get("/{name}/commands", s.handleDeviceCommands)
		})

		r.Route("/commands", func(r chi.Router) {
			r.Get("/", s.handleListCommands)
			r.Get("/{id}/variables", s.handleCommandVariables)
		})

		r.With(s.rateLimitMiddleware(false)).Post("/execute", s.handleExecute)
		r.Get("/audit", s.handleListAudit)
	})

	return r
}

// handleHealth runs every registered component check. Any failure turns
// the status to "degraded" with a 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "ok"
	code := http.StatusOK
	components := make(map[string]string, len(names))
	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := s.checks[name].HealthCheck(ctx)
		cancel()
		if err != nil {
			s.logger.Warn("health check failed", "component", name, "error", err)
			components[name] = "unhealthy"
			status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		components[name] = "ok"
	}

	writeJSON(w, code, map[string]any{
		"status":     status,
		"version":    s.version,
		"site":       s.site.ID,
		"components": components,
	})
}
