package api

import (
	"net/http"
	"strconv"

	"github.com/nerrad567/lookingglass/internal/audit"
)

// handleListAudit returns recent executions, most recent first.
//
// Query parameters:
//   - device: filter by device name
//   - command: filter by command ID
//   - outcome: "success" or an error kind
//   - limit: max results (default 50, max 200)
//   - offset: pagination offset
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "audit trail not configured")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Device:    q.Get("device"),
		CommandID: q.Get("command"),
		Outcome:   q.Get("outcome"),
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeBadRequest(w, "limit must be an integer")
			return
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeBadRequest(w, "offset must be an integer")
			return
		}
		filter.Offset = n
	}

	result, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list executions", "error", err, "request_id", requestID(r.Context()))
		writeInternalError(w, "failed to list executions")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
