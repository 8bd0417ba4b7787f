package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleListCommands returns the whole command catalog.
func (s *Server) handleListCommands(w http.ResponseWriter, _ *http.Request) {
	cmds := s.engine.ListCommands()
	writeJSON(w, http.StatusOK, map[string]any{"commands": cmds, "count": len(cmds)})
}

// handleCommandVariables returns the declared variables of one command.
func (s *Server) handleCommandVariables(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	vars, err := s.engine.CommandVariables(id)
	if err != nil {
		writeNotFound(w, "Command not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"command": id, "variables": vars})
}

// handleLegacyVariables serves GET /get_variables?command=.
func (s *Server) handleLegacyVariables(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("command")
	if id == "" {
		writeLegacyError(w, http.StatusBadRequest, "Command parameter is required")
		return
	}

	vars, err := s.engine.CommandVariables(id)
	if err != nil {
		writeLegacyError(w, http.StatusNotFound, "Command not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"variables": vars})
}
