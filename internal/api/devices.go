package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/lookingglass/internal/lookingglass"
)

// handleListDevices returns every device with its group and driver.
// Credentials are never part of the response.
func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	devices := s.engine.ListDevices()
	writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
}

// handleDeviceCommands returns the commands a device may run, keyed by ID.
func (s *Server) handleDeviceCommands(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	cmds, err := s.engine.ListAllowedCommands(name)
	if err != nil {
		if errors.Is(err, lookingglass.ErrDeviceNotFound) {
			writeNotFound(w, "Device not found")
			return
		}
		writeInternalError(w, "failed to list commands")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"device": name, "commands": cmds})
}

// handleLegacyAllowedCommands serves GET /get_allowed_commands?device=.
func (s *Server) handleLegacyAllowedCommands(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("device")
	if name == "" {
		writeLegacyError(w, http.StatusBadRequest, "Device parameter is required")
		return
	}

	cmds, err := s.engine.ListAllowedCommands(name)
	if err != nil {
		writeLegacyError(w, http.StatusNotFound, "Device not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"commands": cmds})
}
