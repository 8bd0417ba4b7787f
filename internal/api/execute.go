package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/nerrad567/lookingglass/internal/lookingglass"
)

const (
	msgMissingParams = "Missing required parameters: device and command"
	msgRateLimited   = "Too many requests, try again later"
)

// errNotJSON marks a body that is empty, not JSON or not a JSON object.
var errNotJSON = errors.New("Request body must be JSON") //nolint:staticcheck // shown to callers verbatim

// decodeExecuteRequest reads {device, command, variables} from a JSON body.
//
// Variable values may be strings, numbers or booleans; null values are
// dropped and anything else is rejected.
func decodeExecuteRequest(r *http.Request) (lookingglass.Request, error) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body) == 0 {
		return lookingglass.Request{}, errNotJSON
	}

	req := lookingglass.Request{
		Device:  jsonString(body["device"]),
		Command: jsonString(body["command"]),
	}

	raw, ok := body["variables"]
	if !ok || string(raw) == "null" {
		return req, nil
	}

	var vars map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&vars); err != nil {
		return req, errors.New("variables must be an object")
	}

	req.Variables = make(map[string]string, len(vars))
	for name, v := range vars {
		switch val := v.(type) {
		case nil:
		case string:
			req.Variables[name] = val
		case json.Number:
			req.Variables[name] = val.String()
		case bool:
			req.Variables[name] = strconv.FormatBool(val)
		default:
			return req, fmt.Errorf("Missing or invalid variable: %s", name) //nolint:staticcheck // shown to callers verbatim
		}
	}
	return req, nil
}

// jsonString returns raw as a string when it is a JSON string, else "".
func jsonString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// handleExecute serves POST /api/v1/execute.
//
// Success: 200 {"result": output}. Any refusal or failure: 400 with
// {"error": message, "kind": kind} and "variable" for variable errors.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	req, err := decodeExecuteRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.Device == "" || req.Command == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgMissingParams})
		return
	}

	res := s.engine.Execute(r.Context(), req)
	if !res.OK() {
		resp := map[string]string{
			"error": res.Error.Message,
			"kind":  string(res.Error.Kind),
		}
		if res.Error.Variable != "" {
			resp["variable"] = res.Error.Variable
		}
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"result": res.Output})
}

// handleLegacyExecute serves POST /api/execute: 200 {"result"} or
// 400 {"error"}.
func (s *Server) handleLegacyExecute(w http.ResponseWriter, r *http.Request) {
	req, err := decodeExecuteRequest(r)
	if err != nil {
		writeLegacyError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Device == "" || req.Command == "" {
		writeLegacyError(w, http.StatusBadRequest, msgMissingParams)
		return
	}

	res := s.engine.Execute(r.Context(), req)
	if !res.OK() {
		writeLegacyError(w, http.StatusBadRequest, res.Error.Message)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"result": res.Output})
}

// handleFormExecute serves the web front end's form POST /execute.
//
// Variables arrive as variables[name] fields. Engine failures are
// reported as 200 {"error": message}; only missing parameters are a 400.
func (s *Server) handleFormExecute(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxRequestBodySize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeLegacyError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	form := r.PostForm
	req := lookingglass.Request{
		Device:    form.Get("device"),
		Command:   form.Get("command"),
		Variables: make(map[string]string),
	}
	if req.Device == "" || req.Command == "" {
		writeLegacyError(w, http.StatusBadRequest, msgMissingParams)
		return
	}
	for key := range form {
		if strings.HasPrefix(key, "variables[") {
			req.Variables[key] = form.Get(key)
		}
	}

	res := s.engine.Execute(r.Context(), req)
	if !res.OK() {
		writeLegacyError(w, http.StatusOK, res.Error.Message)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"output": res.Output})
}
