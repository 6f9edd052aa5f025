package daemon

import (
	"encoding/json"
	"net/http"
	"strings"
)

func (a *API) Terminals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, TerminalListResponse{Terminals: a.Manager.List()})
	case http.MethodPost:
		var req OpenTerminalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "invalid json body",
			})
			return
		}
		term, err := a.Manager.Open(r.Context(), openTerminalConfig{
			Title: req.Title,
			Cwd:   req.Cwd,
			Shell: req.Shell,
			Env:   req.Env,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, term)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) TerminalByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/terminals/")
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	id := parts[0]

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			rt, ok := a.Manager.Get(id)
			if !ok {
				writeServiceError(w, notFoundError("terminal not found: "+id, nil))
				return
			}
			writeJSON(w, http.StatusOK, rt.Snapshot())
		case http.MethodDelete:
			if err := a.Manager.CloseTerminal(r.Context(), id); err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		default:
			writeMethodNotAllowed(w)
		}
		return
	}

	switch parts[1] {
	case "input":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		var req TerminalInputRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "invalid json body",
			})
			return
		}
		if err := a.Manager.WriteInput(id, req.Data); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	case "output":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		if isFollowRequest(r) {
			a.streamTerminalOutput(w, r, id)
			return
		}
		snapshot, err := a.Manager.SnapshotOutput(id, 0)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		lines := parseLines(r.URL.Query().Get("lines"))
		writeJSON(w, http.StatusOK, TerminalOutputResponse{
			TerminalID: id,
			Output:     lastLines(snapshot, lines),
		})
		return
	case "claude":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		var req InvokeAgentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "invalid json body",
			})
			return
		}
		term, err := a.Controller.Invoke(r.Context(), id, InvokeOptions{
			Agent:     req.Agent,
			ProfileID: req.ProfileID,
			Args:      req.Args,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, term)
		return
	case "resume":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		var req ResumeSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "invalid json body",
			})
			return
		}
		term, err := a.Controller.Resume(r.Context(), id, ResumeOptions{
			ProfileID: req.ProfileID,
			SessionID: req.SessionID,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, term)
		return
	case "switch":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		var req SwitchProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "invalid json body",
			})
			return
		}
		result, err := a.Controller.SwitchProfile(r.Context(), id, req.ProfileID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}
