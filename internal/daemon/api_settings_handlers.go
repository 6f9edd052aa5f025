package daemon

import (
	"encoding/json"
	"net/http"

	"switchboard/internal/types"
)

func (a *API) AutoSwitchSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := a.Settings.AutoSwitch(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, settings)
	case http.MethodPut:
		var req types.AutoSwitchSettings
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "invalid json body",
			})
			return
		}
		if err := a.Settings.SetAutoSwitch(r.Context(), req); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, req)
	default:
		writeMethodNotAllowed(w)
	}
}
