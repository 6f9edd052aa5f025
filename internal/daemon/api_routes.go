package daemon

import (
	"net/http"
	"os"
)

func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", a.Health)
	mux.HandleFunc("/v1/terminals", a.Terminals)
	mux.HandleFunc("/v1/terminals/", a.TerminalByID)
	mux.HandleFunc("/v1/profiles", a.ProfilesCollection)
	mux.HandleFunc("/v1/profiles/best", a.BestProfile)
	mux.HandleFunc("/v1/profiles/", a.ProfileByID)
	mux.HandleFunc("/v1/settings/autoswitch", a.AutoSwitchSettings)
	mux.HandleFunc("/v1/events", a.Events)
	mux.HandleFunc("/v1/shutdown", a.ShutdownDaemon)
}

// Health responds without auth so clients can probe a daemon they do not
// yet hold a token for.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		OK:      true,
		Version: a.Version,
		PID:     os.Getpid(),
	})
}
