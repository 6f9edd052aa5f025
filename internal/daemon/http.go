package daemon

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeServiceError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	svcErr := asServiceError(err)
	status := http.StatusInternalServerError
	switch svcErr.Kind {
	case ServiceErrorInvalid:
		status = http.StatusBadRequest
	case ServiceErrorNotFound:
		status = http.StatusNotFound
	case ServiceErrorConflict:
		status = http.StatusConflict
	case ServiceErrorUnavailable:
		status = http.StatusInternalServerError
	}
	message := svcErr.Message
	if message == "" {
		message = svcErr.Error()
	}
	writeJSON(w, status, map[string]string{"error": message})
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
