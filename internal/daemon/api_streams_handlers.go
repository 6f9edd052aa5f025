package daemon

import (
	"encoding/json"
	"net/http"

	"switchboard/internal/logging"
	"switchboard/internal/types"
)

// streamTerminalOutput serves a terminal's output as server-sent events:
// first the buffered scrollback as one chunk, then live chunks until the
// client disconnects or the terminal closes.
func (a *API) streamTerminalOutput(w http.ResponseWriter, r *http.Request, id string) {
	snapshot, err := a.Manager.SnapshotOutput(id, 0)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	ch, cancel, err := a.Manager.SubscribeTail(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	defer cancel()

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	if snapshot != "" {
		chunk := types.OutputChunk{TerminalID: id, Data: snapshot}
		if data, err := json.Marshal(chunk); err == nil {
			_, _ = w.Write([]byte("data: "))
			_, _ = w.Write(data)
			_, _ = w.Write([]byte("\n\n"))
		}
	}
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case chunk, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(chunk)
			if err != nil {
				continue
			}
			_, _ = w.Write([]byte("data: "))
			_, _ = w.Write(data)
			_, _ = w.Write([]byte("\n\n"))
			flusher.Flush()
		}
	}
}

// Events streams the daemon-wide event bus as server-sent events.
func (a *API) Events(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	reqID := logging.NewID()
	if a.Logger != nil && a.Logger.Enabled(logging.Debug) {
		a.Logger.Debug("events_stream_open", logging.F("req_id", reqID))
	}
	ch, cancel := a.Hub.Subscribe()
	defer cancel()

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	_, _ = w.Write([]byte(":\n\n"))
	flusher.Flush()

	ctx := r.Context()
	var count int
	reason := "unknown"
	defer func() {
		if a.Logger != nil && a.Logger.Enabled(logging.Debug) {
			a.Logger.Debug("events_stream_close",
				logging.F("req_id", reqID),
				logging.F("count", count),
				logging.F("reason", reason),
			)
		}
	}()
	for {
		select {
		case <-ctx.Done():
			reason = "ctx_done"
			return
		case event, ok := <-ch:
			if !ok {
				reason = "channel_closed"
				return
			}
			count++
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			_, _ = w.Write([]byte("data: "))
			_, _ = w.Write(data)
			_, _ = w.Write([]byte("\n\n"))
			flusher.Flush()
		}
	}
}
