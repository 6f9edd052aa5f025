package daemon

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"switchboard/internal/logging"
)

func TestTokenAuthMiddleware(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	mux.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	server := httptest.NewServer(TokenAuthMiddleware("secret", mux))
	t.Cleanup(server.Close)

	cases := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"health is open", "/health", "", http.StatusOK},
		{"missing header", "/v1/ping", "", http.StatusUnauthorized},
		{"wrong scheme", "/v1/ping", "Basic secret", http.StatusUnauthorized},
		{"wrong token", "/v1/ping", "Bearer wrong", http.StatusUnauthorized},
		{"good token", "/v1/ping", "Bearer secret", http.StatusOK},
		{"padded token", "/v1/ping", "Bearer   secret", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, server.URL+tc.path, nil)
			if err != nil {
				t.Fatalf("build request: %v", err)
			}
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tc.want {
				t.Fatalf("expected status %d, got %d", tc.want, resp.StatusCode)
			}
		})
	}
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, logging.Info)
	handler := LoggingMiddleware(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"ok": true})
	}))
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/v1/things")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()

	if resp.Header.Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
	line := buf.String()
	if !strings.Contains(line, "http_request") || !strings.Contains(line, "status=201") {
		t.Fatalf("unexpected log line: %q", line)
	}
	if !strings.Contains(line, "path=/v1/things") {
		t.Fatalf("expected path field in log line: %q", line)
	}
}
