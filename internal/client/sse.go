package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"switchboard/internal/config"
	"switchboard/internal/types"
)

func streamDebugEnabled() bool {
	return strings.TrimSpace(os.Getenv("SWITCHBOARD_STREAM_DEBUG")) == "1"
}

var (
	streamLogger     *log.Logger
	streamLoggerOnce sync.Once
)

func streamDebugLogger() *log.Logger {
	if !streamDebugEnabled() {
		return nil
	}
	streamLoggerOnce.Do(func() {
		path := ""
		if base, err := config.BaseDir(); err == nil {
			path = filepath.Join(base, "stream.log")
		}
		if path == "" {
			path = filepath.Join(os.TempDir(), "switchboard-stream.log")
		}
		_ = os.MkdirAll(filepath.Dir(path), 0o700)
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			streamLogger = log.New(os.Stderr, "stream ", log.LstdFlags)
			return
		}
		streamLogger = log.New(file, "stream ", log.LstdFlags)
	})
	return streamLogger
}

func streamLogf(format string, args ...any) {
	logger := streamDebugLogger()
	if logger == nil {
		return
	}
	logger.Printf(format, args...)
}

// EventStream subscribes to the daemon's event feed. The returned cancel
// func must be called to release the connection; the channel closes when
// the stream ends. Events are dropped rather than blocking a slow reader.
func (c *Client) EventStream(ctx context.Context) (<-chan types.UIEvent, func(), error) {
	resp, cancel, err := c.openStream(ctx, c.baseURL+"/v1/events")
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan types.UIEvent, 256)
	go func() {
		defer close(ch)
		defer resp.Body.Close()

		start := time.Now()
		count := 0
		forEachData(resp.Body, func(payload []byte) {
			var event types.UIEvent
			if err := json.Unmarshal(payload, &event); err != nil {
				return
			}
			select {
			case ch <- event:
			default:
			}
			count++
			if count == 1 && streamDebugEnabled() {
				streamLogf("events first name=%s", event.Name)
			}
		})
		if streamDebugEnabled() {
			streamLogf("events close count=%d dur=%s", count, time.Since(start))
		}
	}()

	return ch, cancel, nil
}

// FollowOutput streams a terminal's output. The first chunk replays the
// current scrollback; later chunks are live.
func (c *Client) FollowOutput(ctx context.Context, id string) (<-chan types.OutputChunk, func(), error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil, fmt.Errorf("terminal id is required")
	}
	url := fmt.Sprintf("%s/v1/terminals/%s/output?follow=1", c.baseURL, id)
	resp, cancel, err := c.openStream(ctx, url)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan types.OutputChunk, 256)
	go func() {
		defer close(ch)
		defer resp.Body.Close()

		start := time.Now()
		count := 0
		forEachData(resp.Body, func(payload []byte) {
			var chunk types.OutputChunk
			if err := json.Unmarshal(payload, &chunk); err != nil {
				return
			}
			select {
			case ch <- chunk:
			default:
			}
			count++
		})
		if streamDebugEnabled() {
			streamLogf("output close id=%s count=%d dur=%s", id, count, time.Since(start))
		}
	}()

	return ch, cancel, nil
}

// openStream issues an authenticated SSE GET. The request runs on a
// dedicated http.Client because c.http carries a timeout that would cut
// long-lived streams short.
func (c *Client) openStream(ctx context.Context, url string) (*http.Response, func(), error) {
	if err := c.ensureToken(); err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	if streamDebugEnabled() {
		streamLogf("open url=%s", url)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		cancel()
		if streamDebugEnabled() {
			streamLogf("open error url=%s status=%d", url, resp.StatusCode)
		}
		return nil, nil, decodeAPIError(resp)
	}
	return resp, cancel, nil
}

// forEachData calls fn once per server-sent data payload. Blank lines
// delimit frames, multi-line data is joined, comment lines are skipped. A
// frame still open when the stream ends is delivered too; daemon shutdown
// must not swallow the event in flight.
func forEachData(body io.Reader, fn func(payload []byte)) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var dataLines []string
	flush := func() {
		if len(dataLines) == 0 {
			return
		}
		payload := strings.Join(dataLines, "\n")
		dataLines = dataLines[:0]
		fn([]byte(payload))
	}

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			flush()
			continue
		}
		if strings.HasPrefix(line, "data:") {
			dataLines = append(dataLines, strings.TrimSpace(line[len("data:"):]))
		}
	}
	flush()
	if err := scanner.Err(); err != nil && streamDebugEnabled() {
		streamLogf("scan error: %v", err)
	}
}
