/*
Package handler provides the server-sent events endpoint clients poll-reduce
against: a connected event on open, then periodic pings to keep intermediaries
from closing the stream.
*/
package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/KYoiRyi/coLAN/internal/pkg/logx"
)

// eventPingInterval is how often the stream emits a keepalive ping.
const eventPingInterval = 30 * time.Second

// HandleEvents serves the SSE keepalive channel. The stream is one-way and
// carries no chat data; clients fetch state over the JSON API and use this
// channel only to detect server liveness.
func HandleEvents(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		writeEvent := func(payload map[string]any) error {
			data, err := json.Marshal(payload)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return err
			}
			flusher.Flush()
			return nil
		}

		if err := writeEvent(map[string]any{"type": "connected"}); err != nil {
			logx.Warn("Failed to open event stream.", "remote", r.RemoteAddr)
			return
		}

		ticker := time.NewTicker(eventPingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-ticker.C:
				if err := writeEvent(map[string]any{"type": "ping", "timestamp": time.Now().Unix()}); err != nil {
					return
				}
			}
		}
	}
}
