package service

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/schema"
)

// sseWriter emits server-sent events in the wire format clients expect:
// one "data: <json>" line per event, terminated by "data: [DONE]".
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newSSEWriter(w http.ResponseWriter) (*sseWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported by this connection")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &sseWriter{w: w, flusher: flusher}, nil
}

func (s *sseWriter) send(event schema.StreamEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal stream event", "error", err)
		return
	}
	fmt.Fprintf(s.w, "data: %s\n\n", data)
	s.flusher.Flush()
}

func (s *sseWriter) done() {
	fmt.Fprint(s.w, "data: [DONE]\n\n")
	s.flusher.Flush()
}

func logStoreFailure(err error) {
	slog.Error("failed to persist thread messages", "error", err)
}
