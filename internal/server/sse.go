package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Chative-core-poc-v1/assistant/internal/agent/model"
)

var errNoFlusher = errors.New("response writer does not support flushing")

// sseWriter writes StreamEvents in the text/event-stream format. It is used
// from a single goroutine.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newSSEWriter(w http.ResponseWriter) (*sseWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errNoFlusher
	}
	return &sseWriter{w: w, flusher: flusher}, nil
}

// start writes the stream headers.
func (s *sseWriter) start() {
	h := s.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	s.w.WriteHeader(http.StatusOK)
	s.flusher.Flush()
}

func (s *sseWriter) writeEvent(ev model.StreamEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	s.flusher.Flush()
	return nil
}

// writeKeepAlive writes an SSE comment, which clients ignore.
func (s *sseWriter) writeKeepAlive() error {
	if _, err := fmt.Fprint(s.w, ": ping\n\n"); err != nil {
		return fmt.Errorf("write keep-alive: %w", err)
	}
	s.flusher.Flush()
	return nil
}
