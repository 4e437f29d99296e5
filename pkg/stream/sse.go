package stream

import (
	"bufio"
	"encoding/json"
	"fmt"
)

// SSEWriter implements Transport over a buffered writer using the
// text/event-stream wire format. Chunks are JSON-encoded so newlines and
// control characters survive the trip.
type SSEWriter struct {
	w *bufio.Writer
}

func NewSSEWriter(w *bufio.Writer) *SSEWriter {
	return &SSEWriter{w: w}
}

type ssePayload struct {
	Content string `json:"content"`
}

func (s *SSEWriter) WriteChunk(chunk string) error {
	data, err := json.Marshal(ssePayload{Content: chunk})
	if err != nil {
		return fmt.Errorf("marshal chunk: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write chunk: %w", err)
	}
	return s.w.Flush()
}

func (s *SSEWriter) WriteError(message string) error {
	data, err := json.Marshal(ssePayload{Content: message})
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "event: error\ndata: %s\n\n", data); err != nil {
		return fmt.Errorf("write error event: %w", err)
	}
	return s.w.Flush()
}

func (s *SSEWriter) Done() error {
	if _, err := fmt.Fprint(s.w, "data: [DONE]\n\n"); err != nil {
		return fmt.Errorf("write done: %w", err)
	}
	return s.w.Flush()
}
