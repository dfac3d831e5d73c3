package eventbus

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"orderflow/internal/core/domain/model/event"
)

// LogTransport writes one JSON line per envelope. It backs local runs and the
// simulate command.
type LogTransport struct {
	mu  sync.Mutex
	enc *json.Encoder
}

type logLine struct {
	Topic event.Topic    `json:"topic"`
	Event event.Envelope `json:"event"`
}

// NewLogTransport writes one JSON line per event to w.
func NewLogTransport(w io.Writer) *LogTransport {
	return &LogTransport{enc: json.NewEncoder(w)}
}

func (t *LogTransport) Name() string {
	return "log"
}

func (t *LogTransport) Send(ctx context.Context, topic event.Topic, env event.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enc.Encode(logLine{Topic: topic, Event: env})
}
