package eventbus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/pkg/errs"
)

const (
	eventGridTransport = "eventgrid"
	sasKeyHeader       = "aeg-sas-key"
	maxErrorBody       = 4 << 10
)

// EventGridEndpoint is one Event Grid topic.
type EventGridEndpoint struct {
	URL string
	Key string
}

// EventGridTransport posts each envelope as a one-element JSON array.
type EventGridTransport struct {
	client    *http.Client
	endpoints map[event.Topic]EventGridEndpoint
}

// NewEventGridTransport posts to the endpoint configured for each topic.
func NewEventGridTransport(endpoints map[event.Topic]EventGridEndpoint, timeout time.Duration) *EventGridTransport {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &EventGridTransport{
		client:    &http.Client{Timeout: timeout},
		endpoints: endpoints,
	}
}

func (t *EventGridTransport) Name() string {
	return eventGridTransport
}

// Send posts env as a one-element batch.
func (t *EventGridTransport) Send(ctx context.Context, topic event.Topic, env event.Envelope) error {
	endpoint, ok := t.endpoints[topic]
	if !ok || endpoint.URL == "" {
		return errs.NewValueIsInvalidErrorWithCause("topic", fmt.Errorf("%q has no Event Grid endpoint", topic))
	}

	body, err := json.Marshal([]event.Envelope{env})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(sasKeyHeader, endpoint.Key)

	resp, err := t.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errs.NewTransportErrorWithCause(eventGridTransport, http.StatusServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return errs.NewTransportError(eventGridTransport, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
