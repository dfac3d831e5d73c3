package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
)

const maxWebhookBodyBytes = 8 << 20

// eventHeader is enough of an inbound event to route it.
type eventHeader struct {
	ID        string     `json:"id"`
	EventType event.Type `json:"eventType"`
	Data      struct {
		ValidationCode string `json:"validationCode"`
	} `json:"data"`
}

// webhook answers the subscription handshake or hands every event of the batch
// to stage. Undecodable events are logged and skipped; the batch is still
// acknowledged.
func (s *Server) webhook(c echo.Context, name string, stage func(context.Context, event.Envelope)) error {
	ctx := c.Request().Context()

	raw, err := readBody(c, maxWebhookBodyBytes)
	if err != nil {
		return c.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: webhookBodyFailedMessage})
	}

	batch, err := splitBatch(raw)
	if err != nil {
		return c.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: webhookBodyFailedMessage})
	}

	for _, item := range batch {
		var header eventHeader
		if err = json.Unmarshal(item, &header); err != nil {
			s.logger.WarnContext(ctx, "skipping unreadable event", "error", err)
			continue
		}

		if header.EventType == event.SubscriptionValidation {
			s.logger.InfoContext(ctx, "subscription validation", "stage", name)
			return c.JSON(http.StatusOK, validationResponse{ValidationResponse: header.Data.ValidationCode})
		}

		var env event.Envelope
		if err = json.Unmarshal(item, &env); err != nil {
			metrics.StageEventsTotal.WithLabelValues(name, metrics.OutcomeFailure).Inc()
			s.logger.ErrorContext(ctx, "skipping undecodable event",
				"stage", name, "event_id", header.ID, "event_type", header.EventType, "error", err)
			continue
		}

		stage(ctx, env)
	}

	return c.NoContent(http.StatusOK)
}

// splitBatch accepts the Event Grid array form and a single event object.
func splitBatch(raw []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return []json.RawMessage{trimmed}, nil
	}
	var batch []json.RawMessage
	if err := json.Unmarshal(trimmed, &batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// unwrapData returns the value under "data" when body is an object carrying
// one, and body otherwise.
func unwrapData(body []byte) []byte {
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(body, &outer); err != nil {
		return body
	}
	if data, ok := outer["data"]; ok {
		return data
	}
	return body
}

func readBody(c echo.Context, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(c.Request().Body, limit))
}
