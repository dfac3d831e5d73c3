package eventbus_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"orderflow/internal/adapters/out/eventbus"
	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventGridTransport_Send(t *testing.T) {
	t.Run("posts a one element array with the sas key", func(t *testing.T) {
		var (
			gotKey  string
			gotBody []map[string]any
		)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotKey = r.Header.Get("aeg-sas-key")
			b, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(b, &gotBody)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		transport := eventbus.NewEventGridTransport(map[event.Topic]eventbus.EventGridEndpoint{
			event.TopicOrders: {URL: srv.URL, Key: "secret"},
		}, time.Second)
		env := testEnvelope(t)

		require.NoError(t, transport.Send(t.Context(), event.TopicOrders, env))

		assert.Equal(t, "secret", gotKey)
		require.Len(t, gotBody, 1)
		assert.Equal(t, env.ID.String(), gotBody[0]["id"])
		assert.Equal(t, "newOrderReceived", gotBody[0]["eventType"])
		assert.Equal(t, "1.0", gotBody[0]["dataVersion"])
	})

	t.Run("non 200 becomes a transport error with status and body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("  invalid key \n"))
		}))
		defer srv.Close()

		transport := eventbus.NewEventGridTransport(map[event.Topic]eventbus.EventGridEndpoint{
			event.TopicOrders: {URL: srv.URL, Key: "wrong"},
		}, time.Second)

		err := transport.Send(t.Context(), event.TopicOrders, testEnvelope(t))

		var te *errs.TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, http.StatusUnauthorized, te.StatusCode)
		assert.Equal(t, "invalid key", te.Body)
		assert.Equal(t, "eventgrid", te.Transport)
	})

	t.Run("unreachable endpoint is a 503", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		url := srv.URL
		srv.Close()

		transport := eventbus.NewEventGridTransport(map[event.Topic]eventbus.EventGridEndpoint{
			event.TopicOrders: {URL: url},
		}, time.Second)

		err := transport.Send(t.Context(), event.TopicOrders, testEnvelope(t))

		var te *errs.TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, http.StatusServiceUnavailable, te.StatusCode)
	})

	t.Run("topic without endpoint", func(t *testing.T) {
		transport := eventbus.NewEventGridTransport(nil, time.Second)

		err := transport.Send(t.Context(), event.TopicTracking, testEnvelope(t))

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}
