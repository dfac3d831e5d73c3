package eventbus_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/domain/model/order"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEnvelope(t *testing.T) event.Envelope {
	t.Helper()
	line, err := order.NewMaterialLine("cimento", 2)
	require.NoError(t, err)
	o, err := order.NewOrder("42", "fs-1", []order.MaterialLine{line}, "Rua Direita 5, Leiria", order.New)
	require.NoError(t, err)
	env, err := event.NewEnvelope(event.NewOrderReceived, event.SubjectNewOrder, o)
	require.NoError(t, err)
	return env
}

type MockTransport struct{ mock.Mock }

func (m *MockTransport) Name() string { return "mock" }

func (m *MockTransport) Send(ctx context.Context, topic event.Topic, env event.Envelope) error {
	return m.Called(ctx, topic, env).Error(0)
}
