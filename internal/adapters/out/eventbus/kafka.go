package eventbus

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/pkg/errs"

	"github.com/segmentio/kafka-go"
)

const kafkaTransport = "kafka"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaTransport writes envelopes keyed by order id, so one order stays on
// one partition and its updates keep their order.
type KafkaTransport struct {
	writer messageWriter
	topics TopicNames
}

// NewKafkaTransport writes to the comma-separated brokers.
func NewKafkaTransport(brokers string, topics TopicNames) *KafkaTransport {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(strings.Split(brokers, ",")...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return newKafkaTransport(w, topics)
}

func newKafkaTransport(w messageWriter, topics TopicNames) *KafkaTransport {
	return &KafkaTransport{writer: w, topics: topics}
}

func (t *KafkaTransport) Name() string {
	return kafkaTransport
}

func (t *KafkaTransport) Send(ctx context.Context, topic event.Topic, env event.Envelope) error {
	name, err := t.topics.Resolve(topic)
	if err != nil {
		return err
	}

	value, err := json.Marshal(env)
	if err != nil {
		return err
	}

	err = t.writer.WriteMessages(ctx, kafka.Message{
		Topic: name,
		Key:   []byte(env.Data.OrderID),
		Value: value,
		Time:  env.EventTime,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(env.EventType)},
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errs.NewTransportErrorWithCause(kafkaTransport, http.StatusServiceUnavailable, err)
	}
	return nil
}

// Close flushes pending messages and closes the writer.
func (t *KafkaTransport) Close() error {
	return t.writer.Close()
}
