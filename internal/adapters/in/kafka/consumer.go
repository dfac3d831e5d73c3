// Package kafka feeds envelopes from Kafka topics into the pipeline stages.
// Handler faults never block a partition: the offset is committed either way.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Handler processes one decoded envelope.
type Handler func(ctx context.Context, env event.Envelope)

type subscription struct {
	stage   string
	reader  messageReader
	handler Handler
}

// Consumer runs one reader per subscribed topic.
type Consumer struct {
	subs   []subscription
	stop   context.CancelFunc
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewConsumer returns a consumer with no subscriptions.
func NewConsumer(logger *slog.Logger) *Consumer {
	return &Consumer{logger: logger.With("component", "kafka_consumer")}
}

// Subscribe adds a reader on topic in the consumer group. stage names the
// handler in logs and metrics.
func (c *Consumer) Subscribe(brokers, groupID, topic, stage string, handler Handler) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        strings.Split(brokers, ","),
		GroupID:        groupID,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        500 * time.Millisecond,
		CommitInterval: 0,
	})
	c.subscribe(stage, reader, handler)
}

func (c *Consumer) subscribe(stage string, reader messageReader, handler Handler) {
	c.subs = append(c.subs, subscription{stage: stage, reader: reader, handler: handler})
}

// Start launches the readers. They stop when ctx is canceled or on Close.
func (c *Consumer) Start(ctx context.Context) {
	ctx, c.stop = context.WithCancel(ctx)
	for _, sub := range c.subs {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.consume(ctx, sub)
		}()
	}
}

// Close stops the readers, waits for in-flight messages and closes them.
func (c *Consumer) Close() error {
	if c.stop != nil {
		c.stop()
	}
	c.wg.Wait()
	var closeErrs []error
	for _, sub := range c.subs {
		closeErrs = append(closeErrs, sub.reader.Close())
	}
	return errors.Join(closeErrs...)
}

func (c *Consumer) consume(ctx context.Context, sub subscription) {
	logger := c.logger.With("stage", sub.stage)
	logger.InfoContext(ctx, "consumer started")

	for {
		msg, err := sub.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.InfoContext(context.Background(), "consumer stopped")
				return
			}
			logger.ErrorContext(ctx, "fetch failed", "error", err)
			if !sleep(ctx, time.Second) {
				return
			}
			continue
		}

		c.handle(ctx, logger, sub, msg)

		if err = sub.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			logger.ErrorContext(ctx, "commit failed",
				"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "error", err)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, logger *slog.Logger, sub subscription, msg kafka.Message) {
	defer func() {
		if r := recover(); r != nil {
			metrics.StageEventsTotal.WithLabelValues(sub.stage, metrics.OutcomeFailure).Inc()
			logger.ErrorContext(ctx, "handler panic", "offset", msg.Offset, "panic", r)
		}
	}()

	var env event.Envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		metrics.StageEventsTotal.WithLabelValues(sub.stage, metrics.OutcomeFailure).Inc()
		logger.ErrorContext(ctx, "skipping undecodable message",
			"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "error", err)
		return
	}
	sub.handler(ctx, env)
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
