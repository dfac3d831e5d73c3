package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/pkg/errs"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	mqttTransport = "mqtt"
	mqttQoS       = 1
)

type mqttPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTTransport publishes with QoS 1 and waits for the broker ack.
type MQTTTransport struct {
	client  mqttPublisher
	topics  TopicNames
	timeout time.Duration
}

// ConnectMQTT opens a client to broker with the given client id.
func ConnectMQTT(broker, clientID string, timeout time.Duration) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(timeout)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, fmt.Errorf("mqtt connect to %s timed out after %s", broker, timeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", broker, err)
	}
	return client, nil
}

// NewMQTTTransport publishes on the mapped topic names, waiting up to timeout
// for each acknowledgement.
func NewMQTTTransport(client mqttPublisher, topics TopicNames, timeout time.Duration) *MQTTTransport {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &MQTTTransport{client: client, topics: topics, timeout: timeout}
}

func (t *MQTTTransport) Name() string {
	return mqttTransport
}

// Send publishes env with QoS 1.
func (t *MQTTTransport) Send(ctx context.Context, topic event.Topic, env event.Envelope) error {
	name, err := t.topics.Resolve(topic)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}

	token := t.client.Publish(name, mqttQoS, false, payload)

	timer := time.NewTimer(t.timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return errs.NewTransportError(mqttTransport, http.StatusServiceUnavailable,
			fmt.Sprintf("no ack within %s", t.timeout))
	case <-token.Done():
	}

	if err = token.Error(); err != nil {
		return errs.NewTransportErrorWithCause(mqttTransport, http.StatusServiceUnavailable, err)
	}
	return nil
}
