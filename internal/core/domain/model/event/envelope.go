package event

import (
	"encoding/json"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
)

// DataVersion is stamped on every envelope.
const DataVersion = "1.0"

// Type names what happened. The same type carries several order statuses.
type Type string

const (
	NewOrderReceived   Type = "newOrderReceived"
	OrderConfirmed     Type = "orderConfirmed"
	SendingCoordinates Type = "SendingCoordinates"
	OrderFailed        Type = "orderFailed"

	// SubscriptionValidation is the handshake Event Grid sends to a new webhook.
	SubscriptionValidation Type = "Microsoft.EventGrid.SubscriptionValidationEvent"
)

// Subject tells subscribers of a topic what the event is about.
type Subject string

const (
	SubjectNewOrder    Subject = "NewOrder"
	SubjectRouteUpdate Subject = "RouteUpdate"
)

// Topic is a logical destination. Transports map it to a physical name.
type Topic string

const (
	TopicOrders     Topic = "orders"
	TopicWarehouse  Topic = "warehouse"
	TopicTracking   Topic = "tracking"
	TopicDeadLetter Topic = "deadletter"
)

// Topics lists every logical topic.
func Topics() []Topic {
	return []Topic{TopicOrders, TopicWarehouse, TopicTracking, TopicDeadLetter}
}

// Envelope is one published event. Outbound envelopes always carry a UUID id;
// decoded ones keep the sender's id in SourceID whatever its format.
type Envelope struct {
	ID          kernel.UUID
	SourceID    string
	EventType   Type
	Subject     Subject
	EventTime   time.Time
	Data        OrderData
	DataVersion string
}

// NewEnvelope stamps a snapshot with a fresh id and the current UTC time.
func NewEnvelope(eventType Type, subject Subject, o *order.Order) (Envelope, error) {
	return NewEnvelopeAt(kernel.NewUUID(), time.Now(), eventType, subject, o)
}

// NewEnvelopeAt is NewEnvelope with an explicit id and time.
func NewEnvelopeAt(id kernel.UUID, at time.Time, eventType Type, subject Subject, o *order.Order) (Envelope, error) {
	if err := id.Validate(); err != nil {
		return Envelope{}, err
	}
	if err := o.Validate(); err != nil {
		return Envelope{}, err
	}
	if eventType == "" {
		return Envelope{}, errs.NewValueIsRequiredError("eventType")
	}
	if subject == "" {
		return Envelope{}, errs.NewValueIsRequiredError("subject")
	}
	return Envelope{
		ID:          id,
		EventType:   eventType,
		Subject:     subject,
		EventTime:   at.UTC().Truncate(time.Second),
		Data:        FromOrder(o),
		DataVersion: DataVersion,
	}, nil
}

type wireEnvelope struct {
	ID          string          `json:"id"`
	EventType   Type            `json:"eventType"`
	Subject     Subject         `json:"subject"`
	EventTime   string          `json:"eventTime"`
	Data        json.RawMessage `json:"data"`
	DataVersion string          `json:"dataVersion"`
}

// MarshalJSON fails on envelopes without a valid id.
func (e Envelope) MarshalJSON() ([]byte, error) {
	if err := e.ID.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(e.Data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireEnvelope{
		ID:          e.ID.String(),
		EventType:   e.EventType,
		Subject:     e.Subject,
		EventTime:   e.EventTime.UTC().Format(time.RFC3339),
		Data:        data,
		DataVersion: e.DataVersion,
	})
}

// zoneless timestamps are read as UTC.
var eventTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

func (e *Envelope) UnmarshalJSON(b []byte) error {
	var w wireEnvelope
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	// inbound ids are opaque; only ours are UUIDs
	id, _ := kernel.UUIDFromString(w.ID)

	var (
		at  time.Time
		err error
	)
	if w.EventTime != "" {
		if at, err = parseEventTime(w.EventTime); err != nil {
			return err
		}
	}

	var data OrderData
	if len(w.Data) > 0 && string(w.Data) != "null" {
		if data, err = DecodeOrderData(w.Data); err != nil {
			return err
		}
	}

	*e = Envelope{
		ID:          id,
		SourceID:    w.ID,
		EventType:   w.EventType,
		Subject:     w.Subject,
		EventTime:   at,
		Data:        data,
		DataVersion: w.DataVersion,
	}
	return nil
}

// EventID is the id to log: the sender's id for decoded envelopes.
func (e Envelope) EventID() string {
	if e.SourceID != "" {
		return e.SourceID
	}
	return e.ID.String()
}

func parseEventTime(s string) (time.Time, error) {
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errs.NewValueIsInvalidErrorWithCause("eventTime", fmt.Errorf("%q is not a timestamp", s))
}

// Failed wraps the payload of an envelope a stage could not process. The data
// is carried unchanged, including its status.
func Failed(source Envelope) Envelope {
	return Envelope{
		ID:          kernel.NewUUID(),
		EventType:   OrderFailed,
		Subject:     source.Subject,
		EventTime:   time.Now().UTC().Truncate(time.Second),
		Data:        source.Data,
		DataVersion: DataVersion,
	}
}
