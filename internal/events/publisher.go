package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// Event subjects published by the API. Downstream consumers (analytics,
// fulfilment) subscribe on store.>.
const (
	SubjectUserRegistered = "store.user.registered"
	SubjectOrderCreated   = "store.order.created"
	SubjectOrderCancelled = "store.order.cancelled"
	SubjectOrderDelivered = "store.order.delivered"
)

// Event is the envelope for every published message.
type Event struct {
	ID        string                 `json:"id"`
	Subject   string                 `json:"subject"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// Publisher sends domain events to NATS. It is optional infrastructure: a
// nil Publisher is safe to call, and publish failures are logged, never
// returned to the request path.
type Publisher struct {
	conn   *nats.Conn
	logger *logrus.Entry
}

// NewPublisher connects to NATS and returns a publisher.
func NewPublisher(natsURL string, logger *logrus.Logger) (*Publisher, error) {
	conn, err := nats.Connect(natsURL,
		nats.Name("storefront-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &Publisher{
		conn:   conn,
		logger: logger.WithField("component", "events.publisher"),
	}, nil
}

// Publish sends one event. Failures are swallowed after logging.
func (p *Publisher) Publish(ctx context.Context, subject string, data map[string]interface{}) {
	if p == nil {
		return
	}

	event := Event{
		ID:        uuid.NewString(),
		Subject:   subject,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).WithField("subject", subject).Error("Failed to marshal event")
		return
	}

	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.WithError(err).WithField("subject", subject).Warn("Failed to publish event")
		return
	}
	p.logger.WithField("subject", subject).Debug("Event published")
}

// Close drains the connection.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
