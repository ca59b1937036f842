package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rentdesk-backend/internal/logger"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

type Type string

const (
	RentalCreated   Type = "rental.created"
	RentalUpdated   Type = "rental.updated"
	RentalCompleted Type = "rental.completed"
	RentalDeleted   Type = "rental.deleted"
	RentalReturned  Type = "rental.returned"
	OrderCreated    Type = "order.created"
	OrderDeleted    Type = "order.deleted"
	ItemsSynced     Type = "items.synced"
)

// Event tells downstream views (dashboard, catalog, invoices) that booking data changed.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	RentalID   string    `json:"rental_id,omitempty"`
	OrderID    string    `json:"order_id,omitempty"`
	ItemIDs    []string  `json:"item_ids,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func New(t Type) Event {
	return Event{ID: uuid.NewString(), Type: t, OccurredAt: time.Now().UTC()}
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// NopPublisher drops every event. Used when NATS is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// conn is the subset of *nats.Conn the publisher needs.
type conn interface {
	Publish(subj string, data []byte) error
}

type NATSPublisher struct {
	conn   conn
	prefix string
}

func NewNATSPublisher(nc *nats.Conn, prefix string) *NATSPublisher {
	return &NATSPublisher{conn: nc, prefix: prefix}
}

// Connect dials NATS with reconnects enabled.
func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("rentdesk-backend"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}

// Subject returns "<prefix>.<type>", e.g. rentdesk.events.rental.created.
func (p *NATSPublisher) Subject(t Type) string {
	return p.prefix + "." + string(t)
}

func (p *NATSPublisher) Publish(ctx context.Context, evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := p.Subject(evt.Type)
	logger.ExternalServiceCall("nats", "publish", "subject", subject, "event_id", evt.ID)
	err = p.conn.Publish(subject, data)
	logger.ExternalServiceResult("nats", "publish", err, "subject", subject)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	return nil
}
