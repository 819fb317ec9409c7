// Package natsbus publishes product events to a NATS subject hierarchy.
package natsbus

import (
	"fmt"

	"github.com/nats-io/nats.go"
)

// Conn is the part of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
}

// Publisher sends events under a subject prefix, e.g. toyshop.products.product.created.
type Publisher struct {
	conn   Conn
	prefix string
}

// NewPublisher wraps conn. An empty prefix publishes the routing key as the subject.
func NewPublisher(conn Conn, prefix string) *Publisher {
	return &Publisher{conn: conn, prefix: prefix}
}

// Connect dials url and returns the connection and a publisher bound to prefix.
func Connect(url, prefix string) (*nats.Conn, *Publisher, error) {
	nc, err := nats.Connect(url, nats.Name("toyshop"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, NewPublisher(nc, prefix), nil
}

// Subject returns the NATS subject a routing key maps to.
func (p *Publisher) Subject(routingKey string) string {
	if p.prefix == "" {
		return routingKey
	}
	return p.prefix + "." + routingKey
}

// Publish sends body on the subject for routingKey.
func (p *Publisher) Publish(routingKey string, body []byte) error {
	if err := p.conn.Publish(p.Subject(routingKey), body); err != nil {
		return fmt.Errorf("nats publish %s: %w", routingKey, err)
	}
	return nil
}
