package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// NoopBroker discards every message. Used when no broker is configured so
// publishers never need a nil check.
type NoopBroker struct{}

func NewNoopBroker() *NoopBroker { return &NoopBroker{} }

func (*NoopBroker) Publish(context.Context, string, interface{}) error { return nil }

func (*NoopBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	ch := make(chan []byte)
	close(ch)
	return ch, nil
}

func (*NoopBroker) Close() error { return nil }
