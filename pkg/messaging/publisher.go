// Package messaging defines the event publishing contract shared by the service and its brokers.
package messaging

import (
	"context"
)

const (
	ProductsCreatedSubject = "pantry.products.created"
	ProductsUpdatedSubject = "pantry.products.updated"
	ProductsDeletedSubject = "pantry.products.deleted"
	// ProductsSubjects matches every product lifecycle subject.
	ProductsSubjects = "pantry.products.>"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher drops every event. It is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(_ context.Context, _ Event) error {
	return nil
}
