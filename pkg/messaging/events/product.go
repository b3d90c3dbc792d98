// Package events contains the product lifecycle events published by the pantry service.
package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/pantry/pkg/messaging"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductEvent describes a change to a product. Deleted events carry only the ID.
type ProductEvent struct {
	subject string

	Carrier    map[string]string `json:"carrier,omitempty"`
	ProductID  uuid.UUID         `json:"product_id"`
	Name       string            `json:"name,omitempty"`
	Price      *decimal.Decimal  `json:"price,omitempty"`
	Quantity   *int32            `json:"quantity,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// ProductCreated builds the event emitted after a product is stored.
func ProductCreated(id uuid.UUID, name string, price decimal.Decimal, quantity int32) ProductEvent {
	return ProductEvent{
		subject:    messaging.ProductsCreatedSubject,
		ProductID:  id,
		Name:       name,
		Price:      &price,
		Quantity:   &quantity,
		OccurredAt: time.Now().UTC(),
	}
}

// ProductUpdated builds the event emitted after a product is modified.
func ProductUpdated(id uuid.UUID, name string, price decimal.Decimal, quantity int32) ProductEvent {
	e := ProductCreated(id, name, price, quantity)
	e.subject = messaging.ProductsUpdatedSubject
	return e
}

// ProductDeleted builds the event emitted after a product is removed.
func ProductDeleted(id uuid.UUID) ProductEvent {
	return ProductEvent{
		subject:    messaging.ProductsDeletedSubject,
		ProductID:  id,
		OccurredAt: time.Now().UTC(),
	}
}

func (e ProductEvent) Subject() string {
	return e.subject
}

func (e ProductEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
