// Package event publishes storefront domain events to the configured broker.
package event

import (
	"context"

	pkgkafka "github.com/iflis7/iyuc-store/pkg/kafka"
)

var (
	TopicCartCreated = pkgkafka.Topic("cart", "created")
	TopicOrderPlaced = pkgkafka.Topic("order", "placed")
)

const (
	SubjectTypeCart  = "cart"
	SubjectTypeOrder = "order"
	SourceStorefront = "storefront"
)

// Publisher delivers an event to a topic. *kafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, e *pkgkafka.Event) error
	Close() error
}

// CartCreatedData is the payload of a cart.created event.
type CartCreatedData struct {
	SessionID    string `json:"session_id"`
	CartID       string `json:"cart_id"`
	RegionID     string `json:"region_id,omitempty"`
	CurrencyCode string `json:"currency_code,omitempty"`
}

// OrderPlacedData is the payload of an order.placed event.
type OrderPlacedData struct {
	SessionID    string `json:"session_id"`
	CartID       string `json:"cart_id"`
	OrderID      string `json:"order_id"`
	DisplayRef   string `json:"display_ref"`
	Total        int64  `json:"total"`
	CurrencyCode string `json:"currency_code"`
	ItemCount    int    `json:"item_count"`
}

// Noop discards events. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, *pkgkafka.Event) error { return nil }
func (Noop) Close() error { return nil }
