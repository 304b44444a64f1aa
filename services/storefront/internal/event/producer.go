package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/iflis7/iyuc-store/pkg/kafka"
	"github.com/iflis7/iyuc-store/pkg/logger"
	"github.com/iflis7/iyuc-store/services/storefront/internal/domain"
)

// Producer builds storefront events and hands them to a Publisher.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates a new event producer. A nil publisher discards events.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	if publisher == nil {
		publisher = Noop{}
	}
	return &Producer{
		publisher: publisher,
		logger:    logger,
	}
}

func (p *Producer) publish(ctx context.Context, topic string, e *pkgkafka.Event) error {
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		e.WithCorrelationID(id)
	}
	if err := p.publisher.Publish(ctx, topic, e); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("subject", e.Subject),
	)
	return nil
}

// PublishCartCreated publishes a cart.created event.
func (p *Producer) PublishCartCreated(ctx context.Context, sessionID string, cart *domain.Cart) error {
	data := CartCreatedData{
		SessionID:    sessionID,
		CartID:       cart.ID,
		RegionID:     cart.RegionID,
		CurrencyCode: cart.CurrencyCode,
	}
	e, err := pkgkafka.NewEvent(TopicCartCreated, cart.ID, SubjectTypeCart, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create cart.created event: %w", err)
	}
	return p.publish(ctx, TopicCartCreated, e)
}

// PublishOrderPlaced publishes an order.placed event.
func (p *Producer) PublishOrderPlaced(ctx context.Context, sessionID, cartID string, order *domain.Order) error {
	n := 0
	for _, it := range order.Items {
		n += it.Quantity
	}
	data := OrderPlacedData{
		SessionID:    sessionID,
		CartID:       cartID,
		OrderID:      order.ID,
		DisplayRef:   order.DisplayRef(),
		Total:        order.Total,
		CurrencyCode: order.CurrencyCode,
		ItemCount:    n,
	}
	e, err := pkgkafka.NewEvent(TopicOrderPlaced, order.ID, SubjectTypeOrder, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create order.placed event: %w", err)
	}
	return p.publish(ctx, TopicOrderPlaced, e)
}

// Close releases the underlying publisher.
func (p *Producer) Close() error {
	return p.publisher.Close()
}
