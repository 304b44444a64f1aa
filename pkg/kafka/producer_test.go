package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func testProducer(w messageWriter) *Producer {
	return &Producer{writer: w, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "iyuc.cart.line_added", Topic("cart", "line_added"))
	assert.Equal(t, "iyuc.order.placed", Topic("order", "placed"))
}

func TestNewEvent(t *testing.T) {
	ev, err := NewEvent("order.placed", "order_01", "order", "storefront", map[string]int{"total": 4500})
	require.NoError(t, err)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, 1, ev.Version)
	assert.Equal(t, "order_01", ev.Subject)
	assert.JSONEq(t, `{"total":4500}`, string(ev.Data))

	ev.WithCorrelationID("corr-1").WithMetadata("session_id", "s1")
	raw, err := ev.Marshal()
	require.NoError(t, err)

	back, err := UnmarshalEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, "corr-1", back.CorrelationID)
	assert.Equal(t, "s1", back.Metadata["session_id"])

	var payload map[string]int
	require.NoError(t, back.UnmarshalData(&payload))
	assert.Equal(t, 4500, payload["total"])

	_, err = NewEvent("bad", "x", "x", "x", make(chan int))
	assert.Error(t, err)
	_, err = UnmarshalEvent([]byte("{"))
	assert.Error(t, err)
}

func TestHeaderCarrier(t *testing.T) {
	headers := []kafka.Header{{Key: "a", Value: []byte("1")}}
	c := NewHeaderCarrier(&headers)

	c.Set("b", "2")
	c.Set("a", "updated")
	assert.Equal(t, "updated", c.Get("a"))
	assert.Equal(t, "2", c.Get("b"))
	assert.Equal(t, "", c.Get("missing"))
	assert.Equal(t, []string{"a", "b"}, c.Keys())
}

func TestPublish_WritesKeyedMessageWithTraceContext(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3},
		SpanID:     trace.SpanID{4, 5, 6},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	w := &fakeWriter{}
	p := testProducer(w)
	ev, err := NewEvent("cart.line_added", "cart_01", "cart", "storefront", map[string]string{"variant_id": "v1"})
	require.NoError(t, err)
	ev.WithCorrelationID("corr-9")

	topic := Topic("cart", "line_added")
	before := testutil.ToFloat64(ProducerMessages.WithLabelValues(topic, "ok"))
	require.NoError(t, p.Publish(ctx, topic, ev))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, topic, msg.Topic)
	assert.Equal(t, "cart_01", string(msg.Key))

	carrier := NewHeaderCarrier(&msg.Headers)
	assert.Equal(t, "cart.line_added", carrier.Get("event_type"))
	assert.Equal(t, "corr-9", carrier.Get("correlation_id"))
	assert.Contains(t, carrier.Get("traceparent"), sc.TraceID().String())
	assert.Equal(t, before+1, testutil.ToFloat64(ProducerMessages.WithLabelValues(topic, "ok")))
}

func TestPublish_WriterError(t *testing.T) {
	p := testProducer(&fakeWriter{err: errors.New("leader not available")})
	ev, err := NewEvent("order.placed", "order_1", "order", "storefront", nil)
	require.NoError(t, err)

	topic := Topic("order", "placed")
	before := testutil.ToFloat64(ProducerMessages.WithLabelValues(topic, "error"))
	err = p.Publish(context.Background(), topic, ev)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish event to iyuc.order.placed")
	assert.Equal(t, before+1, testutil.ToFloat64(ProducerMessages.WithLabelValues(topic, "error")))
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	assert.EqualError(t, PingBrokers(context.Background(), nil), "kafka: no brokers configured")
}

func TestDefaultProducerConfig(t *testing.T) {
	cfg := DefaultProducerConfig([]string{"localhost:9092"})
	assert.Equal(t, 100, cfg.BatchSize)
	assert.False(t, cfg.Async)
	assert.NotNil(t, NewProducer(cfg, slog.Default()))
}
