package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ProducerMessages counts publish attempts by topic and result
// ("ok" or "error").
var ProducerMessages = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_producer_messages_total",
		Help: "Kafka publish attempts by topic and result.",
	},
	[]string{"topic", "result"},
)
