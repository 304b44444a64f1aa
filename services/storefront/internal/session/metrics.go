package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cartOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_operations_total",
			Help: "Cart operations performed against the commerce backend",
		},
		[]string{"operation", "result"},
	)

	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_sessions_active",
			Help: "Shopper sessions held in memory",
		},
	)
)

func observe(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	cartOperations.WithLabelValues(op, result).Inc()
}
