package checkout

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersPlaced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_checkout_orders_total",
			Help: "Order placement attempts by outcome",
		},
		[]string{"result"},
	)

	shippingCalculations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_shipping_calculations_total",
			Help: "Calculated shipping price lookups by outcome",
		},
		[]string{"result"},
	)
)
