package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iflis7/iyuc-store/pkg/health"
	"github.com/iflis7/iyuc-store/pkg/middleware"
	"github.com/iflis7/iyuc-store/services/storefront/internal/catalog"
	"github.com/iflis7/iyuc-store/services/storefront/internal/checkout"
	"github.com/iflis7/iyuc-store/services/storefront/internal/commerce"
	"github.com/iflis7/iyuc-store/services/storefront/internal/i18n"
	"github.com/iflis7/iyuc-store/services/storefront/internal/orders"
	"github.com/iflis7/iyuc-store/services/storefront/internal/session"
)

const serviceName = "storefront"

// Deps are the collaborators behind the storefront routes.
type Deps struct {
	Client         commerce.Client
	Sessions       *session.Manager
	Flows          *checkout.Registry
	Orders         *orders.Service
	Renderer       *catalog.Renderer
	Dictionary     *i18n.Dictionary
	DefaultCountry string
}

// RouterConfig holds the edge settings of the HTTP server.
type RouterConfig struct {
	Session        SessionConfig
	CORS           middleware.CORSConfig
	RateLimitRPS   float64
	RateLimitBurst int
	PprofCIDRs     []string
	CatalogMaxAge  int
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(deps Deps, healthHandler *health.Handler, logger *slog.Logger, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	locales := localeResolver{sessions: deps.Sessions}
	regions := newRegionCache(deps.Client, deps.DefaultCountry, logger)

	catalogHandler := NewCatalogHandler(deps.Client, deps.Renderer, regions, locales, logger)
	cartHandler := NewCartHandler(deps.Sessions, deps.Flows, locales, logger)
	checkoutHandler := NewCheckoutHandler(deps.Sessions, deps.Flows, locales, logger)
	accountHandler := NewAccountHandler(deps.Sessions, deps.Orders, logger)
	localeHandler := NewLocaleHandler(deps.Dictionary, locales)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
		r.Use(SessionID(cfg.Session))
		r.Use(middleware.Tracing(serviceName))
		r.Use(middleware.RequestLogger(logger))
		r.Use(ContentTypeJSON)

		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(cfg.CatalogMaxAge))

			r.Get("/locales", localeHandler.ListLocales)
			r.Get("/i18n/{locale}", localeHandler.GetMessages)

			r.Get("/regions", catalogHandler.ListRegions)
			r.Get("/collections", catalogHandler.ListCollections)
			r.Get("/collections/{handle}", catalogHandler.GetCollection)
			r.Get("/products", catalogHandler.ListProducts)
			r.Get("/products/{handle}", catalogHandler.GetProduct)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.NoStore)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Post("/items", cartHandler.AddItem)
				r.Patch("/items/{id}", cartHandler.SetItemQuantity)
				r.Delete("/items/{id}", cartHandler.RemoveItem)
				r.Post("/refresh", cartHandler.Refresh)
				r.Post("/reset", cartHandler.Reset)
				r.Put("/open", cartHandler.SetOpen)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/", checkoutHandler.GetCheckout)
				r.Delete("/", checkoutHandler.Restart)
				r.Post("/information", checkoutHandler.SubmitInformation)
				r.Post("/shipping-option", checkoutHandler.SelectShippingOption)
				r.Post("/payment", checkoutHandler.ContinueToPayment)
				r.Post("/place-order", checkoutHandler.PlaceOrder)
				r.Post("/back", checkoutHandler.Back)
			})

			r.Get("/orders", accountHandler.ListOrders)
			r.Get("/orders/{id}", accountHandler.GetOrder)

			r.Route("/session", func(r chi.Router) {
				r.Use(middleware.CustomerToken)

				r.Put("/auth-token", accountHandler.SetAuthToken)
				r.Delete("/auth-token", accountHandler.ClearAuthToken)
				r.Put("/locale", accountHandler.SetLocale)
			})
		})
	})

	return r
}
