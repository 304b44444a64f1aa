package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"

	"github.com/iflis7/iyuc-store/pkg/database"
	"github.com/iflis7/iyuc-store/pkg/health"
	"github.com/iflis7/iyuc-store/pkg/httpclient"
	pkgkafka "github.com/iflis7/iyuc-store/pkg/kafka"
	"github.com/iflis7/iyuc-store/pkg/middleware"
	"github.com/iflis7/iyuc-store/pkg/tracing"
	"github.com/iflis7/iyuc-store/services/storefront/internal/catalog"
	"github.com/iflis7/iyuc-store/services/storefront/internal/checkout"
	"github.com/iflis7/iyuc-store/services/storefront/internal/commerce"
	"github.com/iflis7/iyuc-store/services/storefront/internal/config"
	"github.com/iflis7/iyuc-store/services/storefront/internal/event"
	handler "github.com/iflis7/iyuc-store/services/storefront/internal/handler/http"
	"github.com/iflis7/iyuc-store/services/storefront/internal/i18n"
	"github.com/iflis7/iyuc-store/services/storefront/internal/kvstore"
	"github.com/iflis7/iyuc-store/services/storefront/internal/orders"
	"github.com/iflis7/iyuc-store/services/storefront/internal/session"
)

const serviceName = "storefront"

// closer releases one backing resource on shutdown.
type closer struct {
	name  string
	close func() error
}

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	sessions       *session.Manager
	events         *event.Producer
	purger         *kvstore.Postgres
	closers        []closer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	healthHandler := health.NewHandler()

	client := a.commerceClient(healthHandler)

	store, err := a.kvStore(ctx, healthHandler)
	if err != nil {
		a.closeAll()
		return nil, err
	}

	publisher, err := a.publisher(healthHandler)
	if err != nil {
		a.closeAll()
		return nil, err
	}
	a.events = event.NewProducer(publisher, logger)

	dict, err := i18n.Load()
	if err != nil {
		a.closeAll()
		return nil, fmt.Errorf("load locales: %w", err)
	}

	// Build the dependency graph.
	a.sessions = session.NewManager(client, store, a.events, cfg.DefaultCountry, logger)
	flows := checkout.NewRegistry(client, a.events, cfg.ShippingCalcConcurrency, logger)
	a.sessions.OnEvict(flows.Forget)

	deps := handler.Deps{
		Client:         client,
		Sessions:       a.sessions,
		Flows:          flows,
		Orders:         orders.NewService(client, logger),
		Renderer:       catalog.NewRenderer(catalog.NewImageRewriter(cfg.BackendURL)),
		Dictionary:     dict,
		DefaultCountry: cfg.DefaultCountry,
	}
	routerCfg := handler.RouterConfig{
		Session: handler.SessionConfig{TTL: cfg.SessionTTL, Secure: cfg.SecureCookies},
		CORS: middleware.CORSConfig{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			ExposedHeaders:   []string{middleware.CorrelationIDHeader, handler.SessionHeader},
			AllowCredentials: true,
			Environment:      cfg.Environment,
		},
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		PprofCIDRs:     cfg.PprofAllowedCIDRs,
		CatalogMaxAge:  cfg.CatalogCacheMaxAge,
	}

	// HTTP router.
	router := handler.NewRouter(deps, healthHandler, logger, routerCfg)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

// commerceClient returns the Store API client: the in-process mock, or the
// HTTP client behind retries and a circuit breaker.
func (a *App) commerceClient(h *health.Handler) commerce.Client {
	cfg := a.cfg
	if cfg.UseMock {
		a.logger.Info("using mock commerce backend")
		return commerce.NewMock()
	}

	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.BackendTimeout
	httpCfg.MaxRetries = cfg.BackendRetries
	baseClient := httpclient.New(httpCfg)

	cbCfg := httpclient.CircuitBreakerConfig{
		Name:         "commerce-backend",
		MaxRequests:  cfg.CBMaxRequests,
		Interval:     cfg.CBInterval,
		Timeout:      cfg.CBTimeout,
		FailureRatio: cfg.CBFailureRatio,
		MinRequests:  cfg.CBMinRequests,
	}
	cbClient := httpclient.NewCircuitBreakerClient(baseClient, cbCfg, a.logger)
	a.logger.Info("circuit breaker initialized",
		slog.String("name", cbCfg.Name),
		slog.Uint64("max_requests", uint64(cbCfg.MaxRequests)),
		slog.Duration("timeout", cbCfg.Timeout),
		slog.Uint64("min_requests", uint64(cbCfg.MinRequests)),
	)

	h.RegisterNonCritical("commerce", func(context.Context) error {
		if cbClient.State() == gobreaker.StateOpen {
			return errors.New("circuit open")
		}
		return nil
	})
	return commerce.NewHTTPClient(cfg.BackendURL, cfg.PublishableKey, cbClient, a.logger)
}

// kvStore opens the configured session store.
func (a *App) kvStore(ctx context.Context, h *health.Handler) (kvstore.Store, error) {
	cfg := a.cfg
	switch cfg.KVBackend {
	case config.KVRedis:
		rdb, err := database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, closer{"redis", rdb.Close})
		a.logger.Info("connected to Redis")

		store := kvstore.NewRedis(rdb, cfg.SessionTTL)
		h.RegisterCritical("redis", store.Ping)
		return store, nil

	case config.KVPostgres:
		pool, err := database.NewPostgresPool(ctx, database.DefaultPostgresConfig(cfg.DatabaseURL), a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.closers = append(a.closers, closer{"postgres", func() error { pool.Close(); return nil }})
		a.logger.Info("connected to PostgreSQL")

		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, serviceName); err != nil {
			a.logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
		}

		store := kvstore.NewPostgres(pool, cfg.SessionTTL, a.logger)
		if err := store.Migrate(ctx, a.logger); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		a.logger.Info("database migrations completed")

		h.RegisterCritical("postgres", store.Ping)
		a.purger = store
		return store, nil

	default:
		return kvstore.NewMemory(cfg.SessionTTL), nil
	}
}

// publisher connects the configured event broker. A nil publisher disables
// domain events.
func (a *App) publisher(h *health.Handler) (event.Publisher, error) {
	cfg := a.cfg
	switch cfg.EventBroker {
	case config.BrokerKafka:
		producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), a.logger)
		a.logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
		h.RegisterNonCritical("kafka", producer.Ping)
		return producer, nil

	case config.BrokerRabbitMQ:
		publisher, err := event.NewAMQPPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange, a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect to rabbitmq: %w", err)
		}
		a.logger.Info("rabbitmq publisher initialized", slog.String("exchange", cfg.RabbitMQExchange))
		h.RegisterNonCritical("rabbitmq", publisher.Ping)
		return publisher, nil

	default:
		return nil, nil
	}
}

// Run starts the HTTP server and the background sweepers and blocks until
// the context is canceled.
func (a *App) Run(ctx context.Context) error {
	bgCtx, stop := context.WithCancel(ctx)
	defer stop()

	go a.sessions.RunSweeper(bgCtx, a.cfg.SessionSweepInterval, a.cfg.SessionIdleTimeout)
	if a.purger != nil {
		go a.purgeExpired(bgCtx)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return errors.Join(err, a.Shutdown())
	}

	return a.Shutdown()
}

// purgeExpired deletes expired postgres session rows every sweep interval.
func (a *App) purgeExpired(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.SessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := a.purger.PurgeExpired(ctx)
			if err != nil {
				a.logger.Warn("purge expired sessions failed", slog.String("error", err.Error()))
				continue
			}
			if n > 0 {
				a.logger.Debug("purged expired session keys", slog.Int64("count", n))
			}
		}
	}
}

// Shutdown gracefully stops all components in order: HTTP server, tracer,
// event publisher, then the session store.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.logger.Error("event publisher close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.closeAll(); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// closeAll closes the backing stores in reverse order of opening.
func (a *App) closeAll() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.close(); err != nil {
			a.logger.Error(c.name+" close error", slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("close %s: %w", c.name, err))
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
