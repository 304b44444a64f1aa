package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/iflis7/iyuc-store/pkg/httputil"
	"github.com/iflis7/iyuc-store/pkg/logger"
	"github.com/iflis7/iyuc-store/services/storefront/internal/commerce"
	"github.com/iflis7/iyuc-store/services/storefront/internal/domain"
	"github.com/iflis7/iyuc-store/services/storefront/internal/i18n"
	"github.com/iflis7/iyuc-store/services/storefront/internal/session"
)

// LocaleQueryParam overrides the session and Accept-Language locale.
const LocaleQueryParam = "locale"

// localeResolver picks the locale of a request: ?locale=, then the locale
// stored for the session, then Accept-Language.
type localeResolver struct {
	sessions *session.Manager
}

func (l localeResolver) locale(r *http.Request) i18n.Locale {
	if q := r.URL.Query().Get(LocaleQueryParam); i18n.Supported(q) {
		return i18n.Locale(q)
	}
	ctx := r.Context()
	if id := sessionIDFromContext(ctx); id != "" && l.sessions != nil {
		if stored := l.sessions.Locale(ctx, id); i18n.Supported(stored) {
			return i18n.Locale(stored)
		}
	}
	return i18n.Negotiate(r.Header.Get("Accept-Language"))
}

func (l localeResolver) tag(r *http.Request) language.Tag {
	return i18n.Tag(l.locale(r))
}

const regionTTL = 5 * time.Minute

// regionCache remembers the default-country region used to price catalog
// listings. A failed refresh keeps the previous region.
type regionCache struct {
	client  commerce.Client
	country string
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.Mutex
	region  *domain.Region
	fetched time.Time
}

func newRegionCache(client commerce.Client, country string, log *slog.Logger) *regionCache {
	return &regionCache{client: client, country: country, logger: log, now: time.Now}
}

func (c *regionCache) get(ctx context.Context) *domain.Region {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.region != nil && c.now().Sub(c.fetched) < regionTTL {
		return c.region
	}
	region, err := commerce.GetRegionByCountry(ctx, c.client, c.country)
	if err != nil {
		logger.WithContext(ctx, c.logger).Warn("failed to resolve region",
			slog.String("country", c.country),
			slog.String("error", err.Error()),
		)
		return c.region
	}
	c.region = region
	c.fetched = c.now()
	return region
}

// notFound and methodNotAllowed keep unmatched routes in the JSON envelope.
func notFound(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusNotFound, httputil.Response{
		Error: &httputil.ErrorResponse{Code: "NOT_FOUND", Message: "route not found"},
	})
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusMethodNotAllowed, httputil.Response{
		Error: &httputil.ErrorResponse{Code: "METHOD_NOT_ALLOWED", Message: "method not allowed"},
	})
}
