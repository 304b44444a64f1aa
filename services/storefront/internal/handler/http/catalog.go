package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iflis7/iyuc-store/pkg/httputil"
	"github.com/iflis7/iyuc-store/pkg/pagination"
	"github.com/iflis7/iyuc-store/pkg/validator"
	"github.com/iflis7/iyuc-store/services/storefront/internal/catalog"
	"github.com/iflis7/iyuc-store/services/storefront/internal/commerce"
	"github.com/iflis7/iyuc-store/services/storefront/internal/domain"
)

const maxPageSize = 100

// CatalogHandler serves regions, collections and products.
type CatalogHandler struct {
	client   commerce.Client
	renderer *catalog.Renderer
	regions  *regionCache
	locales  localeResolver
	logger   *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(client commerce.Client, renderer *catalog.Renderer, regions *regionCache, locales localeResolver, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		client:   client,
		renderer: renderer,
		regions:  regions,
		locales:  locales,
		logger:   logger,
	}
}

// CollectionView is a collection with its products rendered as cards.
type CollectionView struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Handle   string         `json:"handle"`
	Products []catalog.Card `json:"products"`
}

// ListRegions handles GET /api/v1/regions
func (h *CatalogHandler) ListRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.client.ListRegions(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if regions == nil {
		regions = []domain.Region{}
	}
	httputil.WriteData(w, http.StatusOK, regions)
}

// ListCollections handles GET /api/v1/collections
func (h *CatalogHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := h.client.ListCollections(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if collections == nil {
		collections = []domain.Collection{}
	}
	httputil.WriteData(w, http.StatusOK, collections)
}

// GetCollection handles GET /api/v1/collections/{handle}
func (h *CatalogHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")
	if err := validator.Var(handle, "required,handle"); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	c, err := h.client.GetCollectionByHandle(r.Context(), handle)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	products := c.Products
	if len(products) == 0 {
		page, err := h.client.ListProducts(r.Context(), h.query(r, c.ID, maxPageSize, 0))
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		products = page.Products
	}

	tag := h.locales.tag(r)
	view := CollectionView{ID: c.ID, Title: c.Title, Handle: c.Handle, Products: make([]catalog.Card, 0, len(products))}
	for _, p := range products {
		view.Products = append(view.Products, h.renderer.Card(p, tag))
	}
	httputil.WriteData(w, http.StatusOK, view)
}

// query prices a listing in the default region when one resolves.
func (h *CatalogHandler) query(r *http.Request, collectionID string, limit, offset int) domain.ProductQuery {
	q := domain.ProductQuery{Limit: limit, Offset: offset, CollectionID: collectionID}
	if region := h.regions.get(r.Context()); region != nil {
		q.RegionID = region.ID
		q.CurrencyCode = region.CurrencyCode
	}
	return q
}

// ListProducts handles GET /api/v1/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r, catalog.DefaultPageSize, maxPageSize)
	q := h.query(r, r.URL.Query().Get("collection_id"), params.Limit, params.Offset)
	page, err := h.client.ListProducts(r.Context(), q)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, h.renderer.Listing(page, params, h.locales.tag(r)))
}

// GetProduct handles GET /api/v1/products/{handle}. Query parameters named
// after product option ids select option values.
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")
	if err := validator.Var(handle, "required,handle"); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	regionID := ""
	if region := h.regions.get(r.Context()); region != nil {
		regionID = region.ID
	}

	p, err := h.client.GetProductByHandle(r.Context(), handle, regionID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	choices := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			choices[key] = values[0]
		}
	}
	httputil.WriteData(w, http.StatusOK, h.renderer.Detail(*p, choices, h.locales.tag(r)))
}
