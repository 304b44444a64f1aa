package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iflis7/iyuc-store/pkg/httputil"
	"github.com/iflis7/iyuc-store/pkg/money"
	"github.com/iflis7/iyuc-store/pkg/validator"
	"github.com/iflis7/iyuc-store/services/storefront/internal/checkout"
	"github.com/iflis7/iyuc-store/services/storefront/internal/domain"
	"github.com/iflis7/iyuc-store/services/storefront/internal/session"
)

// CartHandler handles HTTP requests for the session cart.
type CartHandler struct {
	sessions *session.Manager
	flows    *checkout.Registry
	locales  localeResolver
	logger   *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(sessions *session.Manager, flows *checkout.Registry, locales localeResolver, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		flows:    flows,
		locales:  locales,
		logger:   logger,
	}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding a variant to the cart.
type AddItemRequest struct {
	VariantID string `json:"variant_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,gte=1,lte=100"`
}

// SetQuantityRequest is the JSON request body for changing a line quantity.
// Zero or less removes the line.
type SetQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,lte=100"`
}

// CartOpenRequest toggles the cart drawer.
type CartOpenRequest struct {
	Open bool `json:"open"`
}

// --- Response ---

// CartView is the session state with display totals.
type CartView struct {
	session.State
	Subtotal *money.Price `json:"subtotal,omitempty"`
	Total    *money.Price `json:"total,omitempty"`
}

func (h *CartHandler) view(r *http.Request, s *session.Session) CartView {
	v := CartView{State: s.Snapshot()}
	if v.Cart == nil {
		return v
	}
	tag := h.locales.tag(r)
	if amount, ok := domain.Amount(v.Cart.Subtotal); ok {
		p := money.NewPrice(amount, v.Cart.CurrencyCode, tag)
		v.Subtotal = &p
	}
	if amount, ok := domain.Amount(v.Cart.Total); ok {
		p := money.NewPrice(amount, v.Cart.CurrencyCode, tag)
		v.Total = &p
	}
	return v
}

func (h *CartHandler) session(r *http.Request) *session.Session {
	return h.sessions.Get(r.Context(), sessionIDFromContext(r.Context()))
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.view(r, h.session(r)))
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	s := h.session(r)
	if err := s.AddItem(r.Context(), req.VariantID, req.Quantity); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, h.view(r, s))
}

// SetItemQuantity handles PATCH /api/v1/cart/items/{id}
func (h *CartHandler) SetItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req SetQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	s := h.session(r)
	if err := s.SetItemQuantity(r.Context(), chi.URLParam(r, "id"), *req.Quantity); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, h.view(r, s))
}

// RemoveItem handles DELETE /api/v1/cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if err := s.RemoveItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, h.view(r, s))
}

// Refresh handles POST /api/v1/cart/refresh
func (h *CartHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if err := s.Refresh(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, h.view(r, s))
}

// Reset handles POST /api/v1/cart/reset. The checkout flow starts over with
// the new cart.
func (h *CartHandler) Reset(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	s.ClearAndReinit(r.Context())
	h.flows.Reset(s)
	httputil.WriteData(w, http.StatusOK, h.view(r, s))
}

// SetOpen handles PUT /api/v1/cart/open
func (h *CartHandler) SetOpen(w http.ResponseWriter, r *http.Request) {
	var req CartOpenRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	s := h.session(r)
	if req.Open {
		s.OpenCart()
	} else {
		s.CloseCart()
	}
	httputil.WriteData(w, http.StatusOK, h.view(r, s))
}
