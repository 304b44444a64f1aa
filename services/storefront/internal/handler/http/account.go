package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/iflis7/iyuc-store/pkg/errors"
	"github.com/iflis7/iyuc-store/pkg/httputil"
	"github.com/iflis7/iyuc-store/pkg/middleware"
	"github.com/iflis7/iyuc-store/pkg/validator"
	"github.com/iflis7/iyuc-store/services/storefront/internal/domain"
	"github.com/iflis7/iyuc-store/services/storefront/internal/i18n"
	"github.com/iflis7/iyuc-store/services/storefront/internal/orders"
	"github.com/iflis7/iyuc-store/services/storefront/internal/session"
)

// AccountHandler serves the customer's orders and the session's persisted
// preferences.
type AccountHandler struct {
	sessions *session.Manager
	orders   *orders.Service
	logger   *slog.Logger
}

// NewAccountHandler creates a new account HTTP handler.
func NewAccountHandler(sessions *session.Manager, svc *orders.Service, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		sessions: sessions,
		orders:   svc,
		logger:   logger,
	}
}

// --- Request DTOs ---

// AuthTokenRequest stores a customer token. The token may instead be sent
// as an Authorization bearer header.
type AuthTokenRequest struct {
	Token string `json:"token" validate:"omitempty,max=4096"`
}

// LocaleRequest stores the session locale.
type LocaleRequest struct {
	Locale string `json:"locale" validate:"required,oneof=en fr es taq"`
}

// OrderList is one page of the order history. SignedIn is false when the
// session has no usable customer token.
type OrderList struct {
	Orders   []domain.Order `json:"orders"`
	SignedIn bool           `json:"signed_in"`
	Limit    int            `json:"limit"`
	Offset   int            `json:"offset"`
}

func (h *AccountHandler) session(r *http.Request) *session.Session {
	return h.sessions.Get(r.Context(), sessionIDFromContext(r.Context()))
}

// --- Handlers ---

// ListOrders handles GET /api/v1/orders
func (h *AccountHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit := min(queryInt(r, "limit", orders.DefaultLimit), maxPageSize)
	offset := queryInt(r, "offset", 0)

	s := h.session(r)
	list, err := h.orders.List(r.Context(), s, limit, offset)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, OrderList{
		Orders:   list,
		SignedIn: s.AuthToken(r.Context()) != "",
		Limit:    limit,
		Offset:   offset,
	})
}

// GetOrder handles GET /api/v1/orders/{id}
func (h *AccountHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Retrieve(r.Context(), h.session(r), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if order == nil {
		httputil.WriteError(w, r, apperrors.Unauthorized("sign in to view this order"), h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, order)
}

// SetAuthToken handles PUT /api/v1/session/auth-token
func (h *AccountHandler) SetAuthToken(w http.ResponseWriter, r *http.Request) {
	var req AuthTokenRequest
	if r.ContentLength != 0 {
		if err := validator.DecodeAndValidate(r, &req); err != nil {
			httputil.WriteValidationError(w, err)
			return
		}
	}
	token := req.Token
	if token == "" {
		token = middleware.CustomerTokenFromContext(r.Context())
	}
	if token == "" {
		httputil.WriteError(w, r, apperrors.InvalidInput("token is required"), h.logger)
		return
	}

	if err := h.session(r).SetAuthToken(r.Context(), token); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearAuthToken handles DELETE /api/v1/session/auth-token
func (h *AccountHandler) ClearAuthToken(w http.ResponseWriter, r *http.Request) {
	if err := h.session(r).ClearAuthToken(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetLocale handles PUT /api/v1/session/locale
func (h *AccountHandler) SetLocale(w http.ResponseWriter, r *http.Request) {
	var req LocaleRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	locale := i18n.Normalize(req.Locale)
	if err := h.session(r).SetLocale(r.Context(), string(locale)); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]string{"locale": string(locale)})
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 0 {
		return def
	}
	return v
}
