package http

import (
	"log/slog"
	"net/http"

	"github.com/iflis7/iyuc-store/pkg/httputil"
	"github.com/iflis7/iyuc-store/pkg/validator"
	"github.com/iflis7/iyuc-store/services/storefront/internal/checkout"
	"github.com/iflis7/iyuc-store/services/storefront/internal/session"
)

// CheckoutHandler drives the session's checkout flow. Every endpoint answers
// with the flow view; soft failures are reported in its error field.
type CheckoutHandler struct {
	sessions *session.Manager
	flows    *checkout.Registry
	locales  localeResolver
	logger   *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(sessions *session.Manager, flows *checkout.Registry, locales localeResolver, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		sessions: sessions,
		flows:    flows,
		locales:  locales,
		logger:   logger,
	}
}

// --- Request DTOs ---

// ShippingOptionRequest selects a shipping option.
type ShippingOptionRequest struct {
	OptionID string `json:"option_id" validate:"required"`
}

// BackRequest navigates to an earlier step.
type BackRequest struct {
	Step string `json:"step" validate:"required,oneof=information shipping payment"`
}

func (h *CheckoutHandler) flow(r *http.Request) *checkout.Flow {
	s := h.sessions.Get(r.Context(), sessionIDFromContext(r.Context()))
	return h.flows.For(s)
}

func (h *CheckoutHandler) respond(w http.ResponseWriter, r *http.Request, f *checkout.Flow, err error) {
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, f.View(h.locales.tag(r)))
}

// --- Handlers ---

// GetCheckout handles GET /api/v1/checkout
func (h *CheckoutHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.flow(r), nil)
}

// Restart handles DELETE /api/v1/checkout
func (h *CheckoutHandler) Restart(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Get(r.Context(), sessionIDFromContext(r.Context()))
	h.respond(w, r, h.flows.Reset(s), nil)
}

// SubmitInformation handles POST /api/v1/checkout/information
func (h *CheckoutHandler) SubmitInformation(w http.ResponseWriter, r *http.Request) {
	var req checkout.Information
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	f := h.flow(r)
	h.respond(w, r, f, f.SubmitInformation(r.Context(), req))
}

// SelectShippingOption handles POST /api/v1/checkout/shipping-option
func (h *CheckoutHandler) SelectShippingOption(w http.ResponseWriter, r *http.Request) {
	var req ShippingOptionRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	f := h.flow(r)
	h.respond(w, r, f, f.SelectShippingOption(req.OptionID))
}

// ContinueToPayment handles POST /api/v1/checkout/payment
func (h *CheckoutHandler) ContinueToPayment(w http.ResponseWriter, r *http.Request) {
	f := h.flow(r)
	h.respond(w, r, f, f.ContinueToPayment(r.Context()))
}

// PlaceOrder handles POST /api/v1/checkout/place-order
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	f := h.flow(r)
	h.respond(w, r, f, f.PlaceOrder(r.Context()))
}

// Back handles POST /api/v1/checkout/back
func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	var req BackRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	step, err := checkout.ParseStep(req.Step)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	f := h.flow(r)
	h.respond(w, r, f, f.Back(r.Context(), step))
}
