// Package checkout drives a shopper through information, shipping, payment
// and confirmation against the commerce backend.
package checkout

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/iflis7/iyuc-store/pkg/errors"
	"github.com/iflis7/iyuc-store/pkg/logger"
	"github.com/iflis7/iyuc-store/pkg/money"
	"github.com/iflis7/iyuc-store/pkg/validator"
	"github.com/iflis7/iyuc-store/services/storefront/internal/commerce"
	"github.com/iflis7/iyuc-store/services/storefront/internal/domain"
)

const (
	msgShippingMethodFailed = "Failed to set shipping method"
	msgOrderNotPlaced       = "Could not place order. Please try again."
	msgPlaceOrderFailed     = "Failed to place order"
)

// CartSession is the part of a shopper session the flow drives.
type CartSession interface {
	ID() string
	Cart() *domain.Cart
	Refresh(ctx context.Context) error
	ClearAndReinit(ctx context.Context)
}

// OrderEvents is notified when an order is placed.
type OrderEvents interface {
	PublishOrderPlaced(ctx context.Context, sessionID, cartID string, order *domain.Order) error
}

// Information is the contact and shipping address step. It stays in the flow
// and is not sent to the backend.
type Information struct {
	Email      string `json:"email" validate:"required,email"`
	FirstName  string `json:"first_name" validate:"max=100"`
	LastName   string `json:"last_name" validate:"max=100"`
	Address    string `json:"address" validate:"max=255"`
	City       string `json:"city" validate:"max=100"`
	PostalCode string `json:"postal_code" validate:"max=20"`
	Phone      string `json:"phone,omitempty" validate:"max=30"`
}

// Flow is one shopper's checkout state machine. Operations are serialized;
// a Flow is safe for concurrent use.
type Flow struct {
	client      commerce.Client
	session     CartSession
	events      OrderEvents
	logger      *slog.Logger
	concurrency int

	op sync.Mutex

	mu              sync.Mutex
	step            Step
	info            Information
	options         []domain.ShippingOption
	calculated      map[string]int64
	selected        string
	shippingLoading bool
	placing         bool
	errMsg          string
	order           *domain.Order
}

// NewFlow starts a flow at the information step. concurrency bounds the
// shipping price fan-out; values below 1 mean one call at a time.
func NewFlow(client commerce.Client, session CartSession, events OrderEvents, concurrency int, log *slog.Logger) *Flow {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Flow{
		client:      client,
		session:     session,
		events:      events,
		logger:      log.With(slog.String("session_id", session.ID())),
		concurrency: concurrency,
		step:        StepInformation,
		calculated:  make(map[string]int64),
	}
}

func (f *Flow) log(ctx context.Context) *slog.Logger {
	return logger.WithContext(ctx, f.logger)
}

// Step returns the current step.
func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Error returns the last soft failure message, or "".
func (f *Flow) Error() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errMsg
}

// Order returns the placed order once the flow is confirmed.
func (f *Flow) Order() *domain.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.order
}

// advance moves the flow forward to to. Callers hold f.op.
func (f *Flow) advance(to Step) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !canAdvance(f.step, to) {
		return illegal(f.step, to)
	}
	f.step = to
	return nil
}

func (f *Flow) requireStep(want, to Step) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != want {
		return illegal(f.step, to)
	}
	return nil
}

func (f *Flow) setError(msg string) {
	f.mu.Lock()
	f.errMsg = msg
	f.mu.Unlock()
}

// SubmitInformation records contact details and moves to shipping, loading
// the shipping options for the cart.
func (f *Flow) SubmitInformation(ctx context.Context, info Information) error {
	f.op.Lock()
	defer f.op.Unlock()

	if err := f.requireStep(StepInformation, StepShipping); err != nil {
		return err
	}
	if err := validator.Validate(info); err != nil {
		return err
	}

	f.mu.Lock()
	f.info = info
	f.mu.Unlock()

	if err := f.advance(StepShipping); err != nil {
		return err
	}
	f.loadShippingOptions(ctx)
	return nil
}

// LoadShippingOptions lists the cart's shipping options, selects the first
// and prices calculated options concurrently. Failed price lookups are
// dropped; a failed listing leaves no options.
func (f *Flow) LoadShippingOptions(ctx context.Context) {
	f.op.Lock()
	defer f.op.Unlock()
	f.loadShippingOptions(ctx)
}

func (f *Flow) loadShippingOptions(ctx context.Context) {
	cart := f.session.Cart()
	if cart == nil || cart.ID == "" {
		return
	}

	f.mu.Lock()
	f.shippingLoading = true
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.shippingLoading = false
		f.mu.Unlock()
	}()

	opts, err := f.client.ListShippingOptions(ctx, cart.ID)
	if err != nil {
		f.log(ctx).WarnContext(ctx, "failed to list shipping options",
			slog.String("cart_id", cart.ID),
			slog.String("error", err.Error()),
		)
		f.mu.Lock()
		f.options = nil
		f.mu.Unlock()
		return
	}

	f.mu.Lock()
	f.options = opts
	if len(opts) > 0 {
		f.selected = opts[0].ID
	}
	f.mu.Unlock()

	prices := f.priceCalculatedOptions(ctx, cart.ID, opts)

	f.mu.Lock()
	for id, amount := range prices {
		f.calculated[id] = amount
	}
	f.mu.Unlock()
}

// priceCalculatedOptions asks the backend for the price of every calculated
// option and returns the ones that answered.
func (f *Flow) priceCalculatedOptions(ctx context.Context, cartID string, opts []domain.ShippingOption) map[string]int64 {
	var (
		mu     sync.Mutex
		prices = make(map[string]int64)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for _, o := range opts {
		if o.PriceType != domain.PriceTypeCalculated {
			continue
		}
		id := o.ID
		g.Go(func() error {
			amount, err := f.client.CalculateShippingOption(gctx, id, cartID)
			shippingCalculations.WithLabelValues(resultLabel(err)).Inc()
			if err != nil {
				f.log(ctx).DebugContext(ctx, "shipping price unavailable",
					slog.String("option_id", id),
					slog.String("error", err.Error()),
				)
				return nil
			}
			mu.Lock()
			prices[id] = amount
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return prices
}

// SelectShippingOption chooses one of the listed options.
func (f *Flow) SelectShippingOption(id string) error {
	f.op.Lock()
	defer f.op.Unlock()

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepShipping {
		return illegal(f.step, StepShipping)
	}
	for _, o := range f.options {
		if o.ID == id {
			f.selected = id
			return nil
		}
	}
	return apperrors.NotFound("shipping option", id)
}

// ContinueToPayment attaches the selected shipping method to the cart and
// moves to payment. Without a cart or a selection it moves directly. A failed
// attach keeps the flow on shipping and is reported through Error; a failed
// refresh afterwards is only logged.
func (f *Flow) ContinueToPayment(ctx context.Context) error {
	f.op.Lock()
	defer f.op.Unlock()

	if err := f.requireStep(StepShipping, StepPayment); err != nil {
		return err
	}

	cart := f.session.Cart()
	f.mu.Lock()
	selected := f.selected
	f.mu.Unlock()

	if cart == nil || cart.ID == "" || selected == "" {
		return f.advance(StepPayment)
	}

	f.mu.Lock()
	f.shippingLoading = true
	f.errMsg = ""
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.shippingLoading = false
		f.mu.Unlock()
	}()

	if _, err := f.client.AddShippingMethod(ctx, cart.ID, selected); err != nil {
		f.log(ctx).WarnContext(ctx, "failed to set shipping method",
			slog.String("cart_id", cart.ID),
			slog.String("option_id", selected),
			slog.String("error", err.Error()),
		)
		f.setError(messageOr(err, msgShippingMethodFailed))
		return nil
	}
	// The method is on the server cart; a stale local copy does not block payment.
	if err := f.session.Refresh(ctx); err != nil {
		f.log(ctx).WarnContext(ctx, "failed to refresh cart after setting shipping method",
			slog.String("cart_id", cart.ID),
			slog.String("error", err.Error()),
		)
	}
	return f.advance(StepPayment)
}

// PlaceOrder completes the cart. A placed order confirms the flow and
// replaces the session's cart with a fresh one; a returned cart or a
// failure keeps the flow on payment with a message in Error.
func (f *Flow) PlaceOrder(ctx context.Context) error {
	f.op.Lock()
	defer f.op.Unlock()

	if err := f.requireStep(StepPayment, StepConfirmed); err != nil {
		return err
	}
	cart := f.session.Cart()
	if cart == nil || cart.ID == "" {
		return nil
	}

	f.mu.Lock()
	f.placing = true
	f.errMsg = ""
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.placing = false
		f.mu.Unlock()
	}()

	result, err := f.client.CompleteCart(ctx, cart.ID)
	if err != nil {
		ordersPlaced.WithLabelValues("error").Inc()
		f.log(ctx).ErrorContext(ctx, "failed to complete cart",
			slog.String("cart_id", cart.ID),
			slog.String("error", err.Error()),
		)
		f.setError(messageOr(err, msgPlaceOrderFailed))
		return nil
	}

	if result.Type != domain.CompletionOrder {
		ordersPlaced.WithLabelValues("rejected").Inc()
		msg := result.Error
		if msg == "" {
			msg = msgOrderNotPlaced
		}
		f.setError(msg)
		return nil
	}

	ordersPlaced.WithLabelValues("ok").Inc()
	f.mu.Lock()
	f.order = result.Order
	f.mu.Unlock()

	f.log(ctx).InfoContext(ctx, "order placed",
		slog.String("order_id", result.Order.ID),
		slog.String("cart_id", cart.ID),
		slog.Int64("total", result.Order.Total),
	)
	if f.events != nil {
		if err := f.events.PublishOrderPlaced(ctx, f.session.ID(), cart.ID, result.Order); err != nil {
			f.log(ctx).WarnContext(ctx, "failed to publish order.placed event", slog.String("error", err.Error()))
		}
	}

	f.session.ClearAndReinit(ctx)
	return f.advance(StepConfirmed)
}

// Back navigates to an earlier or the same step. Returning to shipping
// reloads its options.
func (f *Flow) Back(ctx context.Context, to Step) error {
	f.op.Lock()
	defer f.op.Unlock()

	f.mu.Lock()
	from := f.step
	if !canGoBack(from, to) {
		f.mu.Unlock()
		return illegal(from, to)
	}
	f.step = to
	f.errMsg = ""
	f.mu.Unlock()

	if to == StepShipping && from != StepShipping {
		f.loadShippingOptions(ctx)
	}
	return nil
}

// ShippingCost is the price of the selected option, or 0 without one.
func (f *Flow) ShippingCost() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shippingCostLocked()
}

func (f *Flow) shippingCostLocked() int64 {
	if f.selected == "" {
		return 0
	}
	for _, o := range f.options {
		if o.ID == f.selected {
			return f.optionAmountLocked(o)
		}
	}
	return 0
}

// optionAmountLocked prices an option: a flat amount, else the price the
// option carries, else a fetched calculated price, else 0.
func (f *Flow) optionAmountLocked(o domain.ShippingOption) int64 {
	if o.PriceType == domain.PriceTypeFlat && o.Amount != nil {
		return *o.Amount
	}
	if o.CalculatedPrice != nil {
		return o.CalculatedPrice.CalculatedAmount
	}
	return f.calculated[o.ID]
}

// Subtotal is the cart subtotal, 0 when unknown.
func (f *Flow) Subtotal() int64 {
	v, _ := domain.Amount(f.cartSubtotal())
	return v
}

func (f *Flow) cartSubtotal() *int64 {
	if c := f.session.Cart(); c != nil {
		return c.Subtotal
	}
	return nil
}

// Total is the cart total when the backend reports one, else subtotal plus
// shipping.
func (f *Flow) Total() int64 {
	if c := f.session.Cart(); c != nil {
		if total, ok := domain.Amount(c.Total); ok {
			return total
		}
	}
	return f.Subtotal() + f.ShippingCost()
}

// Currency is the cart currency, money.DefaultCurrency without one.
func (f *Flow) Currency() string {
	if c := f.session.Cart(); c != nil && c.CurrencyCode != "" {
		return c.CurrencyCode
	}
	return money.DefaultCurrency
}

func messageOr(err error, fallback string) string {
	if msg := apperrors.Message(err); msg != "" {
		return msg
	}
	return fallback
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
