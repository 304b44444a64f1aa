// Package session holds per-shopper cart state. A Session caches the backend
// cart and persists its id, locale and customer token in a kvstore.Store.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	apperrors "github.com/iflis7/iyuc-store/pkg/errors"
	"github.com/iflis7/iyuc-store/pkg/logger"
	"github.com/iflis7/iyuc-store/services/storefront/internal/commerce"
	"github.com/iflis7/iyuc-store/services/storefront/internal/domain"
	"github.com/iflis7/iyuc-store/services/storefront/internal/kvstore"
)

// Persistent key names, stored under kvstore.Key(sessionID, name).
const (
	KeyCartID    = "medusa_cart_id"
	KeyLocale    = "iyuc_locale"
	KeyAuthToken = "medusa_auth_token"
)

// CartEvents is notified when a session creates a cart.
type CartEvents interface {
	PublishCartCreated(ctx context.Context, sessionID string, cart *domain.Cart) error
}

// State is a point-in-time copy of a session.
type State struct {
	ID        string         `json:"session_id"`
	Cart      *domain.Cart   `json:"cart"`
	Region    *domain.Region `json:"region"`
	Loading   bool           `json:"loading"`
	CartOpen  bool           `json:"cart_open"`
	ItemCount int            `json:"item_count"`
}

// Session is one shopper's cart state. Mutating operations are serialized;
// readers never block on backend calls.
type Session struct {
	id             string
	client         commerce.Client
	store          kvstore.Store
	events         CartEvents
	logger         *slog.Logger
	defaultCountry string

	op sync.Mutex

	mu       sync.RWMutex
	cart     *domain.Cart
	region   *domain.Region
	loading  bool
	cartOpen bool
}

// New creates a session in the loading state. Call Init to load its cart.
func New(id string, client commerce.Client, store kvstore.Store, events CartEvents, defaultCountry string, log *slog.Logger) *Session {
	return &Session{
		id:             id,
		client:         client,
		store:          store,
		events:         events,
		logger:         log.With(slog.String("session_id", id)),
		defaultCountry: defaultCountry,
		loading:        true,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) key(name string) string { return kvstore.Key(s.id, name) }

func (s *Session) log(ctx context.Context) *slog.Logger {
	return logger.WithContext(ctx, s.logger)
}

// Cart returns the current cart, or nil when the session is not ready.
func (s *Session) Cart() *domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart
}

// Region returns the resolved region, or nil.
func (s *Session) Region() *domain.Region {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.region
}

func (s *Session) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.ItemCount()
}

func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Session) CartOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cartOpen
}

func (s *Session) OpenCart() { s.setCartOpen(true) }
func (s *Session) CloseCart() { s.setCartOpen(false) }

func (s *Session) setCartOpen(open bool) {
	s.mu.Lock()
	s.cartOpen = open
	s.mu.Unlock()
}

// Snapshot returns a copy of the session's observable state.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		ID:        s.id,
		Cart:      s.cart,
		Region:    s.region,
		Loading:   s.loading,
		CartOpen:  s.cartOpen,
		ItemCount: s.cart.ItemCount(),
	}
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Session) setCart(c *domain.Cart) {
	s.mu.Lock()
	s.cart = c
	s.mu.Unlock()
}

// Init resolves the region for the default country, restores the stored cart
// or creates a new one. Failures are logged and leave the cart nil.
func (s *Session) Init(ctx context.Context) {
	s.op.Lock()
	defer s.op.Unlock()
	s.init(ctx)
}

func (s *Session) init(ctx context.Context) {
	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.loadCart(ctx); err != nil {
		observe("init", err)
		s.log(ctx).ErrorContext(ctx, "failed to initialize cart", slog.String("error", err.Error()))
		return
	}
	observe("init", nil)
}

func (s *Session) loadCart(ctx context.Context) error {
	region, err := commerce.GetRegionByCountry(ctx, s.client, s.defaultCountry)
	if err != nil {
		return fmt.Errorf("resolve region: %w", err)
	}
	s.mu.Lock()
	s.region = region
	s.mu.Unlock()

	storedID, err := s.store.Get(ctx, s.key(KeyCartID))
	switch {
	case err == nil && storedID != "":
		cart, err := s.client.GetCart(ctx, storedID)
		if err == nil {
			s.setCart(cart)
			return nil
		}
		s.log(ctx).WarnContext(ctx, "stored cart unavailable, discarding id",
			slog.String("cart_id", storedID),
			slog.String("error", err.Error()),
		)
		if err := s.store.Delete(ctx, s.key(KeyCartID)); err != nil {
			return fmt.Errorf("delete stale cart id: %w", err)
		}
	case err != nil && !errors.Is(err, apperrors.ErrNotFound):
		return fmt.Errorf("read stored cart id: %w", err)
	}

	if region == nil {
		return nil
	}
	cart, err := s.client.CreateCart(ctx, region.ID)
	if err != nil {
		return fmt.Errorf("create cart: %w", err)
	}
	if err := s.store.Set(ctx, s.key(KeyCartID), cart.ID); err != nil {
		return fmt.Errorf("persist cart id: %w", err)
	}
	s.setCart(cart)

	if s.events != nil {
		if err := s.events.PublishCartCreated(ctx, s.id, cart); err != nil {
			s.log(ctx).WarnContext(ctx, "failed to publish cart.created event", slog.String("error", err.Error()))
		}
	}
	return nil
}

// mutate runs a cart mutation with the loading flag set. On success the
// returned cart replaces the cached one; on failure the cache is untouched.
func (s *Session) mutate(ctx context.Context, op string, fn func(cartID string) (*domain.Cart, error)) (bool, error) {
	s.op.Lock()
	defer s.op.Unlock()

	current := s.Cart()
	if current == nil {
		s.log(ctx).WarnContext(ctx, "cart not ready, ignoring operation", slog.String("operation", op))
		return false, nil
	}

	s.setLoading(true)
	defer s.setLoading(false)

	updated, err := fn(current.ID)
	observe(op, err)
	if err != nil {
		s.log(ctx).ErrorContext(ctx, "cart operation failed",
			slog.String("operation", op),
			slog.String("cart_id", current.ID),
			slog.String("error", err.Error()),
		)
		return false, err
	}
	s.setCart(updated)
	return true, nil
}

// AddItem adds quantity units of a variant and opens the cart drawer.
func (s *Session) AddItem(ctx context.Context, variantID string, quantity int) error {
	if quantity < 1 {
		return apperrors.InvalidInput("quantity must be at least 1")
	}
	applied, err := s.mutate(ctx, "add_item", func(cartID string) (*domain.Cart, error) {
		return s.client.AddLineItem(ctx, cartID, variantID, quantity)
	})
	if applied {
		s.OpenCart()
	}
	return err
}

// UpdateItem sets a line's quantity. Use RemoveItem to drop a line.
func (s *Session) UpdateItem(ctx context.Context, lineItemID string, quantity int) error {
	if quantity < 1 {
		return apperrors.InvalidInput("quantity must be at least 1")
	}
	_, err := s.mutate(ctx, "update_item", func(cartID string) (*domain.Cart, error) {
		return s.client.UpdateLineItem(ctx, cartID, lineItemID, quantity)
	})
	return err
}

func (s *Session) RemoveItem(ctx context.Context, lineItemID string) error {
	_, err := s.mutate(ctx, "remove_item", func(cartID string) (*domain.Cart, error) {
		return s.client.RemoveLineItem(ctx, cartID, lineItemID)
	})
	return err
}

// SetItemQuantity removes the line when quantity drops to zero or below and
// updates it otherwise.
func (s *Session) SetItemQuantity(ctx context.Context, lineItemID string, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, lineItemID)
	}
	return s.UpdateItem(ctx, lineItemID, quantity)
}

// Refresh re-reads the stored cart from the backend. Without a stored id it
// does nothing.
func (s *Session) Refresh(ctx context.Context) error {
	s.op.Lock()
	defer s.op.Unlock()
	return s.refresh(ctx)
}

func (s *Session) refresh(ctx context.Context) error {
	id, err := s.store.Get(ctx, s.key(KeyCartID))
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read stored cart id: %w", err)
	}
	cart, err := s.client.GetCart(ctx, id)
	observe("refresh", err)
	if err != nil {
		s.log(ctx).ErrorContext(ctx, "failed to refresh cart", slog.String("error", err.Error()))
		return err
	}
	s.setCart(cart)
	return nil
}

// ClearAndReinit forgets the current cart and starts a new one.
func (s *Session) ClearAndReinit(ctx context.Context) {
	s.op.Lock()
	defer s.op.Unlock()

	if err := s.store.Delete(ctx, s.key(KeyCartID)); err != nil {
		s.log(ctx).WarnContext(ctx, "failed to delete stored cart id", slog.String("error", err.Error()))
	}
	s.setCart(nil)
	s.init(ctx)
}

// Locale returns the stored locale code, or "" when none was chosen.
func (s *Session) Locale(ctx context.Context) string {
	v, err := s.store.Get(ctx, s.key(KeyLocale))
	if err != nil {
		return ""
	}
	return v
}

func (s *Session) SetLocale(ctx context.Context, code string) error {
	return s.store.Set(ctx, s.key(KeyLocale), code)
}

// AuthToken returns the stored customer token, or "".
func (s *Session) AuthToken(ctx context.Context) string {
	v, err := s.store.Get(ctx, s.key(KeyAuthToken))
	if err != nil {
		return ""
	}
	return v
}

func (s *Session) SetAuthToken(ctx context.Context, token string) error {
	return s.store.Set(ctx, s.key(KeyAuthToken), token)
}

func (s *Session) ClearAuthToken(ctx context.Context) error {
	return s.store.Delete(ctx, s.key(KeyAuthToken))
}
