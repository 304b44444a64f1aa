package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/iflis7/iyuc-store/pkg/errors"
	"github.com/iflis7/iyuc-store/services/storefront/internal/commerce"
	"github.com/iflis7/iyuc-store/services/storefront/internal/domain"
	"github.com/iflis7/iyuc-store/services/storefront/internal/kvstore"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockClient stubs the cart half of commerce.Client.
type mockClient struct {
	commerce.Client
	mock.Mock
}

func (m *mockClient) ListRegions(ctx context.Context) ([]domain.Region, error) {
	args := m.Called(ctx)
	regions, _ := args.Get(0).([]domain.Region)
	return regions, args.Error(1)
}

func (m *mockClient) cart(args mock.Arguments) (*domain.Cart, error) {
	c, _ := args.Get(0).(*domain.Cart)
	return c, args.Error(1)
}

func (m *mockClient) GetCart(ctx context.Context, id string) (*domain.Cart, error) {
	return m.cart(m.Called(ctx, id))
}

func (m *mockClient) CreateCart(ctx context.Context, regionID string) (*domain.Cart, error) {
	return m.cart(m.Called(ctx, regionID))
}

func (m *mockClient) AddLineItem(ctx context.Context, cartID, variantID string, qty int) (*domain.Cart, error) {
	return m.cart(m.Called(ctx, cartID, variantID, qty))
}

func (m *mockClient) UpdateLineItem(ctx context.Context, cartID, lineID string, qty int) (*domain.Cart, error) {
	return m.cart(m.Called(ctx, cartID, lineID, qty))
}

func (m *mockClient) RemoveLineItem(ctx context.Context, cartID, lineID string) (*domain.Cart, error) {
	return m.cart(m.Called(ctx, cartID, lineID))
}

type recordingEvents struct {
	mu    sync.Mutex
	carts []string
}

func (r *recordingEvents) PublishCartCreated(_ context.Context, _ string, cart *domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts = append(r.carts, cart.ID)
	return nil
}

var canada = domain.Region{ID: "reg_ca", CurrencyCode: "cad", Countries: []domain.Country{{ISO2: "ca"}}}

func newTestSession(client commerce.Client, store kvstore.Store, events CartEvents) *Session {
	return New("sess-1", client, store, events, "ca", discardLogger())
}

func TestInit_StaleStoredIDCreatesExactlyOneCart(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory(0)
	require.NoError(t, store.Set(ctx, kvstore.Key("sess-1", KeyCartID), "cart_stale"))

	client := &mockClient{}
	client.On("ListRegions", mock.Anything).Return([]domain.Region{canada}, nil)
	client.On("GetCart", mock.Anything, "cart_stale").Return(nil, apperrors.NotFound("cart", "cart_stale"))
	client.On("CreateCart", mock.Anything, "reg_ca").Return(&domain.Cart{ID: "cart_new"}, nil).Once()

	events := &recordingEvents{}
	s := newTestSession(client, store, events)
	s.Init(ctx)

	require.NotNil(t, s.Cart())
	assert.Equal(t, "cart_new", s.Cart().ID)
	assert.Equal(t, "reg_ca", s.Region().ID)
	assert.False(t, s.Loading())

	stored, err := store.Get(ctx, kvstore.Key("sess-1", KeyCartID))
	require.NoError(t, err)
	assert.Equal(t, "cart_new", stored)
	assert.Equal(t, []string{"cart_new"}, events.carts)
	client.AssertNumberOfCalls(t, "CreateCart", 1)
}

func TestInit_RestoresStoredCart(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory(0)
	require.NoError(t, store.Set(ctx, kvstore.Key("sess-1", KeyCartID), "cart_1"))

	client := &mockClient{}
	client.On("ListRegions", mock.Anything).Return([]domain.Region{canada}, nil)
	client.On("GetCart", mock.Anything, "cart_1").Return(&domain.Cart{ID: "cart_1"}, nil)

	s := newTestSession(client, store, nil)
	s.Init(ctx)

	assert.Equal(t, "cart_1", s.Cart().ID)
	client.AssertNotCalled(t, "CreateCart", mock.Anything, mock.Anything)
}

func TestInit_NoRegionLeavesCartNil(t *testing.T) {
	client := &mockClient{}
	client.On("ListRegions", mock.Anything).Return([]domain.Region{}, nil)

	s := newTestSession(client, kvstore.NewMemory(0), nil)
	s.Init(context.Background())

	assert.Nil(t, s.Cart())
	assert.Equal(t, 0, s.ItemCount())
	assert.False(t, s.Loading())
}

func TestInit_BackendDownIsNotReady(t *testing.T) {
	client := &mockClient{}
	client.On("ListRegions", mock.Anything).Return(nil, errors.New("connection refused"))

	s := newTestSession(client, kvstore.NewMemory(0), nil)
	s.Init(context.Background())

	assert.Nil(t, s.Cart())
	assert.False(t, s.Loading())
}

func TestAddItem_NoCartIsNoop(t *testing.T) {
	client := &mockClient{}
	s := newTestSession(client, kvstore.NewMemory(0), nil)

	require.NoError(t, s.AddItem(context.Background(), "var_1", 1))
	client.AssertNotCalled(t, "AddLineItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.False(t, s.CartOpen())
}

func TestAddItem_FailureKeepsCart(t *testing.T) {
	client := &mockClient{}
	client.On("AddLineItem", mock.Anything, "cart_1", "var_1", 1).Return(nil, apperrors.InvalidInput("out of stock"))

	s := newTestSession(client, kvstore.NewMemory(0), nil)
	original := &domain.Cart{ID: "cart_1", Items: []domain.LineItem{{ID: "li_1", Quantity: 2}}}
	s.setCart(original)

	err := s.AddItem(context.Background(), "var_1", 1)
	require.Error(t, err)
	assert.Same(t, original, s.Cart())
	assert.False(t, s.CartOpen())
	assert.False(t, s.Loading())
}

func TestUpdateItem_RejectsQuantityBelowOne(t *testing.T) {
	client := &mockClient{}
	s := newTestSession(client, kvstore.NewMemory(0), nil)
	s.setCart(&domain.Cart{ID: "cart_1"})

	err := s.UpdateItem(context.Background(), "li_1", 0)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	client.AssertNotCalled(t, "UpdateLineItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSetItemQuantity_ZeroRoutesToRemove(t *testing.T) {
	client := &mockClient{}
	client.On("RemoveLineItem", mock.Anything, "cart_1", "li_1").Return(&domain.Cart{ID: "cart_1"}, nil)
	client.On("UpdateLineItem", mock.Anything, "cart_1", "li_2", 3).Return(&domain.Cart{ID: "cart_1"}, nil)

	s := newTestSession(client, kvstore.NewMemory(0), nil)
	s.setCart(&domain.Cart{ID: "cart_1"})

	require.NoError(t, s.SetItemQuantity(context.Background(), "li_1", 0))
	require.NoError(t, s.SetItemQuantity(context.Background(), "li_2", 3))

	client.AssertCalled(t, "RemoveLineItem", mock.Anything, "cart_1", "li_1")
	client.AssertNotCalled(t, "UpdateLineItem", mock.Anything, "cart_1", "li_1", 0)
}

func TestSession_WithMockBackend(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory(0)
	s := newTestSession(commerce.NewMock(), store, nil)
	s.Init(ctx)
	require.NotNil(t, s.Cart())

	require.NoError(t, s.AddItem(ctx, "var_cap_black", 1))
	require.NoError(t, s.AddItem(ctx, "var_cap_black", 2))
	assert.True(t, s.CartOpen())
	require.Len(t, s.Cart().Items, 1)
	assert.Equal(t, 3, s.ItemCount())

	lineID := s.Cart().Items[0].ID
	require.NoError(t, s.SetItemQuantity(ctx, lineID, 1))
	assert.Equal(t, 1, s.ItemCount())
	require.NoError(t, s.SetItemQuantity(ctx, lineID, 0))
	assert.Equal(t, 0, s.ItemCount())

	require.NoError(t, s.Refresh(ctx))
	assert.Equal(t, commerce.MockCartID, s.Cart().ID)

	snap := s.Snapshot()
	assert.Equal(t, "sess-1", snap.ID)
	assert.False(t, snap.Loading)
}

func TestClearAndReinit(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory(0)
	require.NoError(t, store.Set(ctx, kvstore.Key("sess-1", KeyCartID), "cart_old"))

	client := &mockClient{}
	client.On("ListRegions", mock.Anything).Return([]domain.Region{canada}, nil)
	client.On("CreateCart", mock.Anything, "reg_ca").Return(&domain.Cart{ID: "cart_fresh"}, nil)

	s := newTestSession(client, store, nil)
	s.setCart(&domain.Cart{ID: "cart_old"})
	s.ClearAndReinit(ctx)

	assert.Equal(t, "cart_fresh", s.Cart().ID)
	client.AssertNotCalled(t, "GetCart", mock.Anything, "cart_old")
}

func TestRefresh_WithoutStoredIDDoesNothing(t *testing.T) {
	client := &mockClient{}
	s := newTestSession(client, kvstore.NewMemory(0), nil)
	require.NoError(t, s.Refresh(context.Background()))
	client.AssertNotCalled(t, "GetCart", mock.Anything, mock.Anything)
}

func TestLocaleAndAuthToken(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(&mockClient{}, kvstore.NewMemory(0), nil)

	assert.Empty(t, s.Locale(ctx))
	require.NoError(t, s.SetLocale(ctx, "fr"))
	assert.Equal(t, "fr", s.Locale(ctx))

	require.NoError(t, s.SetAuthToken(ctx, "tok"))
	assert.Equal(t, "tok", s.AuthToken(ctx))
	require.NoError(t, s.ClearAuthToken(ctx))
	assert.Empty(t, s.AuthToken(ctx))
}
