package commerce

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/iflis7/iyuc-store/pkg/errors"
	"github.com/iflis7/iyuc-store/services/storefront/internal/domain"
)

const defaultMockLimit = 12

// Mock serves a fixed catalogue and a single in-memory cart. It never
// touches the network and is safe for concurrent use.
type Mock struct {
	mu       sync.Mutex
	products []domain.Product
	items    []domain.LineItem
	nextLine int
	orders   []domain.Order
	now      func() time.Time
}

// NewMock returns a Mock seeded with the IYUC catalogue and an empty cart.
func NewMock() *Mock {
	return &Mock{products: buildMockProducts(), now: time.Now}
}

var _ Client = (*Mock)(nil)

func (m *Mock) ListRegions(context.Context) ([]domain.Region, error) {
	return []domain.Region{mockRegion}, nil
}

func (m *Mock) ListCollections(context.Context) ([]domain.Collection, error) {
	return append([]domain.Collection(nil), mockCollections...), nil
}

func (m *Mock) GetCollectionByHandle(_ context.Context, handle string) (*domain.Collection, error) {
	if c, ok := virtualCollections[handle]; ok {
		return &c, nil
	}
	for _, c := range mockCollections {
		if c.Handle == handle {
			c := c
			return &c, nil
		}
	}
	return nil, apperrors.NotFound("collection", handle)
}

func (m *Mock) ListProducts(_ context.Context, q domain.ProductQuery) (*domain.ProductPage, error) {
	filtered := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		switch q.CollectionID {
		case "":
		case virtualNewID:
			if p.Badge != domain.BadgeNew {
				continue
			}
		case virtualPreorder:
			if p.Badge != domain.BadgePreorder {
				continue
			}
		default:
			if p.CollectionID != q.CollectionID {
				continue
			}
		}
		filtered = append(filtered, p)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultMockLimit
	}
	offset := min(max(q.Offset, 0), len(filtered))
	end := min(offset+limit, len(filtered))
	return &domain.ProductPage{Products: filtered[offset:end], Count: len(filtered)}, nil
}

func (m *Mock) GetProductByHandle(_ context.Context, handle, _ string) (*domain.Product, error) {
	for _, p := range m.products {
		if p.Handle == handle {
			p := p
			return &p, nil
		}
	}
	return nil, apperrors.NotFound("product", handle)
}

// cartLocked snapshots the current cart. Callers hold m.mu.
func (m *Mock) cartLocked() *domain.Cart {
	items := append([]domain.LineItem{}, m.items...)
	var subtotal int64
	for _, it := range items {
		subtotal += it.Total
	}
	return &domain.Cart{
		ID:            MockCartID,
		Items:         items,
		Subtotal:      domain.Int64(subtotal),
		Total:         domain.Int64(subtotal),
		TaxTotal:      domain.Int64(0),
		ShippingTotal: domain.Int64(0),
		RegionID:      MockRegionID,
		CurrencyCode:  mockCurrency,
	}
}

func (m *Mock) CreateCart(context.Context, string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
	return m.cartLocked(), nil
}

func (m *Mock) GetCart(context.Context, string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cartLocked(), nil
}

func (m *Mock) findVariant(variantID string) (*domain.Product, *domain.Variant) {
	for i := range m.products {
		for j := range m.products[i].Variants {
			if m.products[i].Variants[j].ID == variantID {
				return &m.products[i], &m.products[i].Variants[j]
			}
		}
	}
	return nil, nil
}

// AddLineItem merges into an existing line for the same variant. Unknown
// variants leave the cart unchanged.
func (m *Mock) AddLineItem(_ context.Context, _, variantID string, quantity int) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.items {
		if m.items[i].VariantID == variantID {
			m.items[i].Quantity += quantity
			m.items[i].Total = m.items[i].UnitPrice * int64(m.items[i].Quantity)
			return m.cartLocked(), nil
		}
	}

	p, v := m.findVariant(variantID)
	if p == nil {
		return m.cartLocked(), nil
	}
	var unit int64
	if v.CalculatedPrice != nil {
		unit = v.CalculatedPrice.CalculatedAmount
	}
	m.nextLine++
	variant, product := *v, *p
	m.items = append(m.items, domain.LineItem{
		ID:        fmt.Sprintf("li_%d", m.nextLine),
		Title:     p.Title,
		Quantity:  quantity,
		UnitPrice: unit,
		Thumbnail: p.Thumbnail,
		VariantID: v.ID,
		Variant:   &variant,
		Product:   &product,
		Total:     unit * int64(quantity),
	})
	return m.cartLocked(), nil
}

func (m *Mock) UpdateLineItem(_ context.Context, _, lineItemID string, quantity int) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == lineItemID {
			m.items[i].Quantity = quantity
			m.items[i].Total = m.items[i].UnitPrice * int64(quantity)
		}
	}
	return m.cartLocked(), nil
}

func (m *Mock) RemoveLineItem(_ context.Context, _, lineItemID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.items[:0]
	for _, it := range m.items {
		if it.ID != lineItemID {
			kept = append(kept, it)
		}
	}
	m.items = kept
	return m.cartLocked(), nil
}

func (m *Mock) ListShippingOptions(context.Context, string) ([]domain.ShippingOption, error) {
	return []domain.ShippingOption{}, nil
}

func (m *Mock) CalculateShippingOption(_ context.Context, optionID, _ string) (int64, error) {
	return 0, apperrors.NotFound("shipping option", optionID)
}

func (m *Mock) AddShippingMethod(_ context.Context, _, optionID string) (*domain.Cart, error) {
	return nil, apperrors.NotFound("shipping option", optionID)
}

// CompleteCart turns a non-empty cart into an order and empties the cart.
func (m *Mock) CompleteCart(context.Context, string) (*domain.CompleteCartResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart := m.cartLocked()
	if len(cart.Items) == 0 {
		return &domain.CompleteCartResult{Type: domain.CompletionCart, Cart: cart, Error: "Cart is empty"}, nil
	}

	displayID := len(m.orders) + 1
	created := m.now().UTC()
	order := domain.Order{
		ID:           fmt.Sprintf("order_mock_%d", displayID),
		DisplayID:    &displayID,
		Total:        *cart.Total,
		CurrencyCode: cart.CurrencyCode,
		CreatedAt:    &created,
		Items:        cart.Items,
	}
	m.orders = append(m.orders, order)
	m.items = nil
	return &domain.CompleteCartResult{Type: domain.CompletionOrder, Order: &order}, nil
}

// RetrieveOrder and ListOrders serve orders placed through CompleteCart.
// The mock has no customers, so any non-empty token is accepted.
func (m *Mock) RetrieveOrder(_ context.Context, authToken, orderID string) (*domain.Order, error) {
	if authToken == "" {
		return nil, apperrors.Unauthorized("missing customer token")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == orderID {
			o := o
			return &o, nil
		}
	}
	return nil, apperrors.NotFound("order", orderID)
}

func (m *Mock) ListOrders(_ context.Context, authToken string, limit, offset int) ([]domain.Order, error) {
	if authToken == "" {
		return nil, apperrors.Unauthorized("missing customer token")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	newest := make([]domain.Order, 0, len(m.orders))
	for i := len(m.orders) - 1; i >= 0; i-- {
		newest = append(newest, m.orders[i])
	}
	start := min(max(offset, 0), len(newest))
	end := len(newest)
	if limit > 0 {
		end = min(start+limit, end)
	}
	return newest[start:end], nil
}
