// Package commerce talks to the headless commerce backend's Store API.
//
// Two implementations satisfy Client: HTTPClient against a live backend and
// Mock, an in-process catalogue used for demos and tests.
package commerce

import (
	"context"

	"github.com/iflis7/iyuc-store/services/storefront/internal/domain"
)

// Client is the Store API surface the storefront uses. Lookups by handle
// return an ErrNotFound AppError when nothing matches.
type Client interface {
	ListRegions(ctx context.Context) ([]domain.Region, error)
	ListCollections(ctx context.Context) ([]domain.Collection, error)
	GetCollectionByHandle(ctx context.Context, handle string) (*domain.Collection, error)
	ListProducts(ctx context.Context, q domain.ProductQuery) (*domain.ProductPage, error)
	GetProductByHandle(ctx context.Context, handle, regionID string) (*domain.Product, error)

	CreateCart(ctx context.Context, regionID string) (*domain.Cart, error)
	GetCart(ctx context.Context, cartID string) (*domain.Cart, error)
	AddLineItem(ctx context.Context, cartID, variantID string, quantity int) (*domain.Cart, error)
	UpdateLineItem(ctx context.Context, cartID, lineItemID string, quantity int) (*domain.Cart, error)
	RemoveLineItem(ctx context.Context, cartID, lineItemID string) (*domain.Cart, error)

	ListShippingOptions(ctx context.Context, cartID string) ([]domain.ShippingOption, error)
	CalculateShippingOption(ctx context.Context, optionID, cartID string) (int64, error)
	AddShippingMethod(ctx context.Context, cartID, optionID string) (*domain.Cart, error)
	CompleteCart(ctx context.Context, cartID string) (*domain.CompleteCartResult, error)

	RetrieveOrder(ctx context.Context, authToken, orderID string) (*domain.Order, error)
	ListOrders(ctx context.Context, authToken string, limit, offset int) ([]domain.Order, error)
}

// GetRegionByCountry returns the first region serving iso2, else the first
// region, else nil.
func GetRegionByCountry(ctx context.Context, c Client, iso2 string) (*domain.Region, error) {
	regions, err := c.ListRegions(ctx)
	if err != nil {
		return nil, err
	}
	for i := range regions {
		if regions[i].HasCountry(iso2) {
			return &regions[i], nil
		}
	}
	if len(regions) == 0 {
		return nil, nil
	}
	return &regions[0], nil
}
