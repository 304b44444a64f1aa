package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/iflis7/iyuc-store/pkg/errors"
	"github.com/iflis7/iyuc-store/pkg/httpclient"
	"github.com/iflis7/iyuc-store/services/storefront/internal/domain"
)

const (
	tracerName = "github.com/iflis7/iyuc-store/services/storefront/internal/commerce"

	// PublishableKeyHeader scopes Store API requests to a sales channel.
	PublishableKeyHeader = "x-publishable-api-key"

	productFields   = "*variants.calculated_price,+variants.inventory_quantity,+thumbnail,*images"
	orderFields     = "*payment_collections.payments,*items,*items.metadata,*items.variant,*items.product"
	orderListFields = "*items,+items.metadata,*items.variant,*items.product"

	defaultProductLimit = 12
)

// HTTPClient calls a live Store API.
type HTTPClient struct {
	baseURL        string
	publishableKey string
	doer           httpclient.Doer
	logger         *slog.Logger
}

// NewHTTPClient builds a client for baseURL. doer is normally a
// CircuitBreakerClient wrapping the retrying httpclient.Client.
func NewHTTPClient(baseURL, publishableKey string, doer httpclient.Doer, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:        strings.TrimRight(baseURL, "/"),
		publishableKey: publishableKey,
		doer:           doer,
		logger:         logger,
	}
}

type productListResponse struct {
	Products *[]domain.Product `json:"products"`
	Count    *int              `json:"count"`
}

type requestOptions struct {
	query     url.Values
	body      any
	authToken string
}

// call performs one Store API request and hands the successful response body
// to decode. Non-2xx responses and transport failures come back as AppErrors.
func (c *HTTPClient) call(ctx context.Context, op, method, path string, opts requestOptions, decode func(*http.Response) error) (err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "commerce."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("commerce.path", path),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, apperrors.Message(err))
		}
		span.End()
	}()

	u := c.baseURL + path
	if len(opts.query) > 0 {
		u += "?" + opts.query.Encode()
	}

	var body *bytes.Reader
	if opts.body != nil {
		raw, err := json.Marshal(opts.body)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", op, err)
		}
		body = bytes.NewReader(raw)
	}

	var req *http.Request
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, u, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, u, http.NoBody)
	}
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(PublishableKeyHeader, c.publishableKey)
	if opts.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+opts.authToken)
	}

	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		c.logger.WarnContext(ctx, "commerce request failed",
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
		return httpclient.TranslateError(err)
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= 400 {
		return httpclient.ParseResponseError(resp)
	}
	defer func() { _ = resp.Body.Close() }()
	return decode(resp)
}

// field returns a decode func storing the value under key into dst.
func field[T any](key string, dst *T) func(*http.Response) error {
	return func(resp *http.Response) error {
		v, err := decodeField[T](resp.Body, key)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

func (c *HTTPClient) cartCall(ctx context.Context, op, method, path string, body any) (*domain.Cart, error) {
	var cart domain.Cart
	if err := c.call(ctx, op, method, path, requestOptions{body: body}, field("cart", &cart)); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *HTTPClient) ListRegions(ctx context.Context) ([]domain.Region, error) {
	var regions []domain.Region
	err := c.call(ctx, "ListRegions", http.MethodGet, "/store/regions", requestOptions{}, field("regions", &regions))
	return regions, err
}

func (c *HTTPClient) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	q := url.Values{"limit": {"100"}, "offset": {"0"}}
	var cols []domain.Collection
	err := c.call(ctx, "ListCollections", http.MethodGet, "/store/collections", requestOptions{query: q}, field("collections", &cols))
	return cols, err
}

func (c *HTTPClient) GetCollectionByHandle(ctx context.Context, handle string) (*domain.Collection, error) {
	q := url.Values{"handle": {handle}, "fields": {"*products"}}
	var cols []domain.Collection
	if err := c.call(ctx, "GetCollectionByHandle", http.MethodGet, "/store/collections", requestOptions{query: q}, field("collections", &cols)); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, apperrors.NotFound("collection", handle)
	}
	return &cols[0], nil
}

func (c *HTTPClient) ListProducts(ctx context.Context, pq domain.ProductQuery) (*domain.ProductPage, error) {
	limit := pq.Limit
	if limit <= 0 {
		limit = defaultProductLimit
	}
	q := url.Values{
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(max(pq.Offset, 0))},
		"fields": {productFields},
	}
	if pq.CollectionID != "" {
		q.Set("collection_id", pq.CollectionID)
	}
	if pq.RegionID != "" {
		q.Set("region_id", pq.RegionID)
	}
	if pq.CurrencyCode != "" {
		q.Set("currency_code", pq.CurrencyCode)
	}

	var page productListResponse
	err := c.call(ctx, "ListProducts", http.MethodGet, "/store/products", requestOptions{query: q}, func(resp *http.Response) error {
		var err error
		page, err = decodeBody[productListResponse](resp.Body, "products")
		return err
	})
	if err != nil {
		return nil, err
	}
	if page.Products == nil || page.Count == nil {
		return nil, apperrors.Decode("products", fmt.Errorf("response lacks products or count"))
	}
	return &domain.ProductPage{Products: *page.Products, Count: *page.Count}, nil
}

func (c *HTTPClient) GetProductByHandle(ctx context.Context, handle, regionID string) (*domain.Product, error) {
	q := url.Values{"handle": {handle}, "fields": {productFields}}
	if regionID != "" {
		q.Set("region_id", regionID)
	}
	var products []domain.Product
	if err := c.call(ctx, "GetProductByHandle", http.MethodGet, "/store/products", requestOptions{query: q}, field("products", &products)); err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, apperrors.NotFound("product", handle)
	}
	return &products[0], nil
}

func (c *HTTPClient) CreateCart(ctx context.Context, regionID string) (*domain.Cart, error) {
	return c.cartCall(ctx, "CreateCart", http.MethodPost, "/store/carts", map[string]string{"region_id": regionID})
}

func (c *HTTPClient) GetCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	return c.cartCall(ctx, "GetCart", http.MethodGet, "/store/carts/"+url.PathEscape(cartID), nil)
}

func (c *HTTPClient) AddLineItem(ctx context.Context, cartID, variantID string, quantity int) (*domain.Cart, error) {
	body := map[string]any{"variant_id": variantID, "quantity": quantity}
	return c.cartCall(ctx, "AddLineItem", http.MethodPost, "/store/carts/"+url.PathEscape(cartID)+"/line-items", body)
}

func (c *HTTPClient) UpdateLineItem(ctx context.Context, cartID, lineItemID string, quantity int) (*domain.Cart, error) {
	path := "/store/carts/" + url.PathEscape(cartID) + "/line-items/" + url.PathEscape(lineItemID)
	return c.cartCall(ctx, "UpdateLineItem", http.MethodPost, path, map[string]int{"quantity": quantity})
}

func (c *HTTPClient) RemoveLineItem(ctx context.Context, cartID, lineItemID string) (*domain.Cart, error) {
	path := "/store/carts/" + url.PathEscape(cartID) + "/line-items/" + url.PathEscape(lineItemID)
	return c.cartCall(ctx, "RemoveLineItem", http.MethodDelete, path, nil)
}

func (c *HTTPClient) ListShippingOptions(ctx context.Context, cartID string) ([]domain.ShippingOption, error) {
	q := url.Values{"cart_id": {cartID}}
	var opts []domain.ShippingOption
	err := c.call(ctx, "ListShippingOptions", http.MethodGet, "/store/shipping-options", requestOptions{query: q}, field("shipping_options", &opts))
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = []domain.ShippingOption{}
	}
	return opts, nil
}

func (c *HTTPClient) CalculateShippingOption(ctx context.Context, optionID, cartID string) (int64, error) {
	var priced struct {
		Amount *int64 `json:"amount"`
	}
	path := "/store/shipping-options/" + url.PathEscape(optionID) + "/calculate"
	err := c.call(ctx, "CalculateShippingOption", http.MethodPost, path, requestOptions{body: map[string]string{"cart_id": cartID}}, field("shipping_option", &priced))
	if err != nil {
		return 0, err
	}
	if priced.Amount == nil {
		return 0, nil
	}
	return *priced.Amount, nil
}

func (c *HTTPClient) AddShippingMethod(ctx context.Context, cartID, optionID string) (*domain.Cart, error) {
	path := "/store/carts/" + url.PathEscape(cartID) + "/shipping-methods"
	return c.cartCall(ctx, "AddShippingMethod", http.MethodPost, path, map[string]string{"option_id": optionID})
}

func (c *HTTPClient) CompleteCart(ctx context.Context, cartID string) (*domain.CompleteCartResult, error) {
	var result domain.CompleteCartResult
	err := c.call(ctx, "CompleteCart", http.MethodPost, "/store/carts/"+url.PathEscape(cartID)+"/complete", requestOptions{}, func(resp *http.Response) error {
		var err error
		result, err = decodeBody[domain.CompleteCartResult](resp.Body, "complete cart result")
		return err
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) RetrieveOrder(ctx context.Context, authToken, orderID string) (*domain.Order, error) {
	q := url.Values{"fields": {orderFields}}
	var order domain.Order
	opts := requestOptions{query: q, authToken: authToken}
	if err := c.call(ctx, "RetrieveOrder", http.MethodGet, "/store/orders/"+url.PathEscape(orderID), opts, field("order", &order)); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *HTTPClient) ListOrders(ctx context.Context, authToken string, limit, offset int) ([]domain.Order, error) {
	q := url.Values{
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
		"order":  {"-created_at"},
		"fields": {orderListFields},
	}
	var orders []domain.Order
	opts := requestOptions{query: q, authToken: authToken}
	if err := c.call(ctx, "ListOrders", http.MethodGet, "/store/orders", opts, field("orders", &orders)); err != nil {
		return nil, err
	}
	return orders, nil
}
