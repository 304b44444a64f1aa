package commerce

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/iflis7/iyuc-store/pkg/errors"
	"github.com/iflis7/iyuc-store/pkg/httpclient"
	"github.com/iflis7/iyuc-store/services/storefront/internal/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	hc := httpclient.New(httpclient.Config{
		Timeout:      2 * time.Second,
		MaxRetries:   0,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: time.Millisecond,
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHTTPClient(srv.URL+"/", "pk_test", hc, logger)
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestHTTPClient_SendsPublishableKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pk_test", r.Header.Get(PublishableKeyHeader))
		assert.Equal(t, "/store/regions", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(t, w, http.StatusOK, map[string]any{
			"regions": []map[string]any{{"id": "reg_1", "name": "Canada", "currency_code": "cad"}},
		})
	})

	regions, err := c.ListRegions(context.Background())
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Equal(t, "reg_1", regions[0].ID)
}

func TestHTTPClient_MissingKeyFailsDecode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"carts": map[string]any{}})
	})

	_, err := c.GetCart(context.Background(), "cart_1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDecode))
}

func TestHTTPClient_WrongShapeFailsDecode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"cart": map[string]any{"id": 42}})
	})

	_, err := c.GetCart(context.Background(), "cart_1")
	assert.True(t, errors.Is(err, apperrors.ErrDecode))
}

func TestHTTPClient_ErrorMessageFromBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, map[string]any{"type": "invalid_data", "message": "Variant is out of stock"})
	})

	_, err := c.AddLineItem(context.Background(), "cart_1", "var_1", 1)
	require.Error(t, err)
	assert.Equal(t, "Variant is out of stock", apperrors.Message(err))
	assert.Equal(t, http.StatusBadRequest, apperrors.HTTPStatus(err))
}

func TestHTTPClient_ErrorWithoutMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	_, err := c.ListCollections(context.Background())
	require.Error(t, err)
	assert.Equal(t, "HTTP 418", apperrors.Message(err))
}

func TestHTTPClient_GetProductByHandle(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "imnayen-bomber", r.URL.Query().Get("handle"))
			assert.Equal(t, "reg_1", r.URL.Query().Get("region_id"))
			assert.Contains(t, r.URL.Query().Get("fields"), "*variants.calculated_price")
			writeJSON(t, w, http.StatusOK, map[string]any{
				"products": []map[string]any{{"id": "prod_1", "title": "Imnayen Bomber", "handle": "imnayen-bomber"}},
			})
		})
		p, err := c.GetProductByHandle(context.Background(), "imnayen-bomber", "reg_1")
		require.NoError(t, err)
		assert.Equal(t, "prod_1", p.ID)
	})

	t.Run("empty list is not found", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusOK, map[string]any{"products": []any{}})
		})
		_, err := c.GetProductByHandle(context.Background(), "nope", "")
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	})
}

func TestHTTPClient_ListProducts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "12", q.Get("limit"))
		assert.Equal(t, "24", q.Get("offset"))
		assert.Equal(t, "col_1", q.Get("collection_id"))
		writeJSON(t, w, http.StatusOK, map[string]any{
			"products": []map[string]any{{"id": "prod_1"}},
			"count":    30,
		})
	})

	page, err := c.ListProducts(context.Background(), domain.ProductQuery{Offset: 24, CollectionID: "col_1"})
	require.NoError(t, err)
	assert.Equal(t, 30, page.Count)
	assert.Len(t, page.Products, 1)
}

func TestHTTPClient_ListProductsRequiresCount(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"products": []any{}})
	})

	_, err := c.ListProducts(context.Background(), domain.ProductQuery{})
	assert.True(t, errors.Is(err, apperrors.ErrDecode))
}

func TestHTTPClient_CalculateShippingOption(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
		want int64
	}{
		{"amount", map[string]any{"shipping_option": map[string]any{"amount": 1500}}, 1500},
		{"amount absent", map[string]any{"shipping_option": map[string]any{}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/store/shipping-options/so_1/calculate", r.URL.Path)
				var body map[string]string
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "cart_1", body["cart_id"])
				writeJSON(t, w, http.StatusOK, tt.body)
			})
			got, err := c.CalculateShippingOption(context.Background(), "so_1", "cart_1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHTTPClient_CompleteCart(t *testing.T) {
	t.Run("order", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/store/carts/cart_1/complete", r.URL.Path)
			writeJSON(t, w, http.StatusOK, map[string]any{
				"type":  "order",
				"order": map[string]any{"id": "order_1", "display_id": 7, "total": 4500, "currency_code": "cad"},
			})
		})
		res, err := c.CompleteCart(context.Background(), "cart_1")
		require.NoError(t, err)
		assert.Equal(t, domain.CompletionOrder, res.Type)
		assert.Equal(t, "7", res.Order.DisplayRef())
	})

	t.Run("unknown type fails loudly", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusOK, map[string]any{"type": "draft"})
		})
		_, err := c.CompleteCart(context.Background(), "cart_1")
		assert.True(t, errors.Is(err, apperrors.ErrDecode))
	})
}

func TestHTTPClient_Orders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/store/orders":
			q := r.URL.Query()
			assert.Equal(t, "-created_at", q.Get("order"))
			assert.Equal(t, "5", q.Get("limit"))
			assert.Equal(t, "10", q.Get("offset"))
			writeJSON(t, w, http.StatusOK, map[string]any{"orders": []map[string]any{{"id": "order_1"}}})
		case "/store/orders/order_1":
			assert.Contains(t, r.URL.Query().Get("fields"), "*payment_collections.payments")
			writeJSON(t, w, http.StatusOK, map[string]any{"order": map[string]any{"id": "order_1"}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	orders, err := c.ListOrders(context.Background(), "tok", 5, 10)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	o, err := c.RetrieveOrder(context.Background(), "tok", "order_1")
	require.NoError(t, err)
	assert.Equal(t, "order_1", o.ID)
}

func TestHTTPClient_Unauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
	})

	_, err := c.ListOrders(context.Background(), "expired", 10, 0)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

type stubRegions struct {
	Client
	regions []domain.Region
}

func (s stubRegions) ListRegions(context.Context) ([]domain.Region, error) { return s.regions, nil }

func TestGetRegionByCountry(t *testing.T) {
	eu := domain.Region{ID: "reg_eu", Countries: []domain.Country{{ISO2: "fr"}}}
	ca := domain.Region{ID: "reg_ca", Countries: []domain.Country{{ISO2: "ca"}}}

	r, err := GetRegionByCountry(context.Background(), stubRegions{regions: []domain.Region{eu, ca}}, "ca")
	require.NoError(t, err)
	assert.Equal(t, "reg_ca", r.ID)

	r, err = GetRegionByCountry(context.Background(), stubRegions{regions: []domain.Region{eu, ca}}, "ma")
	require.NoError(t, err)
	assert.Equal(t, "reg_eu", r.ID)

	r, err = GetRegionByCountry(context.Background(), stubRegions{}, "ca")
	require.NoError(t, err)
	assert.Nil(t, r)
}
