package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_ItemCount(t *testing.T) {
	var nilCart *Cart
	assert.Equal(t, 0, nilCart.ItemCount())

	c := &Cart{Items: []LineItem{{ID: "li_1", Quantity: 2}, {ID: "li_2", Quantity: 3}}}
	assert.Equal(t, 5, c.ItemCount())

	it, ok := c.Item("li_2")
	require.True(t, ok)
	assert.Equal(t, 3, it.Quantity)
	_, ok = c.Item("li_9")
	assert.False(t, ok)
}

func TestCart_OptionalTotals(t *testing.T) {
	var c Cart
	require.NoError(t, json.Unmarshal([]byte(`{"id":"cart_1","items":[],"subtotal":0}`), &c))

	_, ok := Amount(c.Total)
	assert.False(t, ok)
	sub, ok := Amount(c.Subtotal)
	assert.True(t, ok)
	assert.Equal(t, int64(0), sub)
}

func TestCart_FractionalAmountRejected(t *testing.T) {
	var c Cart
	err := json.Unmarshal([]byte(`{"id":"cart_1","total":45.5}`), &c)
	assert.Error(t, err)
}

func TestRegion_HasCountry(t *testing.T) {
	r := Region{Countries: []Country{{ISO2: "ca"}, {ISO2: "us"}}}
	assert.True(t, r.HasCountry("ca"))
	assert.False(t, r.HasCountry("fr"))
}

func TestOrder_DisplayRef(t *testing.T) {
	id := 1042
	assert.Equal(t, "1042", (&Order{ID: "order_01", DisplayID: &id}).DisplayRef())
	assert.Equal(t, "order_01", (&Order{ID: "order_01"}).DisplayRef())
}

func TestCompleteCartResult_Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    CompletionType
		wantErr string
	}{
		{name: "order", body: `{"type":"order","order":{"id":"order_1","display_id":7,"total":4500,"currency_code":"cad"}}`, want: CompletionOrder},
		{name: "cart with error", body: `{"type":"cart","cart":{"id":"cart_1","items":[]},"error":"Payment declined"}`, want: CompletionCart},
		{name: "order without payload", body: `{"type":"order"}`, wantErr: "without order"},
		{name: "cart without payload", body: `{"type":"cart","error":"x"}`, wantErr: "without cart"},
		{name: "unknown tag", body: `{"type":"draft"}`, wantErr: "unknown type"},
		{name: "missing tag", body: `{"order":{"id":"o"}}`, wantErr: "unknown type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r CompleteCartResult
			err := json.Unmarshal([]byte(tt.body), &r)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Type)
		})
	}
}

func TestProduct_Variant(t *testing.T) {
	p := Product{Variants: []Variant{{ID: "v1"}, {ID: "v2", Title: "M / Black"}}}
	v, ok := p.Variant("v2")
	require.True(t, ok)
	assert.Equal(t, "M / Black", v.Title)
	_, ok = p.Variant("v3")
	assert.False(t, ok)
}
