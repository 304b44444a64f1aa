package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

type LineItem struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Quantity  int      `json:"quantity"`
	UnitPrice int64    `json:"unit_price"`
	Thumbnail string   `json:"thumbnail,omitempty"`
	VariantID string   `json:"variant_id,omitempty"`
	Variant   *Variant `json:"variant,omitempty"`
	Product   *Product `json:"product,omitempty"`
	Total     int64    `json:"total"`
}

// Cart mirrors the backend cart. Totals are pointers because the backend may
// omit them, and an absent total is treated differently from a zero one.
type Cart struct {
	ID            string     `json:"id"`
	Items         []LineItem `json:"items"`
	Total         *int64     `json:"total,omitempty"`
	Subtotal      *int64     `json:"subtotal,omitempty"`
	TaxTotal      *int64     `json:"tax_total,omitempty"`
	ShippingTotal *int64     `json:"shipping_total,omitempty"`
	RegionID      string     `json:"region_id,omitempty"`
	CurrencyCode  string     `json:"currency_code,omitempty"`
}

// ItemCount is the sum of line quantities.
func (c *Cart) ItemCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Item returns the line item with the given id.
func (c *Cart) Item(id string) (LineItem, bool) {
	for _, it := range c.Items {
		if it.ID == id {
			return it, true
		}
	}
	return LineItem{}, false
}

// Amount dereferences an optional total, reporting presence.
func Amount(v *int64) (int64, bool) {
	if v == nil {
		return 0, false
	}
	return *v, true
}

// Int64 is a convenience for building optional totals.
func Int64(v int64) *int64 { return &v }

type PriceType string

const (
	PriceTypeFlat       PriceType = "flat"
	PriceTypeCalculated PriceType = "calculated"
)

type ShippingOption struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	PriceType       PriceType        `json:"price_type"`
	Amount          *int64           `json:"amount,omitempty"`
	CalculatedPrice *CalculatedPrice `json:"calculated_price,omitempty"`
}

type Order struct {
	ID           string     `json:"id"`
	DisplayID    *int       `json:"display_id,omitempty"`
	Total        int64      `json:"total"`
	CurrencyCode string     `json:"currency_code"`
	Email        string     `json:"email,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	Items        []LineItem `json:"items,omitempty"`
}

// DisplayRef is the human order number, falling back to the id.
func (o *Order) DisplayRef() string {
	if o.DisplayID != nil {
		return fmt.Sprintf("%d", *o.DisplayID)
	}
	return o.ID
}

type CompletionType string

const (
	CompletionOrder CompletionType = "order"
	CompletionCart  CompletionType = "cart"
)

// CompleteCartResult is the outcome of completing a cart: either an order was
// placed, or the cart is returned with an optional reason.
type CompleteCartResult struct {
	Type  CompletionType `json:"type"`
	Order *Order         `json:"order,omitempty"`
	Cart  *Cart          `json:"cart,omitempty"`
	Error string         `json:"error,omitempty"`
}

// UnmarshalJSON rejects results whose type tag is unknown or whose payload
// is missing for the tag.
func (r *CompleteCartResult) UnmarshalJSON(data []byte) error {
	type plain CompleteCartResult
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	switch p.Type {
	case CompletionOrder:
		if p.Order == nil {
			return fmt.Errorf("complete cart result: type %q without order", p.Type)
		}
	case CompletionCart:
		if p.Cart == nil {
			return fmt.Errorf("complete cart result: type %q without cart", p.Type)
		}
	default:
		return fmt.Errorf("complete cart result: unknown type %q", p.Type)
	}
	*r = CompleteCartResult(p)
	return nil
}
