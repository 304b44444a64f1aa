package domain

// Region groups countries sharing a currency.
type Region struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CurrencyCode string    `json:"currency_code"`
	Countries    []Country `json:"countries,omitempty"`
}

type Country struct {
	ISO2 string `json:"iso_2"`
	Name string `json:"name,omitempty"`
}

// HasCountry reports whether iso2 belongs to the region.
func (r *Region) HasCountry(iso2 string) bool {
	for _, c := range r.Countries {
		if c.ISO2 == iso2 {
			return true
		}
	}
	return false
}

type Collection struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Handle   string    `json:"handle"`
	Products []Product `json:"products,omitempty"`
}

type Image struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type OptionValue struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// ProductOption is a dimension such as Size or Color with its ordered values.
type ProductOption struct {
	ID     string        `json:"id"`
	Title  string        `json:"title"`
	Values []OptionValue `json:"values"`
}

// VariantOption pins one option of the product to a value.
type VariantOption struct {
	ID       string `json:"id,omitempty"`
	Value    string `json:"value"`
	OptionID string `json:"option_id"`
}

type CalculatedPrice struct {
	CalculatedAmount int64  `json:"calculated_amount"`
	CurrencyCode     string `json:"currency_code,omitempty"`
}

type Price struct {
	Amount       int64  `json:"amount"`
	CurrencyCode string `json:"currency_code"`
}

type Variant struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	SKU               string           `json:"sku,omitempty"`
	CalculatedPrice   *CalculatedPrice `json:"calculated_price,omitempty"`
	Prices            []Price          `json:"prices,omitempty"`
	Options           []VariantOption  `json:"options,omitempty"`
	InventoryQuantity *int             `json:"inventory_quantity,omitempty"`
}

// Badge marks merchandising groups used by the virtual collections.
type Badge string

const (
	BadgeNew      Badge = "new"
	BadgePreorder Badge = "pre-order"
)

type Product struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Handle       string          `json:"handle"`
	Description  string          `json:"description,omitempty"`
	Thumbnail    string          `json:"thumbnail,omitempty"`
	Images       []Image         `json:"images,omitempty"`
	Options      []ProductOption `json:"options,omitempty"`
	Variants     []Variant       `json:"variants,omitempty"`
	CollectionID string          `json:"collection_id,omitempty"`
	Badge        Badge           `json:"badge,omitempty"`
	PreorderDate string          `json:"preorder_date,omitempty"`
}

// Variant returns the variant with the given id.
func (p *Product) Variant(id string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// ProductPage is one page of a product listing plus the unpaged total.
type ProductPage struct {
	Products []Product `json:"products"`
	Count    int       `json:"count"`
}

// ProductQuery filters a product listing. Zero values are omitted.
type ProductQuery struct {
	Limit        int
	Offset       int
	CollectionID string
	RegionID     string
	CurrencyCode string
}
