package catalog

import (
	"golang.org/x/text/language"

	"github.com/iflis7/iyuc-store/pkg/money"
	"github.com/iflis7/iyuc-store/pkg/pagination"
	"github.com/iflis7/iyuc-store/services/storefront/internal/domain"
)

// DefaultPageSize is the product listing page size when none is requested.
const DefaultPageSize = 12

// Card is a product as shown in a listing grid.
type Card struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Handle       string       `json:"handle"`
	Thumbnail    string       `json:"thumbnail,omitempty"`
	Price        *money.Price `json:"price,omitempty"`
	Badge        domain.Badge `json:"badge,omitempty"`
	PreorderDate string       `json:"preorder_date,omitempty"`
}

// Detail is the product page view for one option selection.
type Detail struct {
	Product   domain.Product  `json:"product"`
	Selection Selection       `json:"selection"`
	Variant   *domain.Variant `json:"variant,omitempty"`
	Exact     bool            `json:"exact"`
	InStock   bool            `json:"in_stock"`
	Price     *money.Price    `json:"price,omitempty"`
	Images    []domain.Image  `json:"images"`
}

// Renderer builds catalog views with backend image URLs rewritten.
type Renderer struct {
	images ImageRewriter
}

func NewRenderer(images ImageRewriter) *Renderer {
	return &Renderer{images: images}
}

func (r *Renderer) Card(p domain.Product, tag language.Tag) Card {
	p = r.images.Product(p)
	thumb := p.Thumbnail
	if thumb == "" {
		if imgs := Images(&p); len(imgs) > 0 {
			thumb = imgs[0].URL
		}
	}
	var price *money.Price
	if amount, currency, ok := ProductPrice(&p); ok {
		pr := money.NewPrice(amount, currency, tag)
		price = &pr
	}
	return Card{
		ID:           p.ID,
		Title:        p.Title,
		Handle:       p.Handle,
		Thumbnail:    thumb,
		Price:        price,
		Badge:        p.Badge,
		PreorderDate: p.PreorderDate,
	}
}

// Listing renders one page of products.
func (r *Renderer) Listing(page *domain.ProductPage, params pagination.Params, tag language.Tag) pagination.Result[Card] {
	cards := make([]Card, 0, len(page.Products))
	for _, p := range page.Products {
		cards = append(cards, r.Card(p, tag))
	}
	return pagination.NewResult(cards, page.Count, params)
}

// Detail resolves the variant for choices layered over the default selection.
func (r *Renderer) Detail(p domain.Product, choices map[string]string, tag language.Tag) Detail {
	p = r.images.Product(p)
	sel := DefaultSelection(&p).Merge(&p, choices)

	d := Detail{
		Product:   p,
		Selection: sel,
		Images:    Images(&p),
	}
	if v, exact, ok := ResolveVariant(&p, sel); ok {
		d.Variant = &v
		d.Exact = exact
		d.InStock = InStock(v)
	}
	d.Price = DisplayPrice(&p, d.Variant, tag)
	return d
}
