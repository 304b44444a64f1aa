package commerce

import (
	"fmt"
	"strings"

	"github.com/iflis7/iyuc-store/pkg/slug"
	"github.com/iflis7/iyuc-store/services/storefront/internal/domain"
)

const (
	MockRegionID    = "reg_mock_ca"
	MockCartID      = "cart_mock"
	mockCurrency    = "cad"
	mockInventory   = 25
	virtualNewID    = "col_new"
	virtualPreorder = "col_preorder"
)

// Virtual collections group products by badge rather than by collection id.
var virtualCollections = map[string]domain.Collection{
	"new":       {ID: virtualNewID, Title: "New Arrivals", Handle: "new"},
	"pre-order": {ID: virtualPreorder, Title: "Pre-order", Handle: "pre-order"},
}

var mockRegion = domain.Region{
	ID:           MockRegionID,
	Name:         "Canada",
	CurrencyCode: mockCurrency,
	Countries:    []domain.Country{{ISO2: "ca", Name: "Canada"}},
}

var mockCollections = []domain.Collection{
	{ID: "col_ixulaf", Title: "Ixulaf", Handle: "ixulaf"},
	{ID: "col_azekka", Title: "Azekka", Handle: "azekka"},
	{ID: "col_imnayen", Title: "Imnayen", Handle: "imnayen"},
	{ID: "col_tigejda", Title: "Tigejda", Handle: "tigejda"},
}

var (
	kidsSizes  = []string{"4Y", "6Y", "8Y", "10Y", "12Y"}
	adultSizes = []string{"S", "M", "L", "XL"}
)

func unsplash(id string) string {
	return "https://images.unsplash.com/photo-" + id + "?w=800&h=800&fit=crop&q=80"
}

func makeVariant(id, title string, amount int64, options []domain.VariantOption) domain.Variant {
	qty := mockInventory
	for i := range options {
		options[i].ID = fmt.Sprintf("optval_%s_%d", id, i)
	}
	return domain.Variant{
		ID:                id,
		Title:             title,
		CalculatedPrice:   &domain.CalculatedPrice{CalculatedAmount: amount, CurrencyCode: mockCurrency},
		Options:           options,
		InventoryQuantity: &qty,
	}
}

func sizeOption(pid string, sizes []string) domain.ProductOption {
	opt := domain.ProductOption{ID: "opt_size_" + pid, Title: "Size"}
	for _, s := range sizes {
		opt.Values = append(opt.Values, domain.OptionValue{ID: "sv_" + s + "_" + pid, Value: s})
	}
	return opt
}

func colorOption(pid string, colors []string) domain.ProductOption {
	opt := domain.ProductOption{ID: "opt_color_" + pid, Title: "Color"}
	for _, c := range colors {
		opt.Values = append(opt.Values, domain.OptionValue{ID: "cv_" + c + "_" + pid, Value: c})
	}
	return opt
}

func variantKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), "_"))
}

func sizeColorVariants(pid string, amount int64, sizes, colors []string) []domain.Variant {
	var out []domain.Variant
	for _, c := range colors {
		for _, s := range sizes {
			id := variantKey("var_" + pid + "_" + c + "_" + s)
			out = append(out, makeVariant(id, s+" / "+c, amount, []domain.VariantOption{
				{Value: s, OptionID: "opt_size_" + pid},
				{Value: c, OptionID: "opt_color_" + pid},
			}))
		}
	}
	return out
}

func colorVariants(pid, prefix string, amount int64, colors []string) []domain.Variant {
	var out []domain.Variant
	for _, c := range colors {
		key := strings.Replace(strings.ToLower(c), "/", "_", 1)
		out = append(out, makeVariant(variantKey(prefix+key), c, amount, []domain.VariantOption{
			{Value: c, OptionID: "opt_color_" + pid},
		}))
	}
	return out
}

type apparel struct {
	id, title, collection, image, description string
	amount                                    int64
	sizes, colors                             []string
	badge                                     domain.Badge
	preorder                                  string
}

type accessory struct {
	id, title, collection, image, description, prefix string
	amount                                            int64
	colors                                            []string
	badge                                             domain.Badge
	preorder                                          string
}

func product(id, title, collection, image, description string, badge domain.Badge, preorder string) domain.Product {
	return domain.Product{
		ID:           id,
		Title:        title,
		Handle:       slug.Generate(title),
		Description:  description,
		Thumbnail:    image,
		Images:       []domain.Image{{ID: "img_" + id, URL: image}},
		CollectionID: collection,
		Badge:        badge,
		PreorderDate: preorder,
	}
}

func buildMockProducts() []domain.Product {
	apparelItems := []apparel{
		{"prod_ix_tee", "Ixulaf Classic Tee", "col_ixulaf", "1503944583220-79d8926ad5e2", "Soft cotton tee for everyday play.", 2900, kidsSizes, []string{"Sand", "Charcoal"}, domain.BadgeNew, ""},
		{"prod_ix_hoodie", "Ixulaf Hoodie", "col_ixulaf", "1556821840-3a63f95609a7", "Brushed fleece hoodie with a kangaroo pocket.", 5500, kidsSizes, []string{"Indigo", "Cream"}, "", ""},
		{"prod_ix_shorts", "Ixulaf Active Shorts", "col_ixulaf", "1591195853828-11db59a44f6b", "Light shorts built for running around.", 3500, kidsSizes, []string{"Black", "Olive"}, "", ""},
		{"prod_az_tee", "Azekka Graphic Tee", "col_azekka", "1583743814966-8936f5b7be1a", "Printed tee with an Amazigh motif.", 2900, kidsSizes, []string{"White", "Terracotta"}, domain.BadgeNew, ""},
		{"prod_az_dress", "Azekka Tunic Dress", "col_azekka", "1595777457583-95e059d581b8", "Flowing tunic dress in breathable cotton.", 4500, kidsSizes, []string{"Sand", "Dusty Rose"}, domain.BadgePreorder, "April 2026"},
		{"prod_az_jacket", "Azekka Light Jacket", "col_azekka", "1591047139829-d91aecb6caea", "Packable jacket for cool mornings.", 6900, kidsSizes, []string{"Navy", "Sage"}, "", ""},
		{"prod_im_tee", "Imnayen Essential Tee", "col_imnayen", "1521572163474-6864f9cf17ab", "Heavyweight essential tee.", 4500, adultSizes, []string{"Black", "Sand", "Indigo"}, domain.BadgeNew, ""},
		{"prod_im_hoodie", "Imnayen Heritage Hoodie", "col_imnayen", "1578768079052-aa76e52ff62e", "Heritage hoodie with embroidered detail.", 9900, adultSizes, []string{"Charcoal", "Cream", "Olive"}, "", ""},
		{"prod_im_pants", "Imnayen Cargo Pants", "col_imnayen", "1542272604-787c3835535d", "Relaxed cargo pants with utility pockets.", 8500, adultSizes, []string{"Khaki", "Black"}, "", ""},
		{"prod_im_jacket", "Imnayen Bomber", "col_imnayen", "1551028719-00167b16eac5", "Satin bomber with a quilted lining.", 15900, adultSizes, []string{"Black", "Olive"}, domain.BadgePreorder, "March 2026"},
		{"prod_ti_tee", "Tigejda Relaxed Tee", "col_tigejda", "1625910513413-5cc2d32e3de5", "Relaxed fit tee with dropped shoulders.", 4500, adultSizes, []string{"White", "Sand", "Black"}, domain.BadgeNew, ""},
		{"prod_ti_dress", "Tigejda Wrap Dress", "col_tigejda", "1601924921557-45e93e96e52e", "Wrap dress in a fluid weave.", 8900, adultSizes, []string{"Terracotta", "Cream"}, "", ""},
	}
	accessories := []accessory{
		{"prod_ti_bag", "Tigejda Canvas Tote", "col_tigejda", "1548036328-c11e0931fe7e", "Sturdy canvas tote.", "var_tote_", 5900, []string{"Natural", "Black"}, "", ""},
		{"prod_acc_hat", "IYUC Dad Cap", "col_imnayen", "1588850561407-ed78c334e67a", "Washed cotton cap with embroidered logo.", "var_cap_", 3500, []string{"Black", "Sand", "Indigo"}, "", ""},
		{"prod_acc_watch", "IYUC Minimal Watch", "col_imnayen", "1524592094714-0f0654e20314", "Minimal watch with a leather strap.", "var_watch_", 19900, []string{"Silver/Black", "Gold/Sand"}, domain.BadgePreorder, "May 2026"},
		{"prod_acc_sunglasses", "IYUC Retro Sunglasses", "col_tigejda", "1511499767150-a48a237f0083", "Retro frames with UV400 lenses.", "var_sunglasses_", 8500, []string{"Tortoise", "Black"}, "", ""},
	}

	products := make([]domain.Product, 0, len(apparelItems)+len(accessories))
	for _, a := range apparelItems {
		p := product(a.id, a.title, a.collection, unsplash(a.image), a.description, a.badge, a.preorder)
		p.Options = []domain.ProductOption{sizeOption(a.id, a.sizes), colorOption(a.id, a.colors)}
		p.Variants = sizeColorVariants(a.id, a.amount, a.sizes, a.colors)
		products = append(products, p)
	}
	for _, a := range accessories {
		p := product(a.id, a.title, a.collection, unsplash(a.image), a.description, a.badge, a.preorder)
		p.Options = []domain.ProductOption{colorOption(a.id, a.colors)}
		p.Variants = colorVariants(a.id, a.prefix, a.amount, a.colors)
		products = append(products, p)
	}
	return products
}
