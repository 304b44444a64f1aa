package catalog

import (
	"golang.org/x/text/language"

	"github.com/iflis7/iyuc-store/pkg/money"
	"github.com/iflis7/iyuc-store/services/storefront/internal/domain"
)

// VariantPrice is the variant's calculated price, else its first listed price.
func VariantPrice(v domain.Variant) (amount int64, currency string, ok bool) {
	if v.CalculatedPrice != nil {
		return v.CalculatedPrice.CalculatedAmount, v.CalculatedPrice.CurrencyCode, true
	}
	if len(v.Prices) > 0 {
		return v.Prices[0].Amount, v.Prices[0].CurrencyCode, true
	}
	return 0, "", false
}

// ProductPrice is the price of the product's first variant.
func ProductPrice(p *domain.Product) (amount int64, currency string, ok bool) {
	if len(p.Variants) == 0 {
		return 0, "", false
	}
	return VariantPrice(p.Variants[0])
}

// DisplayPrice formats the selected variant's calculated price, falling back
// to the product price. It returns nil when neither is known.
func DisplayPrice(p *domain.Product, v *domain.Variant, tag language.Tag) *money.Price {
	if v != nil && v.CalculatedPrice != nil {
		price := money.NewPrice(v.CalculatedPrice.CalculatedAmount, v.CalculatedPrice.CurrencyCode, tag)
		return &price
	}
	amount, currency, ok := ProductPrice(p)
	if !ok {
		return nil
	}
	price := money.NewPrice(amount, currency, tag)
	return &price
}
