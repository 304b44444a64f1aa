// Package catalog derives product view state: option selection, variant
// resolution, display prices and image URLs.
package catalog

import (
	"github.com/iflis7/iyuc-store/services/storefront/internal/domain"
)

// Selection maps option ids to chosen values.
type Selection map[string]string

// DefaultSelection picks the first value of every option that has values.
func DefaultSelection(p *domain.Product) Selection {
	sel := make(Selection, len(p.Options))
	for _, opt := range p.Options {
		if len(opt.Values) > 0 {
			sel[opt.ID] = opt.Values[0].Value
		}
	}
	return sel
}

// Merge overlays the given choices on s for options the product declares.
func (s Selection) Merge(p *domain.Product, choices map[string]string) Selection {
	out := make(Selection, len(s))
	for k, v := range s {
		out[k] = v
	}
	for _, opt := range p.Options {
		if v, ok := choices[opt.ID]; ok && v != "" {
			out[opt.ID] = v
		}
	}
	return out
}

func matches(v domain.Variant, sel Selection) bool {
	for _, o := range v.Options {
		if sel[o.OptionID] != o.Value {
			return false
		}
	}
	return true
}

// ResolveVariant returns the first variant whose options all equal sel. A
// variant without options matches any selection. When nothing matches, the
// first variant is returned with exact=false. ok is false only for a
// product without variants.
func ResolveVariant(p *domain.Product, sel Selection) (v domain.Variant, exact, ok bool) {
	if len(p.Variants) == 0 {
		return domain.Variant{}, false, false
	}
	for _, candidate := range p.Variants {
		if matches(candidate, sel) {
			return candidate, true, true
		}
	}
	return p.Variants[0], false, true
}

// InStock reports whether a variant can be bought. Unknown inventory counts
// as in stock.
func InStock(v domain.Variant) bool {
	return v.InventoryQuantity == nil || *v.InventoryQuantity > 0
}
