package checkout

import (
	"golang.org/x/text/language"

	"github.com/iflis7/iyuc-store/pkg/money"
	"github.com/iflis7/iyuc-store/services/storefront/internal/domain"
)

// OptionView is a shipping option with its resolved price.
type OptionView struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	PriceType domain.PriceType `json:"price_type"`
	Price     money.Price      `json:"price"`
	Selected  bool             `json:"selected"`
}

// View is a serializable snapshot of a flow.
type View struct {
	Step            Step          `json:"step"`
	Steps           []Step        `json:"steps"`
	Email           string        `json:"email,omitempty"`
	CartEmpty       bool          `json:"cart_empty"`
	ShippingOptions []OptionView  `json:"shipping_options"`
	SelectedOption  string        `json:"selected_shipping_option_id,omitempty"`
	ShippingLoading bool          `json:"shipping_loading"`
	Placing         bool          `json:"placing"`
	Error           string        `json:"error,omitempty"`
	OrderRef        string        `json:"order_ref,omitempty"`
	Order           *domain.Order `json:"order,omitempty"`
	Subtotal        money.Price   `json:"subtotal"`
	Shipping        money.Price   `json:"shipping"`
	Total           money.Price   `json:"total"`
}

// View renders the flow with prices formatted for tag. A confirmed flow
// reports the placed order's amounts.
func (f *Flow) View(tag language.Tag) View {
	currency := f.Currency()
	subtotal := f.Subtotal()
	total := f.Total()
	cart := f.session.Cart()

	f.mu.Lock()
	defer f.mu.Unlock()

	// The cart is reset once an order is placed; price the confirmation from the order.
	if o := f.order; o != nil {
		if o.CurrencyCode != "" {
			currency = o.CurrencyCode
		}
		total = o.Total
		subtotal = o.Total - f.shippingCostLocked()
		if len(o.Items) > 0 {
			subtotal = 0
			for _, it := range o.Items {
				subtotal += it.Total
			}
		}
	}

	v := View{
		Step:            f.step,
		Steps:           Steps,
		Email:           f.info.Email,
		CartEmpty:       cart == nil || len(cart.Items) == 0,
		ShippingOptions: make([]OptionView, 0, len(f.options)),
		SelectedOption:  f.selected,
		ShippingLoading: f.shippingLoading,
		Placing:         f.placing,
		Error:           f.errMsg,
		Order:           f.order,
		Subtotal:        money.NewPrice(subtotal, currency, tag),
		Shipping:        money.NewPrice(f.shippingCostLocked(), currency, tag),
		Total:           money.NewPrice(total, currency, tag),
	}
	for _, o := range f.options {
		v.ShippingOptions = append(v.ShippingOptions, OptionView{
			ID:        o.ID,
			Name:      o.Name,
			PriceType: o.PriceType,
			Price:     money.NewPrice(f.optionAmountLocked(o), currency, tag),
			Selected:  o.ID == f.selected,
		})
	}
	if f.order != nil {
		v.OrderRef = f.order.DisplayRef()
	}
	return v
}
