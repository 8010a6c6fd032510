package payment

import (
	"github.com/MotownC/TheRackHack/internal/domain"
	"github.com/shopspring/decimal"
)

// TaxRate is the flat sales tax applied to subtotal plus shipping. It is a
// single strategy on purpose; the provider's automatic-tax mode is not mixed
// in.
var TaxRate = decimal.NewFromFloat(0.06)

// Tax computes the flat tax on subtotal plus shipping, rounded to cents.
func Tax(subtotal, shipping decimal.Decimal) decimal.Decimal {
	return subtotal.Add(shipping).Mul(TaxRate).Round(2)
}

// LineItem is one priced entry submitted to the payment provider.
type LineItem struct {
	Name        string
	Description string
	Image       string
	UnitAmount  int64 // minor currency units
	Quantity    int
}

// SessionParams is everything needed to create a hosted checkout session.
type SessionParams struct {
	LineItems     []LineItem
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// minorUnits converts a decimal dollar amount to integer cents, rounded.
func minorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// BuildLineItems maps cart items to priced line items and appends the
// synthetic shipping and tax entries when they carry a positive amount.
func BuildLineItems(items []domain.CartItem, shippingCost decimal.Decimal, shippingService string, taxAmount decimal.Decimal) []LineItem {
	lineItems := make([]LineItem, 0, len(items)+2)
	for _, item := range items {
		lineItems = append(lineItems, LineItem{
			Name:        item.Name,
			Description: "Size: " + item.Size,
			Image:       item.Image,
			UnitAmount:  minorUnits(item.Price),
			Quantity:    item.Quantity,
		})
	}

	if shippingCost.IsPositive() {
		service := shippingService
		if service == "" {
			service = "Standard"
		}
		lineItems = append(lineItems, LineItem{
			Name:       "Shipping: " + service,
			UnitAmount: minorUnits(shippingCost),
			Quantity:   1,
		})
	}

	if taxAmount.IsPositive() {
		lineItems = append(lineItems, LineItem{
			Name:       "Sales Tax (6%)",
			UnitAmount: minorUnits(taxAmount),
			Quantity:   1,
		})
	}

	return lineItems
}
