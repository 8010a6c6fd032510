package payment

import (
	"testing"

	"github.com/MotownC/TheRackHack/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTax_FlatSixPercentOnSubtotalPlusShipping(t *testing.T) {
	subtotal := decimal.NewFromFloat(40.00)
	shipping := decimal.NewFromFloat(5.99)

	tax := Tax(subtotal, shipping)

	assert.Equal(t, "2.76", tax.StringFixed(2))
	assert.Equal(t, "48.75", subtotal.Add(shipping).Add(tax).StringFixed(2))
}

func TestTax_RoundsToCents(t *testing.T) {
	// 0.06 * 10.10 = 0.606, rounds to 0.61
	tax := Tax(decimal.NewFromFloat(10.10), decimal.Zero)
	assert.Equal(t, "0.61", tax.StringFixed(2))
}

func TestBuildLineItems_ItemsPlusShippingAndTax(t *testing.T) {
	items := []domain.CartItem{
		{ID: "tee-1", Name: "Band Tee", Size: "M", Price: decimal.NewFromFloat(15.00), Quantity: 2, Image: "https://img/tee.jpg"},
		{ID: "hat-1", Name: "Snapback", Size: "OS", Price: decimal.NewFromFloat(10.00), Quantity: 1},
	}

	lineItems := BuildLineItems(items, decimal.NewFromFloat(5.99), "USPS Priority Mail", decimal.NewFromFloat(2.76))

	require.Len(t, lineItems, 4)
	assert.Equal(t, "Band Tee", lineItems[0].Name)
	assert.Equal(t, "Size: M", lineItems[0].Description)
	assert.Equal(t, int64(1500), lineItems[0].UnitAmount)
	assert.Equal(t, 2, lineItems[0].Quantity)

	assert.Equal(t, "Shipping: USPS Priority Mail", lineItems[2].Name)
	assert.Equal(t, int64(599), lineItems[2].UnitAmount)
	assert.Equal(t, 1, lineItems[2].Quantity)

	assert.Equal(t, "Sales Tax (6%)", lineItems[3].Name)
	assert.Equal(t, int64(276), lineItems[3].UnitAmount)
}

func TestBuildLineItems_FreeShippingOmitted(t *testing.T) {
	items := []domain.CartItem{
		{ID: "tee-1", Name: "Band Tee", Price: decimal.NewFromFloat(15.00), Quantity: 1},
	}

	lineItems := BuildLineItems(items, decimal.Zero, "", decimal.NewFromFloat(0.90))

	require.Len(t, lineItems, 2)
	assert.Equal(t, "Sales Tax (6%)", lineItems[1].Name)
}

func TestBuildLineItems_DefaultServiceName(t *testing.T) {
	items := []domain.CartItem{
		{ID: "tee-1", Name: "Band Tee", Price: decimal.NewFromFloat(15.00), Quantity: 1},
	}

	lineItems := BuildLineItems(items, decimal.NewFromFloat(4.00), "", decimal.Zero)

	require.Len(t, lineItems, 2)
	assert.Equal(t, "Shipping: Standard", lineItems[1].Name)
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1999), minorUnits(decimal.NewFromFloat(19.99)))
	assert.Equal(t, int64(0), minorUnits(decimal.Zero))
	// Sub-cent amounts round, not truncate.
	assert.Equal(t, int64(1000), minorUnits(decimal.NewFromFloat(9.999)))
}
