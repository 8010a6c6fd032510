package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one product entry in a customer's cart. Identity within a cart
// is the product id plus the size variant.
type CartItem struct {
	ID       string          `json:"id" bson:"product_id"`
	Name     string          `json:"name" bson:"name"`
	Size     string          `json:"size" bson:"size"`
	Price    decimal.Decimal `json:"price" bson:"price"`
	Quantity int             `json:"quantity" bson:"quantity"`
	Image    string          `json:"image,omitempty" bson:"image,omitempty"`
}

type Cart struct {
	ID        string     `json:"-" bson:"_id,omitempty"`
	UserID    string     `json:"user_id" bson:"user_id"`
	Items     []CartItem `json:"items" bson:"items"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

// Subtotal is the sum of price*quantity over all items, to two decimal places.
func (c *Cart) Subtotal() decimal.Decimal {
	return Subtotal(c.Items)
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func Subtotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total.Round(2)
}

// PackageWeight estimates the shipment weight in pounds: one pound per unit,
// never less than one pound.
func PackageWeight(items []CartItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	if total < 1 {
		return 1
	}
	return total
}
