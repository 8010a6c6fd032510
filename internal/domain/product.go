package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. The checkout flow only ever reads price/stock
// and decrements stock after a verified payment.
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Size      string          `json:"size"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Stock     int             `json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
