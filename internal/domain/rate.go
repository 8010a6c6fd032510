package domain

import "github.com/shopspring/decimal"

// ShippingRate is one priced carrier option quoted for a destination.
// Quotes are ephemeral: fetched fresh per ZIP entry, never persisted past
// the checkout session that requested them.
type ShippingRate struct {
	ID           string          `json:"id"`
	Service      string          `json:"service"`
	Carrier      string          `json:"carrier,omitempty"`
	Rate         decimal.Decimal `json:"rate"`
	DeliveryTime string          `json:"deliveryTime"`
}
