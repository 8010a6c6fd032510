package rates

import (
	"sort"
	"strconv"
	"strings"

	"github.com/MotownC/TheRackHack/internal/domain"
	"github.com/shopspring/decimal"
)

// Warehouse origin. All shipments leave Clarkston, MI.
const (
	originName    = "The Rack Hack"
	originCompany = "The Rack Hack"
	originPhone   = "248-555-0100"
	originStreet  = "6325 Sashabaw Rd"
	originCity    = "Clarkston"
	originState   = "MI"
	originZip     = "48347"
)

// allowedServices is the allow-list of carrier service names we sell.
// Anything else the provider returns is discarded.
var allowedServices = map[string]bool{
	"USPS Priority Mail":         true,
	"USPS Priority Mail Express": true,
	"USPS Ground Advantage":      true,
}

// Quote is the normalized result of one rate lookup. When Estimated is set
// the rates are the hardcoded fallback tiers and Warning carries the reason;
// checkout proceeds either way.
type Quote struct {
	Rates     []domain.ShippingRate `json:"rates"`
	Estimated bool                  `json:"estimated"`
	Warning   string                `json:"warning,omitempty"`
}

// Selected returns the auto-selected default: the cheapest rate.
func (q *Quote) Selected() *domain.ShippingRate {
	if len(q.Rates) == 0 {
		return nil
	}
	return &q.Rates[0]
}

// FallbackRates are the flat tiers used whenever the provider cannot supply a
// usable quote. Fixed prices, so checkout is never blocked by a rates outage.
func FallbackRates() []domain.ShippingRate {
	return []domain.ShippingRate{
		{ID: "first-class", Service: "USPS First Class", Rate: decimal.NewFromFloat(5.99), DeliveryTime: "3-5 business days"},
		{ID: "priority", Service: "USPS Priority Mail", Rate: decimal.NewFromFloat(9.99), DeliveryTime: "2-3 business days"},
		{ID: "express", Service: "USPS Priority Express", Rate: decimal.NewFromFloat(26.99), DeliveryTime: "1-2 business days"},
	}
}

func fallbackQuote(reason string) *Quote {
	return &Quote{Rates: FallbackRates(), Estimated: true, Warning: reason}
}

// normalize filters provider rates against the allow-list, labels delivery
// times, sorts ascending by price and keeps only the cheapest rate per
// service name. Providers return several options (flat-rate box variants)
// under one service name; the sort-then-dedup keeps the first occurrence,
// which after sorting is the cheapest.
func normalize(raw []providerRate) []domain.ShippingRate {
	formatted := make([]domain.ShippingRate, 0, len(raw))
	for _, r := range raw {
		if !allowedServices[r.ServiceType] {
			continue
		}
		formatted = append(formatted, domain.ShippingRate{
			ID:           r.RateID,
			Service:      r.ServiceType,
			Carrier:      r.CarrierFriendlyName,
			Rate:         decimal.NewFromFloat(r.ShippingAmount.Amount).Round(2),
			DeliveryTime: deliveryLabel(r.ServiceType, r.DeliveryDays),
		})
	}

	sort.SliceStable(formatted, func(i, j int) bool {
		return formatted[i].Rate.LessThan(formatted[j].Rate)
	})

	unique := make([]domain.ShippingRate, 0, len(formatted))
	seen := make(map[string]bool)
	for _, r := range formatted {
		if seen[r.Service] {
			continue
		}
		seen[r.Service] = true
		unique = append(unique, r)
	}
	return unique
}

func deliveryLabel(service string, days int) string {
	label := "Varies"
	if days > 0 {
		label = strconv.Itoa(days) + " business days"
	}
	switch {
	case strings.Contains(service, "Express"):
		label += " (Guaranteed)"
	case strings.Contains(service, "Ground"):
		label += " (Estimated)"
	}
	return label
}
