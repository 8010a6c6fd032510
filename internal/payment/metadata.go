package payment

import (
	"encoding/json"
	"fmt"

	"github.com/MotownC/TheRackHack/internal/domain"
	"github.com/shopspring/decimal"
)

// The provider truncates each metadata value at this budget. Packing clips
// silently; an overlong cart summary is a documented lossy edge case, not
// something corrected transparently.
const metadataValueLimit = 500

const metadataNameLimit = 30

const (
	metaCustomerName    = "customer_name"
	metaShippingAddress = "shipping_address"
	metaShippingService = "shipping_service"
	metaShippingCost    = "shipping_cost"
	metaTaxAmount       = "tax_amount"
	metaCartItems       = "cart_items"
)

// metadataItem is the compact per-item snapshot carried in session metadata.
type metadataItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Size     string  `json:"size"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// OrderSnapshot is the order information reconstructed from session metadata.
type OrderSnapshot struct {
	CustomerName    string
	Address         domain.ShippingAddress
	ShippingService string
	ShippingCost    decimal.Decimal
	TaxAmount       decimal.Decimal
	Items           []domain.CartItem
}

// PackMetadata serializes the order snapshot into the provider's metadata
// budget. Item names are truncated to thirty characters to stretch the cart
// summary; the summary itself is still clipped if it overflows.
func PackMetadata(customerName string, addr domain.ShippingAddress, shippingService string, shippingCost, taxAmount decimal.Decimal, items []domain.CartItem) (map[string]string, error) {
	addrJSON, err := json.Marshal(addr)
	if err != nil {
		return nil, fmt.Errorf("marshal shipping address: %w", err)
	}

	summary := make([]metadataItem, 0, len(items))
	for _, item := range items {
		price, _ := item.Price.Float64()
		summary = append(summary, metadataItem{
			ID:       item.ID,
			Name:     clip(item.Name, metadataNameLimit),
			Size:     item.Size,
			Price:    price,
			Quantity: item.Quantity,
		})
	}
	itemsJSON, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("marshal cart summary: %w", err)
	}

	md := map[string]string{
		metaCustomerName:    clip(customerName, metadataValueLimit),
		metaShippingAddress: clip(string(addrJSON), metadataValueLimit),
		metaShippingService: clip(shippingService, metadataValueLimit),
		metaShippingCost:    shippingCost.StringFixed(2),
		metaTaxAmount:       taxAmount.StringFixed(2),
		metaCartItems:       clip(string(itemsJSON), metadataValueLimit),
	}
	return md, nil
}

// UnpackMetadata reverses PackMetadata. Amounts that fail to parse default to
// zero; a cart summary that was clipped mid-JSON surfaces as an error.
func UnpackMetadata(md map[string]string) (*OrderSnapshot, error) {
	snapshot := &OrderSnapshot{
		CustomerName:    md[metaCustomerName],
		ShippingService: md[metaShippingService],
		ShippingCost:    parseAmount(md[metaShippingCost]),
		TaxAmount:       parseAmount(md[metaTaxAmount]),
	}

	if raw := md[metaShippingAddress]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &snapshot.Address); err != nil {
			return nil, fmt.Errorf("unmarshal shipping address metadata: %w", err)
		}
	}

	if raw := md[metaCartItems]; raw != "" {
		var summary []metadataItem
		if err := json.Unmarshal([]byte(raw), &summary); err != nil {
			return nil, fmt.Errorf("unmarshal cart summary metadata: %w", err)
		}
		snapshot.Items = make([]domain.CartItem, 0, len(summary))
		for _, item := range summary {
			snapshot.Items = append(snapshot.Items, domain.CartItem{
				ID:       item.ID,
				Name:     item.Name,
				Size:     item.Size,
				Price:    decimal.NewFromFloat(item.Price).Round(2),
				Quantity: item.Quantity,
			})
		}
	}

	return snapshot, nil
}

func parseAmount(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func clip(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
