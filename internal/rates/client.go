package rates

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MotownC/TheRackHack/internal/domain"
	"github.com/sony/gobreaker/v2"
)

// ErrMissingAPIKey is a configuration error: it fails the request before any
// network call instead of being recovered through the fallback tiers.
var ErrMissingAPIKey = errors.New("rates provider API key is missing")

// carrierID is the single pre-registered carrier account the rate request
// names. An empty carrier list often fails in the provider's test mode.
const carrierID = "se-4358864"

const requestTimeout = 10 * time.Second

// Client fetches carrier rate quotes from the external rates provider.
// Provider failures of any kind degrade to FallbackRates; the circuit breaker
// keeps a flapping provider from adding latency to every checkout.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	breaker    *gobreaker.CircuitBreaker[[]providerRate]
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		breaker: gobreaker.NewCircuitBreaker[[]providerRate](gobreaker.Settings{
			Name:    "rates-provider",
			Timeout: 30 * time.Second,
		}),
	}
}

type rateRequest struct {
	RateOptions rateOptions `json:"rate_options"`
	Shipment    shipment    `json:"shipment"`
}

type rateOptions struct {
	CarrierIDs []string `json:"carrier_ids"`
}

type shipment struct {
	ValidateAddress string    `json:"validate_address"`
	ShipTo          party     `json:"ship_to"`
	ShipFrom        party     `json:"ship_from"`
	Packages        []pkgSpec `json:"packages"`
}

type party struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	CompanyName  string `json:"company_name,omitempty"`
	AddressLine1 string `json:"address_line1"`
	CityLocality string `json:"city_locality"`
	State        string `json:"state_province"`
	PostalCode   string `json:"postal_code"`
	CountryCode  string `json:"country_code"`
}

type pkgSpec struct {
	Weight     weight     `json:"weight"`
	Dimensions dimensions `json:"dimensions"`
}

type weight struct {
	Value int    `json:"value"`
	Unit  string `json:"unit"`
}

type dimensions struct {
	Length int    `json:"length"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Unit   string `json:"unit"`
}

type rateResponse struct {
	RateResponse struct {
		Rates []providerRate `json:"rates"`
	} `json:"rate_response"`
}

type providerRate struct {
	RateID              string `json:"rate_id"`
	ServiceType         string `json:"service_type"`
	CarrierFriendlyName string `json:"carrier_friendly_name"`
	DeliveryDays        int    `json:"delivery_days"`
	ShippingAmount      struct {
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
	} `json:"shipping_amount"`
}

type providerError struct {
	Message string `json:"message"`
}

// GetRates quotes shipping for the cart to the destination address. The
// returned quote is never empty: any provider failure, empty rate list or
// fully-filtered result falls back to the fixed estimated tiers.
func (c *Client) GetRates(ctx context.Context, items []domain.CartItem, addr domain.ShippingAddress) (*Quote, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	raw, err := c.breaker.Execute(func() ([]providerRate, error) {
		return c.fetchRates(ctx, items, addr)
	})
	if err != nil {
		log := fmt.Sprintf("rates provider unavailable: %v", err)
		return fallbackQuote(log), nil
	}

	if len(raw) == 0 {
		return fallbackQuote("no shipping rates available"), nil
	}

	unique := normalize(raw)
	if len(unique) == 0 {
		return fallbackQuote("rates found, but none matched an offered service"), nil
	}

	return &Quote{Rates: unique}, nil
}

func (c *Client) fetchRates(ctx context.Context, items []domain.CartItem, addr domain.ShippingAddress) ([]providerRate, error) {
	reqBody := rateRequest{
		RateOptions: rateOptions{CarrierIDs: []string{carrierID}},
		Shipment: shipment{
			ValidateAddress: "no_validation",
			ShipTo: party{
				Name:         addr.Name,
				Phone:        addr.Phone,
				AddressLine1: addr.Address,
				CityLocality: addr.City,
				State:        addr.State,
				PostalCode:   addr.ZipCode,
				CountryCode:  "US",
			},
			ShipFrom: party{
				Name:         originName,
				Phone:        originPhone,
				CompanyName:  originCompany,
				AddressLine1: originStreet,
				CityLocality: originCity,
				State:        originState,
				PostalCode:   originZip,
				CountryCode:  "US",
			},
			Packages: []pkgSpec{{
				Weight:     weight{Value: domain.PackageWeight(items), Unit: "pound"},
				Dimensions: dimensions{Length: 12, Width: 10, Height: 6, Unit: "inch"},
			}},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal rate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/rates", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build rate request: %w", err)
	}
	req.Header.Set("API-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rate request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read rate response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var perr providerError
		if json.Unmarshal(data, &perr) == nil && perr.Message != "" {
			return nil, fmt.Errorf("rates provider: %s", perr.Message)
		}
		return nil, fmt.Errorf("rates provider returned status %d", resp.StatusCode)
	}

	var parsed rateResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("decode rate response: %w", err)
	}
	return parsed.RateResponse.Rates, nil
}
