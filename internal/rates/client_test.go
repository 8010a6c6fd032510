package rates

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MotownC/TheRackHack/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCart() []domain.CartItem {
	return []domain.CartItem{
		{ID: "tee-1", Name: "Band Tee", Size: "M", Price: decimal.NewFromFloat(20.00), Quantity: 2},
	}
}

func testAddress() domain.ShippingAddress {
	return domain.ShippingAddress{
		Name:    "Jo Buyer",
		Phone:   "555-0110",
		Address: "1 Main St",
		City:    "Portland",
		State:   "OR",
		ZipCode: "97201",
	}
}

func TestGetRates_MissingAPIKey(t *testing.T) {
	client := NewClient("http://unused", "")

	quote, err := client.GetRates(context.Background(), testCart(), testAddress())

	assert.Nil(t, quote)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestGetRates_NormalizesProviderResponse(t *testing.T) {
	var captured rateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/rates", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("API-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		resp := rateResponse{}
		resp.RateResponse.Rates = []providerRate{
			testRate("r1", "USPS Priority Mail", 9.50, 2),
			testRate("r2", "USPS Ground Advantage", 5.45, 5),
			testRate("r3", "USPS Parcel Select", 4.10, 8),
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	quote, err := client.GetRates(context.Background(), testCart(), testAddress())

	require.NoError(t, err)
	assert.False(t, quote.Estimated)
	require.Len(t, quote.Rates, 2)
	assert.Equal(t, "USPS Ground Advantage", quote.Rates[0].Service)

	// Shipment weight is one pound per unit, from the warehouse origin.
	require.Len(t, captured.Shipment.Packages, 1)
	assert.Equal(t, 2, captured.Shipment.Packages[0].Weight.Value)
	assert.Equal(t, "48347", captured.Shipment.ShipFrom.PostalCode)
	assert.Equal(t, "97201", captured.Shipment.ShipTo.PostalCode)
	assert.Equal(t, []string{carrierID}, captured.RateOptions.CarrierIDs)
}

func TestGetRates_ProviderErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(providerError{Message: "rate limit exceeded"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	quote, err := client.GetRates(context.Background(), testCart(), testAddress())

	require.NoError(t, err)
	assert.True(t, quote.Estimated)
	assert.Contains(t, quote.Warning, "rate limit exceeded")
	assert.Equal(t, FallbackRates(), quote.Rates)
}

func TestGetRates_EmptyRateListFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(rateResponse{})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	quote, err := client.GetRates(context.Background(), testCart(), testAddress())

	require.NoError(t, err)
	assert.True(t, quote.Estimated)
	assert.Equal(t, "no shipping rates available", quote.Warning)
}

func TestGetRates_AllFilteredFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := rateResponse{}
		resp.RateResponse.Rates = []providerRate{
			testRate("r1", "UPS Next Day Air", 42.00, 1),
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	quote, err := client.GetRates(context.Background(), testCart(), testAddress())

	require.NoError(t, err)
	assert.True(t, quote.Estimated)
	assert.Equal(t, FallbackRates(), quote.Rates)
}
