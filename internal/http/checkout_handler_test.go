package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MotownC/TheRackHack/internal/checkout"
	"github.com/MotownC/TheRackHack/internal/domain"
	"github.com/MotownC/TheRackHack/internal/payment"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkoutRouter(h *CheckoutHandler) chi.Router {
	r := chi.NewRouter()
	r.Use(UserIDMiddleware)
	r.Post("/api/checkout", h.Start)
	r.Put("/api/checkout/{id}/information", h.SubmitInformation)
	r.Put("/api/checkout/{id}/shipping", h.SelectShipping)
	r.Post("/api/checkout/{id}/payment", h.CreatePayment)
	r.Post("/api/checkout/{id}/back", h.Back)
	r.Post("/api/create-checkout-session", h.CreateSession)
	r.Get("/api/checkout-session/{sessionID}", h.GetSessionStatus)
	return r
}

func TestStartHandler_RequiresUserID(t *testing.T) {
	handler := NewCheckoutHandler(&CheckoutServiceMock{}, &SessionFetcherMock{}, &NotifierMock{}, 5*time.Second)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", nil)
	rec := httptest.NewRecorder()
	checkoutRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStartHandler_Success(t *testing.T) {
	session := &domain.CheckoutSession{ID: uuid.New(), UserID: "u1", Status: domain.CheckoutStatusInformation}
	handler := NewCheckoutHandler(&CheckoutServiceMock{Session: session}, &SessionFetcherMock{}, &NotifierMock{}, 5*time.Second)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", nil)
	req.Header.Set("X-User-ID", "u1")
	rec := httptest.NewRecorder()
	checkoutRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var resp domain.CheckoutSession
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, session.ID, resp.ID)
}

func TestSubmitInformationHandler_BadUUID(t *testing.T) {
	handler := NewCheckoutHandler(&CheckoutServiceMock{}, &SessionFetcherMock{}, &NotifierMock{}, 5*time.Second)

	req := httptest.NewRequest(http.MethodPut, "/api/checkout/not-a-uuid/information", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	checkoutRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitInformationHandler_IncompleteInformation(t *testing.T) {
	handler := NewCheckoutHandler(&CheckoutServiceMock{Err: checkout.ErrIncompleteInformation}, &SessionFetcherMock{}, &NotifierMock{}, 5*time.Second)

	body, _ := json.Marshal(SubmitInformationRequestDTO{Name: "Jo"})
	req := httptest.NewRequest(http.MethodPut, "/api/checkout/"+uuid.NewString()+"/information", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()
	checkoutRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "incomplete_information", resp.Code)
}

func TestSelectShippingHandler_UnknownRate(t *testing.T) {
	handler := NewCheckoutHandler(&CheckoutServiceMock{Err: checkout.ErrUnknownRate}, &SessionFetcherMock{}, &NotifierMock{}, 5*time.Second)

	body, _ := json.Marshal(SelectShippingRequestDTO{RateID: "r-made-up"})
	req := httptest.NewRequest(http.MethodPut, "/api/checkout/"+uuid.NewString()+"/shipping", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()
	checkoutRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "unknown_rate", resp.Code)
}

func TestCreatePaymentHandler_IllegalTransition(t *testing.T) {
	handler := NewCheckoutHandler(&CheckoutServiceMock{Err: checkout.IllegalTransitionError}, &SessionFetcherMock{}, &NotifierMock{}, 5*time.Second)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout/"+uuid.NewString()+"/payment", nil)
	rec := httptest.NewRecorder()
	checkoutRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreatePaymentHandler_Success(t *testing.T) {
	handler := NewCheckoutHandler(&CheckoutServiceMock{
		PaymentSession: &payment.Session{ID: "cs_123", URL: "https://pay.example/cs_123"},
	}, &SessionFetcherMock{}, &NotifierMock{}, 5*time.Second)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout/"+uuid.NewString()+"/payment", nil)
	rec := httptest.NewRecorder()
	checkoutRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var resp PaymentSessionResponseDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "cs_123", resp.ID)
	assert.Equal(t, "https://pay.example/cs_123", resp.URL)
}

func TestBackHandler(t *testing.T) {
	svc := &CheckoutServiceMock{Session: &domain.CheckoutSession{Status: domain.CheckoutStatusInformation}}
	handler := NewCheckoutHandler(svc, &SessionFetcherMock{}, &NotifierMock{}, 5*time.Second)

	body, _ := json.Marshal(BackRequestDTO{To: "INFORMATION"})
	req := httptest.NewRequest(http.MethodPost, "/api/checkout/"+uuid.NewString()+"/back", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()
	checkoutRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.CheckoutStatusInformation, svc.BackTo)
}

func TestCreateSessionHandler_Success(t *testing.T) {
	svc := &CheckoutServiceMock{PaymentSession: &payment.Session{ID: "cs_999", URL: "https://pay.example/cs_999"}}
	handler := NewCheckoutHandler(svc, &SessionFetcherMock{}, &NotifierMock{}, 5*time.Second)

	body, _ := json.Marshal(CreateSessionRequestDTO{
		Cart: []domain.CartItem{
			{ID: "tee-1", Name: "Band Tee", Quantity: 1},
		},
		Email:           "jo@example.com",
		Name:            "Jo Buyer",
		ShippingCost:    9.99,
		ShippingService: "USPS Priority Mail",
		TaxAmount:       2.40,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/create-checkout-session", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()
	checkoutRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp PaymentSessionResponseDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "cs_999", resp.ID)

	require.NotNil(t, svc.DirectReq)
	assert.Equal(t, "Jo Buyer", svc.DirectReq.CustomerName)
	assert.Equal(t, "9.99", svc.DirectReq.ShippingCost.StringFixed(2))
}

func TestCreateSessionHandler_EmptyCart(t *testing.T) {
	handler := NewCheckoutHandler(&CheckoutServiceMock{}, &SessionFetcherMock{}, &NotifierMock{}, 5*time.Second)

	body, _ := json.Marshal(CreateSessionRequestDTO{Email: "jo@example.com"})
	req := httptest.NewRequest(http.MethodPost, "/api/create-checkout-session", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()
	checkoutRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSessionStatusHandler_PaidQueuesVerification(t *testing.T) {
	fetcher := &SessionFetcherMock{Session: &payment.Session{
		ID:            "cs_123",
		PaymentStatus: "paid",
		CustomerEmail: "jo@example.com",
		AmountTotal:   4875,
		Metadata:      map[string]string{"customer_name": "Jo Buyer"},
	}}
	notifier := &NotifierMock{}
	handler := NewCheckoutHandler(&CheckoutServiceMock{}, fetcher, notifier, 5*time.Second)

	req := httptest.NewRequest(http.MethodGet, "/api/checkout-session/cs_123", nil)
	rec := httptest.NewRecorder()
	checkoutRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp SessionStatusResponseDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "paid", resp.Status)
	assert.Equal(t, int64(4875), resp.AmountTotal)
	assert.Equal(t, "Jo Buyer", resp.Metadata["customer_name"])

	require.Len(t, notifier.Sessions, 1)
	assert.Equal(t, "cs_123", notifier.Sessions[0].ID)
}

func TestGetSessionStatusHandler_UnpaidNotQueued(t *testing.T) {
	fetcher := &SessionFetcherMock{Session: &payment.Session{ID: "cs_123", PaymentStatus: "unpaid"}}
	notifier := &NotifierMock{}
	handler := NewCheckoutHandler(&CheckoutServiceMock{}, fetcher, notifier, 5*time.Second)

	req := httptest.NewRequest(http.MethodGet, "/api/checkout-session/cs_123", nil)
	rec := httptest.NewRecorder()
	checkoutRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, notifier.Sessions)
}
