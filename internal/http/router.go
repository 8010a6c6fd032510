package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handlers groups the route handlers wired into the router.
type Handlers struct {
	Rates    *RatesHandler
	Checkout *CheckoutHandler
	Webhook  *WebhookHandler
	Cart     *CartHandler
	Products *ProductHandler
	Orders   *OrdersHandler
	Content  *ContentHandler
}

// NewRouter assembles the full route table. The webhook route sits outside
// the timeout-compressed API tree because signature verification needs the
// raw, untouched body.
func NewRouter(h Handlers, requestTimeout time.Duration) chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(UserIDMiddleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/webhook/payment", h.Webhook.HandleEvent)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Compress(5))

		r.Post("/get-rates", h.Rates.GetRates)

		r.Post("/create-checkout-session", h.Checkout.CreateSession)
		r.Get("/checkout-session/{sessionID}", h.Checkout.GetSessionStatus)

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", h.Checkout.Start)
			r.Put("/{id}/information", h.Checkout.SubmitInformation)
			r.Put("/{id}/shipping", h.Checkout.SelectShipping)
			r.Post("/{id}/payment", h.Checkout.CreatePayment)
			r.Post("/{id}/back", h.Checkout.Back)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Products.ListProducts)
			r.Get("/{id}", h.Products.GetProduct)
			r.Post("/", h.Products.AddProduct)
			r.Put("/{id}", h.Products.UpdateProduct)
			r.Delete("/{id}", h.Products.DeleteProduct)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.Orders.ListOrders)
			r.Get("/{id}", h.Orders.GetOrder)
		})

		r.Get("/about", h.Content.GetAbout)
		r.Put("/about", h.Content.UpdateAbout)
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", h.Cart.GetCart)
		r.Post("/items", h.Cart.AddItem)
		r.Put("/items/{product_id}/{size}", h.Cart.UpdateQuantity)
		r.Delete("/items/{product_id}/{size}", h.Cart.RemoveItem)
		r.Delete("/", h.Cart.ClearCart)
	})

	return r
}
