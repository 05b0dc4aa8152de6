package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tugrulb/escrowmarket/internal/service"
	"github.com/tugrulb/escrowmarket/pkg/health"
	"github.com/tugrulb/escrowmarket/pkg/middleware"
)

// NewRouter creates a chi router with all marketplace routes registered.
func NewRouter(
	productService *service.ProductService,
	orderService *service.OrderService,
	reviewService *service.ReviewService,
	healthHandler *health.Handler,
	verify middleware.TokenVerifier,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics())
	r.Use(middleware.Tracing("marketplace"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	productHandler := NewProductHandler(productService, logger)
	orderHandler := NewOrderHandler(orderService, logger)
	reviewHandler := NewReviewHandler(reviewService, logger)

	// Public catalog and reputation reads.
	r.Group(func(r chi.Router) {
		r.Get("/api/v1/products", productHandler.ListProducts)
		r.Get("/api/v1/products/{id}", productHandler.GetProduct)
		r.Get("/api/v1/sellers/{id}/reviews", reviewHandler.ListSellerReviews)
		r.Get("/api/v1/sellers/{id}/reviews/summary", reviewHandler.SellerSummary)
	})

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(verify))
		r.Use(ContentTypeJSON)

		r.Post("/api/v1/products", productHandler.CreateProduct)
		r.Patch("/api/v1/products/{id}", productHandler.UpdateProduct)
		r.Delete("/api/v1/products/{id}", productHandler.RemoveProduct)

		r.Route("/api/v1/orders", func(r chi.Router) {
			r.Post("/", orderHandler.CreateOrder)
			r.Get("/", orderHandler.ListOrders)
			r.Get("/reconcile/pending", orderHandler.PendingEscrows)
			r.Get("/{id}", orderHandler.GetOrder)
			r.Put("/{id}/status", orderHandler.UpdateOrderStatus)
			r.Post("/{id}/escrow/retry", orderHandler.RetryEscrow)
		})

		r.Post("/api/v1/reviews", reviewHandler.CreateReview)
	})

	return r
}
