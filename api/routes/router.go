package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wasilonline/nova-checkout/api/controllers"
	"github.com/wasilonline/nova-checkout/api/middleware"
	checkoutsvc "github.com/wasilonline/nova-checkout/internal/checkout"
	"github.com/wasilonline/nova-checkout/internal/concierge"
	"github.com/wasilonline/nova-checkout/internal/orders"
	"github.com/wasilonline/nova-checkout/pkg/config"
	"github.com/wasilonline/nova-checkout/pkg/db"
	"github.com/wasilonline/nova-checkout/pkg/logger"
	pkgredis "github.com/wasilonline/nova-checkout/pkg/redis"
)

// RedisClient is the slice of the redis wrapper the router wires: the
// idempotency store plus health pings.
type RedisClient interface {
	pkgredis.IdempotencyStore
	Ping(context.Context) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient RedisClient,
	checkoutService checkoutsvc.Service,
	ordersService orders.Service,
	conciergeService concierge.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	// Nil guards keep the middleware and readiness checks honest when a
	// dependency is absent.
	var idemStore pkgredis.IdempotencyStore
	readiness := map[string]controllers.Pinger{}
	if dbP != nil {
		readiness["database"] = dbP
	}
	if redisClient != nil {
		idemStore = redisClient
		readiness["redis"] = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Post("/checkout/sessions", controllers.CheckoutSessionCreate(checkoutService, logg))
		r.Route("/checkout/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", controllers.CheckoutSessionDetail(checkoutService, logg))
			r.Delete("/", controllers.CheckoutSessionDelete(checkoutService, logg))
			r.Post("/advance", controllers.CheckoutSessionAdvance(checkoutService, logg))
			r.Post("/back", controllers.CheckoutSessionBack(checkoutService, logg))
			r.Patch("/items/{itemID}", controllers.CheckoutItemUpdate(checkoutService, logg))
			r.Delete("/items/{itemID}", controllers.CheckoutItemRemove(checkoutService, logg))
			r.Put("/details", controllers.CheckoutDetailsUpdate(checkoutService, logg))
			r.Put("/shipping", controllers.CheckoutShippingUpdate(checkoutService, logg))
			r.Post("/submit", controllers.CheckoutSubmit(checkoutService, logg))
			r.Get("/order", controllers.CheckoutSessionOrder(ordersService, logg))
		})

		r.Route("/orders/{orderID}", func(r chi.Router) {
			r.Get("/", controllers.OrderDetail(ordersService, logg))
			r.Post("/payment", controllers.OrderPaymentConfirm(ordersService, logg))
		})

		r.Post("/concierge", controllers.ConciergeAsk(conciergeService, checkoutService, logg))
	})

	return r
}
