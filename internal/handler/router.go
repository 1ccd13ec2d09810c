package handler

import (
	"fmt"
	"net/http"
	"time"

	"storefront-be/internal/apperr"
	"storefront-be/internal/logger"
	"storefront-be/internal/middleware"
	"storefront-be/internal/payment/webhook"
	"storefront-be/internal/transport"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

const (
	apiPrefix      = "/api/v1"
	requestTimeout = 30 * time.Second
)

var errRouteNotFound = apperr.New(apperr.KindNotFound, apperr.CodeNotFound, "route not found")

type RouterConfig struct {
	JWTSecret  string
	CORSOrigin string
}

// Handlers groups the route handlers mounted by NewRouter.
type Handlers struct {
	Cart      *CartHandler
	Orders    *OrderHandler
	Admin     *AdminHandler
	Dashboard *DashboardHandler
	Coupons   *CouponHandler
	Payments  *webhook.Handler
	Health    *HealthHandler
}

// NewRouter builds the chi router. Middleware runs outermost first:
// CORS, request id, auth, access log, rate limit. Payment callbacks and
// health checks skip auth, so a stale session cookie cannot reject them.
func NewRouter(cfg RouterConfig, h Handlers) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(chimw.Timeout(requestTimeout))
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(logger.RequestIDMiddleware)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		transport.WriteError(req.Context(), w, errRouteNotFound.WithMessage("no route for %s", req.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		transport.WriteStatus(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			fmt.Sprintf("method %s not allowed on %s", req.Method, req.URL.Path))
	})

	r.Group(func(public chi.Router) {
		public.Use(middleware.LoggingMiddleware)
		public.Use(middleware.RateLimitMiddleware)

		if h.Health != nil {
			public.Get("/healthz", h.Health.Healthz)
			public.Get("/metrics", h.Health.Metrics)
		}

		// Gateways carry their own signatures.
		if h.Payments != nil {
			public.Get(apiPrefix+"/payment/vnpay-callback", h.Payments.VNPayCallback)
			public.Post(apiPrefix+"/payment/vnpay-callback", h.Payments.VNPayCallback)
			public.Post(apiPrefix+"/payment/stripe-webhook", h.Payments.StripeWebhook)
		}
	})

	r.Group(func(app chi.Router) {
		app.Use(middleware.Auth(cfg.JWTSecret))
		app.Use(middleware.LoggingMiddleware)
		app.Use(middleware.RateLimitMiddleware)

		app.Route(apiPrefix, func(api chi.Router) {
			if h.Coupons != nil {
				api.Route("/coupons", h.Coupons.Routes)
			}

			api.Group(func(user chi.Router) {
				user.Use(middleware.RequireUser)

				if h.Cart != nil {
					user.Route("/cart", h.Cart.Routes)
				}
				if h.Orders != nil {
					user.Post("/checkout", h.Orders.Checkout)
					user.Route("/orders", h.Orders.Routes)
				}
				if h.Payments != nil {
					user.Get("/payment/vnpay-url", h.Payments.VNPayURL)
				}
			})

			if h.Admin != nil || h.Dashboard != nil {
				api.Route("/admin", func(admin chi.Router) {
					admin.Use(middleware.RequireAdmin)
					if h.Admin != nil {
						h.Admin.Routes(admin)
					}
					if h.Dashboard != nil {
						admin.Route("/dashboard", h.Dashboard.Routes)
					}
				})
			}
		})
	})

	return r
}

// pathID reads a numeric chi URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	return transport.PathID(chi.URLParam(r, name))
}
