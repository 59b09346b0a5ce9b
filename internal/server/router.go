package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"salonhub-backend/internal/config"
	"salonhub-backend/internal/domain"
	"salonhub-backend/internal/handler"
)

// Handlers groups every route set the router mounts.
type Handlers struct {
	Health        handler.HealthHandler
	Docs          handler.DocsHandler
	Auth          handler.AuthHandler
	Dashboard     handler.DashboardHandler
	Finance       handler.FinanceHandler
	Offers        handler.OfferHandler
	Orders        handler.OrderHandler
	Messages      handler.MessageHandler
	Notifications handler.NotificationHandler
	FCM           handler.FCMHandler
}

// NewRouter wires HTTP routes and middleware. Metrics are served from
// gatherer, the default registry when nil.
func NewRouter(cfg config.Config, logger *slog.Logger, gatherer prometheus.Gatherer, h Handlers) http.Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition", "X-Report-Partial"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(200, 1*time.Minute))

	h.Health.RegisterRoutes(r)
	h.Docs.RegisterRoutes(r)
	h.Auth.RegisterRoutes(r)
	r.Method("GET", "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Group(func(pr chi.Router) {
		pr.Use(AuthMiddleware(cfg.JWTSecret))
		pr.Use(RequireRole(domain.RoleSuperAdmin, domain.RoleBranchAdmin))

		// the event stream stays open, so it is mounted outside the timeout
		h.Notifications.RegisterRoutes(pr)

		pr.Group(func(tr chi.Router) {
			tr.Use(middleware.Timeout(60 * time.Second))
			h.Auth.RegisterProtectedRoutes(tr)
			h.Dashboard.RegisterRoutes(tr)
			h.Finance.RegisterRoutes(tr)
			h.Offers.RegisterRoutes(tr)
			h.Orders.RegisterRoutes(tr)
			h.Messages.RegisterRoutes(tr)
			h.FCM.RegisterRoutes(tr)
		})
	})

	return r
}
