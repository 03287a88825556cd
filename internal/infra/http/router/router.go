package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/hirelocal/internal/infra/http/handlers"
	customMiddleware "github.com/xavierca1/hirelocal/internal/infra/http/middleware"
)

type Handlers struct {
	Leads         *handlers.LeadHandler
	Notifications *handlers.NotificationHandler
	Subscriptions *handlers.SubscriptionHandler
	Health        *handlers.HealthHandler
}

type Options struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
	Auth           *customMiddleware.Authenticator
	LeadLimiter    *customMiddleware.RateLimiter
}

func NewRouter(h Handlers, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(customMiddleware.Metrics)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(opts.Auth.Middleware)

		// the stream is long-lived and stays outside the request timeout
		r.Get("/notifications/stream", h.Notifications.HandleStream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(opts.RequestTimeout))

			r.Route("/leads", func(r chi.Router) {
				r.With(opts.LeadLimiter.Middleware).Post("/", h.Leads.HandleCreate)
				r.Get("/", h.Leads.HandleList)
				r.Get("/{id}", h.Leads.HandleGet)
				r.Post("/{id}/accept", h.Leads.HandleAccept)
				r.Post("/{id}/cancel", h.Leads.HandleCancel)
				r.Post("/{id}/complete", h.Leads.HandleComplete)
				r.Patch("/{id}/status", h.Leads.HandleUpdateStatus)
			})

			r.Get("/me/leads", h.Leads.HandleInbox)

			r.Get("/notifications", h.Notifications.HandleList)
			r.Post("/notifications/read", h.Notifications.HandleMarkRead)

			r.Get("/freelancers/{id}/entitlement", h.Subscriptions.HandleEntitlement)
		})
	})

	return r
}
