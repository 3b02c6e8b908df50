package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/messageinabottle/golang_services/internal/web_service/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth    *AuthHandler
	Users   *UserHandler
	Mailbox *MailboxHandler
	Message *MessageHandler
	Lottery *LotteryHandler
	Home    *HomeHandler
}

// RouterConfig holds the cross-cutting pieces of the router.
type RouterConfig struct {
	Sessions       middleware.SessionReader
	UserLoader     middleware.UserLoader
	HandlerTimeout time.Duration
	Logger         *slog.Logger
}

// NewRouter builds the browser facing router.
func NewRouter(cfg RouterConfig, h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	if cfg.HandlerTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.HandlerTimeout))
	}

	h.Home.RegisterPublicRoutes(r)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", StaticFiles())

	r.Group(func(web chi.Router) {
		web.Use(middleware.LoadSession(cfg.Sessions, cfg.UserLoader, cfg.Logger))

		h.Auth.RegisterRoutes(web)
		h.Users.RegisterRoutes(web)

		web.Group(func(protected chi.Router) {
			protected.Use(middleware.RequireLogin)
			h.Home.RegisterRoutes(protected)
			h.Auth.RegisterProtectedRoutes(protected)
			h.Users.RegisterProtectedRoutes(protected)
			h.Mailbox.RegisterRoutes(protected)
			h.Message.RegisterRoutes(protected)
			h.Lottery.RegisterRoutes(protected)
		})
	})
	return r
}
