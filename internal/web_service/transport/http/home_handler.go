package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/messageinabottle/golang_services/internal/web_service/app"
	"github.com/messageinabottle/golang_services/internal/web_service/middleware"
)

type HomeHandler struct {
	mailbox *app.Mailbox
	render  *Renderer
	logger  *slog.Logger
}

func NewHomeHandler(mailbox *app.Mailbox, render *Renderer, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{mailbox: mailbox, render: render, logger: logger.With("handler", "home")}
}

// RegisterPublicRoutes registers routes served without a session.
func (h *HomeHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/health", h.health)
}

func (h *HomeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.index)
}

func (h *HomeHandler) index(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	n, err := h.mailbox.Notifications(r.Context(), user.Email)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	h.render.HTML(w, r, http.StatusOK, "index", homeView{Notifications: n})
}

func (h *HomeHandler) health(w http.ResponseWriter, r *http.Request) {
	h.render.JSON(w, r, http.StatusOK, map[string]string{"status": "Web service is healthy"})
}
