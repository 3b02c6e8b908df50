package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/messageinabottle/golang_services/internal/web_service/domain"
	"github.com/messageinabottle/golang_services/internal/web_service/forms"
	"github.com/messageinabottle/golang_services/internal/web_service/middleware"
)

// Authenticator checks credentials against the user service.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}

// SessionManager opens and closes browser sessions.
type SessionManager interface {
	Start(ctx context.Context, w http.ResponseWriter, userID int64, email string) error
	End(w http.ResponseWriter, r *http.Request) error
}

// AuthHandler serves login and logout.
type AuthHandler struct {
	users     Authenticator
	sessions  SessionManager
	validator *forms.Validator
	render    *Renderer
	logger    *slog.Logger
}

func NewAuthHandler(users Authenticator, sessions SessionManager, validator *forms.Validator, render *Renderer, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:     users,
		sessions:  sessions,
		validator: validator,
		render:    render,
		logger:    logger.With("handler", "auth"),
	}
}

// RegisterRoutes registers the public login routes.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
}

// RegisterProtectedRoutes registers routes that need a session.
func (h *AuthHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/logout", h.handleLogout)
}

func (h *AuthHandler) showLogin(w http.ResponseWriter, r *http.Request) {
	if middleware.CurrentUser(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render.HTML(w, r, http.StatusOK, "login", loginView{})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if middleware.CurrentUser(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	form, err := forms.DecodeLogin(w, r)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	view := loginView{Form: form}
	if err := h.validator.Validate(r.Context(), form); err != nil {
		if !asValidation(err, &view.Errors) {
			h.render.Error(w, r, err)
			return
		}
		h.render.HTML(w, r, http.StatusOK, "login", view)
		return
	}

	user, err := h.users.Authenticate(r.Context(), form.Email, form.Password)
	switch {
	case errors.Is(err, domain.ErrUserBlocked):
		h.logger.InfoContext(r.Context(), "Blocked user tried to log in", "email", form.Email)
		view.UserBlocked = textUserBlocked
		h.render.HTML(w, r, http.StatusOK, "login", view)
		return
	case errors.Is(err, domain.ErrInvalidCredentials):
		view.WrongCredentials = textWrongCredentials
		h.render.HTML(w, r, http.StatusOK, "login", view)
		return
	case err != nil:
		h.render.Error(w, r, err)
		return
	}

	if err := h.sessions.Start(r.Context(), w, user.ID, user.Email); err != nil {
		h.render.Error(w, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "User logged in", "user_id", user.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.End(w, r); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to end session", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// asValidation unpacks field errors into dst and reports whether err was one.
func asValidation(err error, dst *forms.ValidationErrors) bool {
	return errors.As(err, dst)
}
