package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/messageinabottle/golang_services/internal/web_service/domain"
	"github.com/messageinabottle/golang_services/internal/web_service/session"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	AuthenticatedUserContextKey = ContextKey("authenticatedUser")
)

// UserLoader resolves the user behind a session.
type UserLoader interface {
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
}

// SessionReader is the part of session.Manager the middleware needs.
type SessionReader interface {
	Current(r *http.Request) (*session.Data, error)
	End(w http.ResponseWriter, r *http.Request) error
}

// LoadSession puts the logged in user, if any, in the request context.
// A session whose user no longer exists is ended.
func LoadSession(sessions SessionReader, users UserLoader, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := sessions.Current(r)
			if err != nil {
				if !errors.Is(err, session.ErrNoSession) {
					logger.ErrorContext(r.Context(), "Failed to read session", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetUserByID(r.Context(), data.UserID)
			if errors.Is(err, domain.ErrNotFound) {
				logger.InfoContext(r.Context(), "Session user no longer exists", "user_id", data.UserID)
				if err := sessions.End(w, r); err != nil {
					logger.ErrorContext(r.Context(), "Failed to end stale session", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				logger.ErrorContext(r.Context(), "Failed to load session user", "user_id", data.UserID, "error", err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), AuthenticatedUserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireLogin redirects anonymous requests to the login page.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r.Context()) == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CurrentUser returns the logged in user or nil.
func CurrentUser(ctx context.Context) *domain.User {
	u, _ := ctx.Value(AuthenticatedUserContextKey).(*domain.User)
	return u
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, AuthenticatedUserContextKey, user)
}
