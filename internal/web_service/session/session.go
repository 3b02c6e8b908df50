// Package session keeps browser login state behind an opaque cookie.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ErrNoSession is returned when a request carries no live session.
var ErrNoSession = errors.New("no session")

// Data is what the server remembers about a logged in browser.
type Data struct {
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store persists sessions by id. Load returns ErrNoSession for unknown or expired ids.
type Store interface {
	Save(ctx context.Context, id string, data Data) error
	Load(ctx context.Context, id string) (*Data, error)
	Delete(ctx context.Context, id string) error
}

// Options configure the session cookie.
type Options struct {
	CookieName string
	Secure     bool
	TTL        time.Duration
}

type Manager struct {
	store  Store
	opts   Options
	now    func() time.Time
	logger *slog.Logger
}

func NewManager(store Store, opts Options, logger *slog.Logger) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "mib_session"
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &Manager{store: store, opts: opts, now: time.Now, logger: logger.With("component", "session_manager")}
}

// Start opens a session for the user and sets the cookie.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, userID int64, email string) error {
	id := uuid.NewString()
	now := m.now()
	data := Data{UserID: userID, Email: email, CreatedAt: now, ExpiresAt: now.Add(m.opts.TTL)}
	if err := m.store.Save(ctx, id, data); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(m.opts.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	m.logger.DebugContext(ctx, "Session started", "user_id", userID)
	return nil
}

// Current returns the session of r or ErrNoSession.
func (m *Manager) Current(r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(m.opts.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return nil, ErrNoSession
	}
	data, err := m.store.Load(r.Context(), cookie.Value)
	if err != nil {
		return nil, err
	}
	if !m.now().Before(data.ExpiresAt) {
		return nil, ErrNoSession
	}
	return data, nil
}

// End forgets the session of r, if any, and clears the cookie.
func (m *Manager) End(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.opts.Secure,
	})
	cookie, err := r.Cookie(m.opts.CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	if err := m.store.Delete(r.Context(), cookie.Value); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}
