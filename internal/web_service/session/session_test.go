package session

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func requestWith(cookies []*http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	return r
}

func TestManager_Lifecycle(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store, Options{CookieName: "sid", TTL: time.Hour}, discardLogger())

	w := httptest.NewRecorder()
	require.NoError(t, m.Start(context.Background(), w, 42, "me@mib.com"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 3600, cookies[0].MaxAge)
	assert.Equal(t, 1, store.Len())

	data, err := m.Current(requestWith(cookies))
	require.NoError(t, err)
	assert.Equal(t, int64(42), data.UserID)
	assert.Equal(t, "me@mib.com", data.Email)

	w = httptest.NewRecorder()
	require.NoError(t, m.End(w, requestWith(cookies)))
	assert.Equal(t, 0, store.Len())
	cleared := w.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)

	_, err = m.Current(requestWith(cookies))
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManager_RejectsMissingOrForgedCookie(t *testing.T) {
	m := NewManager(NewMemoryStore(), Options{}, discardLogger())

	_, err := m.Current(requestWith(nil))
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = m.Current(requestWith([]*http.Cookie{{Name: "mib_session", Value: "not-a-uuid"}}))
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = m.Current(requestWith([]*http.Cookie{{Name: "mib_session", Value: "5b0f3c9e-7a51-4c1f-9f37-2f1d8f0f6a11"}}))
	assert.ErrorIs(t, err, ErrNoSession)

	assert.NoError(t, m.End(httptest.NewRecorder(), requestWith(nil)))
}

func TestManager_Expiry(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store, Options{TTL: time.Minute}, discardLogger())
	start := time.Date(2031, 1, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return start }

	w := httptest.NewRecorder()
	require.NoError(t, m.Start(context.Background(), w, 1, "a@b.com"))
	cookies := w.Result().Cookies()

	m.now = func() time.Time { return start.Add(2 * time.Minute) }
	_, err := m.Current(requestWith(cookies))
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestMemoryStore_DropsExpiredOnLoad(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2031, 1, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(context.Background(), "old", Data{UserID: 1, ExpiresAt: now.Add(-time.Second)}))
	require.NoError(t, store.Save(context.Background(), "new", Data{UserID: 2, ExpiresAt: now.Add(time.Hour)}))

	_, err := store.Load(context.Background(), "old")
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Equal(t, 1, store.Len())

	data, err := store.Load(context.Background(), "new")
	require.NoError(t, err)
	assert.Equal(t, int64(2), data.UserID)
}
