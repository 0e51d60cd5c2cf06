package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"khata/internal/cache"
)

const sessionCookieName = "khata_session"

// sessionStore keeps session ID to username mappings in a TTL-bounded
// LRU. Sessions are server-side only; the cookie carries just the ID.
type sessionStore struct {
	sessions *cache.LRUCache[string]
	ttl      time.Duration
}

func newSessionStore(maxSessions int, ttl time.Duration) *sessionStore {
	return &sessionStore{
		sessions: cache.NewLRUCache[string](maxSessions, ttl),
		ttl:      ttl,
	}
}

// Create opens a session for username and sets the cookie.
func (s *sessionStore) Create(w http.ResponseWriter, username string) string {
	id := uuid.NewString()
	s.sessions.Set(id, username)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// Lookup resolves the request's session to a username.
func (s *sessionStore) Lookup(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return s.sessions.Get(cookie.Value)
}

// Destroy drops the request's session and expires the cookie.
func (s *sessionStore) Destroy(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		s.sessions.Delete(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Cleaner exposes the underlying cache for expiry sweeps.
func (s *sessionStore) Cleaner() cache.Cleaner {
	return s.sessions
}
