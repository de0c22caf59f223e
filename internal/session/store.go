// Package session keeps each browser's form state in memory between requests.
package session

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"asicrev/internal/cache"
	"asicrev/internal/form"
	applog "asicrev/internal/log"
)

// CookieName carries the session id.
const CookieName = "asicrev_session"

// Store maps session ids to forms. Sessions idle longer than the TTL, or pushed
// out by capacity, are dropped together with their form state.
type Store struct {
	forms  *cache.LRUCache[*form.Form]
	ttl    time.Duration
	logger *applog.Logger
}

var _ cache.Cleaner = (*Store)(nil)

// NewStore creates a store holding at most maxSize sessions.
func NewStore(maxSize int, ttl time.Duration, logger *applog.Logger) *Store {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentSession)

	s := &Store{ttl: ttl, logger: logger}
	s.forms = cache.NewLRUCache(maxSize, ttl,
		cache.WithSlidingExpiry[*form.Form](),
		cache.WithEvictCallback(func(id string, _ *form.Form) {
			logger.Debug("Session discarded", applog.FieldSessionID, id)
		}),
	)
	return s
}

// Create stores f under a fresh id and returns the id.
func (s *Store) Create(f *form.Form) string {
	id := uuid.NewString()
	s.forms.Set(id, f)
	return id
}

// Get returns the form for id. Malformed ids are rejected without a lookup.
func (s *Store) Get(id string) (*form.Form, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	return s.forms.Get(id)
}

// Delete drops a session.
func (s *Store) Delete(id string) {
	s.forms.Delete(id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return s.forms.Size()
}

// CleanExpired drops expired sessions.
func (s *Store) CleanExpired() int {
	return s.forms.CleanExpired()
}

// SetCookie writes the session cookie for id.
func (s *Store) SetCookie(w http.ResponseWriter, r *http.Request, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest resolves the form bound to the request's session cookie.
func (s *Store) FromRequest(r *http.Request) (*form.Form, string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return nil, "", false
	}
	f, ok := s.Get(c.Value)
	if !ok {
		return nil, c.Value, false
	}
	return f, c.Value, true
}
