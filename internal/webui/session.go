package webui

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/m-usman198/PM-Project/internal/controller"
	"github.com/m-usman198/PM-Project/internal/metrics"
)

const sessionCookie = "intake_session"

// SessionStore keeps one controller per browser session. Sessions expire
// after ttl without a request; evicted controllers are closed.
type SessionStore struct {
	mu       sync.Mutex
	cache    *expirable.LRU[string, *controller.Controller]
	factory  func() *controller.Controller
	ttl      time.Duration
	secure   bool
	recorder *metrics.PrometheusRecorder
}

// NewSessionStore creates a store holding at most size sessions
func NewSessionStore(size int, ttl time.Duration, secure bool, factory func() *controller.Controller, recorder *metrics.PrometheusRecorder) *SessionStore {
	onEvict := func(_ string, ctrl *controller.Controller) {
		ctrl.Close()
		recorder.SessionClosed()
	}
	return &SessionStore{
		cache:    expirable.NewLRU[string, *controller.Controller](size, onEvict, ttl),
		factory:  factory,
		ttl:      ttl,
		secure:   secure,
		recorder: recorder,
	}
}

// Controller returns the session's controller, starting a new session
// when the request carries no known session cookie.
func (s *SessionStore) Controller(w http.ResponseWriter, r *http.Request) *controller.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if id, err := uuid.Parse(cookie.Value); err == nil {
			if ctrl, ok := s.cache.Get(id.String()); ok {
				// Re-adding refreshes the expiry; the cookie follows it.
				s.cache.Add(id.String(), ctrl)
				s.setCookie(w, id.String())
				return ctrl
			}
		}
	}

	id := uuid.NewString()
	ctrl := s.factory()
	s.cache.Add(id, ctrl)
	s.recorder.SessionOpened()
	s.setCookie(w, id)
	return ctrl
}

func (s *SessionStore) setCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Len returns the number of live sessions
func (s *SessionStore) Len() int {
	return s.cache.Len()
}

// Close evicts every session
func (s *SessionStore) Close() {
	s.cache.Purge()
}
