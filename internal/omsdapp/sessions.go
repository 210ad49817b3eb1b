package omsdapp

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	sessionCookieName = "omsd_session"
	consentCookieName = "omsd_cookie_consent"
)

// session tracks one browser's progress through sign-in, MFA, and the
// signed-in state.
type session struct {
	token         string
	username      string
	displayName   string
	email         string
	authenticated bool
	mfaMethod     string
	mfaCode       string
	codeIssuedAt  time.Time
	createdAt     time.Time
}

// pendingMFA reports whether the password step passed but verification has
// not finished.
func (s *session) pendingMFA() bool {
	return !s.authenticated
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
}

func newSessionStore(ttl time.Duration) *sessionStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &sessionStore{
		sessions: make(map[string]*session),
		ttl:      ttl,
	}
}

func (st *sessionStore) create(u User) *session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s := &session{
		token:       uuid.NewString(),
		username:    u.Username,
		displayName: u.DisplayName,
		email:       u.Email,
		createdAt:   time.Now(),
	}
	st.sessions[s.token] = s
	return s
}

// get returns a copy of the session so callers never race with updates.
func (st *sessionStore) get(token string) (session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[token]
	if !ok {
		return session{}, false
	}
	if time.Since(s.createdAt) > st.ttl {
		delete(st.sessions, token)
		return session{}, false
	}
	return *s, true
}

// update applies fn to the live session under the store lock.
func (st *sessionStore) update(token string, fn func(*session)) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[token]
	if !ok {
		return false
	}
	fn(s)
	return true
}

func (st *sessionStore) delete(token string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, token)
}

func sessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func expiredSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	}
}

func consentCookie() *http.Cookie {
	return &http.Cookie{
		Name:   consentCookieName,
		Value:  "accepted",
		Path:   "/",
		MaxAge: 365 * 24 * 60 * 60,
	}
}
