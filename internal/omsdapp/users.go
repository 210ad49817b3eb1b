package omsdapp

import (
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/omsd-qa/omsd-e2e/internal/errs"
)

// Default sign-in throttle. Generous enough for a full suite run against
// one account, tight enough that hammering a username locks it out.
const (
	defaultSignInRate  = rate.Limit(1)
	defaultSignInBurst = 20
)

// Messages shown in the sign-in form's page-level error banner.
const (
	msgInvalidCredentials = "Your username or password is invalid. Please try again."
	msgTooManyAttempts    = "Too many sign-in attempts. Please wait and try again."
)

// User is one account of the stand-in application.
type User struct {
	Username    string
	DisplayName string
	Email       string
	Role        string
	RequireMFA  bool
}

// SeedUser describes an account to create.
type SeedUser struct {
	Username    string
	Password    string
	DisplayName string
	Email       string
	Role        string
	RequireMFA  bool
}

type userRecord struct {
	user User
	hash []byte
}

// UserStore holds seeded accounts and throttles sign-in attempts per
// username.
type UserStore struct {
	mu       sync.RWMutex
	users    map[string]*userRecord
	attempts *attemptLimiter
}

func NewUserStore(signInRate rate.Limit, signInBurst int) *UserStore {
	if signInRate <= 0 {
		signInRate = defaultSignInRate
	}
	if signInBurst <= 0 {
		signInBurst = defaultSignInBurst
	}
	return &UserStore{
		users:    make(map[string]*userRecord),
		attempts: newAttemptLimiter(signInRate, signInBurst),
	}
}

// Seed creates or replaces an account. MinCost keeps seeding and sign-in
// fast; the stand-in holds no real accounts.
func (s *UserStore) Seed(u SeedUser) error {
	if u.Username == "" || u.Password == "" {
		return errs.New(errs.InvalidArgument, "seed user needs username and password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.MinCost)
	if err != nil {
		return errs.Wrap(errs.Internal, "hash seed password failed", err)
	}
	if u.DisplayName == "" {
		u.DisplayName = u.Username
	}
	if u.Email == "" {
		u.Email = u.Username
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.Username] = &userRecord{
		user: User{
			Username:    u.Username,
			DisplayName: u.DisplayName,
			Email:       u.Email,
			Role:        u.Role,
			RequireMFA:  u.RequireMFA,
		},
		hash: hash,
	}
	return nil
}

// Authenticate checks the credentials. Throttled usernames are rejected
// before the password is looked at, so lockout behaves the same for valid
// and invalid passwords.
func (s *UserStore) Authenticate(username, password string) (User, error) {
	if !s.attempts.allow(username) {
		return User{}, errs.New(errs.Unavailable, msgTooManyAttempts)
	}

	s.mu.RLock()
	rec, ok := s.users[username]
	s.mu.RUnlock()
	if !ok {
		return User{}, errs.New(errs.PermissionDenied, msgInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword(rec.hash, []byte(password)); err != nil {
		return User{}, errs.New(errs.PermissionDenied, msgInvalidCredentials)
	}
	return rec.user, nil
}

// Lookup returns the account for a username.
func (s *UserStore) Lookup(username string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.users[username]
	if !ok {
		return User{}, false
	}
	return rec.user, true
}

// attemptLimiter keeps one token bucket per username.
type attemptLimiter struct {
	mu       sync.Mutex
	limiters map[string]*attemptEntry
	rate     rate.Limit
	burst    int
}

type attemptEntry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// pruneThreshold bounds the limiter map; idle entries are dropped once it
// grows past this.
const pruneThreshold = 1024

func newAttemptLimiter(r rate.Limit, burst int) *attemptLimiter {
	return &attemptLimiter{
		limiters: make(map[string]*attemptEntry),
		rate:     r,
		burst:    burst,
	}
}

func (l *attemptLimiter) allow(username string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.limiters[username]
	if !ok {
		if len(l.limiters) >= pruneThreshold {
			l.prune()
		}
		entry = &attemptEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[username] = entry
	}
	entry.lastUsed = time.Now()
	return entry.limiter.Allow()
}

// prune must be called with the mutex held.
func (l *attemptLimiter) prune() {
	cutoff := time.Now().Add(-time.Hour)
	for username, entry := range l.limiters {
		if entry.lastUsed.Before(cutoff) {
			delete(l.limiters, username)
		}
	}
}
