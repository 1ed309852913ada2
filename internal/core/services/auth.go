// internal/core/services/auth.go
package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

// Credential gate errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLockedOut          = errors.New("too many failed login attempts")
)

// Session identifies a logged-in cashier for the life of the process.
type Session struct {
	ID        uuid.UUID
	Username  string
	StartedAt time.Time
}

// Authenticator checks cashier credentials against the users file.
// Three consecutive failures lock the gate for the rest of the process;
// a rate limiter slows brute-force attempts before that.
type Authenticator struct {
	mu          sync.Mutex
	users       map[string]string
	maxAttempts int
	failures    int
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// NewAuthenticator creates a credential gate. The users map holds bcrypt
// hashes, or plaintext for legacy data files.
func NewAuthenticator(users map[string]string, maxAttempts int, logger *slog.Logger) *Authenticator {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Authenticator{
		users:       users,
		maxAttempts: maxAttempts,
		limiter:     rate.NewLimiter(rate.Every(time.Second), maxAttempts),
		logger:      logger.With(slog.String("service", "auth")),
	}
}

// Login verifies a username/password pair. A success resets the failure
// counter and returns a fresh session.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*Session, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("login throttled: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.failures >= a.maxAttempts {
		return nil, ErrLockedOut
	}

	stored, ok := a.users[username]
	if !ok || !credentialMatches(stored, password) {
		a.failures++
		a.logger.WarnContext(ctx, "login failed",
			slog.String("username", username),
			slog.Int("failures", a.failures))
		if a.failures >= a.maxAttempts {
			return nil, ErrLockedOut
		}
		return nil, ErrInvalidCredentials
	}

	a.failures = 0

	session := &Session{
		ID:        uuid.New(),
		Username:  username,
		StartedAt: time.Now(),
	}

	a.logger.InfoContext(ctx, "login succeeded",
		slog.String("username", username),
		slog.String("session_id", session.ID.String()))

	return session, nil
}

// AttemptsRemaining reports how many failures are left before lockout.
func (a *Authenticator) AttemptsRemaining() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	remaining := a.maxAttempts - a.failures
	if remaining < 0 {
		return 0
	}
	return remaining
}

func credentialMatches(stored, password string) bool {
	if strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}
