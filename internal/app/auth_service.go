// Package app holds the application services that sit between the HTTP
// adapter and the repositories.
package app

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"vitals/internal/domain"
)

var (
	// ErrInvalidCredentials indicates that the provided username or password was incorrect.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrSessionNotFound indicates that the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates that the session has expired.
	ErrSessionExpired = errors.New("session expired")
	// ErrUserNotFound indicates that the user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrSetupDone is returned when the initial user already exists.
	ErrSetupDone = errors.New("users already exist")
	// ErrWeakCredentials rejects an initial user without a name or with a short password.
	ErrWeakCredentials = errors.New("username required and password must be at least 8 characters")
)

// DefaultSessionTTL is how long a login stays valid.
const DefaultSessionTTL = 24 * time.Hour

// AuthService handles authentication and session management.
type AuthService struct {
	users      domain.UserRepository
	sessions   domain.SessionRepository
	sessionTTL time.Duration
	now        func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(users domain.UserRepository, sessions domain.SessionRepository) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		sessionTTL: DefaultSessionTTL,
		now:        time.Now,
	}
}

// WithSessionTTL overrides how long new sessions last.
func (s *AuthService) WithSessionTTL(ttl time.Duration) *AuthService {
	if ttl > 0 {
		s.sessionTTL = ttl
	}
	return s
}

// SessionTTL reports the lifetime of new sessions.
func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}

// Login checks the password and opens a session bound to the user agent.
func (s *AuthService) Login(ctx context.Context, username, password, userAgent, ip string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil || user == nil || user.PasswordHash == "" {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Debugf("auth: failed login for %q from %s", username, ip)
		return "", ErrInvalidCredentials
	}
	return s.openSession(ctx, user, userAgent, ip)
}

// LoginWithUser opens a session for a user already authenticated elsewhere
// (SSO), provisioning the account on first sight.
func (s *AuthService) LoginWithUser(ctx context.Context, username, userAgent, ip string) (string, error) {
	user, err := s.findOrCreate(ctx, username)
	if err != nil {
		return "", err
	}
	return s.openSession(ctx, user, userAgent, ip)
}

// Logout invalidates a session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// ValidateSession resolves a session token to its user. A token presented
// from a different user agent is revoked.
func (s *AuthService) ValidateSession(ctx context.Context, token, userAgent string) (*domain.User, error) {
	session, err := s.sessions.GetByToken(ctx, token)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && session == nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if s.now().After(session.ExpiresAt) || session.UserAgent != userAgent {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrSessionExpired
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil || user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ValidateForwardAuth trusts the Remote-User header set by a forward-auth
// proxy, provisioning the user if needed.
func (s *AuthService) ValidateForwardAuth(ctx context.Context, remoteUser string) (*domain.User, error) {
	if remoteUser == "" {
		return nil, errors.New("no remote user header")
	}
	return s.findOrCreate(ctx, remoteUser)
}

// CreateInitialUser creates the first user if no users exist.
func (s *AuthService) CreateInitialUser(ctx context.Context, username, password string) error {
	if username == "" || len(password) < 8 {
		return ErrWeakCredentials
	}
	count, err := s.users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrSetupDone
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = s.users.Create(ctx, username, string(hash))
	return err
}

// PurgeExpired drops sessions past their expiry.
func (s *AuthService) PurgeExpired(ctx context.Context) error {
	return s.sessions.DeleteExpired(ctx)
}

func (s *AuthService) findOrCreate(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err == nil && user != nil {
		return user, nil
	}
	// SSO users have no local password.
	user, err = s.users.Create(ctx, username, "")
	if err != nil {
		// Lost a race with a concurrent first login.
		if user, getErr := s.users.GetByUsername(ctx, username); getErr == nil && user != nil {
			return user, nil
		}
		return nil, fmt.Errorf("provision user %q: %w", username, err)
	}
	log.Infof("auth: provisioned user %q", username)
	return user, nil
}

func (s *AuthService) openSession(ctx context.Context, user *domain.User, userAgent, ip string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	now := s.now()
	err = s.sessions.Create(ctx, domain.Session{
		Token:     token,
		UserID:    user.ID,
		UserAgent: userAgent,
		IP:        ip,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	})
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return token, nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// ConstantTimeCompare performs a constant-time comparison of two strings.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
