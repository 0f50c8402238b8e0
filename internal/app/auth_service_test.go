package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"vitals/internal/app"
	"vitals/internal/domain"
)

func TestAuthService_Login_Success(t *testing.T) {
	password := "testpass123"
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)

	users := &mockUserRepo{
		getByUsernameFn: func(_ context.Context, _ string) (*domain.User, error) {
			return &domain.User{ID: 1, Username: "testuser", PasswordHash: string(hash)}, nil
		},
	}
	var created domain.Session
	sessions := &mockSessionRepo{
		createFn: func(_ context.Context, s domain.Session) error {
			created = s
			return nil
		},
	}

	svc := app.NewAuthService(users, sessions).WithSessionTTL(time.Hour)
	token, err := svc.Login(context.Background(), "testuser", password, "agent/1.0", "10.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, token, created.Token)
	assert.Equal(t, int64(1), created.UserID)
	assert.Equal(t, "agent/1.0", created.UserAgent)
	assert.WithinDuration(t, time.Now().Add(time.Hour), created.ExpiresAt, time.Minute)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	users := &mockUserRepo{
		getByUsernameFn: func(_ context.Context, _ string) (*domain.User, error) {
			return &domain.User{ID: 1, PasswordHash: string(hash)}, nil
		},
	}
	svc := app.NewAuthService(users, &mockSessionRepo{})
	_, err := svc.Login(context.Background(), "testuser", "wrong", "ua", "ip")
	assert.ErrorIs(t, err, app.ErrInvalidCredentials)
}

func TestAuthService_Login_SSOUserHasNoPassword(t *testing.T) {
	users := &mockUserRepo{
		getByUsernameFn: func(_ context.Context, _ string) (*domain.User, error) {
			return &domain.User{ID: 1, PasswordHash: ""}, nil
		},
	}
	svc := app.NewAuthService(users, &mockSessionRepo{})
	_, err := svc.Login(context.Background(), "sso", "", "ua", "ip")
	assert.ErrorIs(t, err, app.ErrInvalidCredentials)
}

func TestAuthService_ValidateSession(t *testing.T) {
	user := &domain.User{ID: 5, Username: "ann"}
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)

	tests := []struct {
		name      string
		session   *domain.Session
		getErr    error
		userAgent string
		wantErr   error
		wantDel   bool
	}{
		{"valid", &domain.Session{UserID: 5, UserAgent: "ua", ExpiresAt: future}, nil, "ua", nil, false},
		{"missing", nil, domain.ErrNotFound, "ua", app.ErrSessionNotFound, false},
		{"expired", &domain.Session{UserID: 5, UserAgent: "ua", ExpiresAt: past}, nil, "ua", app.ErrSessionExpired, true},
		{"other agent", &domain.Session{UserID: 5, UserAgent: "ua", ExpiresAt: future}, nil, "curl", app.ErrSessionExpired, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			deleted := false
			sessions := &mockSessionRepo{
				getByTokenFn: func(_ context.Context, _ string) (*domain.Session, error) {
					return tc.session, tc.getErr
				},
				deleteFn: func(_ context.Context, _ string) error {
					deleted = true
					return nil
				},
			}
			users := &mockUserRepo{
				getByIDFn: func(_ context.Context, id int64) (*domain.User, error) { return user, nil },
			}
			svc := app.NewAuthService(users, sessions)

			got, err := svc.ValidateSession(context.Background(), "tok", tc.userAgent)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, user, got)
			}
			assert.Equal(t, tc.wantDel, deleted)
		})
	}
}

func TestAuthService_CreateInitialUser(t *testing.T) {
	var gotHash string
	users := &mockUserRepo{
		createFn: func(_ context.Context, username, passwordHash string) (*domain.User, error) {
			gotHash = passwordHash
			return &domain.User{ID: 1, Username: username}, nil
		},
	}
	svc := app.NewAuthService(users, &mockSessionRepo{})
	require.NoError(t, svc.CreateInitialUser(context.Background(), "admin", "supersecret"))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(gotHash), []byte("supersecret")))

	users.countFn = func(_ context.Context) (int, error) { return 1, nil }
	err := svc.CreateInitialUser(context.Background(), "admin2", "supersecret")
	assert.ErrorIs(t, err, app.ErrSetupDone)

	err = svc.CreateInitialUser(context.Background(), "admin", "short")
	assert.ErrorIs(t, err, app.ErrWeakCredentials)
}

func TestAuthService_ValidateForwardAuth_Provisions(t *testing.T) {
	created := false
	users := &mockUserRepo{
		createFn: func(_ context.Context, username, hash string) (*domain.User, error) {
			created = true
			assert.Empty(t, hash)
			return &domain.User{ID: 2, Username: username}, nil
		},
	}
	svc := app.NewAuthService(users, &mockSessionRepo{})
	u, err := svc.ValidateForwardAuth(context.Background(), "bob@example.com")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "bob@example.com", u.Username)

	_, err = svc.ValidateForwardAuth(context.Background(), "")
	assert.Error(t, err)
}

func TestAuthService_LoginWithUser_RaceFallsBackToLookup(t *testing.T) {
	calls := 0
	users := &mockUserRepo{
		getByUsernameFn: func(_ context.Context, username string) (*domain.User, error) {
			calls++
			if calls == 1 {
				return nil, domain.ErrNotFound
			}
			return &domain.User{ID: 3, Username: username}, nil
		},
		createFn: func(_ context.Context, _, _ string) (*domain.User, error) {
			return nil, errors.New("duplicate key")
		},
	}
	svc := app.NewAuthService(users, &mockSessionRepo{})
	token, err := svc.LoginWithUser(context.Background(), "carol", "ua", "ip")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestConstantTimeCompare(t *testing.T) {
	assert.True(t, app.ConstantTimeCompare("abc", "abc"))
	assert.False(t, app.ConstantTimeCompare("abc", "abd"))
}
