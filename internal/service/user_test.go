package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Rrens/article-hub/internal/domain"
	"github.com/Rrens/article-hub/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestJWTManager(t *testing.T) *security.JWTManager {
	t.Helper()
	m, err := security.NewJWTManager("test-secret-key-with-32-chars!!", "HS256", 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	return m
}

func newTestUserService(t *testing.T, users *MockUserRepository, jobs *MockJobSubmitter) (*UserService, *security.PasswordHasher, *security.JWTManager) {
	t.Helper()
	hasher := security.NewPasswordHasher(bcrypt.MinCost)
	tokens := newTestJWTManager(t)
	svc, err := NewUserService(users, hasher, tokens, jobs)
	require.NoError(t, err)
	return svc, hasher, tokens
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()
	input := domain.UserCreate{Email: "u1@x.com", Name: "U1", Password: "abcd1234"}

	t.Run("success", func(t *testing.T) {
		users := new(MockUserRepository)
		jobs := new(MockJobSubmitter)
		svc, hasher, _ := newTestUserService(t, users, jobs)

		users.On("GetByEmail", ctx, "u1@x.com").Return(nil, nil)
		users.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Email == "u1@x.com" && u.Name == "U1" && hasher.Verify("abcd1234", u.PasswordHash)
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.User).ID = "64f09b0c2a1e4a0012345678"
		}).Return(nil)
		jobs.On("Submit", ctx, domain.JobSendWelcomeEmail, domain.WelcomeEmailPayload{Email: "u1@x.com", Name: "U1"}).
			Return("job-1", nil)

		user, err := svc.Register(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, &domain.PublicUser{ID: "64f09b0c2a1e4a0012345678", Email: "u1@x.com", Name: "U1"}, user)

		users.AssertExpectations(t)
		jobs.AssertExpectations(t)
	})

	t.Run("existing email", func(t *testing.T) {
		users := new(MockUserRepository)
		jobs := new(MockJobSubmitter)
		svc, _, _ := newTestUserService(t, users, jobs)

		users.On("GetByEmail", ctx, "u1@x.com").Return(&domain.User{ID: "1", Email: "u1@x.com"}, nil)

		_, err := svc.Register(ctx, domain.UserCreate{Email: "u1@x.com", Name: "Other", Password: "zzzz9999"})
		assert.ErrorIs(t, err, domain.ErrUserExists)
		assert.ErrorIs(t, err, domain.ErrConflict)

		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		jobs.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("insert race lost", func(t *testing.T) {
		users := new(MockUserRepository)
		jobs := new(MockJobSubmitter)
		svc, _, _ := newTestUserService(t, users, jobs)

		users.On("GetByEmail", ctx, "u1@x.com").Return(nil, nil)
		users.On("Create", ctx, mock.Anything).Return(domain.ErrUserExists)

		_, err := svc.Register(ctx, input)
		assert.ErrorIs(t, err, domain.ErrUserExists)
		jobs.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("queue failure does not fail registration", func(t *testing.T) {
		users := new(MockUserRepository)
		jobs := new(MockJobSubmitter)
		svc, _, _ := newTestUserService(t, users, jobs)

		users.On("GetByEmail", ctx, "u1@x.com").Return(nil, nil)
		users.On("Create", ctx, mock.Anything).Return(nil)
		jobs.On("Submit", ctx, domain.JobSendWelcomeEmail, mock.Anything).Return("", errors.New("broker down"))

		user, err := svc.Register(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, "u1@x.com", user.Email)
	})

	t.Run("store failure", func(t *testing.T) {
		users := new(MockUserRepository)
		jobs := new(MockJobSubmitter)
		svc, _, _ := newTestUserService(t, users, jobs)

		users.On("GetByEmail", ctx, "u1@x.com").Return(nil, errors.New("connection refused"))

		_, err := svc.Register(ctx, input)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrConflict)
	})
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()

	users := new(MockUserRepository)
	jobs := new(MockJobSubmitter)
	svc, hasher, tokens := newTestUserService(t, users, jobs)

	hash, err := hasher.Hash("abcd1234")
	require.NoError(t, err)
	users.On("GetByEmail", ctx, "u1@x.com").Return(&domain.User{ID: "1", Email: "u1@x.com", PasswordHash: hash}, nil)
	users.On("GetByEmail", ctx, "ghost@x.com").Return(nil, nil)

	t.Run("success", func(t *testing.T) {
		pair, err := svc.Login(ctx, domain.UserLogin{Email: "u1@x.com", Password: "abcd1234"})
		require.NoError(t, err)

		claims, err := tokens.Verify(pair.AccessToken)
		require.NoError(t, err)
		sub, _ := claims.GetSubject()
		assert.Equal(t, "u1@x.com", sub)
		assert.Equal(t, security.TokenTypeAccess, security.TokenType(claims))

		claims, err = tokens.Verify(pair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, security.TokenTypeRefresh, security.TokenType(claims))
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		_, wrongPassword := svc.Login(ctx, domain.UserLogin{Email: "u1@x.com", Password: "wrong1234"})
		_, unknownEmail := svc.Login(ctx, domain.UserLogin{Email: "ghost@x.com", Password: "abcd1234"})

		assert.ErrorIs(t, wrongPassword, domain.ErrInvalidCredentials)
		assert.ErrorIs(t, unknownEmail, domain.ErrInvalidCredentials)
		assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	})
}

func TestUserService_Refresh(t *testing.T) {
	ctx := context.Background()

	users := new(MockUserRepository)
	jobs := new(MockJobSubmitter)
	svc, _, tokens := newTestUserService(t, users, jobs)

	users.On("GetByEmail", ctx, "u1@x.com").Return(&domain.User{ID: "1", Email: "u1@x.com"}, nil)
	users.On("GetByEmail", ctx, "gone@x.com").Return(nil, nil)

	t.Run("refresh token", func(t *testing.T) {
		refresh, err := tokens.GenerateRefreshToken("u1@x.com")
		require.NoError(t, err)

		pair, err := svc.Refresh(ctx, refresh)
		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
	})

	t.Run("access token rejected", func(t *testing.T) {
		access, err := tokens.GenerateAccessToken("u1@x.com")
		require.NoError(t, err)

		_, err = svc.Refresh(ctx, access)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("vanished user", func(t *testing.T) {
		refresh, err := tokens.GenerateRefreshToken("gone@x.com")
		require.NoError(t, err)

		_, err = svc.Refresh(ctx, refresh)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Refresh(ctx, "not-a-token")
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})
}

func TestUserService_Profile(t *testing.T) {
	users := new(MockUserRepository)
	svc, _, _ := newTestUserService(t, users, new(MockJobSubmitter))

	profile := svc.Profile(&domain.User{ID: "1", Email: "u1@x.com", Name: "U1", PasswordHash: "secret"})
	assert.Equal(t, domain.PublicUser{ID: "1", Email: "u1@x.com", Name: "U1"}, profile)
	users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}
