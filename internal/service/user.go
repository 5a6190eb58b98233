package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/article-hub/internal/domain"
	"github.com/Rrens/article-hub/internal/security"
	"github.com/rs/zerolog/log"
)

// UserService handles registration and authentication
type UserService struct {
	users  UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
	jobs   JobSubmitter

	// dummyHash is compared against when the email is unknown so both
	// login failures cost the same.
	dummyHash string
}

// NewUserService creates a new user service
func NewUserService(users UserRepository, hasher PasswordHasher, tokens TokenIssuer, jobs JobSubmitter) (*UserService, error) {
	dummyHash, err := hasher.Hash("article-hub-dummy-password")
	if err != nil {
		return nil, err
	}

	return &UserService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		jobs:      jobs,
		dummyHash: dummyHash,
	}, nil
}

// Register creates a new user account and queues the welcome notification
func (s *UserService) Register(ctx context.Context, input domain.UserCreate) (*domain.PublicUser, error) {
	existing, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrUserExists
	}

	hashedPassword, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now().UTC(),
	}

	// The pre-check above can race; the store's unique index is what
	// actually guarantees one account per email.
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	payload := domain.WelcomeEmailPayload{Email: user.Email, Name: user.Name}
	if _, err := s.jobs.Submit(ctx, domain.JobSendWelcomeEmail, payload); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("Failed to queue welcome email")
	}

	public := user.Public()
	return &public, nil
}

// Login authenticates a user and returns tokens
func (s *UserService) Login(ctx context.Context, input domain.UserLogin) (*domain.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		s.hasher.Verify(input.Password, s.dummyHash)
		return nil, domain.ErrInvalidCredentials
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	tokens, err := s.tokens.GenerateTokenPair(user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return tokens, nil
}

// Refresh exchanges a refresh token for a new token pair
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken)
	if err != nil || security.TokenType(claims) != security.TokenTypeRefresh {
		return nil, domain.ErrUnauthenticated
	}

	email, err := claims.GetSubject()
	if err != nil || email == "" {
		return nil, domain.ErrUnauthenticated
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}

	tokens, err := s.tokens.GenerateTokenPair(user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return tokens, nil
}

// Profile returns the public record of an already resolved user
func (s *UserService) Profile(user *domain.User) domain.PublicUser {
	return user.Public()
}
