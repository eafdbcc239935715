package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"piazza/internal/apperr"
	"piazza/internal/auth"
	"piazza/internal/models"
	"piazza/internal/repository"
)

const (
	msgCredentialsRequired = "username and password are required"
	msgUsernameTaken       = "username already taken"
	msgInvalidCredentials  = "invalid credentials"
)

type AuthService struct {
	users    UserRepository
	tokens   *auth.TokenIssuer
	hashCost int
	now      Clock
}

func NewAuthService(users UserRepository, tokens *auth.TokenIssuer, now Clock) *AuthService {
	return &AuthService{users: users, tokens: tokens, hashCost: bcrypt.DefaultCost, now: now.orDefault()}
}

// WithHashCost lowers the bcrypt cost; tests use bcrypt.MinCost.
func (s *AuthService) WithHashCost(cost int) *AuthService {
	s.hashCost = cost
	return s
}

func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperr.InvalidArgument(msgCredentialsRequired)
	}

	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, apperr.InvalidArgument(msgUsernameTaken)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperr.InvalidArgument("password is too long")
		}
		return nil, apperr.Internal(err)
	}

	u := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Insert(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.InvalidArgument(msgUsernameTaken)
		}
		return nil, apperr.Internal(err)
	}
	return u, nil
}

// Login answers "invalid credentials" for both an unknown user and a wrong
// password.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	u, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, apperr.Unauthorized(msgInvalidCredentials)
		}
		return "", nil, apperr.Internal(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperr.Unauthorized(msgInvalidCredentials)
	}

	token, err := s.tokens.Sign(u.ID, u.Username)
	if err != nil {
		return "", nil, apperr.Internal(err)
	}
	return token, u, nil
}

// Authenticate resolves a bearer token to a user that still exists.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	uid, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperr.Unauthorized("token invalid or expired")
	}
	u, err := s.users.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Unauthorized("user no longer exists")
		}
		return nil, apperr.Internal(err)
	}
	return u, nil
}
