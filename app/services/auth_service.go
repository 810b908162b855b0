package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/dukaanlabs/dukaan/app/models"
	"github.com/dukaanlabs/dukaan/app/repositories"
	"github.com/dukaanlabs/dukaan/app/requests"
	"github.com/dukaanlabs/dukaan/pkg/auth"
	"github.com/dukaanlabs/dukaan/pkg/cache"
	"github.com/dukaanlabs/dukaan/pkg/middleware"
)

// ErrInvalidCredentials is returned when the email/password pair does not
// match an account.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService implements signup, login and logout. Tokens are stateless
// JWTs; logout revokes one by parking its ID in the cache until the token
// would have expired anyway.
type AuthService struct {
	users *repositories.UserRepository
	cache *cache.Cache
}

func NewAuthService(users *repositories.UserRepository, c *cache.Cache) *AuthService {
	return &AuthService{users: users, cache: c}
}

// Signup registers a new account and returns it with a fresh bearer token.
// A taken email is reported as a field error, not an error.
func (s *AuthService) Signup(in *requests.SignupInput) (models.User, string, map[string]string, error) {
	taken, err := s.users.EmailExists(in.Email)
	if err != nil {
		return models.User{}, "", nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return models.User{}, "", map[string]string{"email": "The email has already been taken."}, nil
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, "", nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{Name: in.Name, Email: in.Email, Password: hash}
	if err := s.users.Create(&user); err != nil {
		return models.User{}, "", nil, fmt.Errorf("create user: %w", err)
	}

	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		return models.User{}, "", nil, fmt.Errorf("generate token: %w", err)
	}

	return user, token, nil, nil
}

// Login verifies the credentials and returns a fresh bearer token.
func (s *AuthService) Login(in *requests.LoginInput) (string, error) {
	user, err := s.users.FindByEmail(in.Email)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if !auth.CheckPassword(user.Password, in.Password) {
		return "", ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}

// Logout revokes the presented token. The denylist entry lives only as long
// as the token itself would.
func (s *AuthService) Logout(claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}

	remaining := auth.TokenTTL
	if claims.ExpiresAt != nil {
		remaining = time.Until(claims.ExpiresAt.Time)
	}
	if remaining <= 0 {
		return nil
	}

	if err := s.cache.Put(middleware.DenylistKey(claims.ID), true, remaining); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
