package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhajavat-web/efvb/internal/platform/crypto"
)

// tokenTTL is deliberately long: tokens double as the mobile reader's
// offline credential between syncs.
const tokenTTL = 365 * 24 * time.Hour

type Service struct {
	repo   Repository
	secret string
}

func NewService(repo Repository, secret string) *Service {
	return &Service{repo: repo, secret: secret}
}

// Signup registers a new USER account and returns it with a token.
func (s *Service) Signup(ctx context.Context, name, email, password string) (User, string, error) {
	if err := crypto.ValidatePasswordStrength(password); err != nil {
		return User{}, "", err
	}
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return User{}, "", fmt.Errorf("hash password: %w", err)
	}

	u := User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Role:         RoleUser,
	}
	if err := s.repo.Create(ctx, &u); err != nil {
		return User{}, "", err
	}

	token, err := crypto.GenerateToken(s.secret, u.ID, u.Email, u.Role, tokenTTL)
	if err != nil {
		return User{}, "", fmt.Errorf("issue token: %w", err)
	}
	return u, token, nil
}

// Login authenticates any account by email and password.
func (s *Service) Login(ctx context.Context, email, password string) (User, string, error) {
	return s.login(ctx, email, password, "")
}

// AdminLogin authenticates an account and additionally requires the
// ADMIN role. A valid USER login still comes back as invalid
// credentials here.
func (s *Service) AdminLogin(ctx context.Context, email, password string) (User, string, error) {
	return s.login(ctx, email, password, RoleAdmin)
}

func (s *Service) login(ctx context.Context, email, password, requiredRole string) (User, string, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil || !crypto.VerifyPassword(u.PasswordHash, password) {
		return User{}, "", ErrInvalidCredentials
	}
	if requiredRole != "" && u.Role != requiredRole {
		return User{}, "", ErrInvalidCredentials
	}

	token, err := crypto.GenerateToken(s.secret, u.ID, u.Email, u.Role, tokenTTL)
	if err != nil {
		return User{}, "", fmt.Errorf("issue token: %w", err)
	}
	return u, token, nil
}

// GetByEmail exposes account lookup for order fulfillment.
func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}
