package user

import (
	"context"
	"errors"
	"fmt"

	"novelhub/internal/auth"
	"novelhub/internal/entitlement"
	"novelhub/internal/logger"
)

var (
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidRefresh     = errors.New("invalid or expired refresh token")
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, string, string, error)
	Login(ctx context.Context, req LoginRequest) (*User, string, string, error)
	GetByID(ctx context.Context, userID string) (*User, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, *User, error)
	LookupRequester(ctx context.Context, userID string) (entitlement.Requester, error)
	EnsureAdmin(ctx context.Context, email, password string) (*User, error)
}

type service struct {
	repo      Repository
	jwtSecret string
}

func NewService(repo Repository, jwtSecret string) Service {
	return &service{
		repo:      repo,
		jwtSecret: jwtSecret,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, string, string, error) {
	req.Email = NormalizeEmail(req.Email)
	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, "", "", err
	}
	if exists {
		return nil, "", "", ErrEmailExists
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", "", err
	}

	u := &User{Name: req.Name, Email: req.Email, PasswordHash: passwordHash, Role: RoleUser}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, "", "", err
	}

	accessToken, refreshToken, err := auth.GenerateTokens(u.ID, u.Email, u.Role, s.jwtSecret, s.jwtSecret)
	if err != nil {
		return nil, "", "", err
	}

	return u, accessToken, refreshToken, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*User, string, string, error) {
	found, err := s.repo.FindByEmail(ctx, NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", "", ErrInvalidCredentials
		}
		return nil, "", "", err
	}

	if !auth.CheckPassword(found.PasswordHash, req.Password) {
		return nil, "", "", ErrInvalidCredentials
	}

	u, err := s.repo.FindByID(ctx, found.ID)
	if err != nil {
		return nil, "", "", err
	}

	accessToken, refreshToken, err := auth.GenerateTokens(u.ID, u.Email, u.Role, s.jwtSecret, s.jwtSecret)
	if err != nil {
		return nil, "", "", err
	}

	return u, accessToken, refreshToken, nil
}

func (s *service) GetByID(ctx context.Context, userID string) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, *User, error) {
	_, claims, err := auth.RefreshAccessToken(refreshToken, s.jwtSecret, s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidRefresh, err)
	}

	u, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", nil, err
	}

	// the role may have changed since the refresh token was issued
	accessToken, err := auth.GenerateAccessToken(u.ID, u.Email, u.Role, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	return accessToken, u, nil
}

func (s *service) LookupRequester(ctx context.Context, userID string) (entitlement.Requester, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// EnsureAdmin creates the admin account on first start, or promotes an existing user with that email.
func (s *service) EnsureAdmin(ctx context.Context, email, password string) (*User, error) {
	email = NormalizeEmail(email)
	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != RoleAdmin {
			if err := s.repo.SetRole(ctx, existing.ID, RoleAdmin); err != nil {
				return nil, err
			}
			existing.Role = RoleAdmin
			logger.Info("promoted user to admin", "email", email)
		}
		return existing, nil
	case !errors.Is(err, ErrUserNotFound):
		return nil, err
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{Name: "Administrator", Email: email, PasswordHash: passwordHash, Role: RoleAdmin}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	logger.Info("seeded admin account", "email", email, "user_id", u.ID)
	return u, nil
}
