// Package auth implements login, token refresh and logout.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dermaclinic/clinic-api/internal/model"
	"github.com/dermaclinic/clinic-api/internal/repository"
	"github.com/dermaclinic/clinic-api/internal/token"
	"github.com/dermaclinic/clinic-api/pkg/auth"
	"github.com/dermaclinic/clinic-api/pkg/errors"
	"github.com/dermaclinic/clinic-api/pkg/logger"
	"github.com/dermaclinic/clinic-api/pkg/security"
)

type Service interface {
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
	Refresh(ctx context.Context, req *model.RefreshRequest) (*model.RefreshResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

type service struct {
	users  repository.UserRepository
	jwt    auth.JWTService
	hasher security.PasswordHasher
	tokens token.Store
	logger *logger.Logger
}

func NewService(
	users repository.UserRepository,
	jwtSvc auth.JWTService,
	hasher security.PasswordHasher,
	tokens token.Store,
	log *logger.Logger,
) Service {
	return &service{
		users:  users,
		jwt:    jwtSvc,
		hasher: hasher,
		tokens: tokens,
		logger: log,
	}
}

// Login verifies credentials. Disabled and soft-deleted accounts are
// rejected with the same message as a bad password.
func (s *service) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	u, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if u == nil || !u.IsActive {
		return nil, errors.Unauthenticated("invalid username or password")
	}
	if err := s.hasher.Compare(u.PasswordHash, req.Password); err != nil {
		return nil, errors.Unauthenticated("invalid username or password")
	}

	access, err := s.jwt.GenerateAccessToken(u)
	if err != nil {
		return nil, errors.Internal(err)
	}
	refresh, _, err := s.jwt.GenerateRefreshToken(u)
	if err != nil {
		return nil, errors.Internal(err)
	}

	s.logger.Info("user logged in", "user_id", u.ID)
	return &model.LoginResponse{
		User:         u,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

func (s *service) Refresh(ctx context.Context, req *model.RefreshRequest) (*model.RefreshResponse, error) {
	claims, err := s.jwt.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, errors.Unauthenticated("invalid refresh token")
	}

	revoked, err := s.tokens.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if revoked {
		return nil, errors.Unauthenticated("refresh token has been revoked")
	}

	u, err := s.users.Get(ctx, claims.UserID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if u == nil || !u.IsActive {
		return nil, errors.Unauthenticated("account is no longer active")
	}

	access, err := s.jwt.GenerateAccessToken(u)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return &model.RefreshResponse{
		AccessToken: access,
		TokenType:   "bearer",
	}, nil
}

// Logout revokes the refresh token for the remainder of its lifetime.
func (s *service) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return errors.Unauthenticated("invalid refresh token")
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.tokens.Revoke(ctx, claims.ID, ttl); err != nil {
		return errors.Internal(err)
	}
	s.logger.Info("user logged out", "user_id", claims.UserID)
	return nil
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if u == nil {
		return nil, errors.NotFound("user")
	}
	return u, nil
}
