package service

import (
	"context"
	"errors"
	"fmt"

	"contest_tracker/internal/common"
	"contest_tracker/internal/common/security"
	"contest_tracker/internal/domain/model"
	"contest_tracker/internal/domain/repository"

	"github.com/google/uuid"
)

type AuthService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, common.ErrBadRequest
	}

	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized // Generic message for security
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, common.ErrUnauthorized
	}

	token, err := security.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = ""
	return &AuthResponse{User: user, Token: token}, nil
}

// EnsureAdmin seeds the admin account from configuration on startup. Existing
// accounts are left alone.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	_, err := s.userRepo.FindByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("failed to look up admin user: %w", err)
	}

	hashedPassword, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &model.User{
		ID:             uuid.NewString(),
		Username:       username,
		HashedPassword: hashedPassword,
		Role:           model.RoleAdmin,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		// Two replicas racing on first boot is fine, one of them wins.
		if errors.Is(err, common.ErrConflict) {
			return nil
		}
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	return nil
}
