package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hr-onboarding-backend/internal/domain"
	"hr-onboarding-backend/internal/repository"
)

type userService struct {
	userRepo repository.UserRepository
	now      func() time.Time
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo, now: func() time.Time { return time.Now().UTC() }}
}

func (s *userService) GetProfile(ctx context.Context, caller domain.Caller, userID int32) (*domain.User, error) {
	if err := caller.RequireSelfOrHR(userID); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfile applies a partial update. Work authorization is not editable
// here; it only changes through onboarding approval.
func (s *userService) UpdateProfile(ctx context.Context, caller domain.Caller, userID int32, patch domain.Patch) (*domain.User, error) {
	if err := caller.RequireSelfOrHR(userID); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.ApplyProfilePatch(patch); err != nil {
		return nil, err
	}
	user.UpdatedAt = s.now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

func (s *userService) ListEmployees(ctx context.Context, caller domain.Caller, query string) ([]domain.User, error) {
	if err := caller.RequireHR(); err != nil {
		return nil, err
	}
	if q := strings.TrimSpace(query); q != "" {
		return s.userRepo.Search(ctx, q)
	}
	return s.userRepo.ListByRole(ctx, domain.RoleEmployee)
}
