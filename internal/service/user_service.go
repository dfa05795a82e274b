package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/vibehive/backend/internal/domain"
	"github.com/vibehive/backend/internal/repository"
)

const searchLimit = 20

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) GetProfile(ctx context.Context, username string) (*domain.Profile, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	profile := user.Profile()
	return &profile, nil
}

type UpdateProfileInput struct {
	DisplayName string  `json:"display_name"`
	Bio         string  `json:"bio"`
	AvatarURL   *string `json:"avatar_url"`
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	user.DisplayName = input.DisplayName
	user.Bio = input.Bio
	if input.AvatarURL != nil {
		user.AvatarURL = input.AvatarURL
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return user, nil
}

// Search matches usernames and display names, case-insensitive, excluding the
// caller.
func (s *UserService) Search(ctx context.Context, callerUsername, query string) ([]domain.Profile, error) {
	if query == "" {
		return []domain.Profile{}, nil
	}

	users, err := s.userRepo.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, err
	}

	users = lo.Filter(users, func(u domain.User, _ int) bool {
		return u.Username != callerUsername
	})
	return lo.Map(users, func(u domain.User, _ int) domain.Profile {
		return u.Profile()
	}), nil
}
