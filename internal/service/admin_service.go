package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/vibehive/backend/internal/domain"
	"github.com/vibehive/backend/internal/repository"
)

var (
	ErrNotAdmin         = errors.New("admin role required")
	ErrCannotSelfDemote = errors.New("cannot change your own role")
	ErrInvalidRole      = errors.New("invalid role")
)

type AdminService struct {
	userRepo       repository.UserRepository
	discussionRepo repository.DiscussionRepository
}

func NewAdminService(userRepo repository.UserRepository, discussionRepo repository.DiscussionRepository) *AdminService {
	return &AdminService{
		userRepo:       userRepo,
		discussionRepo: discussionRepo,
	}
}

type AdminUserRow struct {
	domain.Profile
	Email string `json:"email"`
}

func (s *AdminService) ListUsers(ctx context.Context, actor *domain.User) ([]AdminUserRow, error) {
	if !actor.IsAdmin() {
		return nil, ErrNotAdmin
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	return lo.Map(users, func(u domain.User, _ int) AdminUserRow {
		return AdminUserRow{Profile: u.Profile(), Email: u.Email}
	}), nil
}

// SetRole promotes or demotes a user. Admins cannot change their own role, so
// the last admin cannot lock everyone out by demoting themselves.
func (s *AdminService) SetRole(ctx context.Context, actor *domain.User, userID uuid.UUID, role string) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrNotAdmin
	}
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return nil, ErrInvalidRole
	}
	if actor.ID == userID {
		return nil, ErrCannotSelfDemote
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	user.Role = role
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("updating role: %w", err)
	}
	return user, nil
}

// DeleteUser removes the account. Conversations referencing the username
// survive; the chat directory degrades them to a placeholder counterpart.
func (s *AdminService) DeleteUser(ctx context.Context, actor *domain.User, userID uuid.UUID) error {
	if !actor.IsAdmin() {
		return ErrNotAdmin
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	return s.userRepo.Delete(ctx, userID)
}

// DeleteDiscussion is the moderation path: no ownership check beyond the
// admin role. Comments go with the discussion.
func (s *AdminService) DeleteDiscussion(ctx context.Context, actor *domain.User, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return ErrNotAdmin
	}

	d, err := s.discussionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if d == nil {
		return ErrDiscussionNotFound
	}

	return s.discussionRepo.Delete(ctx, id)
}
