package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vibehive/backend/internal/domain"
	"github.com/vibehive/backend/internal/repository"
)

var (
	ErrDiscussionNotFound = errors.New("discussion not found")
	ErrNotDiscussionOwner = errors.New("only the author or an admin can perform this action")
)

type DiscussionService struct {
	discussionRepo repository.DiscussionRepository
	userRepo       repository.UserRepository
}

func NewDiscussionService(discussionRepo repository.DiscussionRepository, userRepo repository.UserRepository) *DiscussionService {
	return &DiscussionService{
		discussionRepo: discussionRepo,
		userRepo:       userRepo,
	}
}

func (s *DiscussionService) Create(ctx context.Context, author *domain.User, title, content string) (*domain.Discussion, error) {
	d := &domain.Discussion{
		ID:                uuid.New(),
		AuthorID:          author.ID,
		Title:             title,
		Content:           content,
		CreatedAt:         time.Now(),
		AuthorUsername:    author.Username,
		AuthorDisplayName: author.DisplayName,
	}

	if err := s.discussionRepo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("creating discussion: %w", err)
	}
	return d, nil
}

func (s *DiscussionService) List(ctx context.Context) ([]domain.Discussion, error) {
	discussions, err := s.discussionRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if discussions == nil {
		discussions = []domain.Discussion{}
	}
	return discussions, nil
}

func (s *DiscussionService) Like(ctx context.Context, id uuid.UUID) (int, error) {
	d, err := s.discussionRepo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if d == nil {
		return 0, ErrDiscussionNotFound
	}
	return s.discussionRepo.IncrementLikes(ctx, id)
}

// Delete removes a discussion and its comments. Allowed for the author and
// for admins.
func (s *DiscussionService) Delete(ctx context.Context, actor *domain.User, id uuid.UUID) error {
	d, err := s.discussionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if d == nil {
		return ErrDiscussionNotFound
	}
	if d.AuthorID != actor.ID && !actor.IsAdmin() {
		return ErrNotDiscussionOwner
	}

	return s.discussionRepo.Delete(ctx, id)
}

func (s *DiscussionService) AddComment(ctx context.Context, author *domain.User, discussionID uuid.UUID, text string) (*domain.Comment, error) {
	d, err := s.discussionRepo.GetByID(ctx, discussionID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrDiscussionNotFound
	}

	c := &domain.Comment{
		ID:                uuid.New(),
		DiscussionID:      discussionID,
		AuthorID:          author.ID,
		Text:              text,
		CreatedAt:         time.Now(),
		AuthorUsername:    author.Username,
		AuthorDisplayName: author.DisplayName,
	}

	if err := s.discussionRepo.CreateComment(ctx, c); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}
	return c, nil
}

func (s *DiscussionService) ListComments(ctx context.Context, discussionID uuid.UUID) ([]domain.Comment, error) {
	d, err := s.discussionRepo.GetByID(ctx, discussionID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrDiscussionNotFound
	}

	comments, err := s.discussionRepo.ListComments(ctx, discussionID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	return comments, nil
}
