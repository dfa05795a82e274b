package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vibehive/backend/internal/domain"
)

type DiscussionRepo struct {
	pool *pgxpool.Pool
}

func NewDiscussionRepo(pool *pgxpool.Pool) *DiscussionRepo {
	return &DiscussionRepo{pool: pool}
}

func (r *DiscussionRepo) Create(ctx context.Context, d *domain.Discussion) error {
	query := `
		INSERT INTO discussions (id, author_id, title, content, likes, comment_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, query,
		d.ID, d.AuthorID, d.Title, d.Content, d.Likes, d.CommentCount, d.CreatedAt,
	)
	return err
}

func (r *DiscussionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Discussion, error) {
	query := `
		SELECT d.id, d.author_id, d.title, d.content, d.likes, d.comment_count, d.created_at,
			u.username, u.display_name
		FROM discussions d
		JOIN users u ON d.author_id = u.id
		WHERE d.id = $1`
	var d domain.Discussion
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.AuthorID, &d.Title, &d.Content, &d.Likes, &d.CommentCount, &d.CreatedAt,
		&d.AuthorUsername, &d.AuthorDisplayName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &d, err
}

func (r *DiscussionRepo) List(ctx context.Context) ([]domain.Discussion, error) {
	query := `
		SELECT d.id, d.author_id, d.title, d.content, d.likes, d.comment_count, d.created_at,
			u.username, u.display_name
		FROM discussions d
		JOIN users u ON d.author_id = u.id
		ORDER BY d.created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var discussions []domain.Discussion
	for rows.Next() {
		var d domain.Discussion
		if err := rows.Scan(
			&d.ID, &d.AuthorID, &d.Title, &d.Content, &d.Likes, &d.CommentCount, &d.CreatedAt,
			&d.AuthorUsername, &d.AuthorDisplayName,
		); err != nil {
			return nil, err
		}
		discussions = append(discussions, d)
	}
	return discussions, rows.Err()
}

func (r *DiscussionRepo) IncrementLikes(ctx context.Context, id uuid.UUID) (int, error) {
	var likes int
	err := r.pool.QueryRow(ctx,
		`UPDATE discussions SET likes = likes + 1 WHERE id = $1 RETURNING likes`, id,
	).Scan(&likes)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return likes, err
}

// Delete removes the discussion and its comments in one transaction.
func (r *DiscussionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM comments WHERE discussion_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM discussions WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CreateComment inserts the comment row first, then bumps the parent's
// denormalized counter. Same write order as chat message appends: the counter
// can run behind on a crash but never counts a comment that was not written.
func (r *DiscussionRepo) CreateComment(ctx context.Context, c *domain.Comment) error {
	insert := `
		INSERT INTO comments (id, discussion_id, author_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.pool.Exec(ctx, insert,
		c.ID, c.DiscussionID, c.AuthorID, c.Text, c.CreatedAt,
	); err != nil {
		return err
	}

	_, err := r.pool.Exec(ctx,
		`UPDATE discussions SET comment_count = comment_count + 1 WHERE id = $1`, c.DiscussionID,
	)
	return err
}

func (r *DiscussionRepo) ListComments(ctx context.Context, discussionID uuid.UUID) ([]domain.Comment, error) {
	query := `
		SELECT c.id, c.discussion_id, c.author_id, c.text, c.created_at,
			u.username, u.display_name
		FROM comments c
		JOIN users u ON c.author_id = u.id
		WHERE c.discussion_id = $1
		ORDER BY c.created_at ASC`

	rows, err := r.pool.Query(ctx, query, discussionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(
			&c.ID, &c.DiscussionID, &c.AuthorID, &c.Text, &c.CreatedAt,
			&c.AuthorUsername, &c.AuthorDisplayName,
		); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
