package postgres

import (
	"context"
	"database/sql"
	"errors"

	"explorewithme/internal/domain"
)

type commentRepository struct {
	DB *sql.DB
}

func NewCommentRepository(db *sql.DB) domain.CommentRepository {
	return &commentRepository{
		DB: db,
	}
}

func (r *commentRepository) Create(ctx context.Context, c *domain.Comment) error {
	query := `
		INSERT INTO comments (event_id, author_id, text, created_on, updated)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return conn(ctx, r.DB).QueryRowContext(ctx, query,
		c.EventID, c.AuthorID, c.Text, c.CreatedOn, c.Updated,
	).Scan(&c.ID)
}

func (r *commentRepository) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	query := `SELECT id, event_id, author_id, text, created_on, updated FROM comments WHERE id = $1`
	c := &domain.Comment{}
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.EventID, &c.AuthorID, &c.Text, &c.CreatedOn, &c.Updated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *commentRepository) Update(ctx context.Context, c *domain.Comment) error {
	query := `UPDATE comments SET text = $1, updated = $2 WHERE id = $3`
	result, err := conn(ctx, r.DB).ExecContext(ctx, query, c.Text, c.Updated, c.ID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM comments WHERE id = $1`
	result, err := conn(ctx, r.DB).ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *commentRepository) ListByEvent(ctx context.Context, eventID int64, p domain.PaginationParams) ([]*domain.Comment, error) {
	query := `
		SELECT id, event_id, author_id, text, created_on, updated
		FROM comments
		WHERE event_id = $1
		ORDER BY created_on DESC, id DESC
		OFFSET $2 LIMIT $3
	`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, eventID, p.Offset(), p.Limit())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	comments := make([]*domain.Comment, 0)
	for rows.Next() {
		c := &domain.Comment{}
		if err := rows.Scan(&c.ID, &c.EventID, &c.AuthorID, &c.Text, &c.CreatedOn, &c.Updated); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
