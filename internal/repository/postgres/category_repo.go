package postgres

import (
	"context"
	"database/sql"
	"errors"

	"explorewithme/internal/domain"
)

type categoryRepository struct {
	DB *sql.DB
}

func NewCategoryRepository(db *sql.DB) domain.CategoryRepository {
	return &categoryRepository{
		DB: db,
	}
}

func (r *categoryRepository) Create(ctx context.Context, c *domain.Category) error {
	query := `
		INSERT INTO categories (name)
		VALUES ($1)
		RETURNING id
	`
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, c.Name).Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateCategoryName
		}
		return err
	}
	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	query := `SELECT id, name FROM categories WHERE id = $1`
	c := &domain.Category{}
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *categoryRepository) Update(ctx context.Context, c *domain.Category) error {
	query := `UPDATE categories SET name = $1 WHERE id = $2`
	result, err := conn(ctx, r.DB).ExecContext(ctx, query, c.Name, c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateCategoryName
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM categories WHERE id = $1`
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

func (r *categoryRepository) List(ctx context.Context, p domain.PaginationParams) ([]*domain.Category, error) {
	query := `SELECT id, name FROM categories ORDER BY id OFFSET $1 LIMIT $2`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, p.Offset(), p.Limit())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	categories := make([]*domain.Category, 0)
	for rows.Next() {
		c := &domain.Category{}
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
