package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"explorewithme/internal/domain"
)

type compilationRepository struct {
	DB *sql.DB
}

func NewCompilationRepository(db *sql.DB) domain.CompilationRepository {
	return &compilationRepository{
		DB: db,
	}
}

func (r *compilationRepository) Create(ctx context.Context, c *domain.Compilation, eventIDs []int64) error {
	return withTx(ctx, r.DB, func(ctx context.Context) error {
		query := `
			INSERT INTO compilations (title, pinned)
			VALUES ($1, $2)
			RETURNING id
		`
		if err := conn(ctx, r.DB).QueryRowContext(ctx, query, c.Title, c.Pinned).Scan(&c.ID); err != nil {
			return err
		}
		return r.replaceMembers(ctx, c.ID, eventIDs)
	})
}

func (r *compilationRepository) GetByID(ctx context.Context, id int64) (*domain.Compilation, error) {
	query := `SELECT id, title, pinned FROM compilations WHERE id = $1`
	c := &domain.Compilation{}
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Title, &c.Pinned)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	events, err := r.eventsFor(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Events = events
	return c, nil
}

// Update rewrites the compilation row and, when eventIDs is non-nil,
// replaces its membership. A nil eventIDs keeps the current members.
func (r *compilationRepository) Update(ctx context.Context, c *domain.Compilation, eventIDs []int64) error {
	return withTx(ctx, r.DB, func(ctx context.Context) error {
		query := `UPDATE compilations SET title = $1, pinned = $2 WHERE id = $3`
		result, err := conn(ctx, r.DB).ExecContext(ctx, query, c.Title, c.Pinned, c.ID)
		if err != nil {
			return err
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return domain.ErrNotFound
		}
		if eventIDs == nil {
			return nil
		}
		if _, err := conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM compilation_events WHERE compilation_id = $1`, c.ID); err != nil {
			return err
		}
		return r.replaceMembers(ctx, c.ID, eventIDs)
	})
}

func (r *compilationRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM compilations WHERE id = $1`
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

func (r *compilationRepository) List(ctx context.Context, pinned *bool, p domain.PaginationParams) ([]*domain.Compilation, error) {
	query := `SELECT id, title, pinned FROM compilations`
	args := []interface{}{}
	n := 1
	if pinned != nil {
		query += " WHERE pinned = $1"
		args = append(args, *pinned)
		n++
	}
	query += fmt.Sprintf(" ORDER BY id OFFSET $%d LIMIT $%d", n, n+1)
	args = append(args, p.Offset(), p.Limit())

	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	compilations := make([]*domain.Compilation, 0)
	for rows.Next() {
		c := &domain.Compilation{}
		if err := rows.Scan(&c.ID, &c.Title, &c.Pinned); err != nil {
			return nil, err
		}
		compilations = append(compilations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, c := range compilations {
		events, err := r.eventsFor(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		c.Events = events
	}
	return compilations, nil
}

func (r *compilationRepository) replaceMembers(ctx context.Context, compilationID int64, eventIDs []int64) error {
	if len(eventIDs) == 0 {
		return nil
	}
	query := `
		INSERT INTO compilation_events (compilation_id, event_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING
	`
	_, err := conn(ctx, r.DB).ExecContext(ctx, query, compilationID, pq.Array(eventIDs))
	return err
}

func (r *compilationRepository) eventsFor(ctx context.Context, compilationID int64) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		JOIN compilation_events ce ON ce.event_id = events.id
		WHERE ce.compilation_id = $1
		ORDER BY events.id
	`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, compilationID)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}
