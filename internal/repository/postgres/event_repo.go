package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"explorewithme/internal/domain"
)

const eventColumns = `id, title, annotation, description, category_id, initiator_id,
		location_lat, location_lon, paid, participant_limit, request_moderation,
		confirmed_requests, state, event_date, created_on, published_on`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, annotation, description, category_id, initiator_id,
			location_lat, location_lon, paid, participant_limit, request_moderation,
			confirmed_requests, state, event_date, created_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`
	return conn(ctx, r.DB).QueryRowContext(ctx, query,
		e.Title, e.Annotation, e.Description, e.CategoryID, e.InitiatorID,
		e.Location.Lat, e.Location.Lon, e.Paid, e.ParticipantLimit, e.RequestModeration,
		e.ConfirmedRequests, string(e.State), e.EventDate, e.CreatedOn,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return scanEvent(conn(ctx, r.DB).QueryRowContext(ctx, query, id))
}

func (r *eventRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`
	return scanEvent(conn(ctx, r.DB).QueryRowContext(ctx, query, id))
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET title = $1, annotation = $2, description = $3, category_id = $4,
			location_lat = $5, location_lon = $6, paid = $7, participant_limit = $8,
			request_moderation = $9, confirmed_requests = $10, state = $11,
			event_date = $12, published_on = $13
		WHERE id = $14
	`
	var publishedOn sql.NullTime
	if e.PublishedOn != nil {
		publishedOn = sql.NullTime{Time: *e.PublishedOn, Valid: true}
	}
	result, err := conn(ctx, r.DB).ExecContext(ctx, query,
		e.Title, e.Annotation, e.Description, e.CategoryID,
		e.Location.Lat, e.Location.Lon, e.Paid, e.ParticipantLimit,
		e.RequestModeration, e.ConfirmedRequests, string(e.State),
		e.EventDate, publishedOn, e.ID,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) ListByInitiator(ctx context.Context, initiatorID int64, p domain.PaginationParams) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE initiator_id = $1
		ORDER BY id
		OFFSET $2 LIMIT $3
	`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, initiatorID, p.Offset(), p.Limit())
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

func (r *eventRepository) AdminSearch(ctx context.Context, f domain.AdminEventFilter, p domain.PaginationParams) ([]*domain.Event, error) {
	where := []string{}
	args := []interface{}{}
	n := 1
	if len(f.InitiatorIDs) > 0 {
		where = append(where, fmt.Sprintf("initiator_id = ANY($%d)", n))
		args = append(args, pq.Array(f.InitiatorIDs))
		n++
	}
	if len(f.States) > 0 {
		states := make([]string, len(f.States))
		for i, s := range f.States {
			states[i] = string(s)
		}
		where = append(where, fmt.Sprintf("state = ANY($%d)", n))
		args = append(args, pq.Array(states))
		n++
	}
	if len(f.CategoryIDs) > 0 {
		where = append(where, fmt.Sprintf("category_id = ANY($%d)", n))
		args = append(args, pq.Array(f.CategoryIDs))
		n++
	}
	if f.RangeStart != nil {
		where = append(where, fmt.Sprintf("event_date >= $%d", n))
		args = append(args, *f.RangeStart)
		n++
	}
	if f.RangeEnd != nil {
		where = append(where, fmt.Sprintf("event_date <= $%d", n))
		args = append(args, *f.RangeEnd)
		n++
	}
	query := `SELECT ` + eventColumns + ` FROM events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY id OFFSET $%d LIMIT $%d", n, n+1)
	args = append(args, p.Offset(), p.Limit())

	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

func (r *eventRepository) PublicSearch(ctx context.Context, f domain.PublicEventFilter, p domain.PaginationParams) ([]*domain.Event, error) {
	where := []string{"state = 'PUBLISHED'"}
	args := []interface{}{}
	n := 1
	if f.Text != "" {
		where = append(where, fmt.Sprintf("(annotation ILIKE '%%' || $%d || '%%' OR description ILIKE '%%' || $%d || '%%')", n, n))
		args = append(args, f.Text)
		n++
	}
	if len(f.CategoryIDs) > 0 {
		where = append(where, fmt.Sprintf("category_id = ANY($%d)", n))
		args = append(args, pq.Array(f.CategoryIDs))
		n++
	}
	if f.Paid != nil {
		where = append(where, fmt.Sprintf("paid = $%d", n))
		args = append(args, *f.Paid)
		n++
	}
	if f.RangeStart != nil {
		where = append(where, fmt.Sprintf("event_date >= $%d", n))
		args = append(args, *f.RangeStart)
		n++
	}
	if f.RangeEnd != nil {
		where = append(where, fmt.Sprintf("event_date <= $%d", n))
		args = append(args, *f.RangeEnd)
		n++
	}
	if f.OnlyAvailable {
		where = append(where, "(participant_limit = 0 OR confirmed_requests < participant_limit)")
	}
	query := `SELECT ` + eventColumns + ` FROM events WHERE ` + strings.Join(where, " AND ")
	query += fmt.Sprintf(" ORDER BY event_date OFFSET $%d LIMIT $%d", n, n+1)
	args = append(args, p.Offset(), p.Limit())

	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

func (r *eventRepository) ExistsByCategory(ctx context.Context, categoryID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM events WHERE category_id = $1)`
	var exists bool
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, categoryID).Scan(&exists)
	return exists, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var state string
	var publishedNull sql.NullTime
	err := row.Scan(
		&e.ID, &e.Title, &e.Annotation, &e.Description, &e.CategoryID, &e.InitiatorID,
		&e.Location.Lat, &e.Location.Lon, &e.Paid, &e.ParticipantLimit, &e.RequestModeration,
		&e.ConfirmedRequests, &state, &e.EventDate, &e.CreatedOn, &publishedNull,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	e.State = domain.EventState(state)
	if publishedNull.Valid {
		e.PublishedOn = &publishedNull.Time
	}
	return e, nil
}

func scanEvents(rows *sql.Rows) ([]*domain.Event, error) {
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
