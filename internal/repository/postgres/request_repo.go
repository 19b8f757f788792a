package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"explorewithme/internal/domain"
)

const requestColumns = `id, event_id, requester_id, status, created`

type participationRequestRepository struct {
	DB *sql.DB
}

func NewParticipationRequestRepository(db *sql.DB) domain.ParticipationRequestRepository {
	return &participationRequestRepository{
		DB: db,
	}
}

func (r *participationRequestRepository) Create(ctx context.Context, req *domain.ParticipationRequest) error {
	query := `
		INSERT INTO participation_requests (event_id, requester_id, status, created)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := conn(ctx, r.DB).QueryRowContext(ctx, query,
		req.EventID, req.RequesterID, string(req.Status), req.Created,
	).Scan(&req.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateRequest
		}
		return err
	}
	return nil
}

func (r *participationRequestRepository) GetByID(ctx context.Context, id int64) (*domain.ParticipationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM participation_requests WHERE id = $1`
	return scanRequest(conn(ctx, r.DB).QueryRowContext(ctx, query, id))
}

func (r *participationRequestRepository) GetByEventAndRequester(ctx context.Context, eventID, requesterID int64) (*domain.ParticipationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM participation_requests WHERE event_id = $1 AND requester_id = $2`
	return scanRequest(conn(ctx, r.DB).QueryRowContext(ctx, query, eventID, requesterID))
}

func (r *participationRequestRepository) ListByRequester(ctx context.Context, requesterID int64) ([]*domain.ParticipationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM participation_requests WHERE requester_id = $1 ORDER BY id`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, requesterID)
	if err != nil {
		return nil, err
	}
	return scanRequests(rows)
}

func (r *participationRequestRepository) ListByEventExcludingRequester(ctx context.Context, eventID, requesterID int64) ([]*domain.ParticipationRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM participation_requests
		WHERE event_id = $1 AND requester_id <> $2
		ORDER BY id
	`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, eventID, requesterID)
	if err != nil {
		return nil, err
	}
	return scanRequests(rows)
}

func (r *participationRequestRepository) ListByIDs(ctx context.Context, ids []int64) ([]*domain.ParticipationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM participation_requests WHERE id = ANY($1) ORDER BY id`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	return scanRequests(rows)
}

func (r *participationRequestRepository) ListPendingByEvent(ctx context.Context, eventID int64) ([]*domain.ParticipationRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM participation_requests
		WHERE event_id = $1 AND status = 'PENDING'
		ORDER BY id
	`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	return scanRequests(rows)
}

func (r *participationRequestRepository) UpdateStatus(ctx context.Context, id int64, status domain.ParticipationRequestStatus) error {
	query := `UPDATE participation_requests SET status = $1 WHERE id = $2`
	result, err := conn(ctx, r.DB).ExecContext(ctx, query, string(status), id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *participationRequestRepository) UpdateStatusBatch(ctx context.Context, ids []int64, status domain.ParticipationRequestStatus) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE participation_requests SET status = $1 WHERE id = ANY($2)`
	_, err := conn(ctx, r.DB).ExecContext(ctx, query, string(status), pq.Array(ids))
	return err
}

func (r *participationRequestRepository) CountByEventAndStatus(ctx context.Context, eventID int64, status domain.ParticipationRequestStatus) (int, error) {
	query := `SELECT COUNT(*) FROM participation_requests WHERE event_id = $1 AND status = $2`
	var count int
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, eventID, string(status)).Scan(&count)
	return count, err
}

func scanRequest(row rowScanner) (*domain.ParticipationRequest, error) {
	req := &domain.ParticipationRequest{}
	var status string
	err := row.Scan(&req.ID, &req.EventID, &req.RequesterID, &status, &req.Created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	req.Status = domain.ParticipationRequestStatus(status)
	return req, nil
}

func scanRequests(rows *sql.Rows) ([]*domain.ParticipationRequest, error) {
	defer rows.Close()
	requests := make([]*domain.ParticipationRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}
