package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"explorewithme/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

var requestCols = []string{"id", "event_id", "requester_id", "status", "created"}

func TestParticipationRequestRepository_Create(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		req     *domain.ParticipationRequest
		mock    func(mock sqlmock.Sqlmock)
		wantID  int64
		wantErr error
	}{
		{
			name: "success",
			req: &domain.ParticipationRequest{
				EventID:     7,
				RequesterID: 20,
				Status:      domain.RequestStatusPending,
				Created:     created,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO participation_requests \(event_id, requester_id, status, created\)`).
					WithArgs(int64(7), int64(20), "PENDING", created).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
			},
			wantID: 3,
		},
		{
			name: "duplicate pair maps to sentinel",
			req: &domain.ParticipationRequest{
				EventID:     7,
				RequesterID: 20,
				Status:      domain.RequestStatusPending,
				Created:     created,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO participation_requests`).
					WillReturnError(&pq.Error{Code: "23505"})
			},
			wantErr: domain.ErrDuplicateRequest,
		},
		{
			name: "db error",
			req: &domain.ParticipationRequest{
				EventID:     7,
				RequesterID: 20,
				Status:      domain.RequestStatusPending,
				Created:     created,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO participation_requests`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewParticipationRequestRepository(db)
			err = repo.Create(ctx, tt.req)
			if tt.wantErr != nil {
				require.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, tt.req.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestParticipationRequestRepository_ListByIDs(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM participation_requests WHERE id = ANY\(\$1\) ORDER BY id`).
		WillReturnRows(sqlmock.NewRows(requestCols).
			AddRow(int64(1), int64(7), int64(20), "PENDING", created).
			AddRow(int64(2), int64(7), int64(21), "PENDING", created))

	repo := NewParticipationRequestRepository(db)
	got, err := repo.ListByIDs(ctx, []int64{2, 1})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, int64(1), got[0].ID)
	require.Equal(t, domain.RequestStatusPending, got[0].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipationRequestRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE participation_requests SET status = \$1 WHERE id = \$2`).
			WithArgs("CANCELED", int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewParticipationRequestRepository(db)
		require.NoError(t, repo.UpdateStatus(ctx, 3, domain.RequestStatusCanceled))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE participation_requests SET status = \$1 WHERE id = \$2`).
			WithArgs("CANCELED", int64(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewParticipationRequestRepository(db)
		err = repo.UpdateStatus(ctx, 99, domain.RequestStatusCanceled)
		require.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestParticipationRequestRepository_UpdateStatusBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("empty batch is a no-op", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewParticipationRequestRepository(db)
		require.NoError(t, repo.UpdateStatusBatch(ctx, nil, domain.RequestStatusRejected))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE participation_requests SET status = \$1 WHERE id = ANY\(\$2\)`).
			WillReturnResult(sqlmock.NewResult(0, 3))

		repo := NewParticipationRequestRepository(db)
		require.NoError(t, repo.UpdateStatusBatch(ctx, []int64{1, 2, 3}, domain.RequestStatusConfirmed))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestParticipationRequestRepository_CountByEventAndStatus(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM participation_requests WHERE event_id = \$1 AND status = \$2`).
		WithArgs(int64(7), "CONFIRMED").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	repo := NewParticipationRequestRepository(db)
	count, err := repo.CountByEventAndStatus(ctx, 7, domain.RequestStatusConfirmed)
	require.NoError(t, err)
	require.Equal(t, 4, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
