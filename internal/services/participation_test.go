package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"explorewithme/internal/clock"
	"explorewithme/internal/domain"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestParticipationService(eventRepo *memEventRepo, requestRepo *memRequestRepo, userRepo *memUserRepo) domain.ParticipationService {
	return NewParticipationService(
		&fakeTxManager{},
		eventRepo,
		requestRepo,
		userRepo,
		clock.NewFixed(testNow),
		discardLogger(),
		5*time.Second,
	)
}

func publishedEvent(id, initiatorID int64, limit int, moderation bool) *domain.Event {
	return &domain.Event{
		ID:                id,
		Title:             "meetup",
		InitiatorID:       initiatorID,
		ParticipantLimit:  limit,
		RequestModeration: moderation,
		State:             domain.EventStatePublished,
		EventDate:         testNow.Add(48 * time.Hour),
		CreatedOn:         testNow.Add(-time.Hour),
	}
}

func TestCreateRequest_Validation(t *testing.T) {
	tests := []struct {
		name        string
		event       *domain.Event
		existing    []*domain.ParticipationRequest
		requesterID int64
		wantErr     error
	}{
		{
			name:        "self participation",
			event:       publishedEvent(1, 10, 0, false),
			requesterID: 10,
			wantErr:     domain.ErrSelfParticipation,
		},
		{
			name: "pending event",
			event: &domain.Event{
				ID: 1, InitiatorID: 10, State: domain.EventStatePending,
			},
			requesterID: 20,
			wantErr:     domain.ErrEventNotPublished,
		},
		{
			name: "canceled event",
			event: &domain.Event{
				ID: 1, InitiatorID: 10, State: domain.EventStateCanceled,
			},
			requesterID: 20,
			wantErr:     domain.ErrEventNotPublished,
		},
		{
			name: "capacity reached",
			event: func() *domain.Event {
				e := publishedEvent(1, 10, 2, true)
				e.ConfirmedRequests = 2
				return e
			}(),
			requesterID: 20,
			wantErr:     domain.ErrCapacityExceeded,
		},
		{
			name:  "duplicate request regardless of status",
			event: publishedEvent(1, 10, 0, false),
			existing: []*domain.ParticipationRequest{
				{ID: 1, EventID: 1, RequesterID: 20, Status: domain.RequestStatusCanceled},
			},
			requesterID: 20,
			wantErr:     domain.ErrDuplicateRequest,
		},
		{
			name:        "unknown event",
			event:       publishedEvent(99, 10, 0, false),
			requesterID: 20,
			wantErr:     domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestParticipationService(
				newMemEventRepo(tt.event),
				newMemRequestRepo(tt.existing...),
				newMemUserRepo(10, 20),
			)
			_, err := svc.CreateRequest(context.Background(), tt.requesterID, 1)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateRequest_ModerationDecidesInitialStatus(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		moderation bool
		wantStatus domain.ParticipationRequestStatus
		wantCount  int
	}{
		{"no limit no moderation", 0, false, domain.RequestStatusConfirmed, 1},
		{"no limit with moderation", 0, true, domain.RequestStatusConfirmed, 1},
		{"limit without moderation", 5, false, domain.RequestStatusConfirmed, 1},
		{"limit with moderation", 5, true, domain.RequestStatusPending, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eventRepo := newMemEventRepo(publishedEvent(1, 10, tt.limit, tt.moderation))
			svc := newTestParticipationService(eventRepo, newMemRequestRepo(), newMemUserRepo(10, 20))

			req, err := svc.CreateRequest(context.Background(), 20, 1)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.Status != tt.wantStatus {
				t.Fatalf("expected status %s, got %s", tt.wantStatus, req.Status)
			}
			if !req.Created.Equal(testNow) {
				t.Fatalf("expected created %v, got %v", testNow, req.Created)
			}
			event, _ := eventRepo.GetByID(context.Background(), 1)
			if event.ConfirmedRequests != tt.wantCount {
				t.Fatalf("expected confirmed count %d, got %d", tt.wantCount, event.ConfirmedRequests)
			}
		})
	}
}

func TestCreateRequest_ConcurrentAdmissionsRespectLimit(t *testing.T) {
	const limit = 5
	const attempts = 20

	eventRepo := newMemEventRepo(publishedEvent(1, 10, limit, false))
	userIDs := make([]int64, attempts)
	for i := range userIDs {
		userIDs[i] = int64(100 + i)
	}
	userRepo := newMemUserRepo(append(userIDs, 10)...)
	svc := newTestParticipationService(eventRepo, newMemRequestRepo(), userRepo)

	var wg sync.WaitGroup
	errCh := make(chan error, attempts)
	for _, uid := range userIDs {
		wg.Add(1)
		go func(uid int64) {
			defer wg.Done()
			_, err := svc.CreateRequest(context.Background(), uid, 1)
			errCh <- err
		}(uid)
	}
	wg.Wait()
	close(errCh)

	admitted, full := 0, 0
	for err := range errCh {
		switch {
		case err == nil:
			admitted++
		case errors.Is(err, domain.ErrCapacityExceeded):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if admitted != limit || full != attempts-limit {
		t.Fatalf("expected %d admitted and %d rejected, got %d/%d", limit, attempts-limit, admitted, full)
	}
	event, _ := eventRepo.GetByID(context.Background(), 1)
	if event.ConfirmedRequests != limit {
		t.Fatalf("confirmed count overshoot: %d > %d", event.ConfirmedRequests, limit)
	}
}

func TestCancelRequest(t *testing.T) {
	eventRepo := newMemEventRepo(publishedEvent(1, 10, 2, true))
	requestRepo := newMemRequestRepo(
		&domain.ParticipationRequest{ID: 1, EventID: 1, RequesterID: 20, Status: domain.RequestStatusConfirmed},
	)
	svc := newTestParticipationService(eventRepo, requestRepo, newMemUserRepo(10, 20, 30))

	t.Run("foreign request reported as not found", func(t *testing.T) {
		_, err := svc.CancelRequest(context.Background(), 30, 1)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("cancel does not free the seat", func(t *testing.T) {
		before, _ := eventRepo.GetByID(context.Background(), 1)
		req, err := svc.CancelRequest(context.Background(), 20, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if req.Status != domain.RequestStatusCanceled {
			t.Fatalf("expected CANCELED, got %s", req.Status)
		}
		after, _ := eventRepo.GetByID(context.Background(), 1)
		if after.ConfirmedRequests != before.ConfirmedRequests {
			t.Fatalf("confirmed count changed %d -> %d", before.ConfirmedRequests, after.ConfirmedRequests)
		}
	})
}

func TestUpdateRequestStatus_CapacityCutoff(t *testing.T) {
	event := publishedEvent(1, 10, 2, true)
	eventRepo := newMemEventRepo(event)
	requestRepo := newMemRequestRepo(
		&domain.ParticipationRequest{ID: 1, EventID: 1, RequesterID: 21, Status: domain.RequestStatusPending},
		&domain.ParticipationRequest{ID: 2, EventID: 1, RequesterID: 22, Status: domain.RequestStatusPending},
		&domain.ParticipationRequest{ID: 3, EventID: 1, RequesterID: 23, Status: domain.RequestStatusPending},
		// Outside the batch; must be rejected once the limit is hit.
		&domain.ParticipationRequest{ID: 4, EventID: 1, RequesterID: 24, Status: domain.RequestStatusPending},
	)
	svc := newTestParticipationService(eventRepo, requestRepo, newMemUserRepo(10))

	// Ids deliberately passed out of order: processing is ascending.
	result, err := svc.UpdateRequestStatus(context.Background(), 10, 1, []int64{3, 1, 2}, domain.RequestStatusConfirmed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.ConfirmedRequests) != 2 || len(result.RejectedRequests) != 1 {
		t.Fatalf("expected 2 confirmed / 1 rejected, got %d/%d",
			len(result.ConfirmedRequests), len(result.RejectedRequests))
	}
	if result.ConfirmedRequests[0].ID != 1 || result.ConfirmedRequests[1].ID != 2 {
		t.Fatalf("expected requests 1 and 2 confirmed, got %d and %d",
			result.ConfirmedRequests[0].ID, result.ConfirmedRequests[1].ID)
	}
	if result.RejectedRequests[0].ID != 3 {
		t.Fatalf("expected request 3 rejected, got %d", result.RejectedRequests[0].ID)
	}

	updated, _ := eventRepo.GetByID(context.Background(), 1)
	if updated.ConfirmedRequests != 2 {
		t.Fatalf("expected confirmed count 2, got %d", updated.ConfirmedRequests)
	}
	if got := requestRepo.statusOf(4); got != domain.RequestStatusRejected {
		t.Fatalf("expected untargeted pending request rejected, got %s", got)
	}
}

func TestUpdateRequestStatus_Preconditions(t *testing.T) {
	tests := []struct {
		name        string
		initiatorID int64
		requestIDs  []int64
		target      domain.ParticipationRequestStatus
		confirmed   int
		wantErr     error
	}{
		{
			name:        "caller is not the initiator",
			initiatorID: 99,
			requestIDs:  []int64{1},
			target:      domain.RequestStatusConfirmed,
			wantErr:     domain.ErrNotFound,
		},
		{
			name:        "invalid target status",
			initiatorID: 10,
			requestIDs:  []int64{1},
			target:      domain.RequestStatusPending,
			wantErr:     domain.ErrInvalidInput,
		},
		{
			name:        "non-pending request aborts the whole batch",
			initiatorID: 10,
			requestIDs:  []int64{1, 2},
			target:      domain.RequestStatusConfirmed,
			wantErr:     domain.ErrRequestNotPending,
		},
		{
			name:        "counter already at limit",
			initiatorID: 10,
			requestIDs:  []int64{1},
			target:      domain.RequestStatusConfirmed,
			confirmed:   2,
			wantErr:     domain.ErrCapacityExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := publishedEvent(1, 10, 2, true)
			event.ConfirmedRequests = tt.confirmed
			requestRepo := newMemRequestRepo(
				&domain.ParticipationRequest{ID: 1, EventID: 1, RequesterID: 21, Status: domain.RequestStatusPending},
				&domain.ParticipationRequest{ID: 2, EventID: 1, RequesterID: 22, Status: domain.RequestStatusCanceled},
			)
			svc := newTestParticipationService(newMemEventRepo(event), requestRepo, newMemUserRepo(10))

			_, err := svc.UpdateRequestStatus(context.Background(), tt.initiatorID, 1, tt.requestIDs, tt.target)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			// Validation failures must not leak partial updates.
			if got := requestRepo.statusOf(1); got != domain.RequestStatusPending {
				t.Fatalf("request 1 mutated to %s", got)
			}
		})
	}
}

func TestUpdateRequestStatus_RejectBatch(t *testing.T) {
	eventRepo := newMemEventRepo(publishedEvent(1, 10, 2, true))
	requestRepo := newMemRequestRepo(
		&domain.ParticipationRequest{ID: 1, EventID: 1, RequesterID: 21, Status: domain.RequestStatusPending},
		&domain.ParticipationRequest{ID: 2, EventID: 1, RequesterID: 22, Status: domain.RequestStatusPending},
	)
	svc := newTestParticipationService(eventRepo, requestRepo, newMemUserRepo(10))

	result, err := svc.UpdateRequestStatus(context.Background(), 10, 1, []int64{1, 2}, domain.RequestStatusRejected)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.ConfirmedRequests) != 0 || len(result.RejectedRequests) != 2 {
		t.Fatalf("expected 0 confirmed / 2 rejected, got %d/%d",
			len(result.ConfirmedRequests), len(result.RejectedRequests))
	}
	event, _ := eventRepo.GetByID(context.Background(), 1)
	if event.ConfirmedRequests != 0 {
		t.Fatalf("rejection must not change the counter, got %d", event.ConfirmedRequests)
	}
}

func TestUpdateRequestStatus_NoModerationConfirmsAll(t *testing.T) {
	eventRepo := newMemEventRepo(publishedEvent(1, 10, 2, false))
	requestRepo := newMemRequestRepo(
		&domain.ParticipationRequest{ID: 1, EventID: 1, RequesterID: 21, Status: domain.RequestStatusPending},
		&domain.ParticipationRequest{ID: 2, EventID: 1, RequesterID: 22, Status: domain.RequestStatusPending},
		&domain.ParticipationRequest{ID: 3, EventID: 1, RequesterID: 23, Status: domain.RequestStatusPending},
	)
	svc := newTestParticipationService(eventRepo, requestRepo, newMemUserRepo(10))

	result, err := svc.UpdateRequestStatus(context.Background(), 10, 1, []int64{1, 2, 3}, domain.RequestStatusConfirmed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.ConfirmedRequests) != 3 {
		t.Fatalf("expected 3 confirmed, got %d", len(result.ConfirmedRequests))
	}
	event, _ := eventRepo.GetByID(context.Background(), 1)
	if event.ConfirmedRequests != 3 {
		t.Fatalf("expected counter 3, got %d", event.ConfirmedRequests)
	}
}

func TestUpdateRequestStatus_ConcurrentBatchesRespectLimit(t *testing.T) {
	const limit = 3
	event := publishedEvent(1, 10, limit, true)
	var reqs []*domain.ParticipationRequest
	var ids []int64
	for i := int64(1); i <= 10; i++ {
		reqs = append(reqs, &domain.ParticipationRequest{
			ID: i, EventID: 1, RequesterID: 100 + i, Status: domain.RequestStatusPending,
		})
		ids = append(ids, i)
	}
	eventRepo := newMemEventRepo(event)
	requestRepo := newMemRequestRepo(reqs...)
	svc := newTestParticipationService(eventRepo, requestRepo, newMemUserRepo(10))

	// Overlapping batches racing on the same event: the serialized
	// atomic unit must keep the counter at or below the limit.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(batch []int64) {
			defer wg.Done()
			_, _ = svc.UpdateRequestStatus(context.Background(), 10, 1, batch, domain.RequestStatusConfirmed)
		}(ids[i : i+4])
	}
	wg.Wait()

	updated, _ := eventRepo.GetByID(context.Background(), 1)
	if updated.ConfirmedRequests > limit {
		t.Fatalf("counter overshoot: %d > %d", updated.ConfirmedRequests, limit)
	}
	confirmedRows, _ := requestRepo.CountByEventAndStatus(context.Background(), 1, domain.RequestStatusConfirmed)
	if confirmedRows != updated.ConfirmedRequests {
		t.Fatalf("counter %d does not match confirmed rows %d", updated.ConfirmedRequests, confirmedRows)
	}
}

func TestListForEvent_HidesForeignEvents(t *testing.T) {
	eventRepo := newMemEventRepo(publishedEvent(1, 10, 0, false))
	requestRepo := newMemRequestRepo(
		&domain.ParticipationRequest{ID: 1, EventID: 1, RequesterID: 20, Status: domain.RequestStatusConfirmed},
	)
	svc := newTestParticipationService(eventRepo, requestRepo, newMemUserRepo(10, 20))

	if _, err := svc.ListForEvent(context.Background(), 20, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-initiator, got %v", err)
	}
	reqs, err := svc.ListForEvent(context.Background(), 10, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
}

func TestCreateRequest_SequentialFillThenReject(t *testing.T) {
	// Fill an unmoderated two-seat event, then verify the third and
	// fourth attempts fail deterministically.
	eventRepo := newMemEventRepo(publishedEvent(1, 10, 2, false))
	svc := newTestParticipationService(eventRepo, newMemRequestRepo(), newMemUserRepo(10, 21, 22, 23, 24))

	for _, uid := range []int64{21, 22} {
		if _, err := svc.CreateRequest(context.Background(), uid, 1); err != nil {
			t.Fatalf("seat for user %d: %v", uid, err)
		}
	}
	for _, uid := range []int64{23, 24} {
		_, err := svc.CreateRequest(context.Background(), uid, 1)
		if !errors.Is(err, domain.ErrCapacityExceeded) {
			t.Fatalf("expected ErrCapacityExceeded for user %d, got %v", uid, err)
		}
	}
	event, _ := eventRepo.GetByID(context.Background(), 1)
	if event.ConfirmedRequests != 2 {
		t.Fatalf("expected counter 2, got %d", event.ConfirmedRequests)
	}
}
