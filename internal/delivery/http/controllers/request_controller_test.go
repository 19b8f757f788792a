package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"explorewithme/internal/delivery/http/helpers"
	"explorewithme/internal/domain"
)

type mockParticipationService struct {
	createFn       func(ctx context.Context, requesterID, eventID int64) (*domain.ParticipationRequest, error)
	cancelFn       func(ctx context.Context, requesterID, requestID int64) (*domain.ParticipationRequest, error)
	listFn         func(ctx context.Context, requesterID int64) ([]*domain.ParticipationRequest, error)
	listForEventFn func(ctx context.Context, initiatorID, eventID int64) ([]*domain.ParticipationRequest, error)
	updateFn       func(ctx context.Context, initiatorID, eventID int64, requestIDs []int64, target domain.ParticipationRequestStatus) (*domain.RequestStatusUpdateResult, error)
}

func (m *mockParticipationService) CreateRequest(ctx context.Context, requesterID, eventID int64) (*domain.ParticipationRequest, error) {
	return m.createFn(ctx, requesterID, eventID)
}

func (m *mockParticipationService) CancelRequest(ctx context.Context, requesterID, requestID int64) (*domain.ParticipationRequest, error) {
	return m.cancelFn(ctx, requesterID, requestID)
}

func (m *mockParticipationService) ListByRequester(ctx context.Context, requesterID int64) ([]*domain.ParticipationRequest, error) {
	return m.listFn(ctx, requesterID)
}

func (m *mockParticipationService) ListForEvent(ctx context.Context, initiatorID, eventID int64) ([]*domain.ParticipationRequest, error) {
	return m.listForEventFn(ctx, initiatorID, eventID)
}

func (m *mockParticipationService) UpdateRequestStatus(ctx context.Context, initiatorID, eventID int64, requestIDs []int64, target domain.ParticipationRequestStatus) (*domain.RequestStatusUpdateResult, error) {
	return m.updateFn(ctx, initiatorID, eventID, requestIDs, target)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeEnvelope(t *testing.T, body io.Reader) (json.RawMessage, *helpers.APIError) {
	t.Helper()
	var envelope struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return envelope.Data, envelope.Error
}

func TestRequestController_Create(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		userID     string
		eventID    string
		svc        *mockParticipationService
		wantStatus int
		wantCode   string
	}{
		{
			name:    "created",
			userID:  "20",
			eventID: "7",
			svc: &mockParticipationService{
				createFn: func(ctx context.Context, requesterID, eventID int64) (*domain.ParticipationRequest, error) {
					if requesterID != 20 || eventID != 7 {
						t.Errorf("unexpected args: %d %d", requesterID, eventID)
					}
					return &domain.ParticipationRequest{ID: 1, EventID: 7, RequesterID: 20, Status: domain.RequestStatusPending, Created: created}, nil
				},
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:    "duplicate is a conflict",
			userID:  "20",
			eventID: "7",
			svc: &mockParticipationService{
				createFn: func(ctx context.Context, requesterID, eventID int64) (*domain.ParticipationRequest, error) {
					return nil, domain.ErrDuplicateRequest
				},
			},
			wantStatus: http.StatusConflict,
			wantCode:   helpers.ErrCodeConflict,
		},
		{
			name:    "capacity exceeded is a conflict",
			userID:  "20",
			eventID: "7",
			svc: &mockParticipationService{
				createFn: func(ctx context.Context, requesterID, eventID int64) (*domain.ParticipationRequest, error) {
					return nil, domain.ErrCapacityExceeded
				},
			},
			wantStatus: http.StatusConflict,
			wantCode:   helpers.ErrCodeConflict,
		},
		{
			name:    "unknown event is not found",
			userID:  "20",
			eventID: "99",
			svc: &mockParticipationService{
				createFn: func(ctx context.Context, requesterID, eventID int64) (*domain.ParticipationRequest, error) {
					return nil, domain.ErrNotFound
				},
			},
			wantStatus: http.StatusNotFound,
			wantCode:   helpers.ErrCodeNotFound,
		},
		{
			name:       "missing eventId",
			userID:     "20",
			eventID:    "",
			svc:        &mockParticipationService{},
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewRequestController(testLogger(), tt.svc)
			url := "http://test/users/" + tt.userID + "/requests"
			if tt.eventID != "" {
				url += "?eventId=" + tt.eventID
			}
			req := httptest.NewRequest(http.MethodPost, url, nil)
			req.SetPathValue("userId", tt.userID)
			rr := httptest.NewRecorder()

			ctrl.Create(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
			_, apiErr := decodeEnvelope(t, rr.Body)
			if tt.wantCode == "" {
				if apiErr != nil {
					t.Fatalf("unexpected error: %+v", apiErr)
				}
				return
			}
			if apiErr == nil || apiErr.Code != tt.wantCode {
				t.Fatalf("expected error code %q, got %+v", tt.wantCode, apiErr)
			}
		})
	}
}

func TestRequestController_UpdateStatus(t *testing.T) {
	t.Run("partition is returned", func(t *testing.T) {
		svc := &mockParticipationService{
			updateFn: func(ctx context.Context, initiatorID, eventID int64, requestIDs []int64, target domain.ParticipationRequestStatus) (*domain.RequestStatusUpdateResult, error) {
				if target != domain.RequestStatusConfirmed {
					t.Errorf("expected CONFIRMED, got %s", target)
				}
				return &domain.RequestStatusUpdateResult{
					ConfirmedRequests: []*domain.ParticipationRequest{{ID: 1, Status: domain.RequestStatusConfirmed}},
					RejectedRequests:  []*domain.ParticipationRequest{{ID: 2, Status: domain.RequestStatusRejected}},
				}, nil
			},
		}
		ctrl := NewRequestController(testLogger(), svc)
		body := strings.NewReader(`{"requestIds":[1,2],"status":"CONFIRMED"}`)
		req := httptest.NewRequest(http.MethodPatch, "http://test/users/10/events/7/requests", body)
		req.SetPathValue("userId", "10")
		req.SetPathValue("eventId", "7")
		rr := httptest.NewRecorder()

		ctrl.UpdateStatus(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		data, _ := decodeEnvelope(t, rr.Body)
		var result domain.RequestStatusUpdateResult
		if err := json.Unmarshal(data, &result); err != nil {
			t.Fatalf("decode result: %v", err)
		}
		if len(result.ConfirmedRequests) != 1 || len(result.RejectedRequests) != 1 {
			t.Fatalf("unexpected partition: %+v", result)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		ctrl := NewRequestController(testLogger(), &mockParticipationService{})
		body := strings.NewReader(`{"requestIds":[1],"status":"MAYBE"}`)
		req := httptest.NewRequest(http.MethodPatch, "http://test/users/10/events/7/requests", body)
		req.SetPathValue("userId", "10")
		req.SetPathValue("eventId", "7")
		rr := httptest.NewRecorder()

		ctrl.UpdateStatus(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("non-pending request in batch is a conflict", func(t *testing.T) {
		svc := &mockParticipationService{
			updateFn: func(ctx context.Context, initiatorID, eventID int64, requestIDs []int64, target domain.ParticipationRequestStatus) (*domain.RequestStatusUpdateResult, error) {
				return nil, domain.ErrRequestNotPending
			},
		}
		ctrl := NewRequestController(testLogger(), svc)
		body := strings.NewReader(`{"requestIds":[1],"status":"REJECTED"}`)
		req := httptest.NewRequest(http.MethodPatch, "http://test/users/10/events/7/requests", body)
		req.SetPathValue("userId", "10")
		req.SetPathValue("eventId", "7")
		rr := httptest.NewRecorder()

		ctrl.UpdateStatus(rr, req)

		if rr.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rr.Code)
		}
	})
}

func TestRequestController_Cancel(t *testing.T) {
	svc := &mockParticipationService{
		cancelFn: func(ctx context.Context, requesterID, requestID int64) (*domain.ParticipationRequest, error) {
			return &domain.ParticipationRequest{ID: requestID, RequesterID: requesterID, Status: domain.RequestStatusCanceled}, nil
		},
	}
	ctrl := NewRequestController(testLogger(), svc)
	req := httptest.NewRequest(http.MethodPatch, "http://test/users/20/requests/3/cancel", nil)
	req.SetPathValue("userId", "20")
	req.SetPathValue("requestId", "3")
	rr := httptest.NewRecorder()

	ctrl.Cancel(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	data, _ := decodeEnvelope(t, rr.Body)
	var out domain.ParticipationRequest
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if out.Status != domain.RequestStatusCanceled {
		t.Fatalf("expected CANCELED, got %s", out.Status)
	}
}
