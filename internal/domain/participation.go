package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for participation request operations.
var (
	ErrDuplicateRequest  = errors.New("request has already been sent")
	ErrSelfParticipation = errors.New("initiator cannot request participation in own event")
	ErrEventNotPublished = errors.New("event is not published")
	ErrCapacityExceeded  = errors.New("participant limit exceeded")
	ErrRequestNotPending = errors.New("request status must be pending")
)

// ParticipationRequestStatus is the status of a participation request.
type ParticipationRequestStatus string

const (
	RequestStatusPending   ParticipationRequestStatus = "PENDING"
	RequestStatusConfirmed ParticipationRequestStatus = "CONFIRMED"
	RequestStatusCanceled  ParticipationRequestStatus = "CANCELED"
	RequestStatusRejected  ParticipationRequestStatus = "REJECTED"
)

// ParseRequestStatus returns the status named by s, or false for an
// unknown name.
func ParseRequestStatus(s string) (ParticipationRequestStatus, bool) {
	switch ParticipationRequestStatus(s) {
	case RequestStatusPending, RequestStatusConfirmed, RequestStatusCanceled, RequestStatusRejected:
		return ParticipationRequestStatus(s), true
	}
	return "", false
}

// ParticipationRequest is one user's bid to attend an event. At most one
// row exists per (event, requester) pair regardless of status; rows are
// never deleted.
// swagger:model ParticipationRequest
type ParticipationRequest struct {
	ID          int64                      `json:"id"`
	EventID     int64                      `json:"event"`
	RequesterID int64                      `json:"requester"`
	Status      ParticipationRequestStatus `json:"status"`
	Created     time.Time                  `json:"created"`
}

// RequestStatusUpdateResult is the partition of a confirmation batch
// into confirmed and rejected requests.
// swagger:model RequestStatusUpdateResult
type RequestStatusUpdateResult struct {
	ConfirmedRequests []*ParticipationRequest `json:"confirmed_requests"`
	RejectedRequests  []*ParticipationRequest `json:"rejected_requests"`
}

// ParticipationRequestRepository defines storage operations for
// participation requests.
type ParticipationRequestRepository interface {
	Create(ctx context.Context, req *ParticipationRequest) error
	GetByID(ctx context.Context, id int64) (*ParticipationRequest, error)
	GetByEventAndRequester(ctx context.Context, eventID, requesterID int64) (*ParticipationRequest, error)
	ListByRequester(ctx context.Context, requesterID int64) ([]*ParticipationRequest, error)
	// ListByEventExcludingRequester returns every request for the event
	// except those made by the given user. Used for the initiator's view.
	ListByEventExcludingRequester(ctx context.Context, eventID, requesterID int64) ([]*ParticipationRequest, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*ParticipationRequest, error)
	ListPendingByEvent(ctx context.Context, eventID int64) ([]*ParticipationRequest, error)
	UpdateStatus(ctx context.Context, id int64, status ParticipationRequestStatus) error
	UpdateStatusBatch(ctx context.Context, ids []int64, status ParticipationRequestStatus) error
	CountByEventAndStatus(ctx context.Context, eventID int64, status ParticipationRequestStatus) (int, error)
}

// ParticipationService defines the admission and confirmation
// operations.
type ParticipationService interface {
	// CreateRequest admits a new participation request for a published
	// event, auto-confirming it when the event has no limit or no
	// moderation.
	CreateRequest(ctx context.Context, requesterID, eventID int64) (*ParticipationRequest, error)
	// CancelRequest cancels the requester's own request. A confirmed
	// seat canceled this way is not reclaimed.
	CancelRequest(ctx context.Context, requesterID, requestID int64) (*ParticipationRequest, error)
	ListByRequester(ctx context.Context, requesterID int64) ([]*ParticipationRequest, error)
	ListForEvent(ctx context.Context, initiatorID, eventID int64) ([]*ParticipationRequest, error)
	// UpdateRequestStatus resolves a batch of pending requests to the
	// target status, enforcing the participant limit.
	UpdateRequestStatus(ctx context.Context, initiatorID, eventID int64, requestIDs []int64, target ParticipationRequestStatus) (*RequestStatusUpdateResult, error)
}
