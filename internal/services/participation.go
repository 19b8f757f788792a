package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"explorewithme/internal/clock"
	"explorewithme/internal/domain"
)

type participationService struct {
	txm            domain.TxManager
	eventRepo      domain.EventRepository
	requestRepo    domain.ParticipationRequestRepository
	userRepo       domain.UserRepository
	clk            clock.Clock
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewParticipationService creates a ParticipationService with the given
// dependencies.
func NewParticipationService(
	txm domain.TxManager,
	eventRepo domain.EventRepository,
	requestRepo domain.ParticipationRequestRepository,
	userRepo domain.UserRepository,
	clk clock.Clock,
	logger *slog.Logger,
	timeout time.Duration,
) domain.ParticipationService {
	return &participationService{
		txm:            txm,
		eventRepo:      eventRepo,
		requestRepo:    requestRepo,
		userRepo:       userRepo,
		clk:            clk,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *participationService) CreateRequest(ctx context.Context, requesterID, eventID int64) (*domain.ParticipationRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.userRepo.GetByID(ctx, requesterID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get requester: %w", err)
	}

	var result *domain.ParticipationRequest
	err := s.txm.WithTx(ctx, func(txCtx context.Context) error {
		// The event row lock is the per-event atomic unit: two
		// concurrent admissions for the same event serialize here.
		event, err := s.eventRepo.GetByIDForUpdate(txCtx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("lock event: %w", err)
		}

		if _, err := s.requestRepo.GetByEventAndRequester(txCtx, eventID, requesterID); err == nil {
			// Any existing row blocks a second request, whatever its status.
			return domain.ErrDuplicateRequest
		} else if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("check existing request: %w", err)
		}

		if event.InitiatorID == requesterID {
			return domain.ErrSelfParticipation
		}
		if event.State != domain.EventStatePublished {
			return domain.ErrEventNotPublished
		}
		if event.ParticipantLimit > 0 && event.ConfirmedRequests >= event.ParticipantLimit {
			return domain.ErrCapacityExceeded
		}

		status := domain.RequestStatusPending
		if event.ParticipantLimit == 0 || !event.RequestModeration {
			status = domain.RequestStatusConfirmed
			event.ConfirmedRequests++
			if err := s.eventRepo.Update(txCtx, event); err != nil {
				return fmt.Errorf("update confirmed count: %w", err)
			}
		}

		req := &domain.ParticipationRequest{
			EventID:     eventID,
			RequesterID: requesterID,
			Status:      status,
			Created:     s.clk.Now(),
		}
		if err := s.requestRepo.Create(txCtx, req); err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *participationService) CancelRequest(ctx context.Context, requesterID, requestID int64) (*domain.ParticipationRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get request: %w", err)
	}
	// Ownership mismatch is reported as not-found to avoid leaking the
	// existence of other users' requests.
	if req.RequesterID != requesterID {
		return nil, domain.ErrNotFound
	}

	// Canceling a confirmed request does not free the seat; the counter
	// is untouched.
	if err := s.requestRepo.UpdateStatus(ctx, requestID, domain.RequestStatusCanceled); err != nil {
		return nil, fmt.Errorf("cancel request: %w", err)
	}
	req.Status = domain.RequestStatusCanceled
	return req, nil
}

func (s *participationService) ListByRequester(ctx context.Context, requesterID int64) ([]*domain.ParticipationRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.userRepo.GetByID(ctx, requesterID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get requester: %w", err)
	}
	reqs, err := s.requestRepo.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	if reqs == nil {
		reqs = []*domain.ParticipationRequest{}
	}
	return reqs, nil
}

func (s *participationService) ListForEvent(ctx context.Context, initiatorID, eventID int64) ([]*domain.ParticipationRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.InitiatorID != initiatorID {
		return nil, domain.ErrNotFound
	}
	reqs, err := s.requestRepo.ListByEventExcludingRequester(ctx, eventID, initiatorID)
	if err != nil {
		return nil, fmt.Errorf("list event requests: %w", err)
	}
	if reqs == nil {
		reqs = []*domain.ParticipationRequest{}
	}
	return reqs, nil
}

func (s *participationService) UpdateRequestStatus(ctx context.Context, initiatorID, eventID int64, requestIDs []int64, target domain.ParticipationRequestStatus) (*domain.RequestStatusUpdateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if target != domain.RequestStatusConfirmed && target != domain.RequestStatusRejected {
		return nil, domain.ErrInvalidInput
	}

	result := &domain.RequestStatusUpdateResult{
		ConfirmedRequests: []*domain.ParticipationRequest{},
		RejectedRequests:  []*domain.ParticipationRequest{},
	}
	err := s.txm.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.eventRepo.GetByIDForUpdate(txCtx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("lock event: %w", err)
		}
		if event.InitiatorID != initiatorID {
			return domain.ErrNotFound
		}

		targeted, err := s.requestRepo.ListByIDs(txCtx, requestIDs)
		if err != nil {
			return fmt.Errorf("load requests: %w", err)
		}

		// Validation pass before any mutation: the whole batch is
		// rejected if a single request is not pending.
		for _, req := range targeted {
			if req.EventID != eventID {
				return domain.ErrNotFound
			}
			if req.Status != domain.RequestStatusPending {
				return domain.ErrRequestNotPending
			}
		}

		// Fixed processing order makes the cutoff deterministic.
		sort.Slice(targeted, func(i, j int) bool { return targeted[i].ID < targeted[j].ID })

		if target == domain.RequestStatusRejected {
			return s.rejectAll(txCtx, targeted, result)
		}
		return s.confirmBatch(txCtx, event, targeted, result)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// rejectAll sets every targeted request to REJECTED. No capacity change.
func (s *participationService) rejectAll(ctx context.Context, targeted []*domain.ParticipationRequest, result *domain.RequestStatusUpdateResult) error {
	ids := make([]int64, 0, len(targeted))
	for _, req := range targeted {
		ids = append(ids, req.ID)
	}
	if err := s.requestRepo.UpdateStatusBatch(ctx, ids, domain.RequestStatusRejected); err != nil {
		return fmt.Errorf("reject requests: %w", err)
	}
	for _, req := range targeted {
		req.Status = domain.RequestStatusRejected
		result.RejectedRequests = append(result.RejectedRequests, req)
	}
	return nil
}

// confirmBatch advances targeted pending requests to CONFIRMED while the
// participant limit allows, then rejects the remainder of the batch and
// every other still-pending request for the event. Runs with the event
// row locked.
func (s *participationService) confirmBatch(ctx context.Context, event *domain.Event, targeted []*domain.ParticipationRequest, result *domain.RequestStatusUpdateResult) error {
	// Without a limit or without moderation there is nothing to ration.
	if event.ParticipantLimit == 0 || !event.RequestModeration {
		ids := make([]int64, 0, len(targeted))
		for _, req := range targeted {
			ids = append(ids, req.ID)
		}
		if err := s.requestRepo.UpdateStatusBatch(ctx, ids, domain.RequestStatusConfirmed); err != nil {
			return fmt.Errorf("confirm requests: %w", err)
		}
		for _, req := range targeted {
			req.Status = domain.RequestStatusConfirmed
			result.ConfirmedRequests = append(result.ConfirmedRequests, req)
		}
		event.ConfirmedRequests += len(targeted)
		if err := s.eventRepo.Update(ctx, event); err != nil {
			return fmt.Errorf("update confirmed count: %w", err)
		}
		return nil
	}

	if event.ConfirmedRequests >= event.ParticipantLimit {
		return domain.ErrCapacityExceeded
	}

	var confirmIDs, rejectIDs []int64
	count := event.ConfirmedRequests
	for _, req := range targeted {
		if count < event.ParticipantLimit {
			count++
			req.Status = domain.RequestStatusConfirmed
			confirmIDs = append(confirmIDs, req.ID)
			result.ConfirmedRequests = append(result.ConfirmedRequests, req)
		} else {
			req.Status = domain.RequestStatusRejected
			rejectIDs = append(rejectIDs, req.ID)
			result.RejectedRequests = append(result.RejectedRequests, req)
		}
	}

	// Once the limit is reached, pending requests outside the batch are
	// rejected too: no seat can ever be granted to them.
	if count >= event.ParticipantLimit {
		targetedSet := make(map[int64]struct{}, len(targeted))
		for _, req := range targeted {
			targetedSet[req.ID] = struct{}{}
		}
		pending, err := s.requestRepo.ListPendingByEvent(ctx, event.ID)
		if err != nil {
			return fmt.Errorf("list pending requests: %w", err)
		}
		for _, req := range pending {
			if _, ok := targetedSet[req.ID]; ok {
				continue
			}
			rejectIDs = append(rejectIDs, req.ID)
		}
	}

	if len(confirmIDs) > 0 {
		if err := s.requestRepo.UpdateStatusBatch(ctx, confirmIDs, domain.RequestStatusConfirmed); err != nil {
			return fmt.Errorf("confirm requests: %w", err)
		}
	}
	if len(rejectIDs) > 0 {
		if err := s.requestRepo.UpdateStatusBatch(ctx, rejectIDs, domain.RequestStatusRejected); err != nil {
			return fmt.Errorf("reject requests: %w", err)
		}
	}

	event.ConfirmedRequests = count
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return fmt.Errorf("update confirmed count: %w", err)
	}

	// The denormalized counter is authoritative; the row count is only a
	// consistency probe for drift.
	if rowCount, err := s.requestRepo.CountByEventAndStatus(ctx, event.ID, domain.RequestStatusConfirmed); err == nil {
		if rowCount != event.ConfirmedRequests {
			s.logger.Warn("confirmed counter drift",
				"event_id", event.ID,
				"counter", event.ConfirmedRequests,
				"row_count", rowCount,
			)
		}
	}
	return nil
}
