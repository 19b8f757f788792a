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

// Minimum lead time between "now" and the event date, per update surface.
const (
	initiatorEventDateLead = 2 * time.Hour
	adminEventDateLead     = 1 * time.Hour
)

const statsApp = "explore-with-me"

type eventService struct {
	txm            domain.TxManager
	eventRepo      domain.EventRepository
	categoryRepo   domain.CategoryRepository
	userRepo       domain.UserRepository
	stats          domain.StatsClient
	emails         domain.EmailService
	clk            clock.Clock
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewEventService creates an EventService with the given dependencies.
func NewEventService(
	txm domain.TxManager,
	eventRepo domain.EventRepository,
	categoryRepo domain.CategoryRepository,
	userRepo domain.UserRepository,
	stats domain.StatsClient,
	emails domain.EmailService,
	clk clock.Clock,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		txm:            txm,
		eventRepo:      eventRepo,
		categoryRepo:   categoryRepo,
		userRepo:       userRepo,
		stats:          stats,
		emails:         emails,
		clk:            clk,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, initiatorID int64, draft domain.NewEvent) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.validateEventDate(draft.EventDate, initiatorEventDateLead); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, initiatorID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get initiator: %w", err)
	}
	if _, err := s.categoryRepo.GetByID(ctx, draft.CategoryID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	moderation := true
	if draft.RequestModeration != nil {
		moderation = *draft.RequestModeration
	}
	event := &domain.Event{
		Title:             draft.Title,
		Annotation:        draft.Annotation,
		Description:       draft.Description,
		CategoryID:        draft.CategoryID,
		InitiatorID:       initiatorID,
		Location:          draft.Location,
		Paid:              draft.Paid,
		ParticipantLimit:  draft.ParticipantLimit,
		RequestModeration: moderation,
		ConfirmedRequests: 0,
		State:             domain.EventStatePending,
		EventDate:         draft.EventDate,
		CreatedOn:         s.clk.Now(),
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetInitiatorEvents(ctx context.Context, initiatorID int64, p domain.PaginationParams) ([]*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByInitiator(ctx, initiatorID, p)
	if err != nil {
		return nil, fmt.Errorf("list initiator events: %w", err)
	}
	return s.withViews(ctx, events), nil
}

func (s *eventService) GetInitiatorEvent(ctx context.Context, initiatorID, eventID int64) (*domain.EventView, error) {
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
	return domain.NewEventView(event, s.viewsFor(ctx, event.ID)), nil
}

func (s *eventService) UpdateByInitiator(ctx context.Context, initiatorID, eventID int64, patch domain.EventPatch) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var updated *domain.Event
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
		if event.State != domain.EventStatePending && event.State != domain.EventStateCanceled {
			return domain.ErrInvalidStateForEdit
		}
		if patch.EventDate != nil {
			if err := s.validateEventDate(*patch.EventDate, initiatorEventDateLead); err != nil {
				return err
			}
		}
		if err := s.applyFieldPatch(txCtx, event, patch); err != nil {
			return err
		}

		// Any initiator edit returns the event to review; only an
		// explicit cancel action parks it in CANCELED.
		if patch.StateAction == domain.ActionCancelReview {
			event.State = domain.EventStateCanceled
		} else {
			event.State = domain.EventStatePending
		}

		if err := s.eventRepo.Update(txCtx, event); err != nil {
			return fmt.Errorf("update event: %w", err)
		}
		updated = event
		return nil
	})
	if err != nil {
		return nil, err
	}
	return domain.NewEventView(updated, 0), nil
}

func (s *eventService) UpdateByAdmin(ctx context.Context, eventID int64, patch domain.EventPatch) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var updated *domain.Event
	err := s.txm.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.eventRepo.GetByIDForUpdate(txCtx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("lock event: %w", err)
		}

		// The date rule is evaluated before the state transition.
		if patch.EventDate != nil {
			if err := s.validateEventDate(*patch.EventDate, adminEventDateLead); err != nil {
				return err
			}
		}

		switch patch.StateAction {
		case domain.ActionPublishEvent:
			if event.State == domain.EventStatePublished {
				return domain.ErrAlreadyPublished
			}
			if event.State != domain.EventStatePending {
				return domain.ErrInvalidStateForPublish
			}
			now := s.clk.Now()
			event.State = domain.EventStatePublished
			event.PublishedOn = &now
		case domain.ActionRejectEvent:
			if event.State == domain.EventStatePublished {
				return domain.ErrAlreadyPublished
			}
			event.State = domain.EventStateCanceled
		case "":
			// Field-only update.
		default:
			return domain.ErrInvalidInput
		}

		if err := s.applyFieldPatch(txCtx, event, patch); err != nil {
			return err
		}
		if err := s.eventRepo.Update(txCtx, event); err != nil {
			return fmt.Errorf("update event: %w", err)
		}
		updated = event
		return nil
	})
	if err != nil {
		return nil, err
	}

	if patch.StateAction == domain.ActionPublishEvent || patch.StateAction == domain.ActionRejectEvent {
		s.notifyInitiator(ctx, updated)
	}
	return domain.NewEventView(updated, 0), nil
}

func (s *eventService) AdminSearch(ctx context.Context, f domain.AdminEventFilter, p domain.PaginationParams) ([]*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if f.RangeStart == nil {
		now := s.clk.Now()
		f.RangeStart = &now
	}
	events, err := s.eventRepo.AdminSearch(ctx, f, p)
	if err != nil {
		return nil, fmt.Errorf("admin event search: %w", err)
	}
	return s.withViews(ctx, events), nil
}

func (s *eventService) PublicSearch(ctx context.Context, f domain.PublicEventFilter, p domain.PaginationParams, clientIP string) ([]*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if f.RangeStart == nil && f.RangeEnd == nil {
		now := s.clk.Now()
		f.RangeStart = &now
	}
	events, err := s.eventRepo.PublicSearch(ctx, f, p)
	if err != nil {
		return nil, fmt.Errorf("public event search: %w", err)
	}

	s.recordHit(ctx, "/events", clientIP)

	views := s.withViews(ctx, events)
	if f.Sort == domain.SortByViews {
		sort.SliceStable(views, func(i, j int) bool { return views[i].Views > views[j].Views })
	}
	return views, nil
}

func (s *eventService) GetPublishedEvent(ctx context.Context, eventID int64, clientIP string) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	// The public surface only knows published events.
	if event.State != domain.EventStatePublished {
		return nil, domain.ErrNotFound
	}

	uri := fmt.Sprintf("/events/%d", event.ID)
	s.recordHit(ctx, uri, clientIP)
	return domain.NewEventView(event, s.viewsFor(ctx, event.ID)), nil
}

// applyFieldPatch applies the non-state fields of the patch. The caller
// is responsible for state preconditions.
func (s *eventService) applyFieldPatch(ctx context.Context, event *domain.Event, patch domain.EventPatch) error {
	if patch.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *patch.CategoryID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get category: %w", err)
		}
		event.CategoryID = *patch.CategoryID
	}
	if patch.Title != nil {
		event.Title = *patch.Title
	}
	if patch.Annotation != nil {
		event.Annotation = *patch.Annotation
	}
	if patch.Description != nil {
		event.Description = *patch.Description
	}
	if patch.Location != nil {
		event.Location = *patch.Location
	}
	if patch.Paid != nil {
		event.Paid = *patch.Paid
	}
	if patch.ParticipantLimit != nil {
		event.ParticipantLimit = *patch.ParticipantLimit
	}
	if patch.RequestModeration != nil {
		event.RequestModeration = *patch.RequestModeration
	}
	if patch.EventDate != nil {
		event.EventDate = *patch.EventDate
	}
	return nil
}

func (s *eventService) validateEventDate(date time.Time, lead time.Duration) error {
	if date.Before(s.clk.Now().Add(lead)) {
		return domain.ErrInvalidEventDate
	}
	return nil
}

// recordHit reports a view to the stats service. Failures are logged and
// swallowed: hit counting never breaks a read.
func (s *eventService) recordHit(ctx context.Context, uri, clientIP string) {
	hit := domain.EndpointHit{
		App:       statsApp,
		URI:       uri,
		IP:        clientIP,
		Timestamp: s.clk.Now(),
	}
	if err := s.stats.RecordHit(ctx, hit); err != nil {
		s.logger.Warn("record hit failed", "uri", uri, "err", err)
	}
}

// withViews decorates events with their view counts in one stats query.
// On stats failure every view count is zero.
func (s *eventService) withViews(ctx context.Context, events []*domain.Event) []*domain.EventView {
	result := make([]*domain.EventView, 0, len(events))
	if len(events) == 0 {
		return result
	}

	uris := make([]string, 0, len(events))
	for _, e := range events {
		uris = append(uris, fmt.Sprintf("/events/%d", e.ID))
	}
	byURI := make(map[string]int64)
	stats, err := s.stats.GetStats(ctx, time.Unix(0, 0).UTC(), s.clk.Now(), uris, true)
	if err != nil {
		s.logger.Warn("get stats failed", "err", err)
	} else {
		for _, st := range stats {
			byURI[st.URI] = st.Hits
		}
	}
	for _, e := range events {
		result = append(result, domain.NewEventView(e, byURI[fmt.Sprintf("/events/%d", e.ID)]))
	}
	return result
}

func (s *eventService) viewsFor(ctx context.Context, eventID int64) int64 {
	uri := fmt.Sprintf("/events/%d", eventID)
	stats, err := s.stats.GetStats(ctx, time.Unix(0, 0).UTC(), s.clk.Now(), []string{uri}, true)
	if err != nil {
		s.logger.Warn("get stats failed", "uri", uri, "err", err)
		return 0
	}
	for _, st := range stats {
		if st.URI == uri {
			return st.Hits
		}
	}
	return 0
}

// notifyInitiator emails the moderation outcome to the event owner.
// Best-effort: a mail failure never fails the admin decision.
func (s *eventService) notifyInitiator(ctx context.Context, event *domain.Event) {
	initiator, err := s.userRepo.GetByID(ctx, event.InitiatorID)
	if err != nil {
		s.logger.Warn("lookup initiator for notification failed", "event_id", event.ID, "err", err)
		return
	}
	data := &domain.ModerationOutcomeEmailData{
		Email:      initiator.Email,
		EventTitle: event.Title,
		Published:  event.State == domain.EventStatePublished,
	}
	if err := s.emails.SendModerationOutcome(ctx, data); err != nil {
		s.logger.Warn("moderation outcome email failed", "event_id", event.ID, "err", err)
	}
}
