package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for event lifecycle operations.
var (
	ErrInvalidStateForEdit    = errors.New("only pending or canceled events can be changed")
	ErrInvalidStateForPublish = errors.New("only pending events can be published")
	ErrAlreadyPublished       = errors.New("event is already published")
	ErrInvalidEventDate       = errors.New("event date is too soon")
)

// EventState is the lifecycle state of an event. PUBLISHED and CANCELED
// are terminal.
type EventState string

const (
	EventStatePending   EventState = "PENDING"
	EventStatePublished EventState = "PUBLISHED"
	EventStateCanceled  EventState = "CANCELED"
)

// ParseEventState returns the EventState for s, or false if s does not
// name a known state.
func ParseEventState(s string) (EventState, bool) {
	switch EventState(s) {
	case EventStatePending, EventStatePublished, EventStateCanceled:
		return EventState(s), true
	}
	return "", false
}

// EventStateAction is a requested state transition carried in an update
// patch. Initiators may send review actions; admins may send decision
// actions.
type EventStateAction string

const (
	ActionSendToReview EventStateAction = "SEND_TO_REVIEW"
	ActionCancelReview EventStateAction = "CANCEL_REVIEW"
	ActionPublishEvent EventStateAction = "PUBLISH_EVENT"
	ActionRejectEvent  EventStateAction = "REJECT_EVENT"
)

// ParseInitiatorAction validates a state action allowed on the initiator
// update surface.
func ParseInitiatorAction(s string) (EventStateAction, bool) {
	switch EventStateAction(s) {
	case ActionSendToReview, ActionCancelReview:
		return EventStateAction(s), true
	}
	return "", false
}

// ParseAdminAction validates a state action allowed on the admin update
// surface.
func ParseAdminAction(s string) (EventStateAction, bool) {
	switch EventStateAction(s) {
	case ActionPublishEvent, ActionRejectEvent:
		return EventStateAction(s), true
	}
	return "", false
}

// Location is a latitude/longitude pair stored with the event.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Event represents a capacity-limited activity with a publish/cancel
// lifecycle. ConfirmedRequests is the denormalized count of CONFIRMED
// participation requests and is the single source of truth for capacity
// checks; it is only ever changed inside a per-event transaction.
// swagger:model Event
type Event struct {
	ID                int64      `json:"id"`
	Title             string     `json:"title"`
	Annotation        string     `json:"annotation"`
	Description       string     `json:"description"`
	CategoryID        int64      `json:"category"`
	InitiatorID       int64      `json:"initiator"`
	Location          Location   `json:"location"`
	Paid              bool       `json:"paid"`
	ParticipantLimit  int        `json:"participant_limit"`
	RequestModeration bool       `json:"request_moderation"`
	ConfirmedRequests int        `json:"confirmed_requests"`
	State             EventState `json:"state"`
	EventDate         time.Time  `json:"event_date"`
	CreatedOn         time.Time  `json:"created_on"`
	PublishedOn       *time.Time `json:"published_on,omitempty"`
}

// NewEvent is the payload for creating an event. The id, state, and
// counters are assigned by the service.
type NewEvent struct {
	Title             string
	Annotation        string
	Description       string
	CategoryID        int64
	Location          Location
	Paid              bool
	ParticipantLimit  int
	RequestModeration *bool
	EventDate         time.Time
}

// EventPatch is a partial update for an event. Only non-nil fields are
// applied. StateAction is empty when no transition is requested.
type EventPatch struct {
	Title             *string
	Annotation        *string
	Description       *string
	CategoryID        *int64
	Location          *Location
	Paid              *bool
	ParticipantLimit  *int
	RequestModeration *bool
	EventDate         *time.Time
	StateAction       EventStateAction
}

// EventView is an event read model enriched with the hit count from the
// stats service. Views is populated best-effort and never feeds
// admission decisions.
// swagger:model EventView
type EventView struct {
	Event *Event `json:"event"`
	Views int64  `json:"views"`
}

// NewEventView bundles an event with its view count.
func NewEventView(e *Event, views int64) *EventView {
	return &EventView{Event: e, Views: views}
}

// AdminEventFilter narrows the admin event search. Nil or empty slices
// mean "any".
type AdminEventFilter struct {
	InitiatorIDs []int64
	States       []EventState
	CategoryIDs  []int64
	RangeStart   *time.Time
	RangeEnd     *time.Time
}

// PublicEventSort orders public search results.
type PublicEventSort string

const (
	SortByEventDate PublicEventSort = "EVENT_DATE"
	SortByViews     PublicEventSort = "VIEWS"
)

// PublicEventFilter narrows the public event search. Only PUBLISHED
// events are ever returned. A nil RangeStart defaults to "from now on".
type PublicEventFilter struct {
	Text          string
	CategoryIDs   []int64
	Paid          *bool
	RangeStart    *time.Time
	RangeEnd      *time.Time
	OnlyAvailable bool
	Sort          PublicEventSort
}

// EventRepository defines storage operations for events.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id int64) (*Event, error)
	// GetByIDForUpdate locks the event row for the remainder of the
	// surrounding transaction. Callers must run it through TxManager.
	GetByIDForUpdate(ctx context.Context, id int64) (*Event, error)
	Update(ctx context.Context, event *Event) error
	ListByInitiator(ctx context.Context, initiatorID int64, p PaginationParams) ([]*Event, error)
	AdminSearch(ctx context.Context, f AdminEventFilter, p PaginationParams) ([]*Event, error)
	PublicSearch(ctx context.Context, f PublicEventFilter, p PaginationParams) ([]*Event, error)
	ExistsByCategory(ctx context.Context, categoryID int64) (bool, error)
}

// TxManager runs fn inside a single database transaction. Repository
// calls made with the ctx passed to fn join that transaction. Nested
// calls reuse the outer transaction.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventService defines event lifecycle and read operations.
type EventService interface {
	CreateEvent(ctx context.Context, initiatorID int64, draft NewEvent) (*Event, error)
	GetInitiatorEvents(ctx context.Context, initiatorID int64, p PaginationParams) ([]*EventView, error)
	GetInitiatorEvent(ctx context.Context, initiatorID, eventID int64) (*EventView, error)
	UpdateByInitiator(ctx context.Context, initiatorID, eventID int64, patch EventPatch) (*EventView, error)
	UpdateByAdmin(ctx context.Context, eventID int64, patch EventPatch) (*EventView, error)
	AdminSearch(ctx context.Context, f AdminEventFilter, p PaginationParams) ([]*EventView, error)
	PublicSearch(ctx context.Context, f PublicEventFilter, p PaginationParams, clientIP string) ([]*EventView, error)
	GetPublishedEvent(ctx context.Context, eventID int64, clientIP string) (*EventView, error)
}
