package controllers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"explorewithme/internal/delivery/http/helpers"
	"explorewithme/internal/domain"
)

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// LocationRequest is the location object in event payloads.
type LocationRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewEventRequest is the request body for POST /users/{userId}/events.
type NewEventRequest struct {
	Title             string           `json:"title"`
	Annotation        string           `json:"annotation"`
	Description       string           `json:"description"`
	Category          int64            `json:"category"`
	EventDate         string           `json:"eventDate"`
	Location          *LocationRequest `json:"location"`
	Paid              bool             `json:"paid"`
	ParticipantLimit  int              `json:"participantLimit"`
	RequestModeration *bool            `json:"requestModeration"`

	parsedDate time.Time
}

// Validate implements helpers.Validator.
func (req *NewEventRequest) Validate() []string {
	var errs []string
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		errs = append(errs, "title is required")
	}
	if strings.TrimSpace(req.Annotation) == "" {
		errs = append(errs, "annotation is required")
	}
	if req.Category < 1 {
		errs = append(errs, "category is required")
	}
	if req.ParticipantLimit < 0 {
		errs = append(errs, "participantLimit must not be negative")
	}
	t, err := time.Parse(helpers.TimeLayout, req.EventDate)
	if err != nil {
		errs = append(errs, "eventDate must be formatted as "+helpers.TimeLayout)
	} else {
		req.parsedDate = t.UTC()
	}
	return errs
}

// EventViewResponse is the success envelope for endpoints returning a single event.
type EventViewResponse struct {
	Data  *domain.EventView `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventViewListResponse is the success envelope for endpoints returning event lists.
type EventViewListResponse struct {
	Data  []*domain.EventView `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// Create godoc
// @Summary Create an event draft
// @Description Creates a new event in PENDING state. The event date must be at least two hours in the future.
// @Tags events
// @Accept json
// @Produce json
// @Param userId path int true "Initiator ID"
// @Param body body controllers.NewEventRequest true "Event draft"
// @Success 201 {object} controllers.EventViewResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userId}/events [post]
func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	var req NewEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	draft := domain.NewEvent{
		Title:             req.Title,
		Annotation:        req.Annotation,
		Description:       req.Description,
		CategoryID:        req.Category,
		Paid:              req.Paid,
		ParticipantLimit:  req.ParticipantLimit,
		RequestModeration: req.RequestModeration,
		EventDate:         req.parsedDate,
	}
	if req.Location != nil {
		draft.Location = domain.Location{Lat: req.Location.Lat, Lon: req.Location.Lon}
	}

	event, err := c.Service.CreateEvent(r.Context(), userID, draft)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, domain.NewEventView(event, 0))
}

// ListByInitiator godoc
// @Summary List the initiator's events
// @Tags events
// @Produce json
// @Param userId path int true "Initiator ID"
// @Param from query int false "Rows to skip"
// @Param size query int false "Page size"
// @Success 200 {object} controllers.EventViewListResponse
// @Router /users/{userId}/events [get]
func (c *EventController) ListByInitiator(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	views, err := c.Service.GetInitiatorEvents(r.Context(), userID, helpers.ParsePagination(r))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, views)
}

// GetByInitiator godoc
// @Summary Get one of the initiator's events
// @Tags events
// @Produce json
// @Param userId path int true "Initiator ID"
// @Param eventId path int true "Event ID"
// @Success 200 {object} controllers.EventViewResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userId}/events/{eventId} [get]
func (c *EventController) GetByInitiator(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}
	view, err := c.Service.GetInitiatorEvent(r.Context(), userID, eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// UpdateEventRequest is the request body for the initiator and admin
// PATCH endpoints. All fields are optional.
type UpdateEventRequest struct {
	Title             *string          `json:"title"`
	Annotation        *string          `json:"annotation"`
	Description       *string          `json:"description"`
	Category          *int64           `json:"category"`
	EventDate         *string          `json:"eventDate"`
	Location          *LocationRequest `json:"location"`
	Paid              *bool            `json:"paid"`
	ParticipantLimit  *int             `json:"participantLimit"`
	RequestModeration *bool            `json:"requestModeration"`
	StateAction       string           `json:"stateAction"`

	parsedDate *time.Time
}

// Validate implements helpers.Validator.
func (req *UpdateEventRequest) Validate() []string {
	var errs []string
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		errs = append(errs, "title must not be blank")
	}
	if req.Category != nil && *req.Category < 1 {
		errs = append(errs, "category must be positive")
	}
	if req.ParticipantLimit != nil && *req.ParticipantLimit < 0 {
		errs = append(errs, "participantLimit must not be negative")
	}
	if req.EventDate != nil {
		t, err := time.Parse(helpers.TimeLayout, *req.EventDate)
		if err != nil {
			errs = append(errs, "eventDate must be formatted as "+helpers.TimeLayout)
		} else {
			utc := t.UTC()
			req.parsedDate = &utc
		}
	}
	return errs
}

func (req *UpdateEventRequest) toPatch(action domain.EventStateAction) domain.EventPatch {
	patch := domain.EventPatch{
		Title:             req.Title,
		Annotation:        req.Annotation,
		Description:       req.Description,
		CategoryID:        req.Category,
		Paid:              req.Paid,
		ParticipantLimit:  req.ParticipantLimit,
		RequestModeration: req.RequestModeration,
		EventDate:         req.parsedDate,
		StateAction:       action,
	}
	if req.Location != nil {
		patch.Location = &domain.Location{Lat: req.Location.Lat, Lon: req.Location.Lon}
	}
	return patch
}

// UpdateByInitiator godoc
// @Summary Update a pending or canceled event
// @Description Applies a partial update. Allowed state actions: SEND_TO_REVIEW, CANCEL_REVIEW. Editing a canceled event returns it to review.
// @Tags events
// @Accept json
// @Produce json
// @Param userId path int true "Initiator ID"
// @Param eventId path int true "Event ID"
// @Param body body controllers.UpdateEventRequest true "Partial update"
// @Success 200 {object} controllers.EventViewResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /users/{userId}/events/{eventId} [patch]
func (c *EventController) UpdateByInitiator(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	var action domain.EventStateAction
	if req.StateAction != "" {
		parsed, ok := domain.ParseInitiatorAction(req.StateAction)
		if !ok {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unknown stateAction")
			return
		}
		action = parsed
	}

	view, err := c.Service.UpdateByInitiator(r.Context(), userID, eventID, req.toPatch(action))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// UpdateByAdmin godoc
// @Summary Moderate an event
// @Description Applies a partial update with an optional admin decision. PUBLISH_EVENT requires a PENDING event; decisions on a PUBLISHED event are rejected.
// @Tags admin
// @Accept json
// @Produce json
// @Param eventId path int true "Event ID"
// @Param body body controllers.UpdateEventRequest true "Partial update"
// @Success 200 {object} controllers.EventViewResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /admin/events/{eventId} [patch]
func (c *EventController) UpdateByAdmin(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	var action domain.EventStateAction
	if req.StateAction != "" {
		parsed, ok := domain.ParseAdminAction(req.StateAction)
		if !ok {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unknown stateAction")
			return
		}
		action = parsed
	}

	view, err := c.Service.UpdateByAdmin(r.Context(), eventID, req.toPatch(action))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// AdminSearch godoc
// @Summary Search events across all states
// @Tags admin
// @Produce json
// @Param users query []int false "Initiator IDs"
// @Param states query []string false "Event states"
// @Param categories query []int false "Category IDs"
// @Param rangeStart query string false "Window start (yyyy-MM-dd HH:mm:ss)"
// @Param rangeEnd query string false "Window end (yyyy-MM-dd HH:mm:ss)"
// @Param from query int false "Rows to skip"
// @Param size query int false "Page size"
// @Success 200 {object} controllers.EventViewListResponse
// @Router /admin/events [get]
func (c *EventController) AdminSearch(w http.ResponseWriter, r *http.Request) {
	filter := domain.AdminEventFilter{}

	users, err := queryIDs(r, "users")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid users")
		return
	}
	filter.InitiatorIDs = users

	for _, s := range r.URL.Query()["states"] {
		state, ok := domain.ParseEventState(s)
		if !ok {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unknown state "+s)
			return
		}
		filter.States = append(filter.States, state)
	}

	categories, err := queryIDs(r, "categories")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid categories")
		return
	}
	filter.CategoryIDs = categories

	var okTime bool
	if filter.RangeStart, okTime = helpers.ParseTimeParam(r, "rangeStart"); !okTime {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid rangeStart")
		return
	}
	if filter.RangeEnd, okTime = helpers.ParseTimeParam(r, "rangeEnd"); !okTime {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid rangeEnd")
		return
	}

	views, err := c.Service.AdminSearch(r.Context(), filter, helpers.ParsePagination(r))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, views)
}

// PublicSearch godoc
// @Summary Search published events
// @Description Full-text search over published events. Each call is recorded as a hit against /events.
// @Tags public
// @Produce json
// @Param text query string false "Text to match in annotation or description"
// @Param categories query []int false "Category IDs"
// @Param paid query bool false "Paid events only"
// @Param rangeStart query string false "Window start (yyyy-MM-dd HH:mm:ss)"
// @Param rangeEnd query string false "Window end (yyyy-MM-dd HH:mm:ss)"
// @Param onlyAvailable query bool false "Events with free seats only"
// @Param sort query string false "EVENT_DATE or VIEWS"
// @Param from query int false "Rows to skip"
// @Param size query int false "Page size"
// @Success 200 {object} controllers.EventViewListResponse
// @Router /events [get]
func (c *EventController) PublicSearch(w http.ResponseWriter, r *http.Request) {
	filter := domain.PublicEventFilter{
		Text: strings.TrimSpace(r.URL.Query().Get("text")),
	}

	categories, err := queryIDs(r, "categories")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid categories")
		return
	}
	filter.CategoryIDs = categories

	if s := r.URL.Query().Get("paid"); s != "" {
		paid, err := strconv.ParseBool(s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid paid")
			return
		}
		filter.Paid = &paid
	}

	var okTime bool
	if filter.RangeStart, okTime = helpers.ParseTimeParam(r, "rangeStart"); !okTime {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid rangeStart")
		return
	}
	if filter.RangeEnd, okTime = helpers.ParseTimeParam(r, "rangeEnd"); !okTime {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid rangeEnd")
		return
	}
	if filter.RangeStart != nil && filter.RangeEnd != nil && filter.RangeEnd.Before(*filter.RangeStart) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "rangeEnd is before rangeStart")
		return
	}

	if s := r.URL.Query().Get("onlyAvailable"); s != "" {
		only, err := strconv.ParseBool(s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid onlyAvailable")
			return
		}
		filter.OnlyAvailable = only
	}

	switch sort := r.URL.Query().Get("sort"); sort {
	case "", string(domain.SortByEventDate):
		filter.Sort = domain.SortByEventDate
	case string(domain.SortByViews):
		filter.Sort = domain.SortByViews
	default:
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unknown sort")
		return
	}

	views, err := c.Service.PublicSearch(r.Context(), filter, helpers.ParsePagination(r), clientIP(r))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, views)
}

// GetPublished godoc
// @Summary Get a published event
// @Description Returns a published event with its view count. Each call is recorded as a hit.
// @Tags public
// @Produce json
// @Param eventId path int true "Event ID"
// @Success 200 {object} controllers.EventViewResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventId} [get]
func (c *EventController) GetPublished(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}
	view, err := c.Service.GetPublishedEvent(r.Context(), eventID, clientIP(r))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}
