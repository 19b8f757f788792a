package controllers

import (
	"log/slog"
	"net/http"
	"strconv"

	"explorewithme/internal/delivery/http/helpers"
	"explorewithme/internal/domain"
)

type RequestController struct {
	Logger  *slog.Logger
	Service domain.ParticipationService
}

func NewRequestController(logger *slog.Logger, svc domain.ParticipationService) *RequestController {
	return &RequestController{
		Logger:  logger,
		Service: svc,
	}
}

// RequestResponse is the success envelope for endpoints returning a single request.
type RequestResponse struct {
	Data  *domain.ParticipationRequest `json:"data"`
	Error *helpers.APIError            `json:"error"`
}

// RequestListResponse is the success envelope for endpoints returning request lists.
type RequestListResponse struct {
	Data  []*domain.ParticipationRequest `json:"data"`
	Error *helpers.APIError              `json:"error"`
}

// Create godoc
// @Summary Request participation in an event
// @Description Admits the user to a published event. The request is auto-confirmed when the event has no limit or moderation is off.
// @Tags requests
// @Produce json
// @Param userId path int true "Requester ID"
// @Param eventId query int true "Event ID"
// @Success 201 {object} controllers.RequestResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /users/{userId}/requests [post]
func (c *RequestController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	eventID, err := strconv.ParseInt(r.URL.Query().Get("eventId"), 10, 64)
	if err != nil || eventID < 1 {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventId")
		return
	}

	req, err := c.Service.CreateRequest(r.Context(), userID, eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, req)
}

// ListByRequester godoc
// @Summary List the user's participation requests
// @Tags requests
// @Produce json
// @Param userId path int true "Requester ID"
// @Success 200 {object} controllers.RequestListResponse
// @Router /users/{userId}/requests [get]
func (c *RequestController) ListByRequester(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	requests, err := c.Service.ListByRequester(r.Context(), userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, requests)
}

// Cancel godoc
// @Summary Cancel the user's own request
// @Description Cancels a request. A confirmed seat released this way is not reclaimed.
// @Tags requests
// @Produce json
// @Param userId path int true "Requester ID"
// @Param requestId path int true "Request ID"
// @Success 200 {object} controllers.RequestResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userId}/requests/{requestId}/cancel [patch]
func (c *RequestController) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	requestID, ok := pathID(w, r, "requestId")
	if !ok {
		return
	}
	req, err := c.Service.CancelRequest(r.Context(), userID, requestID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, req)
}

// ListForEvent godoc
// @Summary List requests for the initiator's event
// @Tags requests
// @Produce json
// @Param userId path int true "Initiator ID"
// @Param eventId path int true "Event ID"
// @Success 200 {object} controllers.RequestListResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userId}/events/{eventId}/requests [get]
func (c *RequestController) ListForEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}
	requests, err := c.Service.ListForEvent(r.Context(), userID, eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, requests)
}

// StatusUpdateRequest is the request body for the batch confirmation endpoint.
type StatusUpdateRequest struct {
	RequestIDs []int64 `json:"requestIds"`
	Status     string  `json:"status"`
}

// Validate implements helpers.Validator.
func (req *StatusUpdateRequest) Validate() []string {
	var errs []string
	if len(req.RequestIDs) == 0 {
		errs = append(errs, "requestIds is required")
	}
	if req.Status == "" {
		errs = append(errs, "status is required")
	}
	return errs
}

// UpdateStatus godoc
// @Summary Confirm or reject pending requests
// @Description Resolves the listed pending requests in ascending id order. Once the participant limit is reached the remainder is rejected; confirming past the limit fails.
// @Tags requests
// @Accept json
// @Produce json
// @Param userId path int true "Initiator ID"
// @Param eventId path int true "Event ID"
// @Param body body controllers.StatusUpdateRequest true "Batch decision"
// @Success 200 {object} helpers.APIResponse{data=domain.RequestStatusUpdateResult}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /users/{userId}/events/{eventId}/requests [patch]
func (c *RequestController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}
	var req StatusUpdateRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	status, ok := domain.ParseRequestStatus(req.Status)
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unknown status")
		return
	}

	result, err := c.Service.UpdateRequestStatus(r.Context(), userID, eventID, req.RequestIDs, status)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}
