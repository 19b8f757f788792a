package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"explorewithme/internal/delivery/http/helpers"
	"explorewithme/internal/domain"
)

type CommentController struct {
	Logger  *slog.Logger
	Service domain.CommentService
}

func NewCommentController(logger *slog.Logger, svc domain.CommentService) *CommentController {
	return &CommentController{
		Logger:  logger,
		Service: svc,
	}
}

// CommentRequest is the request body for comment create and update.
type CommentRequest struct {
	Text string `json:"text"`
}

// Validate implements helpers.Validator.
func (req *CommentRequest) Validate() []string {
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		return []string{"text is required"}
	}
	return nil
}

// CommentResponse is the success envelope for endpoints returning a single comment.
type CommentResponse struct {
	Data  *domain.Comment   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CommentListResponse is the success envelope for endpoints returning comment lists.
type CommentListResponse struct {
	Data  []*domain.Comment `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// Create godoc
// @Summary Post a comment on an event
// @Tags comments
// @Accept json
// @Produce json
// @Param userId path int true "Author ID"
// @Param eventId path int true "Event ID"
// @Param body body controllers.CommentRequest true "Comment"
// @Success 201 {object} controllers.CommentResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userId}/events/{eventId}/comments [post]
func (c *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}
	var req CommentRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	comment, err := c.Service.Create(r.Context(), userID, eventID, req.Text)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, comment)
}

// Update godoc
// @Summary Edit the author's own comment
// @Description Only the author may edit, and only within one hour of posting.
// @Tags comments
// @Accept json
// @Produce json
// @Param userId path int true "Author ID"
// @Param eventId path int true "Event ID"
// @Param commentId path int true "Comment ID"
// @Param body body controllers.CommentRequest true "Comment"
// @Success 200 {object} controllers.CommentResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /users/{userId}/events/{eventId}/comments/{commentId} [patch]
func (c *CommentController) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}
	commentID, ok := pathID(w, r, "commentId")
	if !ok {
		return
	}
	var req CommentRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	comment, err := c.Service.UpdateByAuthor(r.Context(), userID, eventID, commentID, req.Text)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, comment)
}

// Delete godoc
// @Summary Delete the author's own comment
// @Tags comments
// @Param userId path int true "Author ID"
// @Param eventId path int true "Event ID"
// @Param commentId path int true "Comment ID"
// @Success 204 "No Content"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /users/{userId}/events/{eventId}/comments/{commentId} [delete]
func (c *CommentController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}
	commentID, ok := pathID(w, r, "commentId")
	if !ok {
		return
	}
	if err := c.Service.DeleteByAuthor(r.Context(), userID, eventID, commentID); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdminDelete godoc
// @Summary Delete any comment
// @Tags admin
// @Param eventId path int true "Event ID"
// @Param commentId path int true "Comment ID"
// @Success 204 "No Content"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /admin/events/{eventId}/comments/{commentId} [delete]
func (c *CommentController) AdminDelete(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}
	commentID, ok := pathID(w, r, "commentId")
	if !ok {
		return
	}
	if err := c.Service.DeleteByAdmin(r.Context(), eventID, commentID); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListByEvent godoc
// @Summary List comments on an event
// @Tags public
// @Produce json
// @Param eventId path int true "Event ID"
// @Param from query int false "Rows to skip"
// @Param size query int false "Page size"
// @Success 200 {object} controllers.CommentListResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventId}/comments [get]
func (c *CommentController) ListByEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}
	comments, err := c.Service.ListByEvent(r.Context(), eventID, helpers.ParsePagination(r))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, comments)
}

// Get godoc
// @Summary Get a comment
// @Tags public
// @Produce json
// @Param eventId path int true "Event ID"
// @Param commentId path int true "Comment ID"
// @Success 200 {object} controllers.CommentResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventId}/comments/{commentId} [get]
func (c *CommentController) Get(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}
	commentID, ok := pathID(w, r, "commentId")
	if !ok {
		return
	}
	comment, err := c.Service.GetByID(r.Context(), eventID, commentID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, comment)
}
