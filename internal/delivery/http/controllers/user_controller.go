package controllers

import (
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"explorewithme/internal/delivery/http/helpers"
	"explorewithme/internal/domain"
)

type UserController struct {
	Logger  *slog.Logger
	Service domain.UserService
}

func NewUserController(logger *slog.Logger, svc domain.UserService) *UserController {
	return &UserController{
		Logger:  logger,
		Service: svc,
	}
}

// NewUserRequest is the request body for POST /admin/users.
type NewUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Validate implements helpers.Validator.
func (req *NewUserRequest) Validate() []string {
	var errs []string
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		errs = append(errs, "name is required")
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		errs = append(errs, "email is required")
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		errs = append(errs, "email is invalid")
	}
	return errs
}

// UserResponse is the success envelope for endpoints returning a single user.
type UserResponse struct {
	Data  *domain.User      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// UserListResponse is the success envelope for endpoints returning user lists.
type UserListResponse struct {
	Data  []*domain.User    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// Create godoc
// @Summary Register a user
// @Tags admin
// @Accept json
// @Produce json
// @Param body body controllers.NewUserRequest true "User"
// @Success 201 {object} controllers.UserResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /admin/users [post]
func (c *UserController) Create(w http.ResponseWriter, r *http.Request) {
	var req NewUserRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Service.Create(r.Context(), req.Name, req.Email)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, user)
}

// List godoc
// @Summary List users
// @Tags admin
// @Produce json
// @Param ids query []int false "User IDs"
// @Param from query int false "Rows to skip"
// @Param size query int false "Page size"
// @Success 200 {object} controllers.UserListResponse
// @Router /admin/users [get]
func (c *UserController) List(w http.ResponseWriter, r *http.Request) {
	ids, err := queryIDs(r, "ids")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid ids")
		return
	}
	users, err := c.Service.List(r.Context(), ids, helpers.ParsePagination(r))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, users)
}

// Delete godoc
// @Summary Delete a user
// @Tags admin
// @Param userId path int true "User ID"
// @Success 204 "No Content"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /admin/users/{userId} [delete]
func (c *UserController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), userID); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
