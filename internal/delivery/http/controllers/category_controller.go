package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"explorewithme/internal/delivery/http/helpers"
	"explorewithme/internal/domain"
)

type CategoryController struct {
	Logger  *slog.Logger
	Service domain.CategoryService
}

func NewCategoryController(logger *slog.Logger, svc domain.CategoryService) *CategoryController {
	return &CategoryController{
		Logger:  logger,
		Service: svc,
	}
}

// CategoryRequest is the request body for category create and update.
type CategoryRequest struct {
	Name string `json:"name"`
}

// Validate implements helpers.Validator.
func (req *CategoryRequest) Validate() []string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return []string{"name is required"}
	}
	return nil
}

// CategoryResponse is the success envelope for endpoints returning a single category.
type CategoryResponse struct {
	Data  *domain.Category  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CategoryListResponse is the success envelope for endpoints returning category lists.
type CategoryListResponse struct {
	Data  []*domain.Category `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// Create godoc
// @Summary Create a category
// @Tags admin
// @Accept json
// @Produce json
// @Param body body controllers.CategoryRequest true "Category"
// @Success 201 {object} controllers.CategoryResponse
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /admin/categories [post]
func (c *CategoryController) Create(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	category, err := c.Service.Create(r.Context(), req.Name)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, category)
}

// Update godoc
// @Summary Rename a category
// @Tags admin
// @Accept json
// @Produce json
// @Param catId path int true "Category ID"
// @Param body body controllers.CategoryRequest true "Category"
// @Success 200 {object} controllers.CategoryResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /admin/categories/{catId} [patch]
func (c *CategoryController) Update(w http.ResponseWriter, r *http.Request) {
	catID, ok := pathID(w, r, "catId")
	if !ok {
		return
	}
	var req CategoryRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	category, err := c.Service.Update(r.Context(), catID, req.Name)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, category)
}

// Delete godoc
// @Summary Delete a category
// @Description Fails with a conflict when the category still has events.
// @Tags admin
// @Param catId path int true "Category ID"
// @Success 204 "No Content"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /admin/categories/{catId} [delete]
func (c *CategoryController) Delete(w http.ResponseWriter, r *http.Request) {
	catID, ok := pathID(w, r, "catId")
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), catID); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Get godoc
// @Summary Get a category
// @Tags public
// @Produce json
// @Param catId path int true "Category ID"
// @Success 200 {object} controllers.CategoryResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /categories/{catId} [get]
func (c *CategoryController) Get(w http.ResponseWriter, r *http.Request) {
	catID, ok := pathID(w, r, "catId")
	if !ok {
		return
	}
	category, err := c.Service.GetByID(r.Context(), catID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, category)
}

// List godoc
// @Summary List categories
// @Tags public
// @Produce json
// @Param from query int false "Rows to skip"
// @Param size query int false "Page size"
// @Success 200 {object} controllers.CategoryListResponse
// @Router /categories [get]
func (c *CategoryController) List(w http.ResponseWriter, r *http.Request) {
	categories, err := c.Service.List(r.Context(), helpers.ParsePagination(r))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, categories)
}
