package controllers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"explorewithme/internal/delivery/http/helpers"
	"explorewithme/internal/domain"
)

type CompilationController struct {
	Logger  *slog.Logger
	Service domain.CompilationService
}

func NewCompilationController(logger *slog.Logger, svc domain.CompilationService) *CompilationController {
	return &CompilationController{
		Logger:  logger,
		Service: svc,
	}
}

// NewCompilationRequest is the request body for POST /admin/compilations.
type NewCompilationRequest struct {
	Title  string  `json:"title"`
	Pinned bool    `json:"pinned"`
	Events []int64 `json:"events"`
}

// Validate implements helpers.Validator.
func (req *NewCompilationRequest) Validate() []string {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return []string{"title is required"}
	}
	return nil
}

// UpdateCompilationRequest is the request body for PATCH /admin/compilations/{compId}.
// A nil events field keeps the current membership.
type UpdateCompilationRequest struct {
	Title  *string `json:"title"`
	Pinned *bool   `json:"pinned"`
	Events []int64 `json:"events"`
}

// Validate implements helpers.Validator.
func (req *UpdateCompilationRequest) Validate() []string {
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return []string{"title must not be blank"}
	}
	return nil
}

// CompilationResponse is the success envelope for endpoints returning a single compilation.
type CompilationResponse struct {
	Data  *domain.Compilation `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// CompilationListResponse is the success envelope for endpoints returning compilation lists.
type CompilationListResponse struct {
	Data  []*domain.Compilation `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// Create godoc
// @Summary Create a compilation
// @Tags admin
// @Accept json
// @Produce json
// @Param body body controllers.NewCompilationRequest true "Compilation"
// @Success 201 {object} controllers.CompilationResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /admin/compilations [post]
func (c *CompilationController) Create(w http.ResponseWriter, r *http.Request) {
	var req NewCompilationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	compilation, err := c.Service.Create(r.Context(), domain.NewCompilation{
		Title:    req.Title,
		Pinned:   req.Pinned,
		EventIDs: req.Events,
	})
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, compilation)
}

// Update godoc
// @Summary Update a compilation
// @Tags admin
// @Accept json
// @Produce json
// @Param compId path int true "Compilation ID"
// @Param body body controllers.UpdateCompilationRequest true "Partial update"
// @Success 200 {object} controllers.CompilationResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /admin/compilations/{compId} [patch]
func (c *CompilationController) Update(w http.ResponseWriter, r *http.Request) {
	compID, ok := pathID(w, r, "compId")
	if !ok {
		return
	}
	var req UpdateCompilationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	compilation, err := c.Service.Update(r.Context(), compID, domain.CompilationPatch{
		Title:    req.Title,
		Pinned:   req.Pinned,
		EventIDs: req.Events,
	})
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, compilation)
}

// Delete godoc
// @Summary Delete a compilation
// @Tags admin
// @Param compId path int true "Compilation ID"
// @Success 204 "No Content"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /admin/compilations/{compId} [delete]
func (c *CompilationController) Delete(w http.ResponseWriter, r *http.Request) {
	compID, ok := pathID(w, r, "compId")
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), compID); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Get godoc
// @Summary Get a compilation
// @Tags public
// @Produce json
// @Param compId path int true "Compilation ID"
// @Success 200 {object} controllers.CompilationResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /compilations/{compId} [get]
func (c *CompilationController) Get(w http.ResponseWriter, r *http.Request) {
	compID, ok := pathID(w, r, "compId")
	if !ok {
		return
	}
	compilation, err := c.Service.GetByID(r.Context(), compID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, compilation)
}

// List godoc
// @Summary List compilations
// @Tags public
// @Produce json
// @Param pinned query bool false "Pinned compilations only"
// @Param from query int false "Rows to skip"
// @Param size query int false "Page size"
// @Success 200 {object} controllers.CompilationListResponse
// @Router /compilations [get]
func (c *CompilationController) List(w http.ResponseWriter, r *http.Request) {
	var pinned *bool
	if s := r.URL.Query().Get("pinned"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid pinned")
			return
		}
		pinned = &v
	}
	compilations, err := c.Service.List(r.Context(), pinned, helpers.ParsePagination(r))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, compilations)
}
