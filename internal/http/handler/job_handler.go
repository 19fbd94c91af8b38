package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pressgate/broker-api/internal/domain"
	"github.com/pressgate/broker-api/internal/repository"
	"github.com/pressgate/broker-api/internal/service"
)

type JobHandler struct {
	jobService *service.JobService
	logger     *zap.Logger
}

func NewJobHandler(jobService *service.JobService, logger *zap.Logger) *JobHandler {
	return &JobHandler{jobService: jobService, logger: logger}
}

// Create godoc
// @Summary Create a job
// @Description Create a print job. Routing is classified from the vendor at creation and never changes afterwards.
// @Tags Jobs
// @Accept json
// @Produce json
// @Param request body domain.CreateJobRequest true "Job"
// @Success 201 {object} domain.JobDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs [post]
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	job, err := h.jobService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create job")
		return
	}

	respondJSON(w, http.StatusCreated, job)
}

// Get godoc
// @Summary Get a job
// @Description Get a job with its line items, purchase orders, components and cached profit split
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} domain.JobDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id} [get]
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "id"), "job ID")
	if !ok {
		return
	}

	job, err := h.jobService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get job")
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// List godoc
// @Summary List jobs
// @Description Get paginated list of jobs with optional filters
// @Tags Jobs
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(20)
// @Param customerId query string false "Filter by customer"
// @Param vendorId query string false "Filter by vendor"
// @Param routingType query string false "Filter by routing" Enums(partner, direct, third_party)
// @Param status query string false "Filter by effective status"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.JobDTO}
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs [get]
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}

	var filter repository.JobListFilter
	if raw := r.URL.Query().Get("customerId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid customerId")
			return
		}
		filter.CustomerID = &id
	}
	if raw := r.URL.Query().Get("vendorId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid vendorId")
			return
		}
		filter.VendorID = &id
	}
	if raw := r.URL.Query().Get("routingType"); raw != "" {
		rt := domain.RoutingType(raw)
		if !rt.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid routingType")
			return
		}
		filter.RoutingType = &rt
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		st := domain.JobStatus(raw)
		if !st.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid status")
			return
		}
		filter.Status = &st
	}

	result, err := h.jobService.List(r.Context(), page, pageSize, filter)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list jobs")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Search godoc
// @Summary Search jobs
// @Description Search jobs by title or job number
// @Tags Jobs
// @Produce json
// @Param q query string true "Search query"
// @Success 200 {array} domain.JobDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/search [get]
func (h *JobHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}

	jobs, err := h.jobService.Search(r.Context(), query, 25)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to search jobs")
		return
	}

	respondJSON(w, http.StatusOK, jobs)
}

// Update godoc
// @Summary Update a job
// @Description Update editable job fields. The request must carry the version the client last read; a stale version is rejected with 409.
// @Tags Jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body domain.UpdateJobRequest true "Fields to update"
// @Success 200 {object} domain.JobDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id} [put]
func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "id"), "job ID")
	if !ok {
		return
	}

	var req domain.UpdateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	job, err := h.jobService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update job")
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// Delete godoc
// @Summary Delete a job
// @Description Soft-delete a job. Its financial history remains in the database.
// @Tags Jobs
// @Param id path string true "Job ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id} [delete]
func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "id"), "job ID")
	if !ok {
		return
	}

	if err := h.jobService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete job")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// SetIntermediaryCut godoc
// @Summary Set the intermediary cut
// @Description Set, clear or automate the intermediary cut on a direct or third-party routed job. Not applicable to partner-routed jobs.
// @Tags Jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body domain.SetIntermediaryCutRequest true "Cut"
// @Success 200 {object} domain.JobDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/intermediary-cut [put]
func (h *JobHandler) SetIntermediaryCut(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "id"), "job ID")
	if !ok {
		return
	}

	var req domain.SetIntermediaryCutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	job, err := h.jobService.SetIntermediaryCut(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to set intermediary cut")
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// GetProfitSplit godoc
// @Summary Get the profit split
// @Description Recompute and return the profit split for a job. An unpriced job returns a validation error.
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} domain.ProfitSplitDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/profit-split [get]
func (h *JobHandler) GetProfitSplit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "id"), "job ID")
	if !ok {
		return
	}

	split, err := h.jobService.GetProfitSplit(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to compute profit split")
		return
	}

	respondJSON(w, http.StatusOK, split)
}
