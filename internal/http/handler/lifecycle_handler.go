package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pressgate/broker-api/internal/domain"
	"github.com/pressgate/broker-api/internal/service"
)

type LifecycleHandler struct {
	lifecycleService *service.LifecycleService
	logger           *zap.Logger
}

func NewLifecycleHandler(lifecycleService *service.LifecycleService, logger *zap.Logger) *LifecycleHandler {
	return &LifecycleHandler{lifecycleService: lifecycleService, logger: logger}
}

// Advance godoc
// @Summary Advance job status
// @Description Move the job one step along the production pipeline, starting from its effective status. Clears any manual override. Advancing into paid requires the customer-paid milestone.
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} domain.JobDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/status/advance [post]
func (h *LifecycleHandler) Advance(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "id"), "job ID")
	if !ok {
		return
	}

	job, err := h.lifecycleService.Advance(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to advance status")
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// Override godoc
// @Summary Override job status
// @Description Set a manual status override, recording who set it and when. Overriding to paid requires the customer-paid milestone.
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body domain.OverrideStatusRequest true "Target status"
// @Success 200 {object} domain.JobDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/status/override [post]
func (h *LifecycleHandler) Override(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "id"), "job ID")
	if !ok {
		return
	}

	var req domain.OverrideStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	job, err := h.lifecycleService.Override(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to override status")
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// ClearOverride godoc
// @Summary Clear a status override
// @Description Revert the job to its computed status.
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} domain.JobDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/status/override [delete]
func (h *LifecycleHandler) ClearOverride(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "id"), "job ID")
	if !ok {
		return
	}

	job, err := h.lifecycleService.ClearOverride(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to clear override")
		return
	}

	respondJSON(w, http.StatusOK, job)
}
