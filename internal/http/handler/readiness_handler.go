package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pressgate/broker-api/internal/domain"
	"github.com/pressgate/broker-api/internal/service"
)

type ReadinessHandler struct {
	readinessService *service.ReadinessService
	logger           *zap.Logger
}

func NewReadinessHandler(readinessService *service.ReadinessService, logger *zap.Logger) *ReadinessHandler {
	return &ReadinessHandler{readinessService: readinessService, logger: logger}
}

// Evaluate godoc
// @Summary Evaluate the readiness gate
// @Description Roll up the job's readiness flags and component flags into the PO gate result. After the PO is sent, open items show as warnings instead of blockers.
// @Tags Readiness
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} domain.ReadinessResultDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/readiness [get]
func (h *ReadinessHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "id"), "job ID")
	if !ok {
		return
	}

	result, err := h.readinessService.Evaluate(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to evaluate readiness")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// UpdateFlags godoc
// @Summary Update readiness flags
// @Description Update the job-level readiness flags. Omitted fields are left untouched.
// @Tags Readiness
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body domain.UpdateReadinessRequest true "Flags"
// @Success 200 {object} domain.JobDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/readiness [put]
func (h *ReadinessHandler) UpdateFlags(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "id"), "job ID")
	if !ok {
		return
	}

	var req domain.UpdateReadinessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	job, err := h.readinessService.UpdateFlags(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update readiness flags")
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// ListComponents godoc
// @Summary List job components
// @Tags Readiness
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {array} domain.JobComponentDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/components [get]
func (h *ReadinessHandler) ListComponents(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "id"), "job ID")
	if !ok {
		return
	}

	components, err := h.readinessService.ListComponents(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list components")
		return
	}

	respondJSON(w, http.StatusOK, components)
}

// AddComponent godoc
// @Summary Add a job component
// @Description Add a component whose artwork and material flags roll up into the readiness gate.
// @Tags Readiness
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body domain.JobComponentRequest true "Component"
// @Success 201 {object} domain.JobComponentDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/components [post]
func (h *ReadinessHandler) AddComponent(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "id"), "job ID")
	if !ok {
		return
	}

	var req domain.JobComponentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	component, err := h.readinessService.AddComponent(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to add component")
		return
	}

	respondJSON(w, http.StatusCreated, component)
}

// UpdateComponent godoc
// @Summary Update a job component
// @Tags Readiness
// @Accept json
// @Produce json
// @Param componentId path string true "Component ID"
// @Param request body domain.JobComponentRequest true "Component"
// @Success 200 {object} domain.JobComponentDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /components/{componentId} [put]
func (h *ReadinessHandler) UpdateComponent(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "componentId"), "component ID")
	if !ok {
		return
	}

	var req domain.JobComponentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	component, err := h.readinessService.UpdateComponent(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update component")
		return
	}

	respondJSON(w, http.StatusOK, component)
}

// DeleteComponent godoc
// @Summary Delete a job component
// @Tags Readiness
// @Param componentId path string true "Component ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /components/{componentId} [delete]
func (h *ReadinessHandler) DeleteComponent(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "componentId"), "component ID")
	if !ok {
		return
	}

	if err := h.readinessService.DeleteComponent(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete component")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
