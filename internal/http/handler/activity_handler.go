package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pressgate/broker-api/internal/domain"
	"github.com/pressgate/broker-api/internal/service"
)

type ActivityHandler struct {
	activityService *service.ActivityService
	logger          *zap.Logger
}

func NewActivityHandler(activityService *service.ActivityService, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{activityService: activityService, logger: logger}
}

type addNoteRequest struct {
	Title string `json:"title" validate:"required,max=200"`
	Body  string `json:"body" validate:"max=2000"`
}

func parseLimit(r *http.Request, fallback int) int {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 200 {
		return fallback
	}
	return limit
}

// ListRecent godoc
// @Summary List recent activity
// @Tags Activities
// @Produce json
// @Param limit query int false "Max entries" default(50)
// @Success 200 {array} domain.ActivityDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /activities [get]
func (h *ActivityHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	activities, err := h.activityService.ListRecent(r.Context(), parseLimit(r, 50))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list activities")
		return
	}

	respondJSON(w, http.StatusOK, activities)
}

// ListForJob godoc
// @Summary List a job's activity
// @Tags Activities
// @Produce json
// @Param id path string true "Job ID"
// @Param limit query int false "Max entries" default(50)
// @Success 200 {array} domain.ActivityDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/activities [get]
func (h *ActivityHandler) ListForJob(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "id"), "job ID")
	if !ok {
		return
	}

	activities, err := h.activityService.ListByTarget(r.Context(), domain.ActivityTargetJob, id, parseLimit(r, 50))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list activities")
		return
	}

	respondJSON(w, http.StatusOK, activities)
}

// AddJobNote godoc
// @Summary Add a note to a job
// @Tags Activities
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body handler.addNoteRequest true "Note"
// @Success 201 {object} domain.ActivityDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/activities [post]
func (h *ActivityHandler) AddJobNote(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "id"), "job ID")
	if !ok {
		return
	}

	var req addNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	note, err := h.activityService.AddNote(r.Context(), domain.ActivityTargetJob, id, req.Title, req.Body)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to add note")
		return
	}

	respondJSON(w, http.StatusCreated, note)
}
