package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pressgate/broker-api/internal/domain"
	"github.com/pressgate/broker-api/internal/service"
)

type LineItemHandler struct {
	lineItemService *service.LineItemService
	logger          *zap.Logger
}

func NewLineItemHandler(lineItemService *service.LineItemService, logger *zap.Logger) *LineItemHandler {
	return &LineItemHandler{lineItemService: lineItemService, logger: logger}
}

// List godoc
// @Summary List line items
// @Tags LineItems
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {array} domain.LineItemDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/line-items [get]
func (h *LineItemHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "id"), "job ID")
	if !ok {
		return
	}

	items, err := h.lineItemService.List(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list line items")
		return
	}

	respondJSON(w, http.StatusOK, items)
}

// Add godoc
// @Summary Add a line item
// @Description Add a line item to a job. When markup is given the price is derived from cost; when a price is given the markup is derived. Triggers a profit split recompute.
// @Tags LineItems
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body domain.LineItemRequest true "Line item"
// @Success 201 {object} domain.LineItemDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/line-items [post]
func (h *LineItemHandler) Add(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "id"), "job ID")
	if !ok {
		return
	}

	var req domain.LineItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.lineItemService.Add(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to add line item")
		return
	}

	respondJSON(w, http.StatusCreated, item)
}

// Update godoc
// @Summary Update a line item
// @Description Update description and quantity. Pricing fields are edited through the edit endpoint so the cost/markup/price linkage stays consistent.
// @Tags LineItems
// @Accept json
// @Produce json
// @Param itemId path string true "Line item ID"
// @Param request body domain.LineItemRequest true "Line item"
// @Success 200 {object} domain.LineItemDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /line-items/{itemId} [put]
func (h *LineItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "itemId"), "line item ID")
	if !ok {
		return
	}

	var req domain.LineItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.lineItemService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update line item")
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// EditField godoc
// @Summary Edit one pricing field
// @Description Apply a single driving edit: editing cost holds the price and recomputes markup, editing markup holds the cost and recomputes price, editing price holds the cost and recomputes markup.
// @Tags LineItems
// @Accept json
// @Produce json
// @Param itemId path string true "Line item ID"
// @Param request body domain.LineItemEditRequest true "Edit"
// @Success 200 {object} domain.LineItemDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /line-items/{itemId}/edit [post]
func (h *LineItemHandler) EditField(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "itemId"), "line item ID")
	if !ok {
		return
	}

	var req domain.LineItemEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.lineItemService.EditField(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to edit line item")
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// Delete godoc
// @Summary Delete a line item
// @Tags LineItems
// @Param itemId path string true "Line item ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /line-items/{itemId} [delete]
func (h *LineItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "itemId"), "line item ID")
	if !ok {
		return
	}

	if err := h.lineItemService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete line item")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
