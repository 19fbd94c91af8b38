package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pressgate/broker-api/internal/domain"
	"github.com/pressgate/broker-api/internal/service"
)

type PurchaseOrderHandler struct {
	poService *service.PurchaseOrderService
	logger    *zap.Logger
}

func NewPurchaseOrderHandler(poService *service.PurchaseOrderService, logger *zap.Logger) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{poService: poService, logger: logger}
}

// List godoc
// @Summary List purchase orders
// @Tags PurchaseOrders
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {array} domain.PurchaseOrderDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/purchase-orders [get]
func (h *PurchaseOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "id"), "job ID")
	if !ok {
		return
	}

	pos, err := h.poService.List(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list purchase orders")
		return
	}

	respondJSON(w, http.StatusOK, pos)
}

// Create godoc
// @Summary Create a purchase order
// @Description Create a purchase order between two parties on a job. Triggers a profit split recompute.
// @Tags PurchaseOrders
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body domain.PurchaseOrderRequest true "Purchase order"
// @Success 201 {object} domain.PurchaseOrderDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/purchase-orders [post]
func (h *PurchaseOrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "id"), "job ID")
	if !ok {
		return
	}

	var req domain.PurchaseOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	po, err := h.poService.Create(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create purchase order")
		return
	}

	respondJSON(w, http.StatusCreated, po)
}

// Update godoc
// @Summary Update a purchase order
// @Tags PurchaseOrders
// @Accept json
// @Produce json
// @Param poId path string true "Purchase order ID"
// @Param request body domain.PurchaseOrderRequest true "Purchase order"
// @Success 200 {object} domain.PurchaseOrderDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /purchase-orders/{poId} [put]
func (h *PurchaseOrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "poId"), "purchase order ID")
	if !ok {
		return
	}

	var req domain.PurchaseOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	po, err := h.poService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update purchase order")
		return
	}

	respondJSON(w, http.StatusOK, po)
}

// Delete godoc
// @Summary Delete a purchase order
// @Tags PurchaseOrders
// @Param poId path string true "Purchase order ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /purchase-orders/{poId} [delete]
func (h *PurchaseOrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "poId"), "purchase order ID")
	if !ok {
		return
	}

	if err := h.poService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete purchase order")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// Send godoc
// @Summary Send a purchase order to the vendor
// @Description Mark the PO as sent. The job's readiness gate must be complete; an incomplete gate is rejected with the open blockers, and a second send is rejected.
// @Tags PurchaseOrders
// @Produce json
// @Param id path string true "Job ID"
// @Param poId path string true "Purchase order ID"
// @Success 200 {object} domain.PurchaseOrderDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/purchase-orders/{poId}/send [post]
func (h *PurchaseOrderHandler) Send(w http.ResponseWriter, r *http.Request) {
	jobID, ok := parseUUIDParam(w, chi.URLParam(r, "id"), "job ID")
	if !ok {
		return
	}
	poID, ok := parseUUIDParam(w, chi.URLParam(r, "poId"), "purchase order ID")
	if !ok {
		return
	}

	po, err := h.poService.Send(r.Context(), jobID, poID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to send purchase order")
		return
	}

	respondJSON(w, http.StatusOK, po)
}
