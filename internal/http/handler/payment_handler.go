package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pressgate/broker-api/internal/domain"
	"github.com/pressgate/broker-api/internal/service"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
	logger         *zap.Logger
}

func NewPaymentHandler(paymentService *service.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, logger: logger}
}

// RecordMilestone godoc
// @Summary Record a payment milestone
// @Description Record a milestone in the invoice_sent, customer_paid, intermediary_paid, final_vendor_paid chain. Recording intermediary_paid dispatches the downstream invoice; a failed dispatch is returned as a warning, not an error.
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body domain.RecordMilestoneRequest true "Milestone"
// @Success 200 {object} domain.MilestoneUpdateResponse
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/payments [post]
func (h *PaymentHandler) RecordMilestone(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "id"), "job ID")
	if !ok {
		return
	}

	var req domain.RecordMilestoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.paymentService.RecordMilestone(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to record milestone")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// UnsetMilestone godoc
// @Summary Reverse a payment milestone
// @Description Unset a recorded milestone. Blocked while a later milestone is still set, and customer_paid cannot be unset while the job's effective status is paid.
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body domain.UnsetMilestoneRequest true "Milestone"
// @Success 200 {object} domain.MilestoneUpdateResponse
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/payments/unset [post]
func (h *PaymentHandler) UnsetMilestone(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "id"), "job ID")
	if !ok {
		return
	}

	var req domain.UnsetMilestoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.paymentService.UnsetMilestone(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to unset milestone")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ResendDownstreamInvoice godoc
// @Summary Resend the downstream invoice
// @Description Explicitly re-dispatch the downstream invoice to the final vendor. Requires the intermediary-paid milestone.
// @Tags Payments
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} domain.MilestoneUpdateResponse
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/payments/resend-downstream-invoice [post]
func (h *PaymentHandler) ResendDownstreamInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "id"), "job ID")
	if !ok {
		return
	}

	result, err := h.paymentService.ResendDownstreamInvoice(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to resend downstream invoice")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
