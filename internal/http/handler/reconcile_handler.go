package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/pressgate/broker-api/internal/service"
)

type ReconcileHandler struct {
	reconcileService *service.ReconcileService
	logger           *zap.Logger
}

func NewReconcileHandler(reconcileService *service.ReconcileService, logger *zap.Logger) *ReconcileHandler {
	return &ReconcileHandler{reconcileService: reconcileService, logger: logger}
}

// Run godoc
// @Summary Run ERP reconciliation
// @Description Compare recorded payment milestones against invoices posted in the accounting system and return the discrepancies. Read-only; no milestones are changed.
// @Tags Reconciliation
// @Produce json
// @Success 200 {array} service.Discrepancy
// @Failure 503 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /reconcile [post]
func (h *ReconcileHandler) Run(w http.ResponseWriter, r *http.Request) {
	discrepancies, err := h.reconcileService.Reconcile(r.Context())
	if err != nil {
		h.logger.Error("reconciliation failed", zap.Error(err))
		respondWithError(w, http.StatusServiceUnavailable, "Reconciliation failed: "+err.Error())
		return
	}

	if discrepancies == nil {
		discrepancies = []service.Discrepancy{}
	}
	respondJSON(w, http.StatusOK, discrepancies)
}
