package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/pressgate/broker-api/internal/domain"
	"github.com/pressgate/broker-api/internal/pricing"
)

type PricingHandler struct {
	logger *zap.Logger
}

func NewPricingHandler(logger *zap.Logger) *PricingHandler {
	return &PricingHandler{logger: logger}
}

// ListCPMRates godoc
// @Summary List the CPM rate table
// @Description Get the static per-thousand rate table used to price partner-routed jobs with a known finished size.
// @Tags Pricing
// @Produce json
// @Success 200 {array} domain.CPMRateDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /pricing/cpm-rates [get]
func (h *PricingHandler) ListCPMRates(w http.ResponseWriter, r *http.Request) {
	entries := pricing.CPMSizes()
	dtos := make([]domain.CPMRateDTO, len(entries))
	for i, e := range entries {
		dtos[i] = domain.CPMRateDTO{
			FinishedSize:      e.FinishedSize,
			PaperCostCPM:      e.PaperCostCPM.StringFixed(2),
			PaperSellCPM:      e.PaperSellCPM.StringFixed(2),
			PrintCPM:          e.PrintCPM.StringFixed(2),
			PoundsPerThousand: e.PoundsPerThousand.String(),
		}
	}
	respondJSON(w, http.StatusOK, dtos)
}
