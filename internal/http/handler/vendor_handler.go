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

type VendorHandler struct {
	vendorService *service.VendorService
	logger        *zap.Logger
}

func NewVendorHandler(vendorService *service.VendorService, logger *zap.Logger) *VendorHandler {
	return &VendorHandler{vendorService: vendorService, logger: logger}
}

// List godoc
// @Summary List vendors
// @Tags Vendors
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param activeOnly query bool false "Only active vendors"
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vendors [get]
func (h *VendorHandler) List(w http.ResponseWriter, r *http.Request) {
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
	activeOnly := r.URL.Query().Get("activeOnly") == "true"

	vendors, err := h.vendorService.List(r.Context(), page, pageSize, activeOnly)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list vendors")
		return
	}

	respondJSON(w, http.StatusOK, vendors)
}

// Search godoc
// @Summary Search vendors
// @Tags Vendors
// @Produce json
// @Param q query string true "Search query"
// @Success 200 {array} domain.VendorDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vendors/search [get]
func (h *VendorHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}

	vendors, err := h.vendorService.Search(r.Context(), query, 25)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to search vendors")
		return
	}

	respondJSON(w, http.StatusOK, vendors)
}

// Get godoc
// @Summary Get a vendor
// @Tags Vendors
// @Produce json
// @Param id path string true "Vendor ID"
// @Success 200 {object} domain.VendorDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vendors/{id} [get]
func (h *VendorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "id"), "vendor ID")
	if !ok {
		return
	}

	vendor, err := h.vendorService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get vendor")
		return
	}

	respondJSON(w, http.StatusOK, vendor)
}

// Create godoc
// @Summary Create a vendor
// @Tags Vendors
// @Accept json
// @Produce json
// @Param request body domain.VendorRequest true "Vendor"
// @Success 201 {object} domain.VendorDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vendors [post]
func (h *VendorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.VendorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	vendor, err := h.vendorService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create vendor")
		return
	}

	respondJSON(w, http.StatusCreated, vendor)
}

// Update godoc
// @Summary Update a vendor
// @Description Update a vendor. Flipping the partner flag affects how future jobs are routed; existing jobs keep their stored routing.
// @Tags Vendors
// @Accept json
// @Produce json
// @Param id path string true "Vendor ID"
// @Param request body domain.VendorRequest true "Vendor"
// @Success 200 {object} domain.VendorDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vendors/{id} [put]
func (h *VendorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "id"), "vendor ID")
	if !ok {
		return
	}

	var req domain.VendorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	vendor, err := h.vendorService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update vendor")
		return
	}

	respondJSON(w, http.StatusOK, vendor)
}

// Deactivate godoc
// @Summary Deactivate a vendor
// @Tags Vendors
// @Param id path string true "Vendor ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vendors/{id} [delete]
func (h *VendorHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "id"), "vendor ID")
	if !ok {
		return
	}

	if err := h.vendorService.Deactivate(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to deactivate vendor")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
