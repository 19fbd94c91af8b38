package handler

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pressgate/broker-api/internal/service"
)

type FileHandler struct {
	fileService   *service.FileService
	maxUploadSize int64
	logger        *zap.Logger
}

func NewFileHandler(fileService *service.FileService, maxUploadSizeMB int64, logger *zap.Logger) *FileHandler {
	return &FileHandler{
		fileService:   fileService,
		maxUploadSize: maxUploadSizeMB * 1024 * 1024,
		logger:        logger,
	}
}

// Upload godoc
// @Summary Upload a production file
// @Description Upload an artwork or data file for a job as multipart form data. The matching readiness flag flips to received.
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Job ID"
// @Param kind formData string true "File kind" Enums(artwork, data_file)
// @Param file formData file true "File"
// @Success 201 {object} domain.ArtworkFileDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/files [post]
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "id"), "job ID")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid or oversized multipart body")
		return
	}

	kind := r.FormValue("kind")
	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	dto, err := h.fileService.Upload(r.Context(), id, kind, header.Filename, contentType, file)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to upload file")
		return
	}

	respondJSON(w, http.StatusCreated, dto)
}

// List godoc
// @Summary List a job's production files
// @Tags Files
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {array} domain.ArtworkFileDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/files [get]
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "id"), "job ID")
	if !ok {
		return
	}

	files, err := h.fileService.ListByJob(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list files")
		return
	}

	respondJSON(w, http.StatusOK, files)
}

// Download godoc
// @Summary Download a production file
// @Tags Files
// @Produce octet-stream
// @Param fileId path string true "File ID"
// @Success 200 {file} binary
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /files/{fileId} [get]
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "fileId"), "file ID")
	if !ok {
		return
	}

	reader, meta, err := h.fileService.Download(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to download file")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", meta.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+meta.Filename+`"`)
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("failed to stream file", zap.String("file_id", id.String()), zap.Error(err))
	}
}

// Delete godoc
// @Summary Delete a production file
// @Description Delete a file. When the last file of a kind is removed the tied readiness flag drops back to pending.
// @Tags Files
// @Param fileId path string true "File ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /files/{fileId} [delete]
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, chi.URLParam(r, "fileId"), "file ID")
	if !ok {
		return
	}

	if err := h.fileService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete file")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
