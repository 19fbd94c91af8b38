package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pressgate/broker-api/internal/auth"
	"github.com/pressgate/broker-api/internal/domain"
	"github.com/pressgate/broker-api/internal/mapper"
	"github.com/pressgate/broker-api/internal/repository"
	"github.com/pressgate/broker-api/internal/storage"
)

// Production file kinds. Each kind is tied to a readiness flag that flips to
// received when the first file of that kind arrives.
const (
	FileKindArtwork  = "artwork"
	FileKindDataFile = "data_file"
)

// FileService stores job production files and keeps the tied readiness flags
// in sync with what has been uploaded.
type FileService struct {
	fileRepo *repository.ArtworkFileRepository
	jobRepo  *repository.JobRepository
	store    storage.Storage
	logger   *zap.Logger
}

// NewFileService creates a FileService
func NewFileService(fileRepo *repository.ArtworkFileRepository, jobRepo *repository.JobRepository, store storage.Storage, logger *zap.Logger) *FileService {
	return &FileService{
		fileRepo: fileRepo,
		jobRepo:  jobRepo,
		store:    store,
		logger:   logger,
	}
}

// Upload stores a production file and flips the matching readiness flag to
// received if it was still pending.
func (s *FileService) Upload(ctx context.Context, jobID uuid.UUID, kind, filename, contentType string, data io.Reader) (*domain.ArtworkFileDTO, error) {
	if kind != FileKindArtwork && kind != FileKindDataFile {
		return nil, domain.NewValidationError("kind", "must be artwork or data_file")
	}

	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	storagePath, size, err := s.store.Upload(ctx, job.JobNumber, filename, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	file := &domain.ArtworkFile{
		JobID:       jobID,
		Kind:        kind,
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		StoragePath: storagePath,
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		// Orphaned bytes are worse than a failed upload
		if derr := s.store.Delete(ctx, storagePath); derr != nil {
			s.logger.Warn("failed to clean up stored file after create failure",
				zap.String("storage_path", storagePath),
				zap.Error(derr))
		}
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	s.syncFlag(ctx, job, kind)

	s.logger.Info("production file uploaded",
		zap.String("job_number", job.JobNumber),
		zap.String("kind", kind),
		zap.String("filename", filename),
		zap.Int64("size", size),
		zap.String("user", displayName(ctx)))

	dto := mapper.ToArtworkFileDTO(file)
	return &dto, nil
}

// Download opens a stored file and returns its metadata alongside the stream.
func (s *FileService) Download(ctx context.Context, fileID uuid.UUID) (io.ReadCloser, *domain.ArtworkFileDTO, error) {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, fmt.Errorf("failed to get file: %w", err)
	}

	reader, err := s.store.Download(ctx, file.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open stored file: %w", err)
	}

	dto := mapper.ToArtworkFileDTO(file)
	return reader, &dto, nil
}

// Delete removes a stored file. When the last file of a kind goes away the
// tied readiness flag drops back to pending unless an operator has marked it
// not applicable.
func (s *FileService) Delete(ctx context.Context, fileID uuid.UUID) error {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFileNotFound
		}
		return fmt.Errorf("failed to get file: %w", err)
	}

	if err := s.store.Delete(ctx, file.StoragePath); err != nil {
		return fmt.Errorf("failed to delete stored file: %w", err)
	}
	if err := s.fileRepo.Delete(ctx, fileID); err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}

	job, err := s.jobRepo.GetByID(ctx, file.JobID)
	if err == nil {
		s.syncFlag(ctx, job, file.Kind)
	}

	return nil
}

// ListByJob lists a job's production files.
func (s *FileService) ListByJob(ctx context.Context, jobID uuid.UUID) ([]domain.ArtworkFileDTO, error) {
	files, err := s.fileRepo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	dtos := make([]domain.ArtworkFileDTO, len(files))
	for i := range files {
		dtos[i] = mapper.ToArtworkFileDTO(&files[i])
	}
	return dtos, nil
}

// syncFlag reconciles one readiness flag with the file count for its kind.
// A flag set to not_applicable is an operator decision and is left alone.
func (s *FileService) syncFlag(ctx context.Context, job *domain.Job, kind string) {
	count, err := s.fileRepo.CountByJobAndKind(ctx, job.ID, kind)
	if err != nil {
		s.logger.Warn("failed to count files for readiness sync",
			zap.String("job_id", job.ID.String()),
			zap.Error(err))
		return
	}

	var flag *domain.ReadinessState
	switch kind {
	case FileKindArtwork:
		flag = &job.ArtworkStatus
	case FileKindDataFile:
		flag = &job.DataFilesStatus
	default:
		return
	}

	if *flag == domain.ReadinessNotApplicable {
		return
	}

	want := domain.ReadinessPending
	if count > 0 {
		want = domain.ReadinessReceived
	}
	if *flag == want {
		return
	}
	*flag = want

	if err := s.jobRepo.UpdateWithVersion(ctx, job, job.Version); err != nil {
		s.logger.Warn("failed to update readiness flag from file sync",
			zap.String("job_id", job.ID.String()),
			zap.Error(err))
	}
}

func displayName(ctx context.Context) string {
	if userCtx, ok := auth.FromContext(ctx); ok {
		return userCtx.DisplayName
	}
	return ""
}
