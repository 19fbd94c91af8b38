package service

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pressgate/broker-api/internal/domain"
	"github.com/pressgate/broker-api/internal/repository"
	"github.com/pressgate/broker-api/internal/storage"
)

func newFileServiceForTest(t *testing.T) (*FileService, *repository.JobRepository, *domain.JobDTO) {
	t.Helper()
	db := newTestDB(t)
	jobSvc := newJobServiceForTest(db)
	customer := createTestCustomer(t, db)

	job, err := jobSvc.Create(context.Background(), &domain.CreateJobRequest{
		Title:      "Postcard",
		CustomerID: customer.ID.String(),
	})
	require.NoError(t, err)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	jobRepo := repository.NewJobRepository(db)
	svc := NewFileService(
		repository.NewArtworkFileRepository(db),
		jobRepo,
		store,
		zap.NewNop(),
	)
	return svc, jobRepo, job
}

func TestFileUploadFlipsReadinessFlag(t *testing.T) {
	svc, jobRepo, job := newFileServiceForTest(t)

	dto, err := svc.Upload(context.Background(), job.ID, FileKindArtwork,
		"cover.pdf", "application/pdf", bytes.NewReader([]byte("%PDF-1.7")))
	require.NoError(t, err)
	assert.Equal(t, "cover.pdf", dto.Filename)
	assert.Equal(t, int64(8), dto.Size)

	stored, err := jobRepo.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReadinessReceived, stored.ArtworkStatus)
	assert.Equal(t, domain.ReadinessPending, stored.DataFilesStatus)
}

func TestFileDownloadRoundTrip(t *testing.T) {
	svc, _, job := newFileServiceForTest(t)

	content := []byte("name;address\nKari;Oslo\n")
	dto, err := svc.Upload(context.Background(), job.ID, FileKindDataFile,
		"addresses.csv", "text/csv", bytes.NewReader(content))
	require.NoError(t, err)

	reader, meta, err := svc.Download(context.Background(), dto.ID)
	require.NoError(t, err)
	defer reader.Close()

	got, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, "addresses.csv", meta.Filename)
	assert.Equal(t, "text/csv", meta.ContentType)
}

func TestFileDeleteLastFileDropsFlagToPending(t *testing.T) {
	svc, jobRepo, job := newFileServiceForTest(t)

	first, err := svc.Upload(context.Background(), job.ID, FileKindArtwork,
		"front.pdf", "application/pdf", bytes.NewReader([]byte("front")))
	require.NoError(t, err)
	second, err := svc.Upload(context.Background(), job.ID, FileKindArtwork,
		"back.pdf", "application/pdf", bytes.NewReader([]byte("back")))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), first.ID))

	stored, err := jobRepo.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReadinessReceived, stored.ArtworkStatus)

	require.NoError(t, svc.Delete(context.Background(), second.ID))

	stored, err = jobRepo.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReadinessPending, stored.ArtworkStatus)
}

func TestFileDeleteRespectsNotApplicable(t *testing.T) {
	svc, jobRepo, job := newFileServiceForTest(t)

	dto, err := svc.Upload(context.Background(), job.ID, FileKindDataFile,
		"data.csv", "text/csv", bytes.NewReader([]byte("x")))
	require.NoError(t, err)

	// An operator marking the flag not-applicable wins over file counting.
	stored, err := jobRepo.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	stored.DataFilesStatus = domain.ReadinessNotApplicable
	require.NoError(t, jobRepo.UpdateWithVersion(context.Background(), stored, stored.Version))

	require.NoError(t, svc.Delete(context.Background(), dto.ID))

	stored, err = jobRepo.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReadinessNotApplicable, stored.DataFilesStatus)
}

func TestFileUploadRejectsUnknownKind(t *testing.T) {
	svc, _, job := newFileServiceForTest(t)

	_, err := svc.Upload(context.Background(), job.ID, "blueprint",
		"plan.pdf", "application/pdf", bytes.NewReader([]byte("x")))
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}
