package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pressgate/broker-api/internal/domain"
	"github.com/pressgate/broker-api/internal/repository"
)

func TestCustomerListPaginates(t *testing.T) {
	db := newTestDB(t)
	svc := NewCustomerService(repository.NewCustomerRepository(db), zap.NewNop())

	var last *domain.CustomerDTO
	for _, name := range []string{"Alfa Forlag", "Bokbinderiet", "Cappelen Trykk"} {
		dto, err := svc.Create(context.Background(), &domain.CustomerRequest{Name: name})
		require.NoError(t, err)
		last = dto
	}

	page, err := svc.List(context.Background(), 1, 2, false)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	customers, ok := page.Data.([]domain.CustomerDTO)
	require.True(t, ok)
	require.Len(t, customers, 2)
	assert.Equal(t, "Alfa Forlag", customers[0].Name)

	page, err = svc.List(context.Background(), 2, 2, false)
	require.NoError(t, err)
	customers = page.Data.([]domain.CustomerDTO)
	require.Len(t, customers, 1)
	assert.Equal(t, "Cappelen Trykk", customers[0].Name)

	// Deactivated customers drop out of the active-only listing.
	require.NoError(t, svc.Deactivate(context.Background(), last.ID))
	page, err = svc.List(context.Background(), 1, 20, true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
}

func TestVendorListPaginates(t *testing.T) {
	db := newTestDB(t)
	svc := NewVendorService(repository.NewVendorRepository(db), zap.NewNop())

	for _, name := range []string{"cityprint", "envelopeworks", "nordtrykk"} {
		_, err := svc.Create(context.Background(), &domain.VendorRequest{Name: name})
		require.NoError(t, err)
	}

	page, err := svc.List(context.Background(), 2, 2, false)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	vendors, ok := page.Data.([]domain.VendorDTO)
	require.True(t, ok)
	require.Len(t, vendors, 1)
	assert.Equal(t, "nordtrykk", vendors[0].Name)
}
