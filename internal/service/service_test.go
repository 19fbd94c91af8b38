package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pressgate/broker-api/internal/database"
	"github.com/pressgate/broker-api/internal/domain"
	"github.com/pressgate/broker-api/internal/repository"
)

// newTestDB opens a fresh in-memory database per test. A single connection
// keeps the pool from handing out a second, empty :memory: database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func createTestCustomer(t *testing.T, db *gorm.DB) *domain.Customer {
	t.Helper()
	customer := &domain.Customer{
		Name:      "Nordic Catalogs AS",
		OrgNumber: "987654321",
		Email:     "orders@nordiccatalogs.example",
		IsActive:  true,
	}
	require.NoError(t, repository.NewCustomerRepository(db).Create(context.Background(), customer))
	return customer
}

func createTestVendor(t *testing.T, db *gorm.DB, name string, partner bool) *domain.Vendor {
	t.Helper()
	vendor := &domain.Vendor{
		Name:               name,
		Email:              "print@" + name + ".example",
		IsPreferredPartner: partner,
		IsActive:           true,
	}
	require.NoError(t, repository.NewVendorRepository(db).Create(context.Background(), vendor))
	return vendor
}

func newJobServiceForTest(db *gorm.DB) *JobService {
	log := zap.NewNop()
	return NewJobService(
		repository.NewJobRepository(db),
		repository.NewLineItemRepository(db),
		repository.NewPurchaseOrderRepository(db),
		repository.NewProfitSplitRepository(db),
		repository.NewCustomerRepository(db),
		repository.NewVendorRepository(db),
		repository.NewNumberSequenceRepository(db),
		repository.NewActivityRepository(db),
		log,
		db,
	)
}
