package receiving

import (
	"testing"
	"time"

	"malkabul-backend/internal/database"
	"malkabul-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB: Her test için izole in-memory sqlite. Tek bağlantıya
// sabitleniyor; sqlite'ta her yeni bağlantı ayrı bir in-memory DB olurdu.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func seedVendor(t *testing.T, db *gorm.DB) models.Vendor {
	t.Helper()

	vendor := models.Vendor{Name: "Anadolu Gıda " + uuid.NewString()[:8]}
	require.NoError(t, db.Create(&vendor).Error)
	return vendor
}

// seedShipment: Kalemleriyle birlikte doğrulamaya hazır sevkiyat oluşturur
func seedShipment(t *testing.T, db *gorm.DB, mode models.WorkflowMode, items ...models.PendingItem) *models.PendingShipment {
	t.Helper()

	vendor := seedVendor(t, db)

	shipment := models.PendingShipment{
		VendorID:            vendor.ID,
		PurchaseOrderNumber: "PO-2026-001",
		WorkflowMode:        mode,
		WorkflowStep:        models.StepNotStarted,
		Status:              models.StatusPendingReview,
		UploadedBy:          1,
		UploadedAt:          time.Now(),
		Items:               items,
	}
	require.NoError(t, db.Create(&shipment).Error)
	return &shipment
}

func item(sku, barcode string, expected int) models.PendingItem {
	return models.PendingItem{
		SKU:              sku,
		Name:             "Test Ürünü " + sku,
		Barcode:          barcode,
		QuantityExpected: expected,
		UnitCost:         4.5,
		SellingPrice:     7.9,
	}
}
