package database

import (
	"log"

	"malkabul-backend/internal/config"
	"malkabul-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}

// Migrate: Tüm tabloları oluştur/güncelle. Testlerde sqlite ile de
// çağrılıyor, o yüzden ayrı fonksiyon.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Vendor{},
		&models.Product{},
		&models.PendingShipment{},
		&models.PendingItem{},
		&models.ShipmentIssue{},
		&models.ScanLog{},
		&models.ApprovedShipment{},
		&models.ApprovedShipmentItem{},
		&models.ReceivingSetting{},
		&models.AuditLog{},
	)
}
