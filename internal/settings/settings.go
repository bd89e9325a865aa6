package settings

import (
	"malkabul-backend/internal/models"

	"gorm.io/gorm"
)

const (
	KeyWorkflowMode       = "workflow_mode"
	KeyAutoAddToInventory = "auto_add_to_inventory"
)

// ReceivingConfig: Mal kabul akışının dış yapılandırması. Sevkiyat
// etkileşimi başına bir kez okunur; motor tarafından değiştirilmez.
type ReceivingConfig struct {
	WorkflowMode       models.WorkflowMode `json:"workflow_mode"`
	AutoAddToInventory bool                `json:"auto_add_to_inventory"`
}

// Load: Ayarları veritabanından oku, kayıt yoksa varsayılanları kullan
// (simple mod + otomatik envanter ekleme).
func Load(db *gorm.DB) ReceivingConfig {
	cfg := ReceivingConfig{
		WorkflowMode:       models.ModeSimple,
		AutoAddToInventory: true,
	}

	var rows []models.ReceivingSetting
	if err := db.Where("key IN ?", []string{KeyWorkflowMode, KeyAutoAddToInventory}).Find(&rows).Error; err != nil {
		return cfg
	}

	for _, row := range rows {
		switch row.Key {
		case KeyWorkflowMode:
			if row.Value == string(models.ModeThreeStep) {
				cfg.WorkflowMode = models.ModeThreeStep
			}
		case KeyAutoAddToInventory:
			cfg.AutoAddToInventory = row.Value != "false"
		}
	}

	return cfg
}

// Save: Ayarları key/value tablosuna yaz (upsert)
func Save(db *gorm.DB, cfg ReceivingConfig) error {
	pairs := map[string]string{
		KeyWorkflowMode:       string(cfg.WorkflowMode),
		KeyAutoAddToInventory: "true",
	}
	if !cfg.AutoAddToInventory {
		pairs[KeyAutoAddToInventory] = "false"
	}

	for key, value := range pairs {
		var row models.ReceivingSetting
		err := db.Where("key = ?", key).First(&row).Error
		if err != nil {
			if err := db.Create(&models.ReceivingSetting{Key: key, Value: value}).Error; err != nil {
				return err
			}
			continue
		}
		if row.Value != value {
			if err := db.Model(&row).Update("value", value).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
