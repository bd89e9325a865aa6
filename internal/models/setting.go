package models

import "time"

// ReceivingSetting: Mal kabul akışının dış yapılandırması (workflow_mode,
// auto_add_to_inventory). Motor bu değerleri okur, asla değiştirmez.
type ReceivingSetting struct {
	ID        uint   `gorm:"primaryKey"`
	Key       string `gorm:"size:50;uniqueIndex;not null"`
	Value     string `gorm:"size:255;not null"`
	UpdatedAt time.Time
}
