package models

import "time"

// Vendor: Sevkiyatların geldiği tedarikçi
type Vendor struct {
	ID            uint   `gorm:"primaryKey"`
	Name          string `gorm:"size:150;uniqueIndex;not null"`
	ContactPerson string `gorm:"size:100"`
	Email         string `gorm:"size:100"`
	Phone         string `gorm:"size:20"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
