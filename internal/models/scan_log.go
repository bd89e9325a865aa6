package models

import "time"

type ScanResult string

const (
	ScanMatch     ScanResult = "match"
	ScanDuplicate ScanResult = "duplicate"
	ScanMismatch  ScanResult = "mismatch"
)

// ScanLog: Doğrulama sırasında yapılan her okutmanın kaydı
type ScanLog struct {
	ID            uint  `gorm:"primaryKey"`
	ShipmentID    uint  `gorm:"index;not null"`
	PendingItemID *uint `gorm:"index"`
	ScannedCode   string     `gorm:"size:50;not null"`
	Result        ScanResult `gorm:"size:20;not null"`
	ScannedBy     uint       `gorm:"not null"`
	DeviceID      string     `gorm:"size:100"`
	ScannedAt     time.Time  `gorm:"not null"`
}
