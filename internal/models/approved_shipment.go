package models

import "time"

// ApprovedShipment: Doğrulaması tamamlanıp envantere aktarılan sevkiyatın
// kalıcı kaydı. PendingShipment başına en fazla bir tane olur; commit
// tekrar denendiğinde mevcut kayıt güncellenir.
type ApprovedShipment struct {
	ID                  uint `gorm:"primaryKey"`
	PendingShipmentID   uint `gorm:"uniqueIndex;not null"`
	VendorID            uint `gorm:"index;not null"`
	PurchaseOrderNumber string `gorm:"size:50"`
	ReceivedDate        time.Time
	ApprovedBy          uint
	ApprovedAt          time.Time
	TotalItemsReceived  int     `gorm:"not null;default:0"`
	TotalCost           float64 `gorm:"not null;default:0"`
	HasIssues           bool    `gorm:"not null;default:false"`
	IssueCount          int     `gorm:"not null;default:0"`
	CreatedAt           time.Time
	UpdatedAt           time.Time

	Items []ApprovedShipmentItem `gorm:"foreignKey:ApprovedShipmentID;constraint:OnDelete:CASCADE"`
}

// ApprovedShipmentItem: Envantere aktarılan tek kalem. (shipment, pending
// item) çifti benzersiz; tekrar commit aynı kalemi ikinci kez yazamaz.
type ApprovedShipmentItem struct {
	ID                 uint `gorm:"primaryKey"`
	ApprovedShipmentID uint `gorm:"index;not null;uniqueIndex:idx_approved_item"`
	PendingItemID      uint `gorm:"not null;uniqueIndex:idx_approved_item"`
	ProductID          uint `gorm:"index;not null"`
	QuantityReceived   int     `gorm:"not null"`
	UnitCost           float64 `gorm:"not null"`
	SellingPrice       float64
	LotNumber          string `gorm:"size:50"`
	ExpirationDate     *time.Time
	ReceivedBy         uint
	ReceivedAt         time.Time
	CreatedAt          time.Time
}
