package models

import "time"

// Product: Envanter katalogundaki ürün. Bu tablo yalnızca envanter
// yazıcısı (commit) üzerinden güncellenir.
type Product struct {
	ID              uint    `gorm:"primaryKey"`
	Name            string  `gorm:"size:150;not null"`
	SKU             string  `gorm:"size:50;uniqueIndex"`
	Barcode         string  `gorm:"size:50;index"`
	SellingPrice    float64 `gorm:"not null"` // satış fiyatı
	UnitCost        float64 `gorm:"not null"` // birim maliyet
	CurrentQuantity int     `gorm:"not null;default:0"`
	VendorID        *uint   `gorm:"index"`
	Vendor          *Vendor
	LastRestockedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
