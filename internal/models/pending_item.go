package models

import "time"

// PendingItem: Sevkiyat içinde doğrulama bekleyen tek ürün satırı.
// Değişmez: 0 <= QuantityVerified <= QuantityExpected, ve
// QuantityVerified hiçbir işlemle azalmaz.
type PendingItem struct {
	ID         uint `gorm:"primaryKey"`
	ShipmentID uint `gorm:"index;not null"`
	ProductID  *uint `gorm:"index"` // ilk check-in/commit'e kadar boş olabilir
	Product    *Product
	LineNumber int    `gorm:"not null;default:0"` // belgedeki satır sırası
	SKU        string `gorm:"size:50;index"`
	Name       string `gorm:"size:150"`
	Barcode    string `gorm:"size:50;index"`
	LotNumber  string `gorm:"size:50"`
	ExpirationDate   *time.Time
	QuantityExpected int     `gorm:"not null"`           // yüklemede sabitlenir
	QuantityVerified int     `gorm:"not null;default:0"` // sadece artar
	UnitCost         float64 `gorm:"not null"`
	SellingPrice     float64 // fiyat onayı adımında güncellenebilir
	VerifiedBy       *uint
	VerifiedAt       *time.Time
	CommittedAt      *time.Time // envantere yazıldı (kalem bazında idempotentlik)
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Remaining: Henüz doğrulanmamış miktar
func (p *PendingItem) Remaining() int {
	return p.QuantityExpected - p.QuantityVerified
}

// FullyVerified: Beklenen miktarın tamamı okutuldu mu?
func (p *PendingItem) FullyVerified() bool {
	return p.QuantityVerified >= p.QuantityExpected
}
