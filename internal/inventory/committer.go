package inventory

import (
	"time"

	"malkabul-backend/internal/models"

	"gorm.io/gorm"
)

// Committer: Doğrulanmış sevkiyat kalemlerini ürün katalogu ve stok
// miktarlarına işleyen yazıcı. Ürün eşleşmesi sırayla ProductID, SKU ve
// barkod üzerinden denenir; hiçbiri tutmazsa katalogda yeni ürün açılır.
type Committer struct{}

func NewCommitter() *Committer {
	return &Committer{}
}

func (w *Committer) AddStock(db *gorm.DB, item *models.PendingItem, vendorID uint) (uint, error) {
	product, err := w.resolveProduct(db, item, vendorID)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		// Artış toplama olarak yazılır, okunan değerin üstüne değil
		"current_quantity":  gorm.Expr("current_quantity + ?", item.QuantityVerified),
		"unit_cost":         item.UnitCost,
		"last_restocked_at": now,
	}
	if item.SellingPrice > 0 {
		updates["selling_price"] = item.SellingPrice
	}
	if product.VendorID == nil {
		updates["vendor_id"] = vendorID
	}

	if err := db.Model(&models.Product{}).Where("id = ?", product.ID).Updates(updates).Error; err != nil {
		return 0, err
	}

	return product.ID, nil
}

func (w *Committer) resolveProduct(db *gorm.DB, item *models.PendingItem, vendorID uint) (*models.Product, error) {
	var product models.Product

	if item.ProductID != nil {
		if err := db.First(&product, "id = ?", *item.ProductID).Error; err == nil {
			return &product, nil
		}
	}

	if item.SKU != "" {
		if err := db.First(&product, "sku = ?", item.SKU).Error; err == nil {
			return &product, nil
		}
	}

	if item.Barcode != "" {
		if err := db.First(&product, "barcode = ?", item.Barcode).Error; err == nil {
			return &product, nil
		}
	}

	product = models.Product{
		Name:         item.Name,
		SKU:          item.SKU,
		Barcode:      item.Barcode,
		SellingPrice: item.SellingPrice,
		UnitCost:     item.UnitCost,
		VendorID:     &vendorID,
	}
	if product.Name == "" {
		product.Name = item.SKU
	}
	if err := db.Create(&product).Error; err != nil {
		return nil, err
	}

	return &product, nil
}
