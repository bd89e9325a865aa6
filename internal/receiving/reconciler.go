package receiving

import (
	"errors"
	"time"

	"malkabul-backend/internal/models"

	"gorm.io/gorm"
)

// checkInMaxRetries: CAS döngüsünün üst sınırı. Her kayıp denemede
// kalem yeniden okunur; aynı kaleme yazan cihaz sayısı kadar deneme
// pratikte fazlasıyla yeterli.
const checkInMaxRetries = 10

type CheckInResult struct {
	Item          models.PendingItem
	Applied       int  // gerçekten işlenen miktar (kırpılmış)
	Duplicate     bool // kalem zaten tamamen doğrulanmıştı
	FullyVerified bool
}

// clampQuantity: applied = min(requested, expected - verified).
// Kalan 0 veya altıysa 0 döner; tekrar okutma hata değil "duplicate"tir.
func clampQuantity(expected, verified, requested int) int {
	remaining := expected - verified
	if remaining <= 0 || requested <= 0 {
		return 0
	}
	if requested < remaining {
		return requested
	}
	return remaining
}

// CheckIn: Kaleme doğrulanmış miktar ekler. Birden fazla cihaz aynı
// kalemi aynı anda okutabileceği için mutlak değer yazmak yerine delta,
// optimistic CAS ile uygulanır: UPDATE yalnızca okunan quantity_verified
// hâlâ geçerliyse işler, değilse yeniden okunup tekrar denenir. Böylece
// uygulanan miktarların toplamı hiçbir sıralamada kalan miktarı aşamaz.
func CheckIn(db *gorm.DB, itemID uint, requested int, employeeID uint) (*CheckInResult, error) {
	for attempt := 0; attempt < checkInMaxRetries; attempt++ {
		var item models.PendingItem
		if err := db.First(&item, "id = ?", itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrItemNotFound
			}
			return nil, err
		}

		applied := clampQuantity(item.QuantityExpected, item.QuantityVerified, requested)
		if applied == 0 {
			return &CheckInResult{
				Item:          item,
				Applied:       0,
				Duplicate:     item.FullyVerified(),
				FullyVerified: item.FullyVerified(),
			}, nil
		}

		newTotal := item.QuantityVerified + applied
		now := time.Now()

		res := db.Model(&models.PendingItem{}).
			Where("id = ? AND quantity_verified = ?", itemID, item.QuantityVerified).
			Updates(map[string]interface{}{
				"quantity_verified": newTotal,
				"verified_by":       employeeID,
				"verified_at":       now,
			})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			// Başka bir oturum araya girdi, güncel değerle tekrar dene
			continue
		}

		item.QuantityVerified = newTotal
		item.VerifiedBy = &employeeID
		item.VerifiedAt = &now

		return &CheckInResult{
			Item:          item,
			Applied:       applied,
			Duplicate:     false,
			FullyVerified: item.FullyVerified(),
		}, nil
	}

	return nil, ErrCheckInContention
}
