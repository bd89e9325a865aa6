package receiving

import (
	"strings"

	"malkabul-backend/internal/models"
)

// ResolveItem: Okutulan barkod/SKU'yu sevkiyat kalemine çözer. Eşleşme
// sırası (ilk eşleşen kazanır):
//  1. Birebir barkod eşitliği
//  2. 13 hane ve '0' ile başlıyorsa baştaki sıfır atılıp 12 hane olarak
//     tekrar denenir (EAN-13 -> UPC-A)
//  3. 12 haneyse başına '0' eklenip tekrar denenir (UPC-A -> EAN-13)
//  4. Birebir SKU eşitliği
//
// Eşleşme yoksa nil döner; bu bir hata değil, sorun bildirimi adayıdır.
// Aynı koda birden fazla kalem uyarsa henüz tamamlanmamış olan tercih
// edilir ki mükerrer okutma yanlış kaleme gitmesin.
func ResolveItem(code string, items []models.PendingItem) *models.PendingItem {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil
	}

	if it := findMatch(items, func(it *models.PendingItem) bool {
		return strings.TrimSpace(it.Barcode) == code
	}); it != nil {
		return it
	}

	if stripped, ok := StripLeadingZero(code); ok {
		if it := findMatch(items, func(it *models.PendingItem) bool {
			return strings.TrimSpace(it.Barcode) == stripped
		}); it != nil {
			return it
		}
	}

	if padded, ok := PadToEAN13(code); ok {
		if it := findMatch(items, func(it *models.PendingItem) bool {
			return strings.TrimSpace(it.Barcode) == padded
		}); it != nil {
			return it
		}
	}

	if it := findMatch(items, func(it *models.PendingItem) bool {
		return strings.TrimSpace(it.SKU) == code
	}); it != nil {
		return it
	}

	return nil
}

// StripLeadingZero: 13 haneli, '0' ile başlayan bir kodu 12 haneye indirir
// (EAN-13 -> UPC-A eşdeğerliği)
func StripLeadingZero(code string) (string, bool) {
	if len(code) == 13 && isDigits(code) && code[0] == '0' {
		return code[1:], true
	}
	return code, false
}

// PadToEAN13: 12 haneli bir kodun başına '0' ekler (UPC-A -> EAN-13)
func PadToEAN13(code string) (string, bool) {
	if len(code) == 12 && isDigits(code) {
		return "0" + code, true
	}
	return code, false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// findMatch: Eşleşen kalemler arasında kalan miktarı olan ilkini döner;
// hepsi tamamlanmışsa ilk eşleşeni döner (duplicate sinyali için).
func findMatch(items []models.PendingItem, match func(*models.PendingItem) bool) *models.PendingItem {
	var fallback *models.PendingItem
	for i := range items {
		it := &items[i]
		if !match(it) {
			continue
		}
		if it.Remaining() > 0 {
			return it
		}
		if fallback == nil {
			fallback = it
		}
	}
	return fallback
}
