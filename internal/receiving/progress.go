package receiving

import (
	"math"

	"malkabul-backend/internal/models"
)

// ProgressSummary: Sevkiyat bazında tamamlanma metrikleri
type ProgressSummary struct {
	TotalItems           int     `json:"total_items"`
	TotalExpected        int     `json:"total_expected_quantity"`
	TotalVerified        int     `json:"total_verified_quantity"`
	ItemsFullyVerified   int     `json:"items_fully_verified"`
	ItemsWithIssues      int     `json:"items_with_issues"`
	CompletionPercentage float64 `json:"completion_percentage"`
	IsComplete           bool    `json:"is_complete"`
}

// Aggregate: Kalem ve sorun listesinden ilerleme özetini hesaplar.
// IsComplete ancak ve ancak her kalemde verified == expected ise true.
// ItemsWithIssues, en az bir sorun kaydı olan farklı kalem sayısıdır ve
// tamamlanmadan bağımsızdır. Beklenen toplam 0 ise yüzde 100 kabul edilir.
func Aggregate(items []models.PendingItem, issues []models.ShipmentIssue) ProgressSummary {
	summary := ProgressSummary{
		TotalItems: len(items),
		IsComplete: true,
	}

	for i := range items {
		it := &items[i]
		summary.TotalExpected += it.QuantityExpected
		summary.TotalVerified += it.QuantityVerified
		if it.FullyVerified() {
			summary.ItemsFullyVerified++
		}
		if it.QuantityVerified != it.QuantityExpected {
			summary.IsComplete = false
		}
	}

	seen := make(map[uint]struct{})
	for i := range issues {
		if issues[i].PendingItemID == nil {
			continue
		}
		seen[*issues[i].PendingItemID] = struct{}{}
	}
	summary.ItemsWithIssues = len(seen)

	if summary.TotalExpected > 0 {
		pct := float64(summary.TotalVerified) * 100.0 / float64(summary.TotalExpected)
		summary.CompletionPercentage = math.Round(pct*100) / 100
	} else {
		summary.CompletionPercentage = 100
	}

	return summary
}
