package receiving

import (
	"errors"
	"time"

	"malkabul-backend/internal/models"

	"gorm.io/gorm"
)

type IssueReport struct {
	ShipmentID       uint
	PendingItemID    *uint
	Type             models.IssueType
	Severity         models.IssueSeverity
	Description      string
	QuantityAffected int
	PhotoPath        string
	ReportedBy       uint
}

func ValidIssueType(t models.IssueType) bool {
	switch t {
	case models.IssueMissing, models.IssueDamaged, models.IssueWrongItem,
		models.IssueQuantityMismatch, models.IssueExpired, models.IssueQuality,
		models.IssueOther:
		return true
	}
	return false
}

func ValidSeverity(s models.IssueSeverity) bool {
	switch s {
	case models.SeverityMinor, models.SeverityMajor, models.SeverityCritical:
		return true
	}
	return false
}

// ReportIssue: Sorun kaydı oluşturur. Sevkiyat terminal durumda değilse
// her zaman başarılıdır; check-in'i bloklamaz, geri almaz ve kalemin
// doğrulanan miktarına dokunmaz. Kayıt oluştuktan sonra değişmez.
func ReportIssue(db *gorm.DB, rep IssueReport) (*models.ShipmentIssue, error) {
	var shipment models.PendingShipment
	if err := db.First(&shipment, "id = ?", rep.ShipmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShipmentNotFound
		}
		return nil, err
	}
	if shipment.Status.Terminal() {
		return nil, &InvalidTransitionError{Step: shipment.WorkflowStep, Operation: "issue"}
	}

	if rep.PendingItemID != nil {
		var item models.PendingItem
		if err := db.First(&item, "id = ? AND shipment_id = ?", *rep.PendingItemID, rep.ShipmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrItemNotFound
			}
			return nil, err
		}
	}

	if rep.QuantityAffected <= 0 {
		rep.QuantityAffected = 1
	}
	if rep.Severity == "" {
		rep.Severity = models.SeverityMinor
	}

	issue := models.ShipmentIssue{
		ShipmentID:       rep.ShipmentID,
		PendingItemID:    rep.PendingItemID,
		IssueType:        rep.Type,
		Severity:         rep.Severity,
		QuantityAffected: rep.QuantityAffected,
		Description:      rep.Description,
		PhotoPath:        rep.PhotoPath,
		ReportedBy:       rep.ReportedBy,
		ReportedAt:       time.Now(),
		ResolutionStatus: models.ResolutionOpen,
	}

	if err := db.Create(&issue).Error; err != nil {
		return nil, err
	}

	return &issue, nil
}

// ResolveIssue: Sorunun çözüm durumunu günceller. Sorun içeriği
// (tip, açıklama, miktar) değişmez; sadece çözüm alanları yazılır.
func ResolveIssue(db *gorm.DB, issueID uint, status models.IssueResolution, notes string, resolvedBy uint) (*models.ShipmentIssue, error) {
	switch status {
	case models.ResolutionResolved, models.ResolutionVendorContacted, models.ResolutionCreditIssued:
	default:
		return nil, errors.New("çözüm durumu 'resolved', 'vendor_contacted' veya 'credit_issued' olmalı")
	}

	var issue models.ShipmentIssue
	if err := db.First(&issue, "id = ?", issueID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIssueNotFound
		}
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"resolution_status": status,
		"resolved_by":       resolvedBy,
		"resolved_at":       now,
		"resolution_notes":  notes,
	}
	if err := db.Model(&issue).Updates(updates).Error; err != nil {
		return nil, err
	}

	issue.ResolutionStatus = status
	issue.ResolvedBy = &resolvedBy
	issue.ResolvedAt = &now
	issue.ResolutionNotes = notes

	return &issue, nil
}

// OpenCriticalIssues: Çözülmemiş kritik sorun sayısı. Adım geçişini
// engellemez, sadece uyarı üretir.
func OpenCriticalIssues(issues []models.ShipmentIssue) int {
	count := 0
	for i := range issues {
		if issues[i].Severity == models.SeverityCritical && issues[i].ResolutionStatus == models.ResolutionOpen {
			count++
		}
	}
	return count
}
