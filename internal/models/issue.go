package models

import "time"

type IssueType string

const (
	IssueMissing          IssueType = "missing"
	IssueDamaged          IssueType = "damaged"
	IssueWrongItem        IssueType = "wrong_item"
	IssueQuantityMismatch IssueType = "quantity_mismatch"
	IssueExpired          IssueType = "expired"
	IssueQuality          IssueType = "quality"
	IssueOther            IssueType = "other"
)

type IssueSeverity string

const (
	SeverityMinor    IssueSeverity = "minor"
	SeverityMajor    IssueSeverity = "major"
	SeverityCritical IssueSeverity = "critical"
)

type IssueResolution string

const (
	ResolutionOpen            IssueResolution = "open"
	ResolutionResolved        IssueResolution = "resolved"
	ResolutionVendorContacted IssueResolution = "vendor_contacted"
	ResolutionCreditIssued    IssueResolution = "credit_issued"
)

// ShipmentIssue: Sevkiyat veya tek bir kalem hakkında bildirilen sorun.
// Kayıt oluşturulduktan sonra içeriği değişmez; yalnızca çözüm alanları
// güncellenir.
type ShipmentIssue struct {
	ID               uint  `gorm:"primaryKey"`
	ShipmentID       uint  `gorm:"index;not null"`
	PendingItemID    *uint `gorm:"index"` // sevkiyat geneli sorunlarda boş
	IssueType        IssueType     `gorm:"size:30;not null"`
	Severity         IssueSeverity `gorm:"size:10;not null;default:minor"`
	QuantityAffected int           `gorm:"not null;default:1"`
	Description      string        `gorm:"size:1000"`
	PhotoPath        string        `gorm:"size:255"`
	ReportedBy       uint          `gorm:"not null"`
	ReportedAt       time.Time     `gorm:"not null"`
	ResolutionStatus IssueResolution `gorm:"size:20;not null;default:open"`
	ResolvedBy       *uint
	ResolvedAt       *time.Time
	ResolutionNotes  string `gorm:"size:1000"`
	CreatedAt        time.Time
}
