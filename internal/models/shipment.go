package models

import "time"

// WorkflowMode: Mal kabul onay akışı modu
type WorkflowMode string

const (
	ModeSimple    WorkflowMode = "simple"     // tek adım: doğrula -> tamamla
	ModeThreeStep WorkflowMode = "three_step" // doğrula -> fiyat onayı -> envantere hazır -> tamamla
)

// WorkflowStep: Sevkiyatın akış içindeki adımı. "not_started" ayrı bir
// değer; nullable string yerine açık enum kullanılıyor.
type WorkflowStep string

const (
	StepNotStarted        WorkflowStep = "not_started"
	StepVerify            WorkflowStep = "verify"
	StepConfirmPricing    WorkflowStep = "confirm_pricing"
	StepReadyForInventory WorkflowStep = "ready_for_inventory"
	StepCompleted         WorkflowStep = "completed"
)

type ShipmentStatus string

const (
	StatusPendingReview       ShipmentStatus = "pending_review"
	StatusInProgress          ShipmentStatus = "in_progress"
	StatusCompleted           ShipmentStatus = "completed"
	StatusCompletedWithIssues ShipmentStatus = "completed_with_issues"
)

// Terminal: Sevkiyat kapandı mı? Kapanan sevkiyat bir daha değişmez,
// silinmez (denetim için saklanır).
func (s ShipmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCompletedWithIssues
}

// PendingShipment: Yüklenen ve doğrulama bekleyen tedarikçi sevkiyatı.
// Kalemler belge ayrıştırma adımında (kapsam dışı) hazır gelir.
type PendingShipment struct {
	ID                   uint `gorm:"primaryKey"`
	VendorID             uint `gorm:"index;not null"`
	Vendor               Vendor
	PurchaseOrderNumber  string `gorm:"size:50;index"`
	ExpectedDeliveryDate *time.Time
	ActualDeliveryDate   *time.Time
	DocumentPath         string         `gorm:"size:255"` // yüklenen belgenin yolu
	WorkflowMode         WorkflowMode   `gorm:"size:20;not null;default:simple"`
	WorkflowStep         WorkflowStep   `gorm:"size:30;not null;default:not_started"`
	Status               ShipmentStatus `gorm:"size:30;not null;default:pending_review;index"`
	UploadedBy           uint           `gorm:"not null"`
	UploadedAt           time.Time      `gorm:"not null"`
	StartedBy            *uint
	StartedAt            *time.Time
	CompletedBy          *uint
	CompletedAt          *time.Time
	Notes                string `gorm:"size:2000"`
	CreatedAt            time.Time
	UpdatedAt            time.Time

	Items []PendingItem `gorm:"foreignKey:ShipmentID;constraint:OnDelete:CASCADE"`
}
