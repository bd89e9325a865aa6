package receiving

import (
	"errors"
	"fmt"
	"log"
	"time"

	"malkabul-backend/internal/models"
	"malkabul-backend/internal/settings"

	"gorm.io/gorm"
)

// InventoryWriter: Dış envanter sistemine açılan kapı. Kalem bazında
// idempotent olmalı; commit tekrar denendiğinde aynı kalem ikinci kez
// stok artıramaz (servis bunu committed_at ile garanti eder).
type InventoryWriter interface {
	// AddStock: Doğrulanmış kalemi envantere işler, katalogda ürün yoksa
	// oluşturur. Yazılan/bulunan ürünün ID'sini döner.
	AddStock(db *gorm.DB, item *models.PendingItem, vendorID uint) (uint, error)
}

// ErrDecreaseNotAllowed: quantity_verified tekdüze artar, azaltılamaz
var ErrDecreaseNotAllowed = errors.New("doğrulanan miktar azaltılamaz")

// CommitError: Envanter yazımı kısmen başarısız oldu. Doğrulama verisi
// korunur, sevkiyat commit öncesi adımında kalır ve işlem tekrar
// denenebilir; yazılmış kalemler tekrarda atlanır.
type CommitError struct {
	Failed    int
	Committed int
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("%d kalem envantere yazılamadı (%d yazıldı); commit tekrar denenebilir", e.Failed, e.Committed)
}

type Service struct {
	db        *gorm.DB
	sessions  *SessionRegistry
	notifier  *ProgressNotifier
	inventory InventoryWriter
}

func NewService(db *gorm.DB, inv InventoryWriter) *Service {
	return &Service{
		db:        db,
		sessions:  NewSessionRegistry(),
		notifier:  NewProgressNotifier(),
		inventory: inv,
	}
}

func (s *Service) Sessions() *SessionRegistry  { return s.sessions }
func (s *Service) Notifier() *ProgressNotifier { return s.notifier }

func (s *Service) getShipment(id uint) (*models.PendingShipment, error) {
	var shipment models.PendingShipment
	if err := s.db.Preload("Vendor").First(&shipment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShipmentNotFound
		}
		return nil, err
	}
	return &shipment, nil
}

// StartSession: Cihaz için doğrulama oturumu açar. İlk oturum sevkiyatı
// pending_review -> in_progress taşır ve akışı verify adımına sokar.
func (s *Service) StartSession(shipmentID, employeeID uint, deviceID string) (Session, *models.PendingShipment, error) {
	shipment, err := s.getShipment(shipmentID)
	if err != nil {
		return Session{}, nil, err
	}
	if shipment.Status.Terminal() {
		return Session{}, nil, &InvalidTransitionError{Step: shipment.WorkflowStep, Operation: "start"}
	}

	if shipment.Status == models.StatusPendingReview {
		now := time.Now()
		updates := map[string]interface{}{
			"status":     models.StatusInProgress,
			"started_by": employeeID,
			"started_at": now,
		}
		if shipment.WorkflowStep == models.StepNotStarted {
			updates["workflow_step"] = models.StepVerify
		}
		if err := s.db.Model(shipment).Updates(updates).Error; err != nil {
			return Session{}, nil, err
		}
		shipment.Status = models.StatusInProgress
		shipment.StartedBy = &employeeID
		shipment.StartedAt = &now
		if shipment.WorkflowStep == models.StepNotStarted {
			shipment.WorkflowStep = models.StepVerify
		}
	}

	sess := s.sessions.Start(shipmentID, employeeID, deviceID)
	return sess, shipment, nil
}

// ScanOutcome: Tek okutmanın sonucu. Miktar alanları üst seviyede de
// döner ki istemci iç item gövdesini ayrıştırmak zorunda kalmasın.
type ScanOutcome struct {
	Status           string              `json:"status"` // success | duplicate | unknown
	Item             *models.PendingItem `json:"item,omitempty"`
	Applied          int                 `json:"applied"`
	QuantityVerified int                 `json:"quantity_verified"`
	QuantityExpected int                 `json:"quantity_expected"`
	Remaining        int                 `json:"remaining"`
	FullyVerified    bool                `json:"fully_verified"`
	SuggestIssue     bool                `json:"suggest_issue,omitempty"`
}

// Scan: Okutulan kodu kaleme çözer ve 1 adet check-in uygular.
// Bilinmeyen kod hata değildir; "unknown" olarak döner ki istemci sorun
// bildirimi önerebilsin. Her okutma (sonucu ne olursa olsun) loglanır.
func (s *Service) Scan(shipmentID uint, sessionID, code string) (*ScanOutcome, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok || sess.ShipmentID != shipmentID || sess.EndedAt != nil {
		return nil, ErrSessionNotFound
	}

	shipment, err := s.getShipment(shipmentID)
	if err != nil {
		return nil, err
	}
	if shipment.WorkflowStep != models.StepVerify {
		return nil, &InvalidTransitionError{Step: shipment.WorkflowStep, Operation: "scan"}
	}

	var items []models.PendingItem
	if err := s.db.Where("shipment_id = ?", shipmentID).
		Order("line_number, id").Find(&items).Error; err != nil {
		return nil, err
	}

	matched := ResolveItem(code, items)
	if matched == nil {
		s.logScan(shipmentID, nil, code, models.ScanMismatch, sess.EmployeeID, sess.DeviceID)
		s.sessions.RecordScan(sessionID, false)
		return &ScanOutcome{Status: "unknown", SuggestIssue: true}, nil
	}

	res, err := CheckIn(s.db, matched.ID, 1, sess.EmployeeID)
	if err != nil {
		return nil, err
	}

	if res.Applied == 0 {
		s.logScan(shipmentID, &res.Item.ID, code, models.ScanDuplicate, sess.EmployeeID, sess.DeviceID)
		s.sessions.RecordScan(sessionID, false)
		return &ScanOutcome{
			Status:           "duplicate",
			Item:             &res.Item,
			QuantityVerified: res.Item.QuantityVerified,
			QuantityExpected: res.Item.QuantityExpected,
			Remaining:        res.Item.Remaining(),
			FullyVerified:    res.FullyVerified,
		}, nil
	}

	s.logScan(shipmentID, &res.Item.ID, code, models.ScanMatch, sess.EmployeeID, sess.DeviceID)
	s.sessions.RecordScan(sessionID, true)
	s.notifier.Notify(shipmentID)

	return &ScanOutcome{
		Status:           "success",
		Item:             &res.Item,
		Applied:          res.Applied,
		QuantityVerified: res.Item.QuantityVerified,
		QuantityExpected: res.Item.QuantityExpected,
		Remaining:        res.Item.Remaining(),
		FullyVerified:    res.FullyVerified,
	}, nil
}

func (s *Service) logScan(shipmentID uint, itemID *uint, code string, result models.ScanResult, employeeID uint, deviceID string) {
	entry := models.ScanLog{
		ShipmentID:    shipmentID,
		PendingItemID: itemID,
		ScannedCode:   code,
		Result:        result,
		ScannedBy:     employeeID,
		DeviceID:      deviceID,
		ScannedAt:     time.Now(),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		log.Printf("Okutma logu yazılamadı (sevkiyat %d): %v", shipmentID, err)
	}
}

// CheckInDelta: Manuel check-in. İstemci mutlak toplam değil eklenmek
// istenen miktarı (delta) gönderir; kırpma ve uygulama sunucuda atomik
// yapılır.
func (s *Service) CheckInDelta(itemID uint, quantityToAdd int, employeeID uint) (*CheckInResult, error) {
	var item models.PendingItem
	if err := s.db.First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	shipment, err := s.getShipment(item.ShipmentID)
	if err != nil {
		return nil, err
	}
	if shipment.WorkflowStep != models.StepVerify {
		return nil, &InvalidTransitionError{Step: shipment.WorkflowStep, Operation: "check-in"}
	}

	res, err := CheckIn(s.db, itemID, quantityToAdd, employeeID)
	if err != nil {
		return nil, err
	}
	if res.Applied > 0 {
		s.notifier.Notify(item.ShipmentID)
	}
	return res, nil
}

// SetVerifiedTotal: Eski mutlak-değer sözleşmesi için uyumluluk katmanı.
// Eşzamanlı cihazlar altında yarışa açık olduğu için deprecated; mutlak
// hedef sunucuda deltaya çevrilir ve asla azaltma yapılmaz.
func (s *Service) SetVerifiedTotal(itemID uint, target int, employeeID uint) (*CheckInResult, error) {
	var item models.PendingItem
	if err := s.db.First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	delta := target - item.QuantityVerified
	if delta < 0 {
		return nil, ErrDecreaseNotAllowed
	}
	if delta == 0 {
		return &CheckInResult{
			Item:          item,
			Applied:       0,
			Duplicate:     item.FullyVerified(),
			FullyVerified: item.FullyVerified(),
		}, nil
	}

	return s.CheckInDelta(itemID, delta, employeeID)
}

// UpdateSellingPrice: Kalemin satış fiyatını günceller. Sevkiyat terminal
// duruma geçene kadar serbesttir (three_step modda fiyat onayı adımının
// asıl işi budur).
func (s *Service) UpdateSellingPrice(itemID uint, price float64) (*models.PendingItem, error) {
	if price < 0 {
		return nil, errors.New("satış fiyatı negatif olamaz")
	}

	var item models.PendingItem
	if err := s.db.First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	shipment, err := s.getShipment(item.ShipmentID)
	if err != nil {
		return nil, err
	}
	if shipment.Status.Terminal() {
		return nil, &InvalidTransitionError{Step: shipment.WorkflowStep, Operation: "price"}
	}

	if err := s.db.Model(&item).Update("selling_price", price).Error; err != nil {
		return nil, err
	}
	item.SellingPrice = price
	return &item, nil
}

// ReportIssue: Sorun bildirir; oturum verilmişse sayaç güncellenir
func (s *Service) ReportIssue(rep IssueReport, sessionID string) (*models.ShipmentIssue, error) {
	issue, err := ReportIssue(s.db, rep)
	if err != nil {
		return nil, err
	}
	if sessionID != "" {
		s.sessions.RecordIssue(sessionID)
	}
	s.notifier.Notify(rep.ShipmentID)
	return issue, nil
}

// ProgressReport: Progress endpoint'inin tam yanıtı
type ProgressReport struct {
	Shipment       models.PendingShipment `json:"shipment"`
	Items          []models.PendingItem   `json:"pending_items"`
	Issues         []models.ShipmentIssue `json:"issues"`
	Summary        ProgressSummary        `json:"progress"`
	ActiveSessions []Session              `json:"active_sessions,omitempty"`
}

// Progress: Sevkiyatın anlık ilerleme görüntüsü. Salt okunur; kilit
// gerektirmez, kalem miktarlarının tutarlı anlık görüntüsü yeterlidir.
func (s *Service) Progress(shipmentID uint) (*ProgressReport, error) {
	shipment, err := s.getShipment(shipmentID)
	if err != nil {
		return nil, err
	}

	var items []models.PendingItem
	if err := s.db.Where("shipment_id = ?", shipmentID).
		Order("line_number, id").Find(&items).Error; err != nil {
		return nil, err
	}

	var issues []models.ShipmentIssue
	if err := s.db.Where("shipment_id = ?", shipmentID).
		Order("reported_at DESC").Find(&issues).Error; err != nil {
		return nil, err
	}

	return &ProgressReport{
		Shipment:       *shipment,
		Items:          items,
		Issues:         issues,
		Summary:        Aggregate(items, issues),
		ActiveSessions: s.sessions.ActiveForShipment(shipmentID),
	}, nil
}

// AdvanceResult: complete işleminin sonucu
type AdvanceResult struct {
	Step      models.WorkflowStep   `json:"step"`
	Status    models.ShipmentStatus `json:"status"`
	Warnings  []string              `json:"warnings,omitempty"`
	Committed bool                  `json:"committed"`
	Commit    *CommitSummary        `json:"commit,omitempty"`
}

// AdvanceStep: Sevkiyatı bir sonraki akış adımına taşır. verify adımından
// çıkış tüm kalemlerin tam doğrulanmasını gerektirir. Sonraki adım
// completed ise envanter commit'i tetiklenir. Çözülmemiş kritik sorunlar
// geçişi engellemez, yalnızca uyarı üretir.
func (s *Service) AdvanceStep(shipmentID, employeeID uint, notes string) (*AdvanceResult, error) {
	rep, err := s.Progress(shipmentID)
	if err != nil {
		return nil, err
	}
	shipment := rep.Shipment

	if shipment.Status.Terminal() || shipment.WorkflowStep == models.StepNotStarted {
		return nil, &InvalidTransitionError{Step: shipment.WorkflowStep, Operation: "complete"}
	}

	cfg := settings.Load(s.db)
	policy := PolicyFor(shipment.WorkflowMode, cfg.AutoAddToInventory)

	if shipment.WorkflowStep == models.StepVerify && !rep.Summary.IsComplete {
		return nil, &IncompleteError{UnverifiedItems: rep.Summary.TotalItems - rep.Summary.ItemsFullyVerified}
	}

	next, err := policy.NextStep(shipment.WorkflowStep)
	if err != nil {
		return nil, err
	}

	var warnings []string
	if n := OpenCriticalIssues(rep.Issues); n > 0 {
		warnings = append(warnings, fmt.Sprintf("%d çözülmemiş kritik sorun var", n))
	}

	if next == models.StepCompleted {
		summary, err := s.commit(rep, employeeID, notes)
		if err != nil {
			return nil, err
		}
		return &AdvanceResult{
			Step:      models.StepCompleted,
			Status:    summary.Status,
			Warnings:  warnings,
			Committed: true,
			Commit:    summary,
		}, nil
	}

	updates := map[string]interface{}{"workflow_step": next}
	if notes != "" {
		updates["notes"] = appendNotes(shipment.Notes, notes)
	}
	if err := s.db.Model(&models.PendingShipment{}).
		Where("id = ?", shipmentID).Updates(updates).Error; err != nil {
		return nil, err
	}

	s.notifier.Notify(shipmentID)

	return &AdvanceResult{
		Step:     next,
		Status:   shipment.Status,
		Warnings: warnings,
	}, nil
}

// CommitToInventory: Doğrulanmış kalemleri envantere yazar. Sadece
// politikanın izin verdiği adımda (ready_for_inventory) çağrılabilir.
func (s *Service) CommitToInventory(shipmentID, employeeID uint, notes string) (*CommitSummary, error) {
	rep, err := s.Progress(shipmentID)
	if err != nil {
		return nil, err
	}
	shipment := rep.Shipment

	if shipment.Status.Terminal() {
		return nil, &InvalidTransitionError{Step: shipment.WorkflowStep, Operation: "add-to-inventory"}
	}

	cfg := settings.Load(s.db)
	policy := PolicyFor(shipment.WorkflowMode, cfg.AutoAddToInventory)
	if !policy.CanCommit(shipment.WorkflowStep) {
		return nil, &InvalidTransitionError{Step: shipment.WorkflowStep, Operation: "add-to-inventory"}
	}

	return s.commit(rep, employeeID, notes)
}

// CommitSummary: Commit sonucu
type CommitSummary struct {
	ApprovedShipmentID uint                  `json:"approved_shipment_id"`
	TotalItemsReceived int                   `json:"total_items_received"`
	TotalCost          float64               `json:"total_cost"`
	HasIssues          bool                  `json:"has_issues"`
	IssueCount         int                   `json:"issue_count"`
	ItemsCommitted     int                   `json:"items_committed"` // bu çağrıda yazılan
	ItemsSkipped       int                   `json:"items_skipped"`   // önceki denemede yazılmış
	Status             models.ShipmentStatus `json:"status"`
}

// commit: Kalemleri envanter yazıcısına aktarır ve sevkiyatı kapatır.
// Yazıcı hatasında doğrulama verisi geri alınmaz; sevkiyat commit öncesi
// adımında kalır ve tekrar denenebilir. Her kalem yazılmadan önce
// committed_at üzerinden CAS ile sahiplenilir; böylece hem tekrar deneme
// hem de eşzamanlı iki commit kalem bazında idempotenttir.
func (s *Service) commit(rep *ProgressReport, employeeID uint, notes string) (*CommitSummary, error) {
	shipment := rep.Shipment
	now := time.Now()

	var approved models.ApprovedShipment
	err := s.db.First(&approved, "pending_shipment_id = ?", shipment.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		approved = models.ApprovedShipment{
			PendingShipmentID:   shipment.ID,
			VendorID:            shipment.VendorID,
			PurchaseOrderNumber: shipment.PurchaseOrderNumber,
			ReceivedDate:        now,
			ApprovedBy:          employeeID,
			ApprovedAt:          now,
		}
		if err := s.db.Create(&approved).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	committed, skipped, failed := 0, 0, 0
	for i := range rep.Items {
		item := &rep.Items[i]
		if item.QuantityVerified <= 0 {
			continue
		}
		if item.CommittedAt != nil {
			skipped++
			continue
		}

		// Kalemi CAS ile sahiplen: committed_at'i yalnızca hâlâ boşsa yazan
		// kazanır. Eşzamanlı iki commit aynı kalemin stoğunu iki kez
		// artıramaz; kaybeden taraf kalemi yazılmış sayar.
		claim := s.db.Model(&models.PendingItem{}).
			Where("id = ? AND committed_at IS NULL", item.ID).
			Update("committed_at", now)
		if claim.Error != nil {
			log.Printf("Kalem sahiplenilemedi (kalem %d): %v", item.ID, claim.Error)
			failed++
			continue
		}
		if claim.RowsAffected == 0 {
			skipped++
			continue
		}

		productID, err := s.inventory.AddStock(s.db, item, shipment.VendorID)
		if err != nil {
			// Stok yazılmadı; sahiplenme geri alınır ki tekrar deneme
			// kalemi işleyebilsin
			s.db.Model(&models.PendingItem{}).Where("id = ?", item.ID).
				Update("committed_at", nil)
			log.Printf("Kalem envantere yazılamadı (kalem %d): %v", item.ID, err)
			failed++
			continue
		}

		var existing int64
		s.db.Model(&models.ApprovedShipmentItem{}).
			Where("approved_shipment_id = ? AND pending_item_id = ?", approved.ID, item.ID).
			Count(&existing)
		if existing == 0 {
			row := models.ApprovedShipmentItem{
				ApprovedShipmentID: approved.ID,
				PendingItemID:      item.ID,
				ProductID:          productID,
				QuantityReceived:   item.QuantityVerified,
				UnitCost:           item.UnitCost,
				SellingPrice:       item.SellingPrice,
				LotNumber:          item.LotNumber,
				ExpirationDate:     item.ExpirationDate,
				ReceivedBy:         employeeID,
				ReceivedAt:         now,
			}
			if err := s.db.Create(&row).Error; err != nil {
				// Stok yazıldı; sahiplenme geri alınmaz, yoksa tekrar
				// deneme stoğu ikinci kez artırırdı
				log.Printf("Onaylı kalem kaydedilemedi (kalem %d): %v", item.ID, err)
				failed++
				continue
			}
		}

		s.db.Model(&models.PendingItem{}).Where("id = ?", item.ID).
			Update("product_id", productID)
		committed++
	}

	var totals struct {
		Qty  int
		Cost float64
	}
	s.db.Model(&models.ApprovedShipmentItem{}).
		Where("approved_shipment_id = ?", approved.ID).
		Select("COALESCE(SUM(quantity_received),0) AS qty, COALESCE(SUM(quantity_received * unit_cost),0) AS cost").
		Scan(&totals)

	issueCount := len(rep.Issues)
	if err := s.db.Model(&approved).Updates(map[string]interface{}{
		"total_items_received": totals.Qty,
		"total_cost":           totals.Cost,
		"has_issues":           issueCount > 0,
		"issue_count":          issueCount,
		"approved_by":          employeeID,
	}).Error; err != nil {
		return nil, err
	}

	if failed > 0 {
		// Sevkiyat commit öncesi adımında kalıyor, istemci tekrar dener
		return nil, &CommitError{Failed: failed, Committed: committed}
	}

	status := models.StatusCompleted
	if rep.Summary.ItemsWithIssues > 0 {
		status = models.StatusCompletedWithIssues
	}

	updates := map[string]interface{}{
		"workflow_step": models.StepCompleted,
		"status":        status,
		"completed_by":  employeeID,
		"completed_at":  now,
	}
	if notes != "" {
		updates["notes"] = appendNotes(shipment.Notes, notes)
	}
	if err := s.db.Model(&models.PendingShipment{}).
		Where("id = ?", shipment.ID).Updates(updates).Error; err != nil {
		return nil, err
	}

	s.sessions.EndForShipment(shipment.ID)
	s.notifier.Notify(shipment.ID)

	return &CommitSummary{
		ApprovedShipmentID: approved.ID,
		TotalItemsReceived: totals.Qty,
		TotalCost:          totals.Cost,
		HasIssues:          issueCount > 0,
		IssueCount:         issueCount,
		ItemsCommitted:     committed,
		ItemsSkipped:       skipped,
		Status:             status,
	}, nil
}

func appendNotes(existing, extra string) string {
	if existing == "" {
		return extra
	}
	return existing + "\n" + extra
}
