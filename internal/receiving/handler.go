package receiving

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"malkabul-backend/internal/audit"
	"malkabul-backend/internal/auth"
	"malkabul-backend/internal/config"
	"malkabul-backend/internal/database"
	"malkabul-backend/internal/models"
	"malkabul-backend/internal/settings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// mapError: Motor hatalarını HTTP durum kodlarına çevirir. Adım ihlali
// 409 döner ki istemci progress'ten güncel adımı okuyup arayüzü
// tazeleyebilsin.
func mapError(err error) error {
	var transition *InvalidTransitionError
	var incomplete *IncompleteError
	var commit *CommitError

	switch {
	case errors.Is(err, ErrShipmentNotFound),
		errors.Is(err, ErrItemNotFound),
		errors.Is(err, ErrIssueNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrDecreaseNotAllowed):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.As(err, &incomplete):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.As(err, &transition),
		errors.Is(err, ErrCheckInContention):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.As(err, &commit):
		// Kısmi commit: doğrulama verisi durur, istemci tekrar dener
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, "İşlem gerçekleştirilemedi")
}

func currentUser(c *fiber.Ctx) (uint, string) {
	userID, ok := c.Locals(auth.CtxUserIDKey).(uint)
	if !ok {
		return 0, ""
	}
	var user models.User
	if err := database.DB.Select("name").First(&user, userID).Error; err != nil {
		return userID, ""
	}
	return userID, user.Name
}

// CreateShipmentRequest: Yeni sevkiyat kaydı. Kalemler belge
// ayrıştırmadan hazır gelir; bu uç yalnızca kayıt açar.
type CreateShipmentRequest struct {
	VendorID             uint                `json:"vendor_id"`
	VendorName           string              `json:"vendor_name"` // vendor_id 0 ise isimle bul/oluştur
	PurchaseOrderNumber  string              `json:"purchase_order_number"`
	ExpectedDeliveryDate string              `json:"expected_delivery_date"` // "2026-01-15"
	WorkflowMode         string              `json:"workflow_mode"`          // boş ise ayarlardan
	DocumentPath         string              `json:"document_path"`
	Notes                string              `json:"notes"`
	Items                []CreateItemRequest `json:"items"`
}

type CreateItemRequest struct {
	SKU              string  `json:"sku"`
	Name             string  `json:"name"`
	Barcode          string  `json:"barcode"`
	LotNumber        string  `json:"lot_number"`
	ExpirationDate   string  `json:"expiration_date"` // "2026-06-30"
	QuantityExpected int     `json:"quantity_expected"`
	UnitCost         float64 `json:"unit_cost"`
	SellingPrice     float64 `json:"selling_price"`
}

// POST /api/shipments
func CreateShipmentHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateShipmentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "En az bir kalem eklenmelidir")
		}

		var vendor models.Vendor
		if body.VendorID != 0 {
			if err := database.DB.First(&vendor, "id = ?", body.VendorID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Tedarikçi bulunamadı: %d", body.VendorID))
			}
		} else {
			if body.VendorName == "" {
				return fiber.NewError(fiber.StatusBadRequest, "vendor_id veya vendor_name zorunlu")
			}
			if err := database.DB.Where("name = ?", body.VendorName).First(&vendor).Error; err != nil {
				vendor = models.Vendor{Name: body.VendorName}
				if err := database.DB.Create(&vendor).Error; err != nil {
					return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçi oluşturulamadı")
				}
			}
		}

		mode := settings.Load(database.DB).WorkflowMode
		switch body.WorkflowMode {
		case "":
		case string(models.ModeSimple):
			mode = models.ModeSimple
		case string(models.ModeThreeStep):
			mode = models.ModeThreeStep
		default:
			return fiber.NewError(fiber.StatusBadRequest, "workflow_mode 'simple' veya 'three_step' olmalı")
		}

		var expectedDate *time.Time
		if body.ExpectedDeliveryDate != "" {
			d, err := time.Parse("2006-01-02", body.ExpectedDeliveryDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
			expectedDate = &d
		}

		userID, userName := currentUser(c)

		shipment := models.PendingShipment{
			VendorID:             vendor.ID,
			PurchaseOrderNumber:  body.PurchaseOrderNumber,
			ExpectedDeliveryDate: expectedDate,
			DocumentPath:         body.DocumentPath,
			WorkflowMode:         mode,
			WorkflowStep:         models.StepNotStarted,
			Status:               models.StatusPendingReview,
			UploadedBy:           userID,
			UploadedAt:           time.Now(),
			Notes:                body.Notes,
		}

		for i, itemReq := range body.Items {
			if itemReq.QuantityExpected < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "quantity_expected negatif olamaz")
			}
			if itemReq.Name == "" && itemReq.SKU == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Her kalem için name veya sku zorunlu")
			}

			var expiration *time.Time
			if itemReq.ExpirationDate != "" {
				d, err := time.Parse("2006-01-02", itemReq.ExpirationDate)
				if err != nil {
					return fiber.NewError(fiber.StatusBadRequest, "Son kullanma tarihi formatı 'YYYY-MM-DD' olmalı")
				}
				expiration = &d
			}

			shipment.Items = append(shipment.Items, models.PendingItem{
				LineNumber:       i + 1,
				SKU:              itemReq.SKU,
				Name:             itemReq.Name,
				Barcode:          itemReq.Barcode,
				LotNumber:        itemReq.LotNumber,
				ExpirationDate:   expiration,
				QuantityExpected: itemReq.QuantityExpected,
				UnitCost:         itemReq.UnitCost,
				SellingPrice:     itemReq.SellingPrice,
			})
		}

		if err := database.DB.Create(&shipment).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sevkiyat oluşturulamadı")
		}

		audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "pending_shipment",
			EntityID:    shipment.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Sevkiyat oluşturuldu (%s, %d kalem)", vendor.Name, len(shipment.Items)),
			After:       shipment,
		})

		return c.Status(fiber.StatusCreated).JSON(shipment)
	}
}

// GET /api/shipments?status=in_progress
func ListShipmentsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := database.DB.Preload("Vendor").Preload("Items").Order("uploaded_at DESC")

		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}

		var shipments []models.PendingShipment
		if err := query.Find(&shipments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sevkiyatlar listelenemedi")
		}

		ids := make([]uint, 0, len(shipments))
		for i := range shipments {
			ids = append(ids, shipments[i].ID)
		}

		issuesByShipment := make(map[uint][]models.ShipmentIssue)
		if len(ids) > 0 {
			var issues []models.ShipmentIssue
			database.DB.Where("shipment_id IN ?", ids).Find(&issues)
			for _, issue := range issues {
				issuesByShipment[issue.ShipmentID] = append(issuesByShipment[issue.ShipmentID], issue)
			}
		}

		type shipmentWithProgress struct {
			models.PendingShipment
			Progress ProgressSummary `json:"progress"`
		}

		out := make([]shipmentWithProgress, 0, len(shipments))
		for i := range shipments {
			out = append(out, shipmentWithProgress{
				PendingShipment: shipments[i],
				Progress:        Aggregate(shipments[i].Items, issuesByShipment[shipments[i].ID]),
			})
		}

		return c.JSON(out)
	}
}

// GET /api/shipments/:id
func GetShipmentHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sevkiyat ID")
		}

		rep, err := svc.Progress(uint(id))
		if err != nil {
			return mapError(err)
		}

		return c.JSON(rep)
	}
}

type StartSessionRequest struct {
	DeviceID string `json:"device_id"`
}

// POST /api/shipments/:id/start: cihaz için doğrulama oturumu açar
func StartSessionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sevkiyat ID")
		}

		var body StartSessionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		userID, _ := currentUser(c)

		sess, shipment, err := svc.StartSession(uint(id), userID, body.DeviceID)
		if err != nil {
			return mapError(err)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"session":  sess,
			"shipment": shipment,
		})
	}
}

type ScanRequest struct {
	SessionID string `json:"session_id"`
	Barcode   string `json:"barcode"`
}

// POST /api/shipments/:id/scan
func ScanHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sevkiyat ID")
		}

		var body ScanRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Barcode == "" {
			return fiber.NewError(fiber.StatusBadRequest, "barcode zorunlu")
		}

		outcome, err := svc.Scan(uint(id), body.SessionID, body.Barcode)
		if err != nil {
			return mapError(err)
		}

		return c.JSON(outcome)
	}
}

type CheckInRequest struct {
	QuantityToAdd int `json:"quantity_to_add"`
}

// POST /api/pending-items/:id/check-in: delta bazlı manuel check-in
func CheckInHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz kalem ID")
		}

		var body CheckInRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.QuantityToAdd <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "quantity_to_add 0'dan büyük olmalı")
		}

		userID, _ := currentUser(c)

		res, err := svc.CheckInDelta(uint(id), body.QuantityToAdd, userID)
		if err != nil {
			return mapError(err)
		}

		return c.JSON(fiber.Map{
			"item":           res.Item,
			"applied":        res.Applied,
			"duplicate":      res.Duplicate,
			"fully_verified": res.FullyVerified,
		})
	}
}

type UpdateItemRequest struct {
	QuantityVerified int `json:"quantity_verified"`
}

// POST /api/pending-items/:id/update
// Deprecated: Mutlak değer sözleşmesi eski istemciler için duruyor;
// yeni istemciler check-in ucunu kullanmalı. Azaltma reddedilir.
func UpdateItemHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz kalem ID")
		}

		var body UpdateItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.QuantityVerified < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "quantity_verified negatif olamaz")
		}

		userID, _ := currentUser(c)

		res, err := svc.SetVerifiedTotal(uint(id), body.QuantityVerified, userID)
		if err != nil {
			return mapError(err)
		}

		c.Set("Deprecation", "true")
		return c.JSON(fiber.Map{
			"item":           res.Item,
			"applied":        res.Applied,
			"fully_verified": res.FullyVerified,
		})
	}
}

type UpdatePriceRequest struct {
	SellingPrice float64 `json:"selling_price"`
}

// PUT /api/pending-items/:id/price
func UpdatePriceHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz kalem ID")
		}

		var body UpdatePriceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		userID, userName := currentUser(c)

		item, err := svc.UpdateSellingPrice(uint(id), body.SellingPrice)
		if err != nil {
			if errors.Is(err, ErrItemNotFound) || errors.Is(err, ErrShipmentNotFound) {
				return mapError(err)
			}
			var transition *InvalidTransitionError
			if errors.As(err, &transition) {
				return mapError(err)
			}
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "pending_item",
			EntityID:    item.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Satış fiyatı güncellendi: %.2f", body.SellingPrice),
			After:       item,
		})

		return c.JSON(item)
	}
}

// POST /api/shipments/:id/issues: multipart destekler (photo alanı)
func ReportIssueHandler(svc *Service, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sevkiyat ID")
		}

		rep := IssueReport{ShipmentID: uint(id)}

		type issueBody struct {
			PendingItemID    *uint  `json:"pending_item_id" form:"pending_item_id"`
			IssueType        string `json:"issue_type" form:"issue_type"`
			Severity         string `json:"severity" form:"severity"`
			Description      string `json:"description" form:"description"`
			QuantityAffected int    `json:"quantity_affected" form:"quantity_affected"`
			SessionID        string `json:"session_id" form:"session_id"`
		}
		var body issueBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		rep.PendingItemID = body.PendingItemID
		rep.Type = models.IssueType(body.IssueType)
		rep.Severity = models.IssueSeverity(body.Severity)
		rep.Description = body.Description
		rep.QuantityAffected = body.QuantityAffected

		if !ValidIssueType(rep.Type) {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz issue_type")
		}
		if body.Severity != "" && !ValidSeverity(rep.Severity) {
			return fiber.NewError(fiber.StatusBadRequest, "severity 'minor', 'major' veya 'critical' olmalı")
		}

		// Fotoğraf opsiyonel; yazma hatası sorun kaydını engellemez
		if file, err := c.FormFile("photo"); err == nil && file != nil {
			if err := os.MkdirAll(cfg.IssuePhotoPath, 0o755); err == nil {
				name := fmt.Sprintf("%s%s", uuid.NewString(), filepath.Ext(file.Filename))
				dest := filepath.Join(cfg.IssuePhotoPath, name)
				if err := c.SaveFile(file, dest); err == nil {
					rep.PhotoPath = dest
				}
			}
		}

		userID, _ := currentUser(c)
		rep.ReportedBy = userID

		issue, err := svc.ReportIssue(rep, body.SessionID)
		if err != nil {
			return mapError(err)
		}

		return c.Status(fiber.StatusCreated).JSON(issue)
	}
}

// GET /api/shipments/:id/issues
func ListIssuesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sevkiyat ID")
		}

		var shipment models.PendingShipment
		if err := database.DB.First(&shipment, "id = ?", id).Error; err != nil {
			return mapError(ErrShipmentNotFound)
		}

		var issues []models.ShipmentIssue
		if err := database.DB.Where("shipment_id = ?", id).
			Order("reported_at DESC").Find(&issues).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sorunlar listelenemedi")
		}

		return c.JSON(issues)
	}
}

type ResolveIssueRequest struct {
	ResolutionStatus string `json:"resolution_status"`
	ResolutionNotes  string `json:"resolution_notes"`
}

// POST /api/issues/:id/resolve
func ResolveIssueHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sorun ID")
		}

		var body ResolveIssueRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		userID, userName := currentUser(c)

		issue, err := ResolveIssue(database.DB, uint(id), models.IssueResolution(body.ResolutionStatus), body.ResolutionNotes, userID)
		if err != nil {
			if errors.Is(err, ErrIssueNotFound) {
				return mapError(err)
			}
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "shipment_issue",
			EntityID:    issue.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Sorun çözüm durumu '%s' yapıldı", body.ResolutionStatus),
			After:       issue,
		})

		svc.Notifier().Notify(issue.ShipmentID)

		return c.JSON(issue)
	}
}

type CompleteRequest struct {
	Notes string `json:"notes"`
}

// POST /api/shipments/:id/complete: akışı bir adım ilerletir
func CompleteStepHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sevkiyat ID")
		}

		var body CompleteRequest
		if err := c.BodyParser(&body); err != nil && len(c.Body()) > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		userID, userName := currentUser(c)

		result, err := svc.AdvanceStep(uint(id), userID, body.Notes)
		if err != nil {
			return mapError(err)
		}

		audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "pending_shipment",
			EntityID:    uint(id),
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Akış adımı '%s' oldu", result.Step),
			After:       result,
		})

		return c.JSON(result)
	}
}

// POST /api/shipments/:id/add-to-inventory
func AddToInventoryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sevkiyat ID")
		}

		var body CompleteRequest
		if err := c.BodyParser(&body); err != nil && len(c.Body()) > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		userID, userName := currentUser(c)

		summary, err := svc.CommitToInventory(uint(id), userID, body.Notes)
		if err != nil {
			return mapError(err)
		}

		audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "pending_shipment",
			EntityID:    uint(id),
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Envantere eklendi (%d kalem, %.2f toplam maliyet)", summary.ItemsCommitted, summary.TotalCost),
			After:       summary,
		})

		return c.JSON(summary)
	}
}

// GET /api/shipments/:id/progress
func ProgressHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sevkiyat ID")
		}

		rep, err := svc.Progress(uint(id))
		if err != nil {
			return mapError(err)
		}

		return c.JSON(rep)
	}
}

// GET /api/shipments/:id/progress/wait?timeout_seconds=25
// Long-poll: İlerleme değişene ya da süre dolana kadar bekler, ardından
// güncel ilerlemeyi döner. İstemci sabit aralıkla poll etmek yerine bu
// ucu art arda çağırır.
func WaitProgressHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sevkiyat ID")
		}

		// Sevkiyat yoksa boşuna bekletme
		if _, err := svc.Progress(uint(id)); err != nil {
			return mapError(err)
		}

		timeout := c.QueryInt("timeout_seconds", 25)
		if timeout < 1 {
			timeout = 1
		}
		if timeout > 60 {
			timeout = 60
		}

		ctx, cancel := context.WithTimeout(c.Context(), time.Duration(timeout)*time.Second)
		defer cancel()

		changed := svc.Notifier().Wait(ctx, uint(id))

		rep, err := svc.Progress(uint(id))
		if err != nil {
			return mapError(err)
		}

		return c.JSON(fiber.Map{
			"changed":  changed,
			"progress": rep,
		})
	}
}

// GET /api/shipments/:id/scan-log
func ScanLogHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sevkiyat ID")
		}

		var shipment models.PendingShipment
		if err := database.DB.First(&shipment, "id = ?", id).Error; err != nil {
			return mapError(ErrShipmentNotFound)
		}

		limit := c.QueryInt("limit", 200)
		if limit < 1 || limit > 500 {
			limit = 200
		}

		var logs []models.ScanLog
		if err := database.DB.Where("shipment_id = ?", id).
			Order("scanned_at DESC").Limit(limit).Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Okutma geçmişi listelenemedi")
		}

		return c.JSON(logs)
	}
}
