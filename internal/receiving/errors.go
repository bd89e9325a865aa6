package receiving

import (
	"errors"
	"fmt"

	"malkabul-backend/internal/models"
)

var (
	ErrShipmentNotFound = errors.New("sevkiyat bulunamadı")
	ErrItemNotFound     = errors.New("sevkiyat kalemi bulunamadı")
	ErrIssueNotFound    = errors.New("sorun kaydı bulunamadı")
	ErrSessionNotFound  = errors.New("geçerli bir doğrulama oturumu bulunamadı")

	// ErrCheckInContention: CAS döngüsü üst üste kaybetti; istemci tekrar
	// denemeli. Pratikte aynı kaleme aşırı yüklenme olmadıkça görülmez.
	ErrCheckInContention = errors.New("eşzamanlı yazma çakışması, tekrar deneyin")
)

// InvalidTransitionError: Sevkiyat, istenen işlemin izinli olduğu adımda
// değil. Durum değişmeden reddedilir; istemci güncel adımı progress
// endpoint'inden okumalı.
type InvalidTransitionError struct {
	Step      models.WorkflowStep
	Operation string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("geçersiz adım geçişi: '%s' adımında '%s' işlemi yapılamaz", e.Step, e.Operation)
}

// IncompleteError: Doğrulama bitmeden adım ilerletilmeye çalışıldı
type IncompleteError struct {
	UnverifiedItems int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("%d kalem hâlâ doğrulama bekliyor", e.UnverifiedItems)
}
