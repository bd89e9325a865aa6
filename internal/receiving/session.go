package receiving

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session: Bir cihazı ve personeli sevkiyata bağlayan geçici doğrulama
// oturumu. Kalıcı değildir; süreç yeniden başlarsa oturumlar düşer ve
// cihaz yeni oturum açar. Aynı sevkiyata istenildiği kadar oturum
// açılabilir, kapatma gerekmez.
type Session struct {
	ID         string     `json:"session_id"`
	ShipmentID uint       `json:"shipment_id"`
	EmployeeID uint       `json:"employee_id"`
	DeviceID   string     `json:"device_id"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`

	TotalScans     int `json:"total_scans"`
	ItemsVerified  int `json:"items_verified"`
	IssuesReported int `json:"issues_reported"`
}

type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*Session)}
}

func (r *SessionRegistry) Start(shipmentID, employeeID uint, deviceID string) Session {
	s := &Session{
		ID:         uuid.NewString(),
		ShipmentID: shipmentID,
		EmployeeID: employeeID,
		DeviceID:   deviceID,
		StartedAt:  time.Now(),
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	return *s
}

// Get: Oturumun anlık kopyasını döner
func (r *SessionRegistry) Get(id string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// RecordScan: Okutma sayaçlarını artır
func (r *SessionRegistry) RecordScan(id string, applied bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		s.TotalScans++
		if applied {
			s.ItemsVerified++
		}
	}
}

// RecordIssue: Sorun sayacını artır
func (r *SessionRegistry) RecordIssue(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		s.IssuesReported++
	}
}

// EndForShipment: Sevkiyat tamamlandığında açık oturumları kapat
func (r *SessionRegistry) EndForShipment(shipmentID uint) {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sessions {
		if s.ShipmentID == shipmentID && s.EndedAt == nil {
			ended := now
			s.EndedAt = &ended
		}
	}
}

// ActiveForShipment: Sevkiyattaki açık oturumların kopyaları
func (r *SessionRegistry) ActiveForShipment(shipmentID uint) []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Session
	for _, s := range r.sessions {
		if s.ShipmentID == shipmentID && s.EndedAt == nil {
			out = append(out, *s)
		}
	}
	return out
}
