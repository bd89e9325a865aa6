package receiving

import (
	"context"
	"sync"
)

// ProgressNotifier: İlerleme değişikliklerini abonelere kanal üzerinden
// duyurur. İstemciler sabit aralıkla poll etmek yerine long-poll ile
// değişikliği bekler. Bildirim non-blocking'dir; yavaş abone yayını
// geciktiremez, kaçırdığı sinyali bir sonraki Wait'te yakalar.
type ProgressNotifier struct {
	mu   sync.Mutex
	subs map[uint]map[chan struct{}]struct{}
}

func NewProgressNotifier() *ProgressNotifier {
	return &ProgressNotifier{subs: make(map[uint]map[chan struct{}]struct{})}
}

func (n *ProgressNotifier) Subscribe(shipmentID uint) chan struct{} {
	ch := make(chan struct{}, 1)

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.subs[shipmentID] == nil {
		n.subs[shipmentID] = make(map[chan struct{}]struct{})
	}
	n.subs[shipmentID][ch] = struct{}{}

	return ch
}

func (n *ProgressNotifier) Unsubscribe(shipmentID uint, ch chan struct{}) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if set, ok := n.subs[shipmentID]; ok {
		delete(set, ch)
		if len(set) == 0 {
			delete(n.subs, shipmentID)
		}
	}
}

// Notify: Sevkiyatın tüm abonelerine değişiklik sinyali gönder
func (n *ProgressNotifier) Notify(shipmentID uint) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for ch := range n.subs[shipmentID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Wait: Bir değişiklik olana ya da context dolana kadar bekler.
// Değişiklik geldiyse true döner.
func (n *ProgressNotifier) Wait(ctx context.Context, shipmentID uint) bool {
	ch := n.Subscribe(shipmentID)
	defer n.Unsubscribe(shipmentID, ch)

	select {
	case <-ch:
		return true
	case <-ctx.Done():
		return false
	}
}
