package receiving

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNotifier_WaitWakesOnNotify(t *testing.T) {
	n := NewProgressNotifier()

	done := make(chan bool, 1)
	ready := make(chan struct{})

	go func() {
		ch := n.Subscribe(1)
		defer n.Unsubscribe(1, ch)
		close(ready)

		select {
		case <-ch:
			done <- true
		case <-time.After(2 * time.Second):
			done <- false
		}
	}()

	<-ready
	n.Notify(1)

	assert.True(t, <-done)
}

func TestNotifier_WaitTimesOut(t *testing.T) {
	n := NewProgressNotifier()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.False(t, n.Wait(ctx, 1))
}

func TestNotifier_NotifyWithoutSubscribers(t *testing.T) {
	n := NewProgressNotifier()
	// Abone yokken bildirim sessizce düşmeli
	n.Notify(42)
}

func TestNotifier_NotifyOnlyTargetShipment(t *testing.T) {
	n := NewProgressNotifier()

	chA := n.Subscribe(1)
	chB := n.Subscribe(2)
	defer n.Unsubscribe(1, chA)
	defer n.Unsubscribe(2, chB)

	n.Notify(1)

	select {
	case <-chA:
	case <-time.After(time.Second):
		t.Fatal("sevkiyat 1 abonesi sinyal almadı")
	}

	select {
	case <-chB:
		t.Fatal("sevkiyat 2 abonesine sinyal gitmemeliydi")
	default:
	}
}

func TestNotifier_BufferedSignalNotLost(t *testing.T) {
	n := NewProgressNotifier()

	ch := n.Subscribe(1)
	defer n.Unsubscribe(1, ch)

	// Kimse dinlemeden gelen sinyal tamponda bekler
	n.Notify(1)
	n.Notify(1) // tampon 1; ikincisi düşer, sorun değil

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	select {
	case <-ch:
	case <-ctx.Done():
		t.Fatal("tamponlanmış sinyal kayboldu")
	}
}
