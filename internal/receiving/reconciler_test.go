package receiving

import (
	"sync"
	"testing"

	"malkabul-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampQuantity(t *testing.T) {
	tests := []struct {
		name      string
		expected  int
		verified  int
		requested int
		want      int
	}{
		{"tamamı sığıyor", 10, 0, 3, 3},
		{"kalanla sınırlı", 10, 8, 5, 2},
		{"tam doğrulanmış", 10, 10, 1, 0},
		{"sıfır beklenen", 0, 0, 1, 0},
		{"negatif istek", 10, 0, -1, 0},
		{"sıfır istek", 10, 0, 0, 0},
		{"kalan kadar istek", 10, 7, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clampQuantity(tt.expected, tt.verified, tt.requested))
		})
	}
}

func TestCheckIn_Basic(t *testing.T) {
	db := newTestDB(t)
	shipment := seedShipment(t, db, models.ModeSimple, item("SKU-1", "8690001234562", 5))
	itemID := shipment.Items[0].ID

	res, err := CheckIn(db, itemID, 2, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Applied)
	assert.Equal(t, 2, res.Item.QuantityVerified)
	assert.False(t, res.Duplicate)
	assert.False(t, res.FullyVerified)
	require.NotNil(t, res.Item.VerifiedBy)
	assert.Equal(t, uint(7), *res.Item.VerifiedBy)
	assert.NotNil(t, res.Item.VerifiedAt)
}

func TestCheckIn_ClampsToRemaining(t *testing.T) {
	db := newTestDB(t)
	shipment := seedShipment(t, db, models.ModeSimple, item("SKU-1", "8690001234562", 5))
	itemID := shipment.Items[0].ID

	res, err := CheckIn(db, itemID, 99, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Applied)
	assert.Equal(t, 5, res.Item.QuantityVerified)
	assert.True(t, res.FullyVerified)
}

func TestCheckIn_DuplicateWhenFull(t *testing.T) {
	db := newTestDB(t)
	shipment := seedShipment(t, db, models.ModeSimple, item("SKU-1", "8690001234562", 1))
	itemID := shipment.Items[0].ID

	_, err := CheckIn(db, itemID, 1, 1)
	require.NoError(t, err)

	res, err := CheckIn(db, itemID, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Applied)
	assert.True(t, res.Duplicate)
	assert.Equal(t, 1, res.Item.QuantityVerified)
}

func TestCheckIn_ItemNotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := CheckIn(db, 999, 1, 1)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestCheckIn_ConcurrentNeverExceedsExpected(t *testing.T) {
	db := newTestDB(t)
	shipment := seedShipment(t, db, models.ModeSimple, item("SKU-1", "8690001234562", 10))
	itemID := shipment.Items[0].ID

	// 25 cihaz aynı anda 1'er adet okutuyor; sadece 10 tanesi işlenmeli
	const workers = 25
	applied := make([]int, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			res, err := CheckIn(db, itemID, 1, uint(w+1))
			if err == nil {
				applied[w] = res.Applied
			}
		}(w)
	}
	wg.Wait()

	total := 0
	for _, a := range applied {
		total += a
	}
	assert.Equal(t, 10, total)

	var got models.PendingItem
	require.NoError(t, db.First(&got, itemID).Error)
	assert.Equal(t, 10, got.QuantityVerified)
}
