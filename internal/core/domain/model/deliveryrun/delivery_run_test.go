package deliveryrun_test

import (
	"testing"
	"time"

	"pharmadelivery/internal/core/domain/model/deliveryrun"
	"pharmadelivery/internal/core/domain/model/kernel"
	"pharmadelivery/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

func createRun(t *testing.T, orderIDs ...kernel.UUID) *deliveryrun.DeliveryRun {
	t.Helper()
	r, err := deliveryrun.NewDeliveryRun(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), orderIDs, t0)
	require.NoError(t, err)
	return r
}

func checkpoint(t *testing.T, lat, lng float64, at time.Time) deliveryrun.Checkpoint {
	t.Helper()
	c, err := deliveryrun.NewCheckpoint(lat, lng, at)
	require.NoError(t, err)
	return c
}

func TestNewDeliveryRun(t *testing.T) {
	t.Run("should start active run", func(t *testing.T) {
		orderID := kernel.NewUUID()

		r := createRun(t, orderID, orderID)

		require.NoError(t, r.Validate())
		assert.True(t, r.IsActive())
		assert.Len(t, r.OrderIDs(), 1)
		assert.True(t, r.ContainsOrder(orderID))
		assert.Equal(t, t0, r.StartedAt())
		assert.Equal(t, t0, r.UpdatedAt())
		assert.Nil(t, r.CompletedAt())
		assert.Len(t, r.NewOrderIDs(), 1)
	})

	t.Run("should join validation errors", func(t *testing.T) {
		_, err := deliveryrun.NewDeliveryRun(kernel.UUID{}, kernel.UUID{}, kernel.UUID{}, nil, time.Time{})

		require.Error(t, err)
		for _, field := range []string{"UUID", "deliverymanId", "pharmacyUnitId", "startedAt"} {
			assert.Contains(t, err.Error(), field)
		}
	})
}

func TestDeliveryRun_AddOrders(t *testing.T) {
	t.Run("should skip already claimed orders", func(t *testing.T) {
		first := kernel.NewUUID()
		r := createRun(t, first)
		r.ClearChanges()
		second := kernel.NewUUID()

		require.NoError(t, r.AddOrders([]kernel.UUID{first, second}, t0.Add(time.Minute)))

		assert.Len(t, r.OrderIDs(), 2)
		require.Len(t, r.NewOrderIDs(), 1)
		assert.True(t, r.NewOrderIDs()[0].IsEqual(second))
		assert.Equal(t, t0.Add(time.Minute), r.UpdatedAt())
	})

	t.Run("should reject invalid id", func(t *testing.T) {
		r := createRun(t)

		err := r.AddOrders([]kernel.UUID{{}}, t0)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Empty(t, r.OrderIDs())
	})
}

func TestDeliveryRun_Checkpoints(t *testing.T) {
	t.Run("should order checkpoints by timestamp", func(t *testing.T) {
		r := createRun(t)
		require.NoError(t, r.AppendCheckpoint(checkpoint(t, -23.56, -46.65, t0.Add(2*time.Minute))))
		require.NoError(t, r.AppendCheckpoint(checkpoint(t, -23.55, -46.64, t0.Add(time.Minute))))

		cps := r.Checkpoints()

		require.Len(t, cps, 2)
		assert.Equal(t, t0.Add(time.Minute), cps[0].Timestamp())
		last, ok := r.LastCheckpoint()
		require.True(t, ok)
		assert.InDelta(t, -23.56, last.Latitude(), 1e-9)
		assert.Len(t, r.NewCheckpoints(), 2)
		assert.Equal(t, t0.Add(2*time.Minute), r.UpdatedAt())
	})

	t.Run("should report unknown position without checkpoints", func(t *testing.T) {
		r := createRun(t)

		_, ok := r.LastCheckpoint()

		assert.False(t, ok)
		assert.Zero(t, r.LiveDistance())
	})

	t.Run("should reject invalid coordinates", func(t *testing.T) {
		_, err := deliveryrun.NewCheckpoint(91, 0, t0)

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("should reject unconstructed checkpoint", func(t *testing.T) {
		r := createRun(t)

		err := r.AppendCheckpoint(deliveryrun.Checkpoint{})

		require.ErrorIs(t, err, deliveryrun.ErrCheckpointIsNotConstructed)
	})
}

func TestDeliveryRun_Distance(t *testing.T) {
	// One degree of latitude is about 111.2 km.
	r := createRun(t)
	require.NoError(t, r.AppendCheckpoint(checkpoint(t, 0, 0, t0.Add(time.Minute))))
	require.NoError(t, r.AppendCheckpoint(checkpoint(t, 1, 0, t0.Add(2*time.Minute))))
	require.NoError(t, r.AppendCheckpoint(checkpoint(t, 2, 0, t0.Add(3*time.Minute))))

	assert.InDelta(t, 222390, r.LiveDistance(), 100)
	assert.InDelta(t, r.LiveDistance(), r.Distance(), 1e-6)
	assert.Zero(t, r.TotalDistance())

	assert.True(t, r.RefreshDistance())
	assert.False(t, r.RefreshDistance())
	assert.InDelta(t, 222390, r.TotalDistance(), 100)
}

func TestDeliveryRun_Complete(t *testing.T) {
	t.Run("should finalize distance and freeze run", func(t *testing.T) {
		r := createRun(t)
		require.NoError(t, r.AppendCheckpoint(checkpoint(t, 0, 0, t0.Add(time.Minute))))
		require.NoError(t, r.AppendCheckpoint(checkpoint(t, 0, 1, t0.Add(2*time.Minute))))

		require.NoError(t, r.Complete(t0.Add(10*time.Minute)))

		assert.False(t, r.IsActive())
		assert.InDelta(t, 111195, r.TotalDistance(), 100)
		require.NotNil(t, r.CompletedAt())
		assert.Equal(t, t0.Add(10*time.Minute), *r.CompletedAt())
		assert.False(t, r.RefreshDistance())

		err := r.AppendCheckpoint(checkpoint(t, 0, 2, t0.Add(11*time.Minute)))
		require.ErrorIs(t, err, deliveryrun.ErrDeliveryRunIsCompleted)
		require.ErrorIs(t, r.AddOrders([]kernel.UUID{kernel.NewUUID()}, t0), deliveryrun.ErrDeliveryRunIsCompleted)
		require.ErrorIs(t, r.Complete(t0.Add(time.Hour)), deliveryrun.ErrDeliveryRunIsCompleted)
	})

	t.Run("should require completion time", func(t *testing.T) {
		r := createRun(t)

		require.ErrorIs(t, r.Complete(time.Time{}), errs.ErrValueIsRequired)
	})
}

func TestRestoreDeliveryRun(t *testing.T) {
	completedAt := t0.Add(time.Hour)
	orderID := kernel.NewUUID()

	r, err := deliveryrun.RestoreDeliveryRun(deliveryrun.RestoreParams{
		ID:             kernel.NewUUID(),
		DeliverymanID:  kernel.NewUUID(),
		PharmacyUnitID: kernel.NewUUID(),
		Status:         deliveryrun.StatusCompleted,
		OrderIDs:       []kernel.UUID{orderID},
		Checkpoints:    []deliveryrun.Checkpoint{checkpoint(t, 0, 0, t0)},
		TotalDistance:  1500,
		StartedAt:      t0,
		UpdatedAt:      completedAt,
		CompletedAt:    &completedAt,
	})

	require.NoError(t, err)
	assert.True(t, r.ContainsOrder(orderID))
	assert.InDelta(t, 1500, r.Distance(), 1e-9)
	assert.Empty(t, r.NewCheckpoints())

	_, err = deliveryrun.RestoreDeliveryRun(deliveryrun.RestoreParams{})
	require.Error(t, err)
}
