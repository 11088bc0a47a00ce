package order

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nastyazhadan/order-gateway/internal/domain/models"
)

func buildOrder(orderID uint64, clOrdID string) func() (*models.Order, error) {
	return func() (*models.Order, error) {
		return &models.Order{OrderID: orderID, ClOrdID: clOrdID, Username: "alice", State: models.OrderStateLive}, nil
	}
}

func TestTrackingIndex(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T, index *trackingIndex, order *models.Order)
	}{
		{
			name: "duplicate insert returns the tracked order",
			check: func(t *testing.T, index *trackingIndex, order *models.Order) {
				existing, inserted, err := index.InsertIfAbsent("C1", buildOrder(2, "C1"))
				require.NoError(t, err)
				assert.False(t, inserted)
				assert.Same(t, order, existing)
			},
		},
		{
			name: "release frees the clordid",
			check: func(t *testing.T, index *trackingIndex, order *models.Order) {
				index.Release("C1", order)

				_, found := index.GetByOrderID(1)
				assert.False(t, found)
				assert.Zero(t, index.RetiredLen())

				_, inserted, err := index.InsertIfAbsent("C1", buildOrder(2, "C1"))
				require.NoError(t, err)
				assert.True(t, inserted)
			},
		},
		{
			name: "retire keeps the clordid taken",
			check: func(t *testing.T, index *trackingIndex, order *models.Order) {
				require.True(t, index.Retire("C1", order, retiredOrder{username: "alice", state: models.OrderStateFilled}))

				_, found := index.Get("C1")
				assert.False(t, found)
				retired, found := index.Retired("C1")
				require.True(t, found)
				assert.Equal(t, models.OrderStateFilled, retired.state)

				existing, inserted, err := index.InsertIfAbsent("C1", buildOrder(2, "C1"))
				require.NoError(t, err)
				assert.False(t, inserted)
				assert.Nil(t, existing)
				assert.Zero(t, index.Len())
			},
		},
		{
			name: "retire of a replaced entry is ignored",
			check: func(t *testing.T, index *trackingIndex, order *models.Order) {
				stale := &models.Order{OrderID: 1, ClOrdID: "C1"}

				assert.False(t, index.Retire("C1", stale, retiredOrder{}))
				index.Release("C1", stale)

				tracked, found := index.GetByOrderID(1)
				require.True(t, found)
				assert.Same(t, order, tracked)
			},
		},
		{
			name: "build error leaves the index empty",
			check: func(t *testing.T, index *trackingIndex, order *models.Order) {
				_, inserted, err := index.InsertIfAbsent("C2", func() (*models.Order, error) {
					return nil, errors.New("sequence exhausted")
				})
				require.Error(t, err)
				assert.False(t, inserted)
				assert.Equal(t, 1, index.Len())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index := newTrackingIndex()
			order, inserted, err := index.InsertIfAbsent("C1", buildOrder(1, "C1"))
			require.NoError(t, err)
			require.True(t, inserted)

			tt.check(t, index, order)
		})
	}
}

func TestTrackingIndexSelectSkipsRetired(t *testing.T) {
	index := newTrackingIndex()

	var orders []*models.Order
	for i, clOrdID := range []string{"C3", "C1", "C2"} {
		order, _, err := index.InsertIfAbsent(clOrdID, buildOrder(uint64(i+1), clOrdID))
		require.NoError(t, err)
		orders = append(orders, order)
	}
	index.Retire("C1", orders[1], retiredOrder{username: "alice", state: models.OrderStateCancelled, cancelled: true})

	selected := index.Select(func(*models.Order) bool { return true })

	require.Len(t, selected, 2)
	assert.Equal(t, "C3", selected[0].ClOrdID)
	assert.Equal(t, "C2", selected[1].ClOrdID)
}
