package pebble

import (
	"context"
	"fmt"
	"testing"

	"github.com/cockroachdb/pebble/vfs"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nastyazhadan/order-gateway/internal/domain/models"
	repositoryErrors "github.com/nastyazhadan/order-gateway/shared/errors/repository"
)

func openStore(t *testing.T, fs vfs.FS) *OrderStore {
	t.Helper()

	store, err := NewOrderStore(Options{Dir: "orders", FS: fs})
	require.NoError(t, err)
	return store
}

func limitOrder(orderID uint64, clOrdID string) models.Order {
	order := models.NewOrder(models.OrderParams{
		OrderID:      orderID,
		ClOrdID:      clOrdID,
		Symbol:       "MSFT",
		Side:         models.SideBuy,
		Type:         models.OrderTypeLimit,
		Price:        decimal.NewNullDecimal(decimal.RequireFromString("380.00")),
		OrderQty:     20,
		Username:     "trader1",
		SessionSubID: "S1",
		Capacity:     models.CapacityFirm,
		OpenClose:    models.OpenCloseNone,
	})
	_ = order.Acknowledge()
	return *order
}

func TestOrderStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, vfs.NewMem())
	t.Cleanup(func() { _ = store.Close() })

	order := limitOrder(1, "C5")
	require.NoError(t, store.SaveOrder(ctx, order))

	require.NoError(t, order.Cancel())
	require.NoError(t, store.SaveOrder(ctx, order))

	stored, err := store.GetOrderByClOrdID(ctx, "C5")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStateCancelled, stored.State)
	assert.Equal(t, order.OrderQty, stored.LeavesQty+stored.CumQty)
	assert.True(t, order.Price.Decimal.Equal(stored.Price.Decimal))
	assert.True(t, order.CreatedAt.Equal(stored.CreatedAt))

	err = store.SaveOrder(ctx, limitOrder(2, "C5"))
	assert.ErrorIs(t, err, repositoryErrors.ErrOrderAlreadyExists)

	_, err = store.GetOrderByClOrdID(ctx, "missing")
	assert.ErrorIs(t, err, repositoryErrors.ErrOrderNotFound)
}

func TestOrderStore_ExistsByClOrdID(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, vfs.NewMem())
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.SaveOrder(ctx, limitOrder(1, "A-1")))

	tests := []struct {
		clOrdID  string
		expected bool
	}{
		{clOrdID: "A-1", expected: true},
		{clOrdID: "A-2", expected: false},
		{clOrdID: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("clordid %q", tt.clOrdID), func(t *testing.T) {
			exists, err := store.ExistsByClOrdID(ctx, tt.clOrdID)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, exists)
		})
	}
}

func TestOrderStore_MaxOrderIDSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	fs := vfs.NewMem()

	store := openStore(t, fs)
	maxID, err := store.MaxOrderID(ctx)
	require.NoError(t, err)
	assert.Zero(t, maxID)

	for _, orderID := range []uint64{5, 300, 42} {
		require.NoError(t, store.SaveOrder(ctx, limitOrder(orderID, fmt.Sprintf("C%d", orderID))))
	}
	require.NoError(t, store.Close())

	reopened := openStore(t, fs)
	t.Cleanup(func() { _ = reopened.Close() })

	maxID, err = reopened.MaxOrderID(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), maxID)

	exists, err := reopened.ExistsByClOrdID(ctx, "C42")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestOrderStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := openStore(t, vfs.NewMem())
	t.Cleanup(func() { _ = store.Close() })

	assert.ErrorIs(t, store.SaveOrder(ctx, limitOrder(1, "C1")), context.Canceled)
}

func TestOrderStore_TradesSurviveReopen(t *testing.T) {
	ctx := context.Background()
	fs := vfs.NewMem()

	store := openStore(t, fs)
	require.NoError(t, store.SaveOrder(ctx, limitOrder(900, "C900")))

	price := decimal.RequireFromString("380.00")
	trades := []models.Trade{
		{TradeID: 7, Symbol: "MSFT", Price: price, Quantity: 5, BuyOrderID: 1, SellOrderID: 2},
		{TradeID: 12, Symbol: "MSFT", Price: price, Quantity: 3, BuyOrderID: 1, SellOrderID: 3},
	}
	require.NoError(t, store.SaveTrades(ctx, trades))
	require.NoError(t, store.Close())

	reopened := openStore(t, fs)
	t.Cleanup(func() { _ = reopened.Close() })

	tradeID, err := reopened.MaxTradeID(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), tradeID)

	orderID, err := reopened.MaxOrderID(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(900), orderID)
}
