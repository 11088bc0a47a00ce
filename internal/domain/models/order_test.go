package models

import (
	"testing"

	fakeValue "github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/nastyazhadan/order-gateway/shared/errors/domain"
)

func newTestOrder(qty int64) *Order {
	return NewOrder(OrderParams{
		OrderID:   uint64(fakeValue.IntRange(1, 1_000_000)),
		ClOrdID:   fakeValue.LetterN(10),
		Symbol:    "AAPL",
		Side:      SideBuy,
		Type:      OrderTypeLimit,
		Price:     decimal.NewNullDecimal(decimal.RequireFromString("150.00")),
		OrderQty:  qty,
		Username:  fakeValue.Username(),
		Capacity:  CapacityCustomer,
		OpenClose: OpenCloseOpen,
	})
}

func assertQuantities(t *testing.T, order *Order) {
	t.Helper()
	assert.Equal(t, order.OrderQty, order.LeavesQty+order.CumQty)
}

func TestNewOrder(t *testing.T) {
	qty := int64(fakeValue.IntRange(1, 1000))
	order := newTestOrder(qty)

	assert.Equal(t, OrderStateNew, order.State)
	assert.Equal(t, qty, order.LeavesQty)
	assert.Zero(t, order.CumQty)
	assert.False(t, order.CreatedAt.IsZero())
	assertQuantities(t, order)
}

func TestNewMarketOrderDropsPrice(t *testing.T) {
	order := NewOrder(OrderParams{
		Type:     OrderTypeMarket,
		Side:     SideSell,
		Price:    decimal.NewNullDecimal(decimal.NewFromInt(10)),
		OrderQty: 5,
	})

	assert.False(t, order.Price.Valid)
}

func TestOrderLifecycle(t *testing.T) {
	tests := []struct {
		name        string
		qty         int64
		apply       func(t *testing.T, o *Order) error
		expectedErr error
		checkResult func(t *testing.T, o *Order)
	}{
		{
			name:  "acknowledge moves NEW to LIVE",
			qty:   10,
			apply: func(t *testing.T, o *Order) error { return o.Acknowledge() },
			checkResult: func(t *testing.T, o *Order) {
				assert.Equal(t, OrderStateLive, o.State)
				assert.True(t, o.IsLive())
				assert.True(t, o.IsCancellable())
			},
		},
		{
			name: "partial fill",
			qty:  10,
			apply: func(t *testing.T, o *Order) error {
				require.NoError(t, o.Acknowledge())
				return o.Fill(4, decimal.NewFromInt(150))
			},
			checkResult: func(t *testing.T, o *Order) {
				assert.Equal(t, OrderStatePartiallyFilled, o.State)
				assert.Equal(t, int64(6), o.LeavesQty)
				assert.Equal(t, int64(4), o.CumQty)
				assert.True(t, o.IsCancellable())
			},
		},
		{
			name: "complete fill",
			qty:  10,
			apply: func(t *testing.T, o *Order) error {
				require.NoError(t, o.Acknowledge())
				require.NoError(t, o.Fill(4, decimal.NewFromInt(150)))
				return o.Fill(6, decimal.NewFromInt(150))
			},
			checkResult: func(t *testing.T, o *Order) {
				assert.Equal(t, OrderStateFilled, o.State)
				assert.Zero(t, o.LeavesQty)
				assert.True(t, o.IsTerminal())
				assert.False(t, o.IsCancellable())
			},
		},
		{
			name: "overfill rejected",
			qty:  10,
			apply: func(t *testing.T, o *Order) error {
				require.NoError(t, o.Acknowledge())
				return o.Fill(11, decimal.NewFromInt(150))
			},
			expectedErr: domainErrors.ErrInvalidFillQty,
			checkResult: func(t *testing.T, o *Order) {
				assert.Equal(t, OrderStateLive, o.State)
				assert.Zero(t, o.CumQty)
			},
		},
		{
			name: "zero fill rejected",
			qty:  10,
			apply: func(t *testing.T, o *Order) error {
				require.NoError(t, o.Acknowledge())
				return o.Fill(0, decimal.NewFromInt(150))
			},
			expectedErr: domainErrors.ErrInvalidFillQty,
		},
		{
			name:        "fill before acknowledge",
			qty:         10,
			apply:       func(t *testing.T, o *Order) error { return o.Fill(1, decimal.NewFromInt(150)) },
			expectedErr: domainErrors.ErrInvalidTransition,
			checkResult: func(t *testing.T, o *Order) {
				assert.Equal(t, OrderStateNew, o.State)
			},
		},
		{
			name: "cancel live order",
			qty:  10,
			apply: func(t *testing.T, o *Order) error {
				require.NoError(t, o.Acknowledge())
				return o.Cancel()
			},
			checkResult: func(t *testing.T, o *Order) {
				assert.Equal(t, OrderStateCancelled, o.State)
				assert.Equal(t, int64(10), o.LeavesQty)
			},
		},
		{
			name: "cancel filled order",
			qty:  3,
			apply: func(t *testing.T, o *Order) error {
				require.NoError(t, o.Acknowledge())
				require.NoError(t, o.Fill(3, decimal.NewFromInt(150)))
				return o.Cancel()
			},
			expectedErr: domainErrors.ErrInvalidTransition,
			checkResult: func(t *testing.T, o *Order) {
				assert.Equal(t, OrderStateFilled, o.State)
			},
		},
		{
			name: "double cancel",
			qty:  3,
			apply: func(t *testing.T, o *Order) error {
				require.NoError(t, o.Acknowledge())
				require.NoError(t, o.Cancel())
				return o.Cancel()
			},
			expectedErr: domainErrors.ErrInvalidTransition,
		},
		{
			name:  "reject new order",
			qty:   3,
			apply: func(t *testing.T, o *Order) error { return o.Reject() },
			checkResult: func(t *testing.T, o *Order) {
				assert.Equal(t, OrderStateRejected, o.State)
				assert.True(t, o.IsTerminal())
				assert.False(t, o.IsLive())
			},
		},
		{
			name: "reject after acknowledge",
			qty:  3,
			apply: func(t *testing.T, o *Order) error {
				require.NoError(t, o.Acknowledge())
				return o.Reject()
			},
			expectedErr: domainErrors.ErrInvalidTransition,
		},
		{
			name: "acknowledge twice",
			qty:  3,
			apply: func(t *testing.T, o *Order) error {
				require.NoError(t, o.Acknowledge())
				return o.Acknowledge()
			},
			expectedErr: domainErrors.ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := newTestOrder(tt.qty)

			err := tt.apply(t, order)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
			} else {
				require.NoError(t, err)
			}

			assertQuantities(t, order)
			if tt.checkResult != nil {
				tt.checkResult(t, order)
			}
		})
	}
}

func TestNewTradeNotional(t *testing.T) {
	buy := newTestOrder(10)
	sell := newTestOrder(10)
	sell.Side = SideSell

	trade := NewTrade(7, buy, sell, decimal.RequireFromString("150.25"), 4)

	assert.Equal(t, uint64(7), trade.TradeID)
	assert.True(t, decimal.RequireFromString("601").Equal(trade.NotionalValue))
	assert.Equal(t, buy.OrderID, trade.BuyOrderID)
	assert.Equal(t, sell.OrderID, trade.SellOrderID)
	assert.Equal(t, buy.Username, trade.BuyUsername)
	assert.Equal(t, sell.Username, trade.SellUsername)
	assert.Equal(t, "AAPL", trade.Symbol)
}

func TestResponseHelpers(t *testing.T) {
	assert.True(t, OrderReject("X", RejectReasonInvalidField, "bad").IsReject())
	assert.True(t, CancelReject("X", RejectReasonOrderNotFound, "order not found").IsReject())
	assert.False(t, MassCancelAck([]string{"A"}).IsReject())
	assert.Equal(t, "2 orders cancelled", MassCancelAck([]string{"A", "B"}).Text)
	assert.Equal(t, "1 order cancelled", MassCancelAck([]string{"A"}).Text)
}
