package matching

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nastyazhadan/order-gateway/internal/domain/models"
	"github.com/nastyazhadan/order-gateway/shared/infra/sequence"
)

func TestEngineCreatesBooksLazily(t *testing.T) {
	orders := newOrderFactory()
	engine := NewEngine(sequence.New(0))

	_, found := engine.OrderBook("AAPL")
	assert.False(t, found)

	trades, err := engine.ProcessOrder(orders.limit(t, "AAPL", models.SideBuy, "150", 10))
	require.NoError(t, err)
	assert.Empty(t, trades)

	book, found := engine.OrderBook("AAPL")
	require.True(t, found)
	assert.Equal(t, 1, book.Size())
	assert.Equal(t, []string{"AAPL"}, engine.Symbols())
}

func TestEngineRoutesBySymbol(t *testing.T) {
	orders := newOrderFactory()
	engine := NewEngine(sequence.New(0))

	_, err := engine.ProcessOrder(orders.limit(t, "AAPL", models.SideBuy, "150", 10))
	require.NoError(t, err)

	trades, err := engine.ProcessOrder(orders.limit(t, "MSFT", models.SideSell, "100", 10))
	require.NoError(t, err)
	assert.Empty(t, trades)

	trades, err = engine.ProcessOrder(orders.limit(t, "AAPL", models.SideSell, "150", 4))
	require.NoError(t, err)
	require.Len(t, trades, 1)

	assert.Equal(t, int64(1), engine.TotalMatches())
	assert.Equal(t, []string{"AAPL", "MSFT"}, engine.Symbols())
}

func TestEngineCancelOrder(t *testing.T) {
	orders := newOrderFactory()
	engine := NewEngine(sequence.New(0))

	c5 := orders.limit(t, "MSFT", models.SideBuy, "380.00", 20)
	_, err := engine.ProcessOrder(c5)
	require.NoError(t, err)

	removed, err := engine.CancelOrder(c5)
	require.NoError(t, err)
	assert.True(t, removed)

	book, _ := engine.OrderBook("MSFT")
	assert.Zero(t, book.Size())

	snapshot := engine.Snapshot(c5)
	assert.Equal(t, models.OrderStateCancelled, snapshot.State)
}

func TestEngineConcurrentSymbols(t *testing.T) {
	const (
		symbols = 8
		pairs   = 200
	)

	engine := NewEngine(sequence.New(0))
	ids := sequence.New(0)

	var wg sync.WaitGroup
	for s := 0; s < symbols; s++ {
		symbol := fmt.Sprintf("SYM%d", s)
		wg.Add(1)
		go func() {
			defer wg.Done()
			orders := &orderFactory{ids: ids}
			for i := 0; i < pairs; i++ {
				_, err := engine.ProcessOrder(orders.limit(t, symbol, models.SideBuy, "10", 1))
				assert.NoError(t, err)
				_, err = engine.ProcessOrder(orders.limit(t, symbol, models.SideSell, "10", 1))
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(symbols*pairs), engine.TotalMatches())
	assert.Len(t, engine.Symbols(), symbols)
	for _, symbol := range engine.Symbols() {
		book, found := engine.OrderBook(symbol)
		require.True(t, found)
		assert.Zero(t, book.Size())
	}
}

func TestEngineConcurrentCancelAndMatch(t *testing.T) {
	orders := newOrderFactory()
	engine := NewEngine(sequence.New(0))

	resting := make([]*models.Order, 0, 100)
	for i := 0; i < 100; i++ {
		order := orders.limit(t, "AAPL", models.SideSell, "10", 1)
		_, err := engine.ProcessOrder(order)
		require.NoError(t, err)
		resting = append(resting, order)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for _, order := range resting {
			_, _ = engine.CancelOrder(order)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_, err := engine.ProcessOrder(orders.limit(t, "AAPL", models.SideBuy, "10", 1))
			assert.NoError(t, err)
		}
	}()
	wg.Wait()

	for _, order := range resting {
		snapshot := engine.Snapshot(order)
		assert.Contains(t, []models.OrderState{models.OrderStateCancelled, models.OrderStateFilled}, snapshot.State)
		assert.Equal(t, snapshot.OrderQty, snapshot.LeavesQty+snapshot.CumQty)
	}
}
