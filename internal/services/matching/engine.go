package matching

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/nastyazhadan/order-gateway/internal/domain/models"
)

// Engine routes orders to per-symbol books, creating a book on first use.
// Books are independent, so different symbols match in parallel.
type Engine struct {
	tradeIDs IDGenerator

	mu    sync.RWMutex
	books map[string]*OrderBook

	totalMatches atomic.Int64
}

func NewEngine(tradeIDs IDGenerator) *Engine {
	return &Engine{
		tradeIDs: tradeIDs,
		books:    make(map[string]*OrderBook),
	}
}

func (e *Engine) ProcessOrder(order *models.Order) ([]models.Trade, error) {
	trades, err := e.getOrCreateBook(order.Symbol).Match(order)
	e.totalMatches.Add(int64(len(trades)))

	return trades, err
}

func (e *Engine) CancelOrder(order *models.Order) (bool, error) {
	return e.getOrCreateBook(order.Symbol).Cancel(order)
}

// Snapshot returns a copy of the order consistent with its book.
func (e *Engine) Snapshot(order *models.Order) models.Order {
	return e.getOrCreateBook(order.Symbol).OrderSnapshot(order)
}

func (e *Engine) OrderBook(symbol string) (*OrderBook, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	book, found := e.books[symbol]
	return book, found
}

// RestingOrders is the number of orders resting on symbol's book.
func (e *Engine) RestingOrders(symbol string) int {
	book, found := e.OrderBook(symbol)
	if !found {
		return 0
	}
	return book.Size()
}

func (e *Engine) TotalMatches() int64 {
	return e.totalMatches.Load()
}

func (e *Engine) Symbols() []string {
	e.mu.RLock()
	symbols := make([]string, 0, len(e.books))
	for symbol := range e.books {
		symbols = append(symbols, symbol)
	}
	e.mu.RUnlock()

	sort.Strings(symbols)
	return symbols
}

func (e *Engine) getOrCreateBook(symbol string) *OrderBook {
	if book, found := e.OrderBook(symbol); found {
		return book
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if book, found := e.books[symbol]; found {
		return book
	}

	book := NewOrderBook(symbol, e.tradeIDs)
	e.books[symbol] = book

	return book
}
