package matching

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"

	"github.com/nastyazhadan/order-gateway/internal/domain/models"
	domainErrors "github.com/nastyazhadan/order-gateway/shared/errors/domain"
)

type IDGenerator interface {
	Next() uint64
}

type priceLevel struct {
	price    decimal.Decimal
	orders   *list.List
	totalQty int64
}

type restingOrder struct {
	side    models.Side
	level   *priceLevel
	element *list.Element
}

// OrderBook holds the resting orders of one symbol. Every read and write
// goes through mu, which is the single serialization point for matching,
// removal and cancellation on the symbol.
type OrderBook struct {
	symbol   string
	tradeIDs IDGenerator

	mu             sync.Mutex
	bids           *btree.BTreeG[*priceLevel]
	asks           *btree.BTreeG[*priceLevel]
	resting        map[uint64]restingOrder
	lastTradePrice decimal.NullDecimal
}

type LevelSnapshot struct {
	Price      decimal.Decimal
	Quantity   int64
	OrderCount int
}

type BookSnapshot struct {
	Symbol         string
	Bids           []LevelSnapshot
	Asks           []LevelSnapshot
	LastTradePrice decimal.NullDecimal
}

func NewOrderBook(symbol string, tradeIDs IDGenerator) *OrderBook {
	return &OrderBook{
		symbol:   symbol,
		tradeIDs: tradeIDs,
		// both trees keep the best price at Min
		bids: btree.NewBTreeG(func(a, b *priceLevel) bool {
			return a.price.GreaterThan(b.price)
		}),
		asks: btree.NewBTreeG(func(a, b *priceLevel) bool {
			return a.price.LessThan(b.price)
		}),
		resting: make(map[uint64]restingOrder),
	}
}

func (b *OrderBook) Symbol() string {
	return b.symbol
}

func (b *OrderBook) BestBid() (decimal.Decimal, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return bestPrice(b.bids)
}

func (b *OrderBook) BestAsk() (decimal.Decimal, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return bestPrice(b.asks)
}

func (b *OrderBook) LastTradePrice() (decimal.Decimal, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.lastTradePrice.Decimal, b.lastTradePrice.Valid
}

func (b *OrderBook) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.resting)
}

func (b *OrderBook) Snapshot(depth int) BookSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	return BookSnapshot{
		Symbol:         b.symbol,
		Bids:           levelSnapshots(b.bids, depth),
		Asks:           levelSnapshots(b.asks, depth),
		LastTradePrice: b.lastTradePrice,
	}
}

// Match runs the incoming order against the contra side using price-time
// priority. A LIMIT remainder rests at its own price, a MARKET remainder
// is cancelled.
func (b *OrderBook) Match(incoming *models.Order) ([]models.Trade, error) {
	if incoming.Symbol != b.symbol {
		return nil, fmt.Errorf("%w: %s on %s", domainErrors.ErrSymbolMismatch, incoming.Symbol, b.symbol)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// a cancel may win the race for the book lock
	if !incoming.IsLive() {
		return nil, nil
	}

	contra, err := b.contraSide(incoming.Side)
	if err != nil {
		return nil, err
	}

	var trades []models.Trade
	for incoming.LeavesQty > 0 {
		level, found := contra.Min()
		if !found || !crosses(incoming, level.price) {
			break
		}

		front := level.orders.Front()
		resting := front.Value.(*models.Order)

		quantity := min(incoming.LeavesQty, resting.LeavesQty)
		price := resting.Price.Decimal

		if err := resting.Fill(quantity, price); err != nil {
			return trades, err
		}
		if err := incoming.Fill(quantity, price); err != nil {
			return trades, err
		}

		level.totalQty -= quantity
		if resting.LeavesQty == 0 {
			b.unlink(contra, resting.OrderID)
		}

		trades = append(trades, b.newTrade(incoming, resting, price, quantity))
		b.lastTradePrice = decimal.NewNullDecimal(price)
	}

	if incoming.LeavesQty > 0 {
		switch incoming.Type {
		case models.OrderTypeLimit:
			b.rest(incoming)
		case models.OrderTypeMarket:
			if err := incoming.Cancel(); err != nil {
				return trades, err
			}
		}
	}

	return trades, nil
}

// Remove takes a resting order off the book. It reports false when the order
// is not resting, e.g. already filled or never rested.
func (b *OrderBook) Remove(order *models.Order) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.remove(order.OrderID)
}

// Cancel removes the order from the book and moves it to CANCELLED as one
// step, so a concurrent match cannot fill it in between.
func (b *OrderBook) Cancel(order *models.Order) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := order.Cancel(); err != nil {
		return false, err
	}

	return b.remove(order.OrderID), nil
}

// OrderSnapshot copies the order while holding the book lock.
func (b *OrderBook) OrderSnapshot(order *models.Order) models.Order {
	b.mu.Lock()
	defer b.mu.Unlock()

	return *order
}

func (b *OrderBook) rest(order *models.Order) {
	side := b.side(order.Side)

	key := &priceLevel{price: order.Price.Decimal}
	level, found := side.Get(key)
	if !found {
		level = &priceLevel{
			price:  order.Price.Decimal,
			orders: list.New(),
		}
		side.Set(level)
	}

	element := level.orders.PushBack(order)
	level.totalQty += order.LeavesQty

	b.resting[order.OrderID] = restingOrder{
		side:    order.Side,
		level:   level,
		element: element,
	}
}

func (b *OrderBook) remove(orderID uint64) bool {
	entry, found := b.resting[orderID]
	if !found {
		return false
	}

	order := entry.element.Value.(*models.Order)
	entry.level.totalQty -= order.LeavesQty

	b.unlink(b.side(entry.side), orderID)
	return true
}

func (b *OrderBook) unlink(side *btree.BTreeG[*priceLevel], orderID uint64) {
	entry := b.resting[orderID]

	entry.level.orders.Remove(entry.element)
	if entry.level.orders.Len() == 0 {
		side.Delete(entry.level)
	}

	delete(b.resting, orderID)
}

func (b *OrderBook) newTrade(incoming, resting *models.Order, price decimal.Decimal, quantity int64) models.Trade {
	buy, sell := incoming, resting
	if !incoming.IsBuy() {
		buy, sell = resting, incoming
	}

	return models.NewTrade(b.tradeIDs.Next(), buy, sell, price, quantity)
}

func (b *OrderBook) side(side models.Side) *btree.BTreeG[*priceLevel] {
	if side == models.SideBuy {
		return b.bids
	}
	return b.asks
}

func (b *OrderBook) contraSide(side models.Side) (*btree.BTreeG[*priceLevel], error) {
	switch side {
	case models.SideBuy:
		return b.asks, nil
	case models.SideSell:
		return b.bids, nil
	default:
		return nil, fmt.Errorf("%w: %q", domainErrors.ErrUnknownSide, side)
	}
}

func crosses(incoming *models.Order, contraPrice decimal.Decimal) bool {
	if incoming.Type == models.OrderTypeMarket {
		return true
	}

	if incoming.IsBuy() {
		return incoming.Price.Decimal.GreaterThanOrEqual(contraPrice)
	}
	return incoming.Price.Decimal.LessThanOrEqual(contraPrice)
}

func bestPrice(side *btree.BTreeG[*priceLevel]) (decimal.Decimal, bool) {
	level, found := side.Min()
	if !found {
		return decimal.Decimal{}, false
	}
	return level.price, true
}

func levelSnapshots(side *btree.BTreeG[*priceLevel], depth int) []LevelSnapshot {
	if depth <= 0 {
		return []LevelSnapshot{}
	}

	levels := make([]LevelSnapshot, 0, min(depth, side.Len()))

	side.Scan(func(level *priceLevel) bool {
		levels = append(levels, LevelSnapshot{
			Price:      level.price,
			Quantity:   level.totalQty,
			OrderCount: level.orders.Len(),
		})
		return len(levels) < depth
	})

	return levels
}
