package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is an immutable execution record. Values are copied out of the
// matching algorithm, never mutated afterwards.
type Trade struct {
	TradeID       uint64
	Symbol        string
	Price         decimal.Decimal
	Quantity      int64
	NotionalValue decimal.Decimal
	ExecutionTime time.Time
	BuyOrderID    uint64
	SellOrderID   uint64
	BuyUsername   string
	SellUsername  string
}

func NewTrade(tradeID uint64, buy, sell *Order, price decimal.Decimal, quantity int64) Trade {
	return Trade{
		TradeID:       tradeID,
		Symbol:        buy.Symbol,
		Price:         price,
		Quantity:      quantity,
		NotionalValue: price.Mul(decimal.NewFromInt(quantity)),
		ExecutionTime: time.Now().UTC(),
		BuyOrderID:    buy.OrderID,
		SellOrderID:   sell.OrderID,
		BuyUsername:   buy.Username,
		SellUsername:  sell.Username,
	}
}
