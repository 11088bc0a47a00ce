package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/nastyazhadan/order-gateway/shared/errors/domain"
)

type Order struct {
	OrderID      uint64
	ClOrdID      string
	Symbol       string
	Side         Side
	Type         OrderType
	Price        decimal.NullDecimal
	OrderQty     int64
	LeavesQty    int64
	CumQty       int64
	Username     string
	SessionSubID string
	Account      string
	Capacity     Capacity
	OpenClose    OpenClose
	MatchingUnit uint8
	CreatedAt    time.Time
	LastModified time.Time
	State        OrderState
}

type OrderParams struct {
	OrderID      uint64
	ClOrdID      string
	Symbol       string
	Side         Side
	Type         OrderType
	Price        decimal.NullDecimal
	OrderQty     int64
	Username     string
	SessionSubID string
	Account      string
	Capacity     Capacity
	OpenClose    OpenClose
	MatchingUnit uint8
}

func NewOrder(params OrderParams) *Order {
	now := time.Now().UTC()

	price := params.Price
	if params.Type == OrderTypeMarket {
		price = decimal.NullDecimal{}
	}

	return &Order{
		OrderID:      params.OrderID,
		ClOrdID:      params.ClOrdID,
		Symbol:       params.Symbol,
		Side:         params.Side,
		Type:         params.Type,
		Price:        price,
		OrderQty:     params.OrderQty,
		LeavesQty:    params.OrderQty,
		CumQty:       0,
		Username:     params.Username,
		SessionSubID: params.SessionSubID,
		Account:      params.Account,
		Capacity:     params.Capacity,
		OpenClose:    params.OpenClose,
		MatchingUnit: params.MatchingUnit,
		CreatedAt:    now,
		LastModified: now,
		State:        OrderStateNew,
	}
}

func (o *Order) Acknowledge() error {
	if o.State != OrderStateNew {
		return o.transitionError(OrderStateLive)
	}

	o.setState(OrderStateLive)
	return nil
}

// Fill executes qty at price. Only the matching algorithm calls it.
func (o *Order) Fill(qty int64, price decimal.Decimal) error {
	if !o.IsLive() {
		return o.transitionError(OrderStateFilled)
	}
	if qty <= 0 || qty > o.LeavesQty {
		return fmt.Errorf("%w: order %d fill %d with %d leaves at %s",
			domainErrors.ErrInvalidFillQty, o.OrderID, qty, o.LeavesQty, price)
	}

	o.CumQty += qty
	o.LeavesQty -= qty

	if o.LeavesQty == 0 {
		o.setState(OrderStateFilled)
	} else {
		o.setState(OrderStatePartiallyFilled)
	}

	return nil
}

func (o *Order) Cancel() error {
	if !o.IsCancellable() {
		return o.transitionError(OrderStateCancelled)
	}

	o.setState(OrderStateCancelled)
	return nil
}

func (o *Order) Reject() error {
	if o.State != OrderStateNew {
		return o.transitionError(OrderStateRejected)
	}

	o.setState(OrderStateRejected)
	return nil
}

func (o *Order) IsCancellable() bool {
	return o.State == OrderStateLive || o.State == OrderStatePartiallyFilled
}

func (o *Order) IsLive() bool {
	return o.State == OrderStateLive || o.State == OrderStatePartiallyFilled
}

func (o *Order) IsTerminal() bool {
	return o.State.IsTerminal()
}

func (o *Order) IsBuy() bool {
	return o.Side == SideBuy
}

func (o *Order) setState(state OrderState) {
	o.State = state
	o.LastModified = time.Now().UTC()
}

func (o *Order) transitionError(target OrderState) error {
	return fmt.Errorf("%w: order %d %s -> %s",
		domainErrors.ErrInvalidTransition, o.OrderID, o.State, target)
}
