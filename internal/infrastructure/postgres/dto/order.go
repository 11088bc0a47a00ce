package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nastyazhadan/order-gateway/internal/domain/models"
)

type Order struct {
	OrderID      int64     `db:"order_id"`
	ClOrdID      string    `db:"cl_ord_id"`
	Symbol       string    `db:"symbol"`
	Side         string    `db:"side"`
	Type         string    `db:"order_type"`
	Price        *string   `db:"price"`
	OrderQty     int64     `db:"order_qty"`
	LeavesQty    int64     `db:"leaves_qty"`
	CumQty       int64     `db:"cum_qty"`
	Username     string    `db:"username"`
	SessionSubID string    `db:"session_sub_id"`
	Account      string    `db:"account"`
	Capacity     string    `db:"capacity"`
	OpenClose    string    `db:"open_close"`
	MatchingUnit int16     `db:"matching_unit"`
	State        string    `db:"state"`
	CreatedAt    time.Time `db:"created_at"`
	LastModified time.Time `db:"last_modified"`
}

func (o Order) ToDomain() (models.Order, error) {
	var price decimal.NullDecimal
	if o.Price != nil {
		value, err := decimal.NewFromString(*o.Price)
		if err != nil {
			return models.Order{}, err
		}
		price = decimal.NewNullDecimal(value)
	}

	return models.Order{
		OrderID:      uint64(o.OrderID),
		ClOrdID:      o.ClOrdID,
		Symbol:       o.Symbol,
		Side:         models.Side(o.Side),
		Type:         models.OrderType(o.Type),
		Price:        price,
		OrderQty:     o.OrderQty,
		LeavesQty:    o.LeavesQty,
		CumQty:       o.CumQty,
		Username:     o.Username,
		SessionSubID: o.SessionSubID,
		Account:      o.Account,
		Capacity:     models.Capacity(o.Capacity),
		OpenClose:    models.OpenClose(o.OpenClose),
		MatchingUnit: uint8(o.MatchingUnit),
		State:        models.OrderState(o.State),
		CreatedAt:    o.CreatedAt,
		LastModified: o.LastModified,
	}, nil
}

func FromDomain(order models.Order) Order {
	var price *string
	if order.Price.Valid {
		value := order.Price.Decimal.String()
		price = &value
	}

	return Order{
		OrderID:      int64(order.OrderID),
		ClOrdID:      order.ClOrdID,
		Symbol:       order.Symbol,
		Side:         string(order.Side),
		Type:         string(order.Type),
		Price:        price,
		OrderQty:     order.OrderQty,
		LeavesQty:    order.LeavesQty,
		CumQty:       order.CumQty,
		Username:     order.Username,
		SessionSubID: order.SessionSubID,
		Account:      order.Account,
		Capacity:     string(order.Capacity),
		OpenClose:    string(order.OpenClose),
		MatchingUnit: int16(order.MatchingUnit),
		State:        string(order.State),
		CreatedAt:    order.CreatedAt,
		LastModified: order.LastModified,
	}
}
