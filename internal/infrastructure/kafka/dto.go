package kafka

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/nastyazhadan/order-gateway/internal/domain/models"
)

const (
	CommandNewOrder   = "NEW_ORDER"
	CommandCancel     = "CANCEL"
	CommandMassCancel = "MASS_CANCEL"
)

var errUnknownCommand = errors.New("unknown command type")

type SessionMessage struct {
	Username      string `json:"username"`
	SessionSubID  string `json:"session_sub_id"`
	Authenticated bool   `json:"authenticated"`
	MatchingUnit  uint8  `json:"matching_unit,omitempty"`
}

type NewOrderMessage struct {
	ClOrdID      string              `json:"cl_ord_id"`
	Side         string              `json:"side"`
	OrderQty     int64               `json:"order_qty"`
	Symbol       string              `json:"symbol"`
	Price        decimal.NullDecimal `json:"price"`
	OrdType      string              `json:"ord_type"`
	Capacity     string              `json:"capacity"`
	Account      string              `json:"account,omitempty"`
	OpenClose    string              `json:"open_close"`
	MatchingUnit uint8               `json:"matching_unit,omitempty"`
	MaturityDate string              `json:"maturity_date,omitempty"`
	StrikePrice  decimal.NullDecimal `json:"strike_price"`
	PutOrCall    string              `json:"put_or_call,omitempty"`
}

// CommandMessage is the inbound envelope. Exactly one payload matches Type.
type CommandMessage struct {
	Type       string             `json:"type"`
	Session    SessionMessage     `json:"session"`
	NewOrder   *NewOrderMessage   `json:"new_order,omitempty"`
	Cancel     *CancelMessage     `json:"cancel,omitempty"`
	MassCancel *MassCancelMessage `json:"mass_cancel,omitempty"`
}

type CancelMessage struct {
	ClOrdID string `json:"cl_ord_id"`
}

type MassCancelMessage struct {
	Symbol string `json:"symbol,omitempty"`
}

func (m CommandMessage) ToDomain() (models.Session, models.Request, error) {
	session := models.Session{
		Username:      m.Session.Username,
		SessionSubID:  m.Session.SessionSubID,
		Authenticated: m.Session.Authenticated,
		MatchingUnit:  m.Session.MatchingUnit,
	}

	switch m.Type {
	case CommandNewOrder:
		if m.NewOrder == nil {
			return session, nil, errors.Errorf("%s command without payload", m.Type)
		}
		return session, m.NewOrder.toDomain(), nil
	case CommandCancel:
		if m.Cancel == nil {
			return session, nil, errors.Errorf("%s command without payload", m.Type)
		}
		return session, models.CancelOrderRequest{ClOrdID: m.Cancel.ClOrdID}, nil
	case CommandMassCancel:
		symbol := ""
		if m.MassCancel != nil {
			symbol = m.MassCancel.Symbol
		}
		return session, models.MassCancelRequest{Symbol: symbol}, nil
	default:
		return session, nil, errors.Wrapf(errUnknownCommand, "type %q", m.Type)
	}
}

func (m NewOrderMessage) toDomain() models.NewOrderRequest {
	return models.NewOrderRequest{
		ClOrdID:      m.ClOrdID,
		Side:         models.Side(m.Side),
		OrderQty:     m.OrderQty,
		Symbol:       m.Symbol,
		Price:        m.Price,
		Type:         models.OrderType(m.OrdType),
		Capacity:     models.Capacity(m.Capacity),
		Account:      m.Account,
		OpenClose:    models.OpenClose(m.OpenClose),
		MatchingUnit: m.MatchingUnit,
		MaturityDate: m.MaturityDate,
		StrikePrice:  m.StrikePrice,
		PutOrCall:    models.PutOrCall(m.PutOrCall),
	}
}

type OrderMessage struct {
	OrderID      uint64              `json:"order_id"`
	ClOrdID      string              `json:"cl_ord_id"`
	Symbol       string              `json:"symbol"`
	Side         string              `json:"side"`
	OrdType      string              `json:"ord_type"`
	Price        decimal.NullDecimal `json:"price"`
	OrderQty     int64               `json:"order_qty"`
	LeavesQty    int64               `json:"leaves_qty"`
	CumQty       int64               `json:"cum_qty"`
	Username     string              `json:"username"`
	SessionSubID string              `json:"session_sub_id"`
	Account      string              `json:"account,omitempty"`
	State        string              `json:"state"`
	LastModified time.Time           `json:"last_modified"`
}

type TradeMessage struct {
	TradeID       uint64          `json:"trade_id"`
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int64           `json:"quantity"`
	NotionalValue decimal.Decimal `json:"notional_value"`
	ExecutionTime time.Time       `json:"execution_time"`
	BuyOrderID    uint64          `json:"buy_order_id"`
	SellOrderID   uint64          `json:"sell_order_id"`
	BuyUsername   string          `json:"buy_username"`
	SellUsername  string          `json:"sell_username"`
}

type ExecutionReportMessage struct {
	ExecType  string         `json:"exec_type"`
	Order     OrderMessage   `json:"order"`
	Trades    []TradeMessage `json:"trades,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

type ResponseMessage struct {
	Type              string         `json:"type"`
	ClOrdID           string         `json:"cl_ord_id,omitempty"`
	OrderID           uint64         `json:"order_id,omitempty"`
	Reason            string         `json:"reason,omitempty"`
	Text              string         `json:"text,omitempty"`
	Order             *OrderMessage  `json:"order,omitempty"`
	Trades            []TradeMessage `json:"trades,omitempty"`
	CancelledClOrdIDs []string       `json:"cancelled_cl_ord_ids,omitempty"`
}

func ExecutionReportFromDomain(report models.ExecutionReport) ExecutionReportMessage {
	return ExecutionReportMessage{
		ExecType:  string(report.ExecType),
		Order:     orderFromDomain(report.Order),
		Trades:    tradesFromDomain(report.Trades),
		Timestamp: report.Timestamp,
	}
}

func ResponseFromDomain(response models.Response) ResponseMessage {
	message := ResponseMessage{
		Type:              string(response.Type),
		ClOrdID:           response.ClOrdID,
		OrderID:           response.OrderID,
		Reason:            string(response.Reason),
		Text:              response.Text,
		Trades:            tradesFromDomain(response.Trades),
		CancelledClOrdIDs: response.CancelledClOrdIDs,
	}
	if response.Order != nil {
		order := orderFromDomain(*response.Order)
		message.Order = &order
	}

	return message
}

func orderFromDomain(order models.Order) OrderMessage {
	return OrderMessage{
		OrderID:      order.OrderID,
		ClOrdID:      order.ClOrdID,
		Symbol:       order.Symbol,
		Side:         string(order.Side),
		OrdType:      string(order.Type),
		Price:        order.Price,
		OrderQty:     order.OrderQty,
		LeavesQty:    order.LeavesQty,
		CumQty:       order.CumQty,
		Username:     order.Username,
		SessionSubID: order.SessionSubID,
		Account:      order.Account,
		State:        string(order.State),
		LastModified: order.LastModified,
	}
}

func tradesFromDomain(trades []models.Trade) []TradeMessage {
	if len(trades) == 0 {
		return nil
	}

	out := make([]TradeMessage, 0, len(trades))
	for _, trade := range trades {
		out = append(out, TradeMessage{
			TradeID:       trade.TradeID,
			Symbol:        trade.Symbol,
			Price:         trade.Price,
			Quantity:      trade.Quantity,
			NotionalValue: trade.NotionalValue,
			ExecutionTime: trade.ExecutionTime,
			BuyOrderID:    trade.BuyOrderID,
			SellOrderID:   trade.SellOrderID,
			BuyUsername:   trade.BuyUsername,
			SellUsername:  trade.SellUsername,
		})
	}

	return out
}
