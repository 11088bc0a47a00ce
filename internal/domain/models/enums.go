package models

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

func (s Side) IsValid() bool {
	return s == SideBuy || s == SideSell
}

func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

type OrderType string

const (
	OrderTypeLimit  OrderType = "LIMIT"
	OrderTypeMarket OrderType = "MARKET"
)

func (t OrderType) IsValid() bool {
	return t == OrderTypeLimit || t == OrderTypeMarket
}

type OrderState string

const (
	OrderStateNew             OrderState = "NEW"
	OrderStateLive            OrderState = "LIVE"
	OrderStatePartiallyFilled OrderState = "PARTIALLY_FILLED"
	OrderStateFilled          OrderState = "FILLED"
	OrderStateCancelled       OrderState = "CANCELLED"
	OrderStateRejected        OrderState = "REJECTED"
)

func (s OrderState) IsTerminal() bool {
	switch s {
	case OrderStateFilled, OrderStateCancelled, OrderStateRejected:
		return true
	default:
		return false
	}
}

type Capacity string

const (
	CapacityCustomer    Capacity = "CUSTOMER"
	CapacityFirm        Capacity = "FIRM"
	CapacityMarketMaker Capacity = "MARKET_MAKER"
)

func (c Capacity) IsValid() bool {
	switch c {
	case CapacityCustomer, CapacityFirm, CapacityMarketMaker:
		return true
	default:
		return false
	}
}

// OpenClose is the position effect of an order.
type OpenClose string

const (
	OpenCloseOpen  OpenClose = "OPEN"
	OpenCloseClose OpenClose = "CLOSE"
	OpenCloseNone  OpenClose = "NONE"
)

func (o OpenClose) IsValid() bool {
	switch o {
	case OpenCloseOpen, OpenCloseClose, OpenCloseNone:
		return true
	default:
		return false
	}
}

type PutOrCall string

const (
	Put  PutOrCall = "PUT"
	Call PutOrCall = "CALL"
)

func (p PutOrCall) IsValid() bool {
	return p == Put || p == Call
}

type RejectReason string

const (
	RejectReasonNone                    RejectReason = ""
	RejectReasonInvalidField            RejectReason = "INVALID_FIELD"
	RejectReasonDuplicateClOrdID        RejectReason = "DUPLICATE_CLORDID"
	RejectReasonSessionNotAuthenticated RejectReason = "SESSION_NOT_AUTHENTICATED"
	RejectReasonNotCancellable          RejectReason = "NOT_CANCELLABLE"
	RejectReasonUnauthorized            RejectReason = "UNAUTHORIZED"
	RejectReasonOrderNotFound           RejectReason = "ORDER_NOT_FOUND"
	RejectReasonInternal                RejectReason = "INTERNAL"
)
