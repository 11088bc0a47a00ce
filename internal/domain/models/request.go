package models

import "github.com/shopspring/decimal"

// Request is the closed set of inbound session requests.
type Request interface {
	request()
}

type NewOrderRequest struct {
	ClOrdID      string
	Side         Side
	OrderQty     int64
	Symbol       string
	Price        decimal.NullDecimal
	Type         OrderType
	Capacity     Capacity
	Account      string
	OpenClose    OpenClose
	MatchingUnit uint8

	MaturityDate string
	StrikePrice  decimal.NullDecimal
	PutOrCall    PutOrCall
}

type CancelOrderRequest struct {
	ClOrdID string
}

// MassCancelRequest cancels every open order of the session, optionally
// only those on Symbol.
type MassCancelRequest struct {
	Symbol string
}

func (NewOrderRequest) request()    {}
func (CancelOrderRequest) request() {}
func (MassCancelRequest) request()  {}

func (r NewOrderRequest) HasOptionFields() bool {
	return r.MaturityDate != "" || r.StrikePrice.Valid || r.PutOrCall != ""
}

type Session struct {
	Username      string
	SessionSubID  string
	Authenticated bool
	MatchingUnit  uint8
}
