package models

import "strconv"

type ResponseType string

const (
	ResponseOrderAck         ResponseType = "ORDER_ACK"
	ResponseOrderReject      ResponseType = "ORDER_REJECT"
	ResponseCancelAck        ResponseType = "CANCEL_ACK"
	ResponseCancelReject     ResponseType = "CANCEL_REJECT"
	ResponseMassCancelAck    ResponseType = "MASS_CANCEL_ACK"
	ResponseMassCancelReject ResponseType = "MASS_CANCEL_REJECT"
)

type Response struct {
	Type    ResponseType
	ClOrdID string
	OrderID uint64
	Reason  RejectReason
	Text    string

	Order             *Order
	Trades            []Trade
	CancelledClOrdIDs []string
}

func (r Response) IsReject() bool {
	switch r.Type {
	case ResponseOrderReject, ResponseCancelReject, ResponseMassCancelReject:
		return true
	default:
		return false
	}
}

func OrderAck(order Order, trades []Trade) Response {
	return Response{
		Type:    ResponseOrderAck,
		ClOrdID: order.ClOrdID,
		OrderID: order.OrderID,
		Order:   &order,
		Trades:  trades,
	}
}

func OrderReject(clOrdID string, reason RejectReason, text string) Response {
	return Response{
		Type:    ResponseOrderReject,
		ClOrdID: clOrdID,
		Reason:  reason,
		Text:    text,
	}
}

func CancelAck(order Order) Response {
	return Response{
		Type:    ResponseCancelAck,
		ClOrdID: order.ClOrdID,
		OrderID: order.OrderID,
		Order:   &order,
	}
}

func CancelReject(clOrdID string, reason RejectReason, text string) Response {
	return Response{
		Type:    ResponseCancelReject,
		ClOrdID: clOrdID,
		Reason:  reason,
		Text:    text,
	}
}

func MassCancelAck(cancelled []string) Response {
	return Response{
		Type:              ResponseMassCancelAck,
		CancelledClOrdIDs: cancelled,
		Text:              massCancelText(len(cancelled)),
	}
}

func MassCancelReject(reason RejectReason, text string) Response {
	return Response{
		Type:   ResponseMassCancelReject,
		Reason: reason,
		Text:   text,
	}
}

func massCancelText(count int) string {
	if count == 1 {
		return "1 order cancelled"
	}
	return strconv.Itoa(count) + " orders cancelled"
}
