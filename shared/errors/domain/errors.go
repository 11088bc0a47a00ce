package domain

import "errors"

var (
	ErrInvalidTransition = errors.New("invalid order state transition")
	ErrInvalidFillQty    = errors.New("invalid fill quantity")
	ErrSymbolMismatch    = errors.New("order symbol does not match book")
	ErrUnknownSide       = errors.New("unknown order side")
)
