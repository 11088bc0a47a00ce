package service

import "errors"

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrDuplicateClOrdID     = errors.New("duplicate clordid")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrOrderNotCancellable  = errors.New("order not cancellable")
	ErrSessionNotAuthorized = errors.New("session not authenticated")
	ErrPublisherUnavailable = errors.New("execution publisher unavailable")
	ErrUnknownRequest       = errors.New("unknown request type")
)
