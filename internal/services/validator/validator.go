package validator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nastyazhadan/order-gateway/internal/domain/models"
)

const (
	maxClOrdIDLength = 20
	maxSymbolLength  = 8
	maturityLayout   = "20060102"

	DefaultMaxOrderQty = 999_999
)

var DefaultMaxPrice = decimal.RequireFromString("999999.9999")

type Config struct {
	MaxOrderQty int64
	MaxPrice    decimal.Decimal
}

func DefaultConfig() Config {
	return Config{
		MaxOrderQty: DefaultMaxOrderQty,
		MaxPrice:    DefaultMaxPrice,
	}
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type Validator struct {
	maxOrderQty int64
	maxPrice    decimal.Decimal
}

func New(cfg Config) *Validator {
	if cfg.MaxOrderQty <= 0 {
		cfg.MaxOrderQty = DefaultMaxOrderQty
	}
	if cfg.MaxPrice.IsZero() {
		cfg.MaxPrice = DefaultMaxPrice
	}

	return &Validator{
		maxOrderQty: cfg.MaxOrderQty,
		maxPrice:    cfg.MaxPrice,
	}
}

// ValidateNewOrder returns nil for a valid request, otherwise a *ValidationError
// for the first rule that fails.
func (v *Validator) ValidateNewOrder(request models.NewOrderRequest) error {
	checks := []func(models.NewOrderRequest) *ValidationError{
		validateClOrdID,
		validateSide,
		v.validateQuantity,
		validateSymbol,
		validateOrderType,
		v.validatePrice,
		validateCapacity,
		validateOpenClose,
		validateOptionSymbology,
	}

	for _, check := range checks {
		if err := check(request); err != nil {
			return err
		}
	}

	return nil
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

func validateClOrdID(request models.NewOrderRequest) *ValidationError {
	clOrdID := request.ClOrdID

	if strings.TrimSpace(clOrdID) == "" {
		return invalid("ClOrdID", "ClOrdID is required")
	}
	if len(clOrdID) > maxClOrdIDLength {
		return invalid("ClOrdID", "ClOrdID exceeds %d characters", maxClOrdIDLength)
	}
	for _, r := range clOrdID {
		if !isClOrdIDRune(r) {
			return invalid("ClOrdID", "ClOrdID contains invalid character %q", r)
		}
	}

	return nil
}

func isClOrdIDRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-', r == '_', r == '.', r == ':':
		return true
	default:
		return false
	}
}

func validateSide(request models.NewOrderRequest) *ValidationError {
	if !request.Side.IsValid() {
		return invalid("Side", "Side must be BUY or SELL, got %q", request.Side)
	}
	return nil
}

func (v *Validator) validateQuantity(request models.NewOrderRequest) *ValidationError {
	if request.OrderQty < 1 {
		return invalid("OrderQty", "OrderQty must be at least 1")
	}
	if request.OrderQty > v.maxOrderQty {
		return invalid("OrderQty", "OrderQty %d exceeds system limit %d", request.OrderQty, v.maxOrderQty)
	}
	return nil
}

func validateSymbol(request models.NewOrderRequest) *ValidationError {
	symbol := request.Symbol

	if strings.TrimSpace(symbol) == "" {
		return invalid("Symbol", "Symbol is required")
	}
	if len(symbol) > maxSymbolLength {
		return invalid("Symbol", "Symbol exceeds %d characters", maxSymbolLength)
	}
	for _, r := range symbol {
		if !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') {
			return invalid("Symbol", "Symbol must contain only uppercase letters and digits")
		}
	}

	return nil
}

func validateOrderType(request models.NewOrderRequest) *ValidationError {
	if !request.Type.IsValid() {
		return invalid("OrdType", "OrdType must be LIMIT or MARKET, got %q", request.Type)
	}
	return nil
}

func (v *Validator) validatePrice(request models.NewOrderRequest) *ValidationError {
	if request.Type == models.OrderTypeMarket {
		return nil
	}

	if !request.Price.Valid {
		return invalid("Price", "Price is required for LIMIT orders")
	}
	if request.Price.Decimal.IsNegative() {
		return invalid("Price", "Price must not be negative")
	}
	if request.Price.Decimal.GreaterThan(v.maxPrice) {
		return invalid("Price", "Price %s exceeds system limit %s", request.Price.Decimal, v.maxPrice)
	}

	return nil
}

func validateCapacity(request models.NewOrderRequest) *ValidationError {
	if !request.Capacity.IsValid() {
		return invalid("Capacity", "Capacity must be one of CUSTOMER, FIRM, MARKET_MAKER, got %q", request.Capacity)
	}
	return nil
}

func validateOpenClose(request models.NewOrderRequest) *ValidationError {
	if !request.OpenClose.IsValid() {
		return invalid("OpenClose", "OpenClose must be one of OPEN, CLOSE, NONE, got %q", request.OpenClose)
	}
	return nil
}

func validateOptionSymbology(request models.NewOrderRequest) *ValidationError {
	if !request.HasOptionFields() {
		return nil
	}

	if request.MaturityDate == "" {
		return invalid("MaturityDate", "MaturityDate is required for option orders")
	}
	if !request.StrikePrice.Valid {
		return invalid("StrikePrice", "StrikePrice is required for option orders")
	}
	if request.PutOrCall == "" {
		return invalid("PutOrCall", "PutOrCall is required for option orders")
	}

	if _, err := time.Parse(maturityLayout, request.MaturityDate); err != nil {
		return invalid("MaturityDate", "MaturityDate must be formatted as YYYYMMDD")
	}
	if request.StrikePrice.Decimal.IsNegative() {
		return invalid("StrikePrice", "StrikePrice must not be negative")
	}
	if !request.PutOrCall.IsValid() {
		return invalid("PutOrCall", "PutOrCall must be PUT or CALL, got %q", request.PutOrCall)
	}

	return nil
}

type ExistenceChecker interface {
	ExistsByClOrdID(ctx context.Context, clOrdID string) (bool, error)
}

// IsDuplicateClOrdID reports whether the repository has ever stored clOrdID.
// It complements the in-memory check done at admission.
func IsDuplicateClOrdID(ctx context.Context, clOrdID string, repository ExistenceChecker) (bool, error) {
	const op = "validator.IsDuplicateClOrdID"

	exists, err := repository.ExistsByClOrdID(ctx, clOrdID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}
