package models

import "time"

type ExecType string

const (
	ExecTypeNew       ExecType = "NEW"
	ExecTypeTrade     ExecType = "TRADE"
	ExecTypeCancelled ExecType = "CANCELLED"
)

// ExecutionReport is the outbound event for one order state change.
type ExecutionReport struct {
	ExecType  ExecType
	Order     Order
	Trades    []Trade
	Timestamp time.Time
}

func NewExecutionReport(execType ExecType, order Order, trades []Trade) ExecutionReport {
	return ExecutionReport{
		ExecType:  execType,
		Order:     order,
		Trades:    trades,
		Timestamp: time.Now().UTC(),
	}
}
