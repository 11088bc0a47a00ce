package order

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/nastyazhadan/order-gateway/internal/domain/models"
)

var tracer = otel.Tracer("github.com/nastyazhadan/order-gateway/internal/services/order")

type Validator interface {
	ValidateNewOrder(request models.NewOrderRequest) error
}

type Matcher interface {
	ProcessOrder(order *models.Order) ([]models.Trade, error)
	CancelOrder(order *models.Order) (bool, error)
	Snapshot(order *models.Order) models.Order
}

type Repository interface {
	SaveOrder(ctx context.Context, order models.Order) error
	ExistsByClOrdID(ctx context.Context, clOrdID string) (bool, error)
}

// TradeRepository keeps the execution history. Writes are best effort, the
// trades are already binding when they arrive.
type TradeRepository interface {
	SaveTrades(ctx context.Context, trades []models.Trade) error
}

type ExecutionPublisher interface {
	PublishExecution(ctx context.Context, report models.ExecutionReport) error
}

type MetricsRecorder interface {
	OrderAccepted(symbol string)
	OrderRejected(reason string)
	OrderCancelled(symbol string)
	TradesExecuted(symbol string, trades int, quantity int64)
	ObserveLatency(operation string, duration time.Duration)
}

type IDGenerator interface {
	Next() uint64
}

type Options struct {
	// CheckRepositoryDuplicates also rejects ClOrdIDs the repository has
	// seen before, e.g. before a restart.
	CheckRepositoryDuplicates bool
	Trades                    TradeRepository
}

type Stats struct {
	Accepted  int64
	Rejected  int64
	Cancelled int64
	Tracked   int
	Retired   int
}

type Manager struct {
	validator  Validator
	matcher    Matcher
	repository Repository
	publisher  ExecutionPublisher
	metrics    MetricsRecorder
	orderIDs   IDGenerator
	options    Options

	tracked *trackingIndex

	accepted  atomic.Int64
	rejected  atomic.Int64
	cancelled atomic.Int64
}

func NewManager(
	v Validator,
	m Matcher,
	r Repository,
	p ExecutionPublisher,
	mr MetricsRecorder,
	ids IDGenerator,
	options Options,
) *Manager {
	return &Manager{
		validator:  v,
		matcher:    m,
		repository: r,
		publisher:  p,
		metrics:    mr,
		orderIDs:   ids,
		options:    options,
		tracked:    newTrackingIndex(),
	}
}

func (m *Manager) Stats() Stats {
	return Stats{
		Accepted:  m.accepted.Load(),
		Rejected:  m.rejected.Load(),
		Cancelled: m.cancelled.Load(),
		Tracked:   m.tracked.Len(),
		Retired:   m.tracked.RetiredLen(),
	}
}
