package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "order_gateway"

type Recorder struct {
	ordersAccepted  *prometheus.CounterVec
	ordersRejected  *prometheus.CounterVec
	ordersCancelled *prometheus.CounterVec
	trades          *prometheus.CounterVec
	tradedQuantity  *prometheus.CounterVec
	latency         *prometheus.HistogramVec
}

func NewRecorder(registerer prometheus.Registerer) *Recorder {
	factory := promauto.With(registerer)

	return &Recorder{
		ordersAccepted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_accepted_total",
			Help:      "Orders admitted to the book.",
		}, []string{"symbol"}),
		ordersRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_rejected_total",
			Help:      "Rejected requests by reason.",
		}, []string{"reason"}),
		ordersCancelled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_cancelled_total",
			Help:      "Orders cancelled on request.",
		}, []string{"symbol"}),
		trades: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_total",
			Help:      "Executions produced by matching.",
		}, []string{"symbol"}),
		tradedQuantity: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "traded_quantity_total",
			Help:      "Executed quantity.",
		}, []string{"symbol"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Order manager operation latency.",
			Buckets:   []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .05, .1},
		}, []string{"operation"}),
	}
}

func (r *Recorder) OrderAccepted(symbol string) {
	r.ordersAccepted.WithLabelValues(symbol).Inc()
}

func (r *Recorder) OrderRejected(reason string) {
	r.ordersRejected.WithLabelValues(reason).Inc()
}

func (r *Recorder) OrderCancelled(symbol string) {
	r.ordersCancelled.WithLabelValues(symbol).Inc()
}

func (r *Recorder) TradesExecuted(symbol string, trades int, quantity int64) {
	r.trades.WithLabelValues(symbol).Add(float64(trades))
	r.tradedQuantity.WithLabelValues(symbol).Add(float64(quantity))
}

func (r *Recorder) ObserveLatency(operation string, duration time.Duration) {
	r.latency.WithLabelValues(operation).Observe(duration.Seconds())
}

type Nop struct{}

func (Nop) OrderAccepted(string)                 {}
func (Nop) OrderRejected(string)                 {}
func (Nop) OrderCancelled(string)                {}
func (Nop) TradesExecuted(string, int, int64)    {}
func (Nop) ObserveLatency(string, time.Duration) {}
