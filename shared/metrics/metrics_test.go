package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorderCounters(t *testing.T) {
	recorder := NewRecorder(prometheus.NewRegistry())

	recorder.OrderAccepted("AAPL")
	recorder.OrderAccepted("AAPL")
	recorder.OrderRejected("DUPLICATE_CLORDID")
	recorder.OrderCancelled("MSFT")
	recorder.TradesExecuted("AAPL", 2, 15)
	recorder.ObserveLatency("Manager.ProcessNewOrder", 120*time.Microsecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(recorder.ordersAccepted.WithLabelValues("AAPL")))
	assert.Equal(t, 1.0, testutil.ToFloat64(recorder.ordersRejected.WithLabelValues("DUPLICATE_CLORDID")))
	assert.Equal(t, 1.0, testutil.ToFloat64(recorder.ordersCancelled.WithLabelValues("MSFT")))
	assert.Equal(t, 2.0, testutil.ToFloat64(recorder.trades.WithLabelValues("AAPL")))
	assert.Equal(t, 15.0, testutil.ToFloat64(recorder.tradedQuantity.WithLabelValues("AAPL")))
	assert.Equal(t, 1, testutil.CollectAndCount(recorder.latency))
}
