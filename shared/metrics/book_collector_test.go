package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type staticBooks map[string]int

func (b staticBooks) Symbols() []string {
	return []string{"AAPL", "MSFT"}
}

func (b staticBooks) RestingOrders(symbol string) int {
	return b[symbol]
}

func (b staticBooks) TotalMatches() int64 {
	return 7
}

func TestBookCollector(t *testing.T) {
	collector := NewBookCollector(staticBooks{"AAPL": 3, "MSFT": 0})

	expected := `
# HELP order_gateway_book_resting_orders Orders resting on the book.
# TYPE order_gateway_book_resting_orders gauge
order_gateway_book_resting_orders{symbol="AAPL"} 3
order_gateway_book_resting_orders{symbol="MSFT"} 0
# HELP order_gateway_engine_matches_total Trades produced by the matching engine across all symbols.
# TYPE order_gateway_engine_matches_total counter
order_gateway_engine_matches_total 7
`

	assert.NoError(t, testutil.CollectAndCompare(collector, strings.NewReader(expected)))
}
