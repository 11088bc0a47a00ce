package metrics

import "github.com/prometheus/client_golang/prometheus"

type BookSource interface {
	Symbols() []string
	RestingOrders(symbol string) int
	TotalMatches() int64
}

// BookCollector reads book state at scrape time instead of tracking it on
// the matching path.
type BookCollector struct {
	source  BookSource
	resting *prometheus.Desc
	matches *prometheus.Desc
}

func NewBookCollector(source BookSource) *BookCollector {
	return &BookCollector{
		source: source,
		resting: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "book", "resting_orders"),
			"Orders resting on the book.",
			[]string{"symbol"}, nil,
		),
		matches: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "engine", "matches_total"),
			"Trades produced by the matching engine across all symbols.",
			nil, nil,
		),
	}
}

func (c *BookCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.resting
	ch <- c.matches
}

func (c *BookCollector) Collect(ch chan<- prometheus.Metric) {
	for _, symbol := range c.source.Symbols() {
		ch <- prometheus.MustNewConstMetric(c.resting, prometheus.GaugeValue,
			float64(c.source.RestingOrders(symbol)), symbol)
	}

	ch <- prometheus.MustNewConstMetric(c.matches, prometheus.CounterValue,
		float64(c.source.TotalMatches()))
}
