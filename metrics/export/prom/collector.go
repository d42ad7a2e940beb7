package prom

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	parkgate "github.com/zg04ckpt/parkgate"
	"github.com/zg04ckpt/parkgate/metrics/export/internaldefs"
)

type metricsSource interface {
	MetricsSnapshot() parkgate.MetricsSnapshot
	AuditDropped() uint64
	NavigationsDropped() uint64
}

// Collector defines a public type used by parkgate APIs.
//
// Collector instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Collector struct {
	source       metricsSource
	counterDescs map[parkgate.MetricID]*prometheus.Desc
	histoDescs   map[parkgate.MetricID]*prometheus.Desc
	auditDesc    *prometheus.Desc
	navDesc      *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector describes the newcollector operation and its observable behavior.
//
// NewCollector does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewCollector(client *parkgate.Client) *Collector {
	return NewCollectorFromSource(client)
}

// NewCollectorFromSource describes the newcollectorfromsource operation and its observable behavior.
//
// NewCollectorFromSource does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewCollectorFromSource(source metricsSource) *Collector {
	c := &Collector{
		source:       source,
		counterDescs: make(map[parkgate.MetricID]*prometheus.Desc, len(internaldefs.CounterDefs)),
		histoDescs:   make(map[parkgate.MetricID]*prometheus.Desc, len(internaldefs.HistogramDefs)),
		auditDesc: prometheus.NewDesc(
			"parkgate_audit_dropped_total",
			"Dropped audit events due to dispatcher backpressure.",
			nil, nil,
		),
		navDesc: prometheus.NewDesc(
			"parkgate_navigation_dropped_total",
			"Dropped navigation intents due to dispatcher backpressure.",
			nil, nil,
		),
	}
	for _, def := range internaldefs.CounterDefs {
		c.counterDescs[def.ID] = prometheus.NewDesc(def.Name, def.Help, nil, nil)
	}
	for _, def := range internaldefs.HistogramDefs {
		c.histoDescs[def.ID] = prometheus.NewDesc(def.Name, def.Help, nil, nil)
	}
	return c
}

// Describe describes the describe operation and its observable behavior.
//
// Describe does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.counterDescs {
		ch <- d
	}
	for _, d := range c.histoDescs {
		ch <- d
	}
	ch <- c.auditDesc
	ch <- c.navDesc
}

// Collect describes the collect operation and its observable behavior.
//
// Collect does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c == nil || c.source == nil {
		return
	}

	snapshot := c.source.MetricsSnapshot()

	for _, def := range internaldefs.CounterDefs {
		ch <- prometheus.MustNewConstMetric(
			c.counterDescs[def.ID],
			prometheus.CounterValue,
			float64(snapshot.Counters[def.ID]),
		)
	}

	for _, def := range internaldefs.HistogramDefs {
		nonCumulative := internaldefs.NormalizeBuckets(snapshot.Histograms[def.ID])
		cumulative := internaldefs.CumulativeBuckets(nonCumulative)

		buckets := make(map[float64]uint64, len(internaldefs.HistogramBounds)-1)
		for i, le := range internaldefs.HistogramBounds {
			if le == "+Inf" {
				continue
			}
			bound, err := strconv.ParseFloat(le, 64)
			if err != nil {
				continue
			}
			buckets[bound] = cumulative[i]
		}
		count := cumulative[len(cumulative)-1]

		// Sum is not tracked in core snapshots; expose zero for a stable shape.
		ch <- prometheus.MustNewConstHistogram(c.histoDescs[def.ID], count, 0, buckets)
	}

	ch <- prometheus.MustNewConstMetric(c.auditDesc, prometheus.CounterValue, float64(c.source.AuditDropped()))
	ch <- prometheus.MustNewConstMetric(c.navDesc, prometheus.CounterValue, float64(c.source.NavigationsDropped()))
}

// Handler describes the handler operation and its observable behavior.
//
// Handler does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Collector) Handler() http.Handler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(c)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
