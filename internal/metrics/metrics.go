// Package metrics collects job statistics on a private Prometheus registry.
// A nil *Collector is valid and records nothing.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation outcomes used as the status label.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

type Collector struct {
	reg *prometheus.Registry

	operations  *prometheus.CounterVec
	layers      prometheus.Counter
	cutMoves    prometheus.Counter
	tabs        prometheus.Counter
	offsetLoops prometheus.Counter

	rapidTravel     prometheus.Gauge
	prepareDuration prometheus.Histogram
}

func NewCollector() *Collector {
	c := &Collector{
		reg: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "svgcam_operations_total",
			Help: "Operations processed, by kind and status",
		}, []string{"kind", "status"}),
		layers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "svgcam_layers_total",
			Help: "Depth layers emitted",
		}),
		cutMoves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "svgcam_cut_moves_total",
			Help: "Cutting moves emitted, plunges excluded",
		}),
		tabs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "svgcam_holding_tabs_total",
			Help: "Holding tabs inserted into profile contours",
		}),
		offsetLoops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "svgcam_offset_loops_total",
			Help: "Loops produced by tool compensation offsets",
		}),
		rapidTravel: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "svgcam_rapid_travel_distance",
			Help: "Planned rapid travel between operations of the last job",
		}),
		prepareDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "svgcam_prepare_duration_seconds",
			Help:    "Time spent preparing one operation's contour",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}

	c.reg.MustRegister(
		c.operations,
		c.layers,
		c.cutMoves,
		c.tabs,
		c.offsetLoops,
		c.rapidTravel,
		c.prepareDuration,
	)
	return c
}

func (c *Collector) RecordOperation(kind, status string) {
	if c == nil {
		return
	}
	c.operations.WithLabelValues(kind, status).Inc()
}

func (c *Collector) RecordEmission(layers, moves int) {
	if c == nil {
		return
	}
	c.layers.Add(float64(layers))
	c.cutMoves.Add(float64(moves))
}

func (c *Collector) RecordTabs(n int) {
	if c == nil {
		return
	}
	c.tabs.Add(float64(n))
}

func (c *Collector) RecordOffsetLoops(n int) {
	if c == nil {
		return
	}
	c.offsetLoops.Add(float64(n))
}

func (c *Collector) SetRapidTravel(d float64) {
	if c == nil {
		return
	}
	c.rapidTravel.Set(d)
}

func (c *Collector) ObservePrepare(seconds float64) {
	if c == nil {
		return
	}
	c.prepareDuration.Observe(seconds)
}

// WriteTextfile writes the current values in the text exposition format,
// for the node exporter's textfile collector.
func (c *Collector) WriteTextfile(filename string) error {
	if c == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(filename, c.reg); err != nil {
		return fmt.Errorf("metrics: write %s: %w", filename, err)
	}
	return nil
}
