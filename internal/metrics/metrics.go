// Package metrics exposes simulation activity and protocol totals to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"rebase-sim/internal/protocol"
)

const namespace = "rebase_sim"

type Collectors struct {
	Simulations *prometheus.CounterVec
	Failures    *prometheus.CounterVec
	Epochs      prometheus.Counter
	Treasury    prometheus.Gauge
	Supply      prometheus.Gauge
	Index       prometheus.Gauge
	MarketCap   prometheus.Gauge
	StrategyROI *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Collectors, error) {
	c := &Collectors{
		Simulations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulations_total",
			Help:      "Strategy simulations run, by strategy.",
		}, []string{"strategy"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulation_failures_total",
			Help:      "Strategy simulations rejected, by strategy and error kind.",
		}, []string{"strategy", "kind"}),
		Epochs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "epochs_settled_total",
			Help:      "Protocol epochs settled.",
		}),
		Treasury: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "protocol",
			Name:      "treasury",
			Help:      "Treasury after the last settled epoch ($).",
		}),
		Supply: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "protocol",
			Name:      "supply",
			Help:      "Token supply after the last settled epoch.",
		}),
		Index: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "protocol",
			Name:      "index",
			Help:      "Staking index after the last settled epoch.",
		}),
		MarketCap: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "protocol",
			Name:      "market_cap",
			Help:      "Market cap after the last settled epoch ($).",
		}),
		StrategyROI: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "strategy_roi",
			Help:      "ROI of completed strategy simulations.",
			Buckets:   []float64{-0.5, -0.1, 0, 0.05, 0.1, 0.15, 0.2, 0.3, 0.5, 1},
		}, []string{"strategy"}),
	}
	for _, col := range []prometheus.Collector{
		c.Simulations, c.Failures, c.Epochs, c.Treasury, c.Supply, c.Index, c.MarketCap, c.StrategyROI,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ObserveRun records a completed simulation.
func (c *Collectors) ObserveRun(strategy string, roi float64) {
	c.Simulations.WithLabelValues(strategy).Inc()
	c.StrategyROI.WithLabelValues(strategy).Observe(roi)
}

// ObserveFailure records a rejected simulation.
func (c *Collectors) ObserveFailure(strategy, kind string) {
	c.Failures.WithLabelValues(strategy, kind).Inc()
}

// Sink is a protocol dashboard sink that tracks the latest settled totals.
func (c *Collectors) Sink() protocol.Sink {
	return func(d protocol.Dashboard) {
		c.Epochs.Inc()
		c.Treasury.Set(d.Treasury)
		c.Supply.Set(d.Supply)
		c.Index.Set(d.Index)
		c.MarketCap.Set(d.MarketCap)
	}
}
