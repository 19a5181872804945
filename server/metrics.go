package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the Prometheus collectors of one server
type Metrics struct {
	Generations *prometheus.CounterVec
	Duration    prometheus.Histogram
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
	Clients     prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lunargen_generations_total",
				Help: "Surface generations by outcome",
			},
			[]string{"outcome"},
		),
		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lunargen_generation_seconds",
				Help:    "Duration of completed surface generations",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
			},
		),
		CacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lunargen_cache_hits_total",
				Help: "Generations served from the mesh cache",
			},
		),
		CacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lunargen_cache_misses_total",
				Help: "Cacheable generations that had to be computed",
			},
		),
		Clients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "lunargen_ws_clients",
				Help: "Connected websocket clients",
			},
		),
	}
	reg.MustRegister(m.Generations, m.Duration, m.CacheHits, m.CacheMisses, m.Clients)
	return m
}
