// Package metrics counts read outcomes and timings for one aligner run on a
// private Prometheus registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "srat"

// Metrics is the set of collectors updated by the pipeline and the app.
type Metrics struct {
	Registry *prometheus.Registry

	Reads          *prometheus.CounterVec // by outcome
	Hits           prometheus.Counter
	SearchDuration prometheus.Histogram
	IndexBuild     *prometheus.GaugeVec // seconds, by strand
	IndexKeys      *prometheus.GaugeVec // distinct k-mers, by strand
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		Reads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reads_total",
			Help:      "Reads processed by search outcome",
		}, []string{"outcome"}),
		Hits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hits_total",
			Help:      "Hits reported across all matched reads",
		}),
		SearchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Per-read search latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to ~2.6s
		}),
		IndexBuild: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_build_seconds",
			Help:      "Wall time spent building or loading the index, by strand",
		}, []string{"strand"}),
		IndexKeys: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_kmers",
			Help:      "Distinct indexed k-mers across all lengths, by strand",
		}, []string{"strand"}),
	}
}

// WriteTextfile dumps the registry in the text exposition format, for node
// exporter style collection after a batch run.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
