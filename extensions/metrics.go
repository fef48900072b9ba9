package extensions

import (
	"github.com/prometheus/client_golang/prometheus"

	fetcher "github.com/fetcher-fn/fetcher-go"
)

// Metrics exports fetch timings as Prometheus histograms plus a fetch
// counter, labelled by key. Register it as a timing listener.
type Metrics struct {
	fetchDuration *prometheus.HistogramVec
	waitDuration  *prometheus.HistogramVec
	fetches       *prometheus.CounterVec
}

// NewMetrics builds the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fetcher_fetch_duration_seconds",
			Help:    "Producer execution time per key.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 2, 16),
		}, []string{"key"}),
		waitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fetcher_wait_duration_seconds",
			Help:    "Time spent waiting on dependencies per key.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 2, 16),
		}, []string{"key"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fetcher_fetches_total",
			Help: "Successful producer executions per key.",
		}, []string{"key"}),
	}

	for _, c := range []prometheus.Collector{m.fetchDuration, m.waitDuration, m.fetches} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) FetchCompleted(ev fetcher.TimingEvent) {
	key := string(ev.Name)
	m.fetchDuration.WithLabelValues(key).Observe(ev.FetchDuration.Seconds())
	m.waitDuration.WithLabelValues(key).Observe(ev.WaitDuration.Seconds())
	m.fetches.WithLabelValues(key).Inc()
}
