package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/FACorreiaa/fintrack-api/internal/domain/import/enrich"
)

// Metrics tracks import pipeline activity.
type Metrics struct {
	previews        *prometheus.CounterVec
	previewDuration prometheus.Histogram
	candidates      *prometheus.CounterVec
	confirms        *prometheus.CounterVec
	committed       prometheus.Counter
}

// NewMetrics creates and registers the import metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		previews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "import_previews_total",
			Help: "Statement preview requests by outcome.",
		}, []string{"status"}),
		previewDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "import_preview_duration_seconds",
			Help:    "End-to-end preview pipeline latency.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		candidates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "import_candidates_total",
			Help: "Extracted transaction candidates by enrichment outcome.",
		}, []string{"outcome"}),
		confirms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "import_confirms_total",
			Help: "Confirm requests by outcome.",
		}, []string{"status"}),
		committed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "import_transactions_committed_total",
			Help: "Transactions written by confirmed imports.",
		}),
	}
	reg.MustRegister(m.previews, m.previewDuration, m.candidates, m.confirms, m.committed)
	return m
}

func (m *Metrics) observePreview(status string, elapsed time.Duration) {
	m.previews.WithLabelValues(status).Inc()
	if status == "ok" {
		m.previewDuration.Observe(elapsed.Seconds())
	}
}

func (m *Metrics) addCandidates(summary enrich.Summary) {
	m.candidates.WithLabelValues("categorized").Add(float64(summary.Categorized))
	m.candidates.WithLabelValues("uncategorized").Add(float64(summary.Uncategorized))
	m.candidates.WithLabelValues("duplicate").Add(float64(summary.Duplicates))
}
