package flight

import "github.com/prometheus/client_golang/prometheus"

// Metrics records table scans served over Flight.
type Metrics struct {
	scans      *prometheus.CounterVec
	scanErrors *prometheus.CounterVec
	scanRows   *prometheus.HistogramVec
	duration   *prometheus.HistogramVec
}

// NewMetrics creates scan metrics. Metrics are registered to reg unless it
// is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	var m Metrics

	m.scans = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "memquery",
		Name:      "scans_total",
		Help:      "Total number of table scans started by DoGet.",
	}, []string{"schema", "table"})

	m.scanErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "memquery",
		Name:      "scan_errors_total",
		Help:      "Total number of table scans that failed, by gRPC code.",
	}, []string{"schema", "table", "code"})

	m.scanRows = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "memquery",
		Name:      "scan_rows",
		Help:      "Number of rows streamed per completed scan.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
	}, []string{"schema", "table"})

	m.duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "memquery",
		Name:      "scan_duration_seconds",
		Help:      "Time spent serving a DoGet scan.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"schema", "table"})

	if reg != nil {
		reg.MustRegister(m.scans, m.scanErrors, m.scanRows, m.duration)
	}
	return &m
}

// unresolvedLabel replaces schema and table labels of scans whose table was
// not found.
const unresolvedLabel = "unresolved"

func (m *Metrics) scanStarted(schema, table string) {
	m.scans.WithLabelValues(schema, table).Inc()
}

func (m *Metrics) scanFailed(schema, table string, err error) {
	m.scanErrors.WithLabelValues(schema, table, codeOf(err).String()).Inc()
}

func (m *Metrics) scanCompleted(schema, table string, rows int64, seconds float64) {
	m.scanRows.WithLabelValues(schema, table).Observe(float64(rows))
	m.duration.WithLabelValues(schema, table).Observe(seconds)
}
