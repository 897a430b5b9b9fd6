package prober

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records probe outcomes in a private registry so a one-shot run can
// export them as a node_exporter textfile.
type Metrics struct {
	reg *prometheus.Registry

	statusCode *prometheus.GaugeVec
	success    *prometheus.GaugeVec
	duration   *prometheus.GaugeVec
	runs       prometheus.Counter
}

// NewMetrics registers the probe collectors in a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		statusCode: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "ollamaprobe",
				Subsystem: "check",
				Name:      "status_code",
				Help:      "HTTP status code returned by the last run of a check",
			},
			[]string{"check"},
		),
		success: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "ollamaprobe",
				Subsystem: "check",
				Name:      "success",
				Help:      "1 if the last run of a check returned a 2xx status, else 0",
			},
			[]string{"check"},
		),
		duration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "ollamaprobe",
				Subsystem: "check",
				Name:      "duration_seconds",
				Help:      "Wall time of the last run of a check in seconds",
			},
			[]string{"check"},
		),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ollamaprobe",
			Name:      "checks_total",
			Help:      "Number of checks attempted, including transport failures",
		}),
	}
	m.reg.MustRegister(m.statusCode, m.success, m.duration, m.runs)
	return m
}

// Observe records one check. Failed exchanges arrive with Status 0 and OK false.
func (m *Metrics) Observe(r Result) {
	m.statusCode.WithLabelValues(r.Check).Set(float64(r.Status))
	ok := 0.0
	if r.OK {
		ok = 1
	}
	m.success.WithLabelValues(r.Check).Set(ok)
	m.duration.WithLabelValues(r.Check).Set(r.Duration.Seconds())
	m.runs.Inc()
}

// Gatherer exposes the underlying registry.
func (m *Metrics) Gatherer() prometheus.Gatherer { return m.reg }

// WriteTextfile writes the metrics atomically to path in text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}
