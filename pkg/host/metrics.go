package host

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"

	"github.com/justyntemme/plughost/pkg/midi"
)

// Request kinds a plugin can make through its host handle.
const (
	RequestRestart  = "restart"
	RequestProcess  = "process"
	RequestCallback = "callback"
)

// Metrics holds the Prometheus metrics of one host session. They live on a
// private registry; nothing is exposed over the network.
//
// Metrics:
//   - plughost_blocks_total - blocks handed to the plugin
//   - plughost_blocks_slept_total - blocks skipped while the plugin sleeps
//   - plughost_blocks_nonfinite_total - blocks silenced for NaN or infinite output
//   - plughost_events_translated_total, _skipped_total, _dropped_total - timed message translation
//   - plughost_reconfigurations_total - staging buffer swaps
//   - plughost_restarts_total - plugin reactivations
//   - plughost_xruns_total - engine over/underruns
//   - plughost_plugin_requests_total{kind} - restart, process and callback requests
//   - plughost_process_duration_seconds - time spent in one block
type Metrics struct {
	Registry *prometheus.Registry

	Blocks           prometheus.Counter
	BlocksSlept      prometheus.Counter
	BlocksNonFinite  prometheus.Counter
	Reconfigurations prometheus.Counter
	Restarts         prometheus.Counter
	XRuns            prometheus.Counter
	Requests         *prometheus.CounterVec
	ProcessDuration  prometheus.Histogram

	// curried per kind so the audio thread does no label lookup
	restartRequests  prometheus.Counter
	processRequests  prometheus.Counter
	callbackRequests prometheus.Counter
}

// NewMetrics registers the session metrics on reg, or on a new registry when reg is nil.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	m := &Metrics{
		Registry: reg,
		Blocks: f.NewCounter(prometheus.CounterOpts{
			Name: "plughost_blocks_total",
			Help: "Total number of blocks processed by the plugin",
		}),
		BlocksSlept: f.NewCounter(prometheus.CounterOpts{
			Name: "plughost_blocks_slept_total",
			Help: "Total number of blocks skipped while the plugin slept",
		}),
		BlocksNonFinite: f.NewCounter(prometheus.CounterOpts{
			Name: "plughost_blocks_nonfinite_total",
			Help: "Total number of blocks silenced because the plugin wrote NaN or infinite samples",
		}),
		Reconfigurations: f.NewCounter(prometheus.CounterOpts{
			Name: "plughost_reconfigurations_total",
			Help: "Total number of staging buffer resizes",
		}),
		Restarts: f.NewCounter(prometheus.CounterOpts{
			Name: "plughost_restarts_total",
			Help: "Total number of plugin reactivations",
		}),
		XRuns: f.NewCounter(prometheus.CounterOpts{
			Name: "plughost_xruns_total",
			Help: "Total number of engine xruns",
		}),
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "plughost_plugin_requests_total",
			Help: "Total number of host requests made by the plugin",
		}, []string{"kind"}),
		ProcessDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "plughost_process_duration_seconds",
			Help:    "Time spent handling one engine block",
			Buckets: prometheus.ExponentialBuckets(10e-6, 2, 14), // 10us to ~80ms
		}),
	}
	m.restartRequests = m.Requests.WithLabelValues(RequestRestart)
	m.processRequests = m.Requests.WithLabelValues(RequestProcess)
	m.callbackRequests = m.Requests.WithLabelValues(RequestCallback)
	return m
}

// WatchTranslator exports a translator's counters.
func (m *Metrics) WatchTranslator(t *midi.Translator) {
	f := promauto.With(m.Registry)
	f.NewCounterFunc(prometheus.CounterOpts{
		Name: "plughost_events_translated_total",
		Help: "Total number of timed messages forwarded to the plugin",
	}, func() float64 { return float64(t.Translated()) })
	f.NewCounterFunc(prometheus.CounterOpts{
		Name: "plughost_events_skipped_total",
		Help: "Total number of timed messages skipped for their size",
	}, func() float64 { return float64(t.Skipped()) })
	f.NewCounterFunc(prometheus.CounterOpts{
		Name: "plughost_events_dropped_total",
		Help: "Total number of timed messages dropped over capacity",
	}, func() float64 { return float64(t.Dropped()) })
}

// Summary renders every non-zero series as "name{labels} value" lines,
// sorted by name. Histograms report their count and sum.
func (m *Metrics) Summary() ([]string, error) {
	families, err := m.Registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}
	var lines []string
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			name := mf.GetName() + labels(metric)
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				if v := metric.GetCounter().GetValue(); v != 0 {
					lines = append(lines, fmt.Sprintf("%s %g", name, v))
				}
			case dto.MetricType_HISTOGRAM:
				h := metric.GetHistogram()
				if h.GetSampleCount() != 0 {
					lines = append(lines, fmt.Sprintf("%s count=%d sum=%gs", name, h.GetSampleCount(), h.GetSampleSum()))
				}
			}
		}
	}
	sort.Strings(lines)
	return lines, nil
}

func labels(metric *dto.Metric) string {
	pairs := metric.GetLabel()
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, len(pairs))
	for i, lp := range pairs {
		parts[i] = fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue())
	}
	return "{" + strings.Join(parts, ",") + "}"
}
