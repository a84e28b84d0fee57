// Package dvbmetrics instruments section decoding with Prometheus metrics:
// a Metrics value a library caller owns and passes through explicitly,
// built on its own prometheus.Registry rather than the global
// DefaultRegisterer so that decoding a stream twice in the same process
// (e.g. in tests) doesn't panic on a duplicate registration.
package dvbmetrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/snapetech/dvbsi/internal/dvbsierr"
	"github.com/snapetech/dvbsi/internal/psi"
)

// Metrics holds the counters and histograms recorded while decoding PSI/SI
// sections.
type Metrics struct {
	registry *prometheus.Registry

	SectionsDecodedTotal  *prometheus.CounterVec
	CRCFailuresTotal      *prometheus.CounterVec
	DecodeErrorsTotal     *prometheus.CounterVec
	DescriptorOverflowsTotal prometheus.Counter
	SectionDecodeDuration *prometheus.HistogramVec
}

// NewMetrics builds a Metrics value registered against its own Registry, so
// multiple independent decode pipelines in one process don't collide.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SectionsDecodedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dvbsi_sections_decoded_total",
			Help: "Number of PSI/SI sections successfully decoded, by table kind.",
		}, []string{"table"}),
		CRCFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dvbsi_section_crc_failures_total",
			Help: "Number of decoded sections whose MPEG-2 CRC32 did not match.",
		}, []string{"table"}),
		DecodeErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dvbsi_decode_errors_total",
			Help: "Number of sections that failed to decode, by error kind.",
		}, []string{"reason"}),
		DescriptorOverflowsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dvbsi_descriptor_overflows_total",
			Help: "Number of descriptor loops clipped because a declared length ran past its container.",
		}),
		SectionDecodeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dvbsi_section_decode_duration_seconds",
			Help:    "Time spent decoding a single PSI/SI section.",
			Buckets: prometheus.DefBuckets,
		}, []string{"table"}),
	}
	m.register()
	return m
}

func (m *Metrics) register() {
	m.registry.MustRegister(
		m.SectionsDecodedTotal,
		m.CRCFailuresTotal,
		m.DecodeErrorsTotal,
		m.DescriptorOverflowsTotal,
		m.SectionDecodeDuration,
	)
}

// Registry returns the registry metrics were registered against, for a
// caller that wants to add its own collectors alongside these.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an http.Handler serving this Metrics value's registry in
// the Prometheus exposition format, generalizing DMRHub's
// CreateMetricsServer (which binds promhttp.Handler() to the process-wide
// DefaultRegisterer) to one registry instance per Metrics value.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// DecodeSection wraps psi.Decode, recording section-decode latency, the
// decoded table kind, CRC failures, and decode errors.
func (m *Metrics) DecodeSection(sectionBytes []byte, expectedClass psi.PIDClass) (*psi.Table, error) {
	start := time.Now()
	table, err := psi.Decode(sectionBytes, expectedClass)
	if err != nil {
		m.DecodeErrorsTotal.WithLabelValues(reasonLabel(err)).Inc()
		return nil, err
	}

	label := table.Kind.String()
	m.SectionDecodeDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	m.SectionsDecodedTotal.WithLabelValues(label).Inc()
	if !table.Header.CRC32Valid {
		m.CRCFailuresTotal.WithLabelValues(label).Inc()
	}
	if table.Header.DescriptorOverflows > 0 {
		m.DescriptorOverflowsTotal.Add(float64(table.Header.DescriptorOverflows))
	}
	return table, nil
}

func reasonLabel(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, dvbsierr.ErrTruncatedSection):
		return "truncated_section"
	case errors.Is(err, dvbsierr.ErrUnexpectedTableID):
		return "unexpected_table_id"
	default:
		return "decode_error"
	}
}
