/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: metrics.go
Description: Prometheus metrics for STL parse sessions. The MetricsCollector wraps a
parse with a counting handler and records outcome, duration, facets and bytes read
per detected format.
*/

package monitoring

import (
	"io"
	"time"

	"github.com/kleascm/stlstream/pkg/stl"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

const namespace = "stlstream"

// Result labels
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// MetricsCollector records prometheus metrics for parse sessions
type MetricsCollector struct {
	parses   *prometheus.CounterVec
	failures *prometheus.CounterVec
	facets   *prometheus.CounterVec
	bytes    *prometheus.CounterVec
	duration *prometheus.HistogramVec

	logger logrus.FieldLogger
}

// NewMetricsCollector creates a collector and registers its metrics with reg
func NewMetricsCollector(reg prometheus.Registerer, logger logrus.FieldLogger) (*MetricsCollector, error) {
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}

	mc := &MetricsCollector{
		parses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parses_total",
			Help:      "Total number of STL parse sessions by format and result",
		}, []string{"format", "result"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_failures_total",
			Help:      "Total number of failed STL parse sessions by error kind",
		}, []string{"kind"}),
		facets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "facets_total",
			Help:      "Total number of facets delivered by format",
		}, []string{"format"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_read_total",
			Help:      "Total number of bytes consumed from STL sources by format",
		}, []string{"format"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parse_duration_seconds",
			Help:      "Duration of STL parse sessions",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"format"}),
		logger: logger,
	}

	for _, c := range []prometheus.Collector{mc.parses, mc.failures, mc.facets, mc.bytes, mc.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return mc, nil
}

// Parse runs p over r, forwarding events to h, and records the session
func (mc *MetricsCollector) Parse(p *stl.Parser, r io.Reader, h stl.Handler) error {
	counted := &countingReader{r: r}
	ch := &countingHandler{next: h, format: stl.FormatUnknown}

	start := time.Now()
	err := p.Parse(counted, ch)
	elapsed := time.Since(start)

	format := ch.format.String()
	result := ResultOK
	if err != nil {
		result = ResultError
		mc.failures.WithLabelValues(kindLabel(err)).Inc()
	}

	mc.parses.WithLabelValues(format, result).Inc()
	mc.facets.WithLabelValues(format).Add(float64(ch.facets))
	mc.bytes.WithLabelValues(format).Add(float64(counted.n))
	mc.duration.WithLabelValues(format).Observe(elapsed.Seconds())

	mc.logger.WithFields(logrus.Fields{
		"format":   format,
		"result":   result,
		"facets":   ch.facets,
		"bytes":    counted.n,
		"duration": elapsed,
	}).Debug("Parse session recorded")

	return err
}

// kindLabel maps an error onto a low-cardinality label value
func kindLabel(err error) string {
	if kind := stl.KindOf(err); kind != 0 {
		return kind.String()
	}
	return "other"
}

// countingReader counts bytes pulled from the source
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// countingHandler notes the format and counts completed facets
type countingHandler struct {
	next   stl.Handler
	format stl.Format
	facets uint64
}

func (c *countingHandler) BeginASCII(name string) {
	c.format = stl.FormatASCII
	c.next.BeginASCII(name)
}

func (c *countingHandler) BeginBinary(header [stl.HeaderSize]byte) {
	c.format = stl.FormatBinary
	c.next.BeginBinary(header)
}

func (c *countingHandler) NumberOfTriangles(count uint32) { c.next.NumberOfTriangles(count) }
func (c *countingHandler) BeginFacet(normal stl.Vector3)  { c.next.BeginFacet(normal) }
func (c *countingHandler) Triangle(v1, v2, v3 stl.Vector3) {
	c.next.Triangle(v1, v2, v3)
}

func (c *countingHandler) EndFacet() {
	c.facets++
	c.next.EndFacet()
}

func (c *countingHandler) EndSolid() { c.next.EndSolid() }
