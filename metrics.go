package credkit

import (
	"sync/atomic"
	"time"
)

// MetricID indexes one engine counter or histogram.
type MetricID uint16

const (
	// MetricPasswordHashed counts successful hash operations.
	MetricPasswordHashed MetricID = iota
	// MetricPasswordBreachRejected counts passwords rejected by the
	// breach/policy check before hashing.
	MetricPasswordBreachRejected
	// MetricPasswordVerifySuccess counts successful password verifications.
	MetricPasswordVerifySuccess
	// MetricPasswordVerifyFailure counts failed password verifications.
	MetricPasswordVerifyFailure
	// MetricPasswordReuseDetected counts history checks that found reuse.
	MetricPasswordReuseDetected
	// MetricAccessIssued counts issued access tokens.
	MetricAccessIssued
	// MetricRefreshIssued counts issued refresh tokens.
	MetricRefreshIssued
	// MetricTokenVerifySuccess counts successful token verifications.
	MetricTokenVerifySuccess
	// MetricTokenVerifyFailure counts failed token verifications.
	MetricTokenVerifyFailure
	// MetricRefreshRotated counts refresh calls that reissued the refresh
	// token.
	MetricRefreshRotated
	// MetricRefreshPreserved counts refresh calls that kept the presented
	// refresh token.
	MetricRefreshPreserved
	// MetricTokenRevoked counts revoked token ids, family markers included.
	MetricTokenRevoked
	// MetricHashLatency is the hashing duration histogram, kept for
	// capacity-planning diagnostics.
	MetricHashLatency
	// MetricVerifyLatency is the password verification duration histogram,
	// padding included.
	MetricVerifyLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

// paddedCounter keeps each counter on its own cache line so concurrent
// increments of different metrics do not false-share.
type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics is the engine's lock-free counter and histogram set.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all counters and histograms.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics builds the metric set. A disabled set accepts and ignores all
// recordings.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether the set records anything at all.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc adds one to a counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a duration into one of the latency histograms.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricHashLatency && id != MetricVerifyLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value reads a single counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter and, when latency histograms are enabled,
// every histogram.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 2),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		for _, id := range []MetricID{MetricHashLatency, MetricVerifyLatency} {
			buckets := make([]uint64, histBucketCount)
			for i := 0; i < histBucketCount; i++ {
				buckets[i] = atomic.LoadUint64(&m.histograms[id].buckets[i])
			}
			s.Histograms[id] = buckets
		}
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
