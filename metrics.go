package tokengrip

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one Grip counter or histogram.
type MetricID uint16

const (
	// MetricSignSuccess counts tokens issued by Sign.
	MetricSignSuccess MetricID = iota
	// MetricSignFailure counts Sign calls that returned an error.
	MetricSignFailure
	// MetricVerifyFresh counts tokens that verified under the current key and algorithm.
	MetricVerifyFresh
	// MetricVerifyReissued counts tokens that verified under a deprecated key or
	// algorithm and were given a replacement.
	MetricVerifyReissued
	// MetricInvalidSignature counts tokens no configured key could verify.
	MetricInvalidSignature
	// MetricMalformedToken counts tokens rejected before any key was tried.
	MetricMalformedToken
	// MetricConfigurationError counts calls rejected because of the Grip's own state.
	MetricConfigurationError
	// MetricVerifyLatency is the latency histogram of CheckSignature.
	MetricVerifyLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

// MetricsConfig toggles counter collection and the verify latency histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics is a fixed set of lock-free counters. A nil *Metrics is valid and records
// nothing.
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

func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d in the histogram for id. Only MetricVerifyLatency has one.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricVerifyLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies the current values. Disabled metrics yield empty maps.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricVerifyLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricVerifyLatency].buckets[i])
		}
		s.Histograms[MetricVerifyLatency] = buckets
	}

	return s
}

// Verification is a single HMAC plus O(keys) retries, so buckets are microsecond-scale.
func bucketIndex(d time.Duration) int {
	us := d.Microseconds()

	switch {
	case us <= 5:
		return 0
	case us <= 10:
		return 1
	case us <= 25:
		return 2
	case us <= 50:
		return 3
	case us <= 100:
		return 4
	case us <= 250:
		return 5
	case us <= 500:
		return 6
	default:
		return 7
	}
}
