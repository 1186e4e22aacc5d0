package otel

import (
	"context"
	"sync"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/MrEthical07/tokengrip"
)

type fakeSource struct {
	mu       sync.RWMutex
	snapshot tokengrip.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() tokengrip.MetricsSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := tokengrip.MetricsSnapshot{
		Counters:   make(map[tokengrip.MetricID]uint64, len(f.snapshot.Counters)),
		Histograms: make(map[tokengrip.MetricID][]uint64, len(f.snapshot.Histograms)),
	}
	for k, v := range f.snapshot.Counters {
		out.Counters[k] = v
	}
	for k, buckets := range f.snapshot.Histograms {
		next := make([]uint64, len(buckets))
		copy(next, buckets)
		out.Histograms[k] = next
	}
	return out
}

func (f *fakeSource) AuditDropped() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dropped
}

func newTestReader() (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()
	return reader, sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
}

func collectInt64(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	out := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				if len(data.DataPoints) > 0 {
					out[m.Name] = data.DataPoints[0].Value
				}
			case metricdata.Gauge[int64]:
				if len(data.DataPoints) > 0 {
					out[m.Name] = data.DataPoints[0].Value
				}
			}
		}
	}
	return out
}

func TestExporterRegistersAndCollects(t *testing.T) {
	reader, provider := newTestReader()
	meter := provider.Meter("tokengrip-test")

	src := &fakeSource{
		snapshot: tokengrip.MetricsSnapshot{
			Counters: map[tokengrip.MetricID]uint64{
				tokengrip.MetricVerifyReissued: 3,
			},
			Histograms: map[tokengrip.MetricID][]uint64{
				tokengrip.MetricVerifyLatency: {1, 1, 1, 1, 1, 1, 1, 1},
			},
		},
		dropped: 1,
	}

	exp, err := NewOTelExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	got := collectInt64(t, reader)
	want := map[string]int64{
		"tokengrip_verify_reissued_total":                3,
		"tokengrip_audit_dropped_total":                  1,
		"tokengrip_verify_latency_seconds_bucket_le_5us": 1,
		"tokengrip_verify_latency_seconds_bucket_le_inf": 8,
		"tokengrip_verify_latency_seconds_count":         8,
		"tokengrip_sign_success_total":                   0,
	}
	for name, v := range want {
		if got[name] != v {
			t.Fatalf("%s: expected %d, got %d (all: %v)", name, v, got[name], got)
		}
	}
}

func TestExporterReadsGrip(t *testing.T) {
	reader, provider := newTestReader()

	g, err := tokengrip.New(tokengrip.Config{Key: "k", Metrics: tokengrip.MetricsConfig{Enabled: true}})
	if err != nil {
		t.Fatalf("new grip: %v", err)
	}
	exp, err := NewOTelExporter(provider.Meter("tokengrip-test"), g)
	if err != nil {
		t.Fatalf("NewOTelExporter failed: %v", err)
	}
	defer exp.Close()

	token, err := g.Sign("x")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	g.RotateKey("k2")
	if _, err := g.Verify(token); err != nil {
		t.Fatalf("verify: %v", err)
	}

	got := collectInt64(t, reader)
	if got["tokengrip_sign_success_total"] != 1 || got["tokengrip_verify_reissued_total"] != 1 {
		t.Fatalf("unexpected collected values %v", got)
	}
}

func TestExporterRejectsNilInputs(t *testing.T) {
	_, provider := newTestReader()
	meter := provider.Meter("tokengrip-test")

	if _, err := NewOTelExporterFromSource(meter, nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
	if _, err := NewOTelExporter(meter, nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource for nil grip, got %v", err)
	}
	if _, err := NewOTelExporterFromSource(nil, &fakeSource{}); err != ErrNilMeter {
		t.Fatalf("expected ErrNilMeter, got %v", err)
	}
}

func TestExporterConcurrentCollectNoPanic(t *testing.T) {
	reader, provider := newTestReader()
	meter := provider.Meter("tokengrip-test")

	src := &fakeSource{
		snapshot: tokengrip.MetricsSnapshot{
			Counters: map[tokengrip.MetricID]uint64{
				tokengrip.MetricSignSuccess: 1,
			},
			Histograms: map[tokengrip.MetricID][]uint64{
				tokengrip.MetricVerifyLatency: {1, 0, 0, 0, 0, 0, 0, 0},
			},
		},
	}

	exp, err := NewOTelExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			src.mu.Lock()
			src.snapshot.Counters[tokengrip.MetricSignSuccess] = v
			src.mu.Unlock()

			var rm metricdata.ResourceMetrics
			_ = reader.Collect(context.Background(), &rm)
		}(uint64(i + 1))
	}
	wg.Wait()
}
