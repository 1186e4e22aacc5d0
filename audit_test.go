package tokengrip

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"testing"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, AuditEvent) {
	s.count.Add(1)
}

func (s *countingSink) Count() int64 {
	return s.count.Load()
}

func TestAuditDisabledNoSinkCalls(t *testing.T) {
	g := newTestGrip(t, Config{Key: "k"})
	token := mustSign(t, g, "x")
	g.RotateKey("k2")

	// No sink configured: nothing to observe, but nothing may panic either.
	mustVerify(t, g, token)
	if _, err := g.Verify("garbage"); err == nil {
		t.Fatal("expected error")
	}
}

func TestAuditFreshVerifyEmitsNothing(t *testing.T) {
	sink := &countingSink{}
	g := newTestGrip(t, Config{Key: "k", AuditSink: sink})

	token := mustSign(t, g, "x")
	mustVerify(t, g, token)

	if got := sink.Count(); got != 0 {
		t.Fatalf("expected no events, got %d", got)
	}
}

func TestAuditEventsCarryOutcome(t *testing.T) {
	sink := NewChannelSink(8)
	g := newTestGrip(t, Config{Keys: []string{"k"}, Algorithms: []string{"sha1"}, AuditSink: sink})

	token := mustSign(t, g, map[string]any{"secret": "do-not-log"})
	g.RotateKey("k2")
	g.RotateAlgorithm("sha256")
	mustVerify(t, g, token)

	ev := <-sink.Events()
	if ev.EventType != "token_reissued" || !ev.Success || ev.Algorithm != "sha1" {
		t.Fatalf("unexpected reissue event %+v", ev)
	}
	if ev.Metadata["current_algorithm"] != "sha256" {
		t.Fatalf("expected current algorithm metadata, got %+v", ev.Metadata)
	}
	if ev.Timestamp.IsZero() {
		t.Fatal("expected timestamp")
	}

	if _, err := g.Verify(token + "x"); err == nil {
		t.Fatal("expected invalid signature")
	}
	ev = <-sink.Events()
	if ev.EventType != "signature_invalid" || ev.Success || ev.Error != "Invalid signature" {
		t.Fatalf("unexpected signature event %+v", ev)
	}

	g.RetireAlgorithm("sha1")
	if _, err := g.Verify(token); err == nil {
		t.Fatal("expected disallowed algorithm")
	}
	ev = <-sink.Events()
	if ev.EventType != "token_malformed" || ev.Algorithm != "sha1" {
		t.Fatalf("unexpected malformed event %+v", ev)
	}

	// Configuration errors are logged, not audited.
	g.SetKeys()
	if _, err := g.Sign("x"); err == nil {
		t.Fatal("expected configuration error")
	}
	select {
	case ev := <-sink.Events():
		t.Fatalf("unexpected event %+v", ev)
	default:
	}
}

func TestAuditChannelSinkDropsWhenFull(t *testing.T) {
	sink := NewChannelSink(1)
	sink.Emit(context.Background(), AuditEvent{EventType: "a"})
	sink.Emit(context.Background(), AuditEvent{EventType: "b"})
	sink.Emit(context.Background(), AuditEvent{EventType: "c"})

	if got := sink.Dropped(); got != 2 {
		t.Fatalf("expected 2 dropped, got %d", got)
	}
	if ev := <-sink.Events(); ev.EventType != "a" {
		t.Fatalf("expected first event to be kept, got %q", ev.EventType)
	}
}

func TestAuditJSONWriterSinkWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	g := newTestGrip(t, Config{Key: "k", AuditSink: NewJSONWriterSink(&buf)})

	token := mustSign(t, g, map[string]any{"secret": "do-not-log"})
	if _, err := g.Verify(token + "x"); err == nil {
		t.Fatal("expected invalid signature")
	}
	if _, err := g.Verify("garbage"); err == nil {
		t.Fatal("expected malformed token")
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	for _, line := range lines {
		var ev AuditEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("invalid json line %q: %v", line, err)
		}
		if ev.EventType == "" {
			t.Fatalf("missing event type in %q", line)
		}
	}
	if strings.Contains(buf.String(), "do-not-log") || strings.Contains(buf.String(), token) {
		t.Fatal("audit output must not contain payloads or tokens")
	}
}
