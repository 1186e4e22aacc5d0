package tokengrip

import (
	"fmt"
	"hash"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/tokengrip/codec"
	"github.com/MrEthical07/tokengrip/internal/signing"
)

// Grip signs and verifies tokens with an ordered list of keys and an ordered list of
// algorithms.
//
// keys[0] and algorithms[0] are current: every new token is signed with them, and a
// token is fresh only if it verifies under both. Any other entry is deprecated; tokens
// that verify through one are accepted and come back with a replacement token signed
// under the current pair.
//
// The lists are held behind atomic pointers and replaced whole by SetKeys,
// SetAlgorithms and the Rotate/Retire helpers. Each Sign or Verify reads one snapshot
// of each list, so a rotation is observed by the very next call and never half-way
// through one. The Grip copies every list it is given; callers cannot mutate the live
// lists in place.
//
// A Grip is safe for concurrent use. Use New to construct one.
type Grip struct {
	keys       atomic.Pointer[[]string]
	algorithms atomic.Pointer[[]string]

	metrics *Metrics
	audit   AuditSink
	logger  *slog.Logger
}

// VerifyResult is the outcome of a successful Verify.
type VerifyResult struct {
	// Payload is the decoded payload: maps, slices, float64, string, bool or nil.
	Payload any
	// NewToken replaces the verified token when it was signed with a deprecated key or
	// algorithm. It is empty when the token is fresh.
	NewToken string
}

// Reissued reports whether the caller should switch to NewToken.
func (r *VerifyResult) Reissued() bool {
	return r != nil && r.NewToken != ""
}

// New builds a Grip from cfg. It fails only when cfg sets both the single and list
// form of keys or of algorithms.
func New(cfg Config) (*Grip, error) {
	keys, err := normalizeList("key", cfg.Key, cfg.Keys, nil)
	if err != nil {
		return nil, err
	}
	algorithms, err := normalizeList("algorithm", cfg.Algorithm, cfg.Algorithms, []string{DefaultAlgorithm})
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	g := &Grip{
		metrics: NewMetrics(cfg.Metrics),
		audit:   cfg.AuditSink,
		logger:  logger,
	}
	g.keys.Store(&keys)
	g.algorithms.Store(&algorithms)
	return g, nil
}

// RegisterAlgorithm makes a digest available under name to every Grip in the process.
func RegisterAlgorithm(name string, fn func() hash.Hash) error {
	return signing.Register(name, fn)
}

// SupportedAlgorithms lists every algorithm name a Grip can sign with.
func SupportedAlgorithms() []string {
	return signing.Names()
}

// Keys returns a copy of the current key list.
func (g *Grip) Keys() []string {
	return slices.Clone(g.loadKeys())
}

// Algorithms returns a copy of the current algorithm list.
func (g *Grip) Algorithms() []string {
	return slices.Clone(g.loadAlgorithms())
}

// SetKeys replaces the whole key list. keys[0] becomes the current key.
func (g *Grip) SetKeys(keys ...string) {
	next := slices.Clone(keys)
	g.keys.Store(&next)
}

// SetAlgorithms replaces the whole algorithm list. algorithms[0] becomes current.
func (g *Grip) SetAlgorithms(algorithms ...string) {
	next := slices.Clone(algorithms)
	g.algorithms.Store(&next)
}

// RotateKey makes key current, demoting the previous current key to deprecated.
// Other occurrences of key are removed.
func (g *Grip) RotateKey(key string) {
	update(&g.keys, func(cur []string) []string { return promote(cur, key) })
}

// RotateAlgorithm makes algorithm current, demoting the previous one.
func (g *Grip) RotateAlgorithm(algorithm string) {
	update(&g.algorithms, func(cur []string) []string { return promote(cur, algorithm) })
}

// RetireKey removes key. Tokens only it could verify fail from the next call on.
func (g *Grip) RetireKey(key string) {
	update(&g.keys, func(cur []string) []string { return without(cur, key) })
}

// RetireAlgorithm removes algorithm from the accepted set.
func (g *Grip) RetireAlgorithm(algorithm string) {
	update(&g.algorithms, func(cur []string) []string { return without(cur, algorithm) })
}

// MetricsSnapshot returns the Grip's counters. Empty unless metrics are enabled.
func (g *Grip) MetricsSnapshot() MetricsSnapshot {
	return g.metrics.Snapshot()
}

// AuditDropped reports how many audit events the configured sink discarded, when the
// sink counts them (as ChannelSink does).
func (g *Grip) AuditDropped() uint64 {
	if d, ok := g.audit.(interface{ Dropped() uint64 }); ok {
		return d.Dropped()
	}
	return 0
}

// Sign issues a token for payload using the current key and algorithm.
//
// It fails with a KindConfiguration *Error when there are no keys or algorithms or
// the current algorithm is not supported. A payload encoding/json cannot marshal is
// reported as a wrapped encoding error.
func (g *Grip) Sign(payload any) (string, error) {
	keys, algorithms := g.loadKeys(), g.loadAlgorithms()
	if err := validate(keys, algorithms); err != nil {
		return "", g.signFailed(err)
	}

	encoded, err := codec.Encode(payload)
	if err != nil {
		g.metrics.Inc(MetricSignFailure)
		return "", fmt.Errorf("tokengrip: encode payload: %w", err)
	}

	token, err := issue(keys, algorithms, encoded)
	if err != nil {
		return "", g.signFailed(err)
	}

	g.metrics.Inc(MetricSignSuccess)
	return token, nil
}

// CheckSignature verifies token without decoding its payload. It returns a
// replacement token when token verified through a deprecated key or algorithm, and
// "" when it is fresh.
//
// Errors are always *Error: KindMalformedToken when the token cannot be parsed or its
// header is rejected (no key is tried), KindConfiguration when the Grip has no keys or
// algorithms, and KindInvalidSignature when no key matches.
func (g *Grip) CheckSignature(token string) (string, error) {
	newToken, _, err := g.check(token)
	return newToken, err
}

// Verify checks token and decodes its payload. The payload is decoded only after the
// signature has been accepted.
func (g *Grip) Verify(token string) (*VerifyResult, error) {
	newToken, payload, err := g.check(token)
	if err != nil {
		return nil, err
	}

	decoded, err := decodeSegment(payload)
	if err != nil {
		g.observeFailure("verify", err)
		return nil, err
	}
	return &VerifyResult{Payload: decoded, NewToken: newToken}, nil
}

// VerifyInto checks token and decodes its payload into v. It returns the replacement
// token, if any.
func (g *Grip) VerifyInto(token string, v any) (string, error) {
	newToken, payload, err := g.check(token)
	if err != nil {
		return "", err
	}

	if err := decodePayloadInto(payload, v); err != nil {
		g.observeFailure("verify", err)
		return "", err
	}
	return newToken, nil
}

// VerifyAs checks token and decodes its payload as a T.
func VerifyAs[T any](g *Grip, token string) (T, string, error) {
	var v T
	newToken, err := g.VerifyInto(token, &v)
	if err != nil {
		var zero T
		return zero, "", err
	}
	return v, newToken, nil
}

// check returns the replacement token (or "") and the authenticated payload segment.
func (g *Grip) check(token string) (string, string, error) {
	start := time.Now()
	newToken, payload, err := g.checkSegments(token)
	g.metrics.Observe(MetricVerifyLatency, time.Since(start))
	if err != nil {
		g.observeFailure("verify", err)
		return "", "", err
	}
	return newToken, payload, nil
}

func (g *Grip) checkSegments(token string) (string, string, error) {
	parts, err := splitToken(token)
	if err != nil {
		return "", "", err
	}

	keys, algorithms := g.loadKeys(), g.loadAlgorithms()
	if err := validate(keys, algorithms); err != nil {
		return "", "", err
	}

	algorithm, err := headerAlgorithm(parts.header, algorithms)
	if err != nil {
		return "", "", err
	}

	expired := algorithm != algorithms[0]
	checkable := signing.NewCheckable(parts.signature, algorithm, parts.data())

	for _, key := range keys {
		ok, err := checkable.Check(key)
		if err != nil {
			return "", "", unsupportedAlgorithmError(algorithm, err)
		}
		if !ok {
			// Anything verified after a miss on the current key is stale.
			expired = true
			continue
		}

		if !expired {
			g.metrics.Inc(MetricVerifyFresh)
			return "", parts.payload, nil
		}

		newToken, err := issue(keys, algorithms, parts.payload)
		if err != nil {
			return "", "", err
		}
		g.reissued(algorithm, algorithms[0])
		return newToken, parts.payload, nil
	}

	return "", "", invalidSignatureError()
}

func (g *Grip) reissued(from, to string) {
	g.metrics.Inc(MetricVerifyReissued)
	g.logger.Debug("tokengrip: token reissued",
		"algorithm", from,
		"stale_algorithm", from != to,
	)
	g.emitAudit(AuditEvent{
		EventType: auditEventTokenReissued,
		Algorithm: from,
		Success:   true,
		Metadata:  map[string]string{"current_algorithm": to},
	})
}

func (g *Grip) signFailed(err error) error {
	g.metrics.Inc(MetricSignFailure)
	g.observeFailure("sign", err)
	return err
}

// issue signs an already encoded payload with the current key and algorithm of the
// given snapshot. Reissued tokens keep the original payload bytes.
func issue(keys, algorithms []string, encodedPayload string) (string, error) {
	algorithm := algorithms[0]
	header, err := encodeHeader(algorithm)
	if err != nil {
		return "", err
	}
	return createToken(algorithm, keys[0], header+segmentSeparator+encodedPayload)
}

func validate(keys, algorithms []string) error {
	if len(keys) == 0 {
		return stateError(msgKeysEmpty, nil)
	}
	if len(algorithms) == 0 {
		return stateError(msgAlgorithmsEmpty, nil)
	}
	return nil
}

func (g *Grip) loadKeys() []string {
	return load(&g.keys)
}

func (g *Grip) loadAlgorithms() []string {
	return load(&g.algorithms)
}

func load(p *atomic.Pointer[[]string]) []string {
	if v := p.Load(); v != nil {
		return *v
	}
	return nil
}

// update applies fn to the current list until no concurrent writer interferes. fn
// must return a new slice.
func update(p *atomic.Pointer[[]string], fn func([]string) []string) {
	for {
		old := p.Load()
		var cur []string
		if old != nil {
			cur = *old
		}
		next := fn(cur)
		if p.CompareAndSwap(old, &next) {
			return
		}
	}
}

func promote(list []string, v string) []string {
	out := make([]string, 0, len(list)+1)
	out = append(out, v)
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}

func without(list []string, v string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
