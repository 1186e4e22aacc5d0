package tokengrip

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/MrEthical07/tokengrip/internal/signing"
)

// DefaultAlgorithm is used when a Config names no algorithm.
const DefaultAlgorithm = signing.DefaultAlgorithm

// minKeyLength is the shortest key Lint accepts without a warning.
const minKeyLength = 32

// Config holds the initial state of a Grip.
//
// Keys and algorithms may each be given in single form (Key, Algorithm) or list form
// (Keys, Algorithms), but not both. The first element of each list is the current
// value used for signing; later elements are accepted for verification only.
//
// Emptiness is not checked here: a Grip with no keys can be built and only fails when
// Sign or Verify is called. A nil Algorithms with an empty Algorithm defaults to
// [DefaultAlgorithm]; an empty non-nil Algorithms is kept empty.
type Config struct {
	Key        string
	Keys       []string
	Algorithm  string
	Algorithms []string

	Metrics   MetricsConfig
	AuditSink AuditSink
	// Logger receives debug and warning records. Nil discards them.
	Logger *slog.Logger
}

func normalizeList(field, single string, list []string, fallback []string) ([]string, error) {
	switch {
	case single != "" && list != nil:
		return nil, stateError(
			fmt.Sprintf("both %s and %ss are set", field, field),
			ErrConflictingConfig,
		)
	case single != "":
		return []string{single}, nil
	case list != nil:
		return slices.Clone(list), nil
	default:
		return slices.Clone(fallback), nil
	}
}

// LintSeverity ranks lint findings.
type LintSeverity uint8

const (
	LintInfo LintSeverity = iota
	LintWarn
	LintHigh
)

func (s LintSeverity) String() string {
	switch s {
	case LintHigh:
		return "high"
	case LintWarn:
		return "warn"
	default:
		return "info"
	}
}

// LintWarning is a single finding with a stable machine-readable code.
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

type LintResult []LintWarning

func (r LintResult) Codes() []string {
	out := make([]string, 0, len(r))
	for _, w := range r {
		out = append(out, w.Code)
	}
	return out
}

// AtLeast returns the findings with severity >= floor.
func (r LintResult) AtLeast(floor LintSeverity) LintResult {
	var out LintResult
	for _, w := range r {
		if w.Severity >= floor {
			out = append(out, w)
		}
	}
	return out
}

var weakAlgorithms = map[string]bool{
	"md5":  true,
	"sha1": true,
}

// Lint inspects the current keys and algorithms for settings that work but are
// probably mistakes. It does not fail calls; Sign and Verify enforce what they need.
func (g *Grip) Lint() LintResult {
	return lint(g.loadKeys(), g.loadAlgorithms())
}

func lint(keys, algorithms []string) LintResult {
	var out LintResult

	if len(keys) == 0 {
		out = append(out, LintWarning{Code: "keys_empty", Severity: LintHigh,
			Message: "no keys configured; Sign and Verify will fail"})
	}
	if len(algorithms) == 0 {
		out = append(out, LintWarning{Code: "algorithms_empty", Severity: LintHigh,
			Message: "no algorithms configured; Sign and Verify will fail"})
	}

	seenKeys := make(map[string]bool, len(keys))
	for i, k := range keys {
		if len(k) < minKeyLength {
			out = append(out, LintWarning{Code: "key_short", Severity: LintWarn,
				Message: fmt.Sprintf("key %d is shorter than %d bytes", i, minKeyLength)})
		}
		if seenKeys[k] {
			out = append(out, LintWarning{Code: "key_duplicate", Severity: LintInfo,
				Message: fmt.Sprintf("key %d duplicates an earlier key", i)})
		}
		seenKeys[k] = true
	}

	seenAlgs := make(map[string]bool, len(algorithms))
	for i, a := range algorithms {
		if !signing.Supported(a) {
			out = append(out, LintWarning{Code: "algorithm_unsupported", Severity: LintHigh,
				Message: fmt.Sprintf("algorithm %q has no registered digest", a)})
		}
		if seenAlgs[a] {
			out = append(out, LintWarning{Code: "algorithm_duplicate", Severity: LintInfo,
				Message: fmt.Sprintf("algorithm %q is listed more than once", a)})
		}
		seenAlgs[a] = true
		if i == 0 && weakAlgorithms[strings.ToLower(a)] {
			out = append(out, LintWarning{Code: "algorithm_weak", Severity: LintWarn,
				Message: fmt.Sprintf("current algorithm %q should be rotated to sha256 or stronger", a)})
		}
	}

	return out
}
