package tokengrip

import (
	"strings"
	"testing"
)

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

func TestLint_StrongConfigNoWarnings(t *testing.T) {
	g := newTestGrip(t, Config{
		Keys:       []string{strings.Repeat("a", 32), strings.Repeat("b", 48)},
		Algorithms: []string{"sha256", "sha1"},
	})
	if ws := g.Lint(); len(ws) != 0 {
		t.Fatalf("expected no warnings, got %v", ws.Codes())
	}
}

func TestLint_EmptyLists(t *testing.T) {
	g := newTestGrip(t, Config{Algorithms: []string{}})
	codes := g.Lint().Codes()
	for _, code := range []string{"keys_empty", "algorithms_empty"} {
		if !containsCode(codes, code) {
			t.Errorf("expected %s warning, got %v", code, codes)
		}
	}
}

func TestLint_ShortAndDuplicateKeys(t *testing.T) {
	long := strings.Repeat("k", 40)
	g := newTestGrip(t, Config{Keys: []string{long, "short", long}, Algorithm: "sha256"})
	ws := g.Lint()
	codes := ws.Codes()
	if !containsCode(codes, "key_short") {
		t.Error("expected key_short warning")
	}
	if !containsCode(codes, "key_duplicate") {
		t.Error("expected key_duplicate warning")
	}
	for _, w := range ws {
		if strings.Contains(w.Message, long) {
			t.Fatalf("lint message leaks key material: %q", w.Message)
		}
	}
}

func TestLint_Algorithms(t *testing.T) {
	key := strings.Repeat("k", 32)

	g := newTestGrip(t, Config{Key: key, Algorithms: []string{"sha1", "md4", "sha1"}})
	codes := g.Lint().Codes()
	for _, code := range []string{"algorithm_weak", "algorithm_unsupported", "algorithm_duplicate"} {
		if !containsCode(codes, code) {
			t.Errorf("expected %s warning, got %v", code, codes)
		}
	}

	// A weak algorithm kept only for verification is expected during rotation.
	g = newTestGrip(t, Config{Key: key, Algorithms: []string{"sha256", "md5"}})
	if containsCode(g.Lint().Codes(), "algorithm_weak") {
		t.Error("deprecated weak algorithm should not warn")
	}
}

func TestLint_DefaultAlgorithmIsWeak(t *testing.T) {
	g := newTestGrip(t, Config{Key: strings.Repeat("k", 32)})
	ws := g.Lint()
	if !containsCode(ws.Codes(), "algorithm_weak") {
		t.Fatal("expected algorithm_weak for the sha1 default")
	}
	if len(ws.AtLeast(LintHigh)) != 0 {
		t.Fatalf("default algorithm should not be a high severity finding: %v", ws)
	}
}

func TestLint_AtLeastFilters(t *testing.T) {
	g := newTestGrip(t, Config{Keys: []string{"short"}, Algorithms: []string{"md4"}})
	high := g.Lint().AtLeast(LintHigh)
	if len(high) != 1 || high[0].Code != "algorithm_unsupported" {
		t.Fatalf("unexpected high findings %v", high.Codes())
	}
	if high[0].Severity.String() != "high" {
		t.Fatalf("unexpected severity name %q", high[0].Severity)
	}
}
