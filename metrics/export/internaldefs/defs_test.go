package internaldefs

import (
	"strings"
	"testing"
)

func TestDefinitionsAreUniqueAndPrefixed(t *testing.T) {
	seen := map[string]bool{}
	for _, def := range CounterDefs {
		if !strings.HasPrefix(def.Name, "tokengrip_") || !strings.HasSuffix(def.Name, "_total") {
			t.Fatalf("counter %q does not follow naming rules", def.Name)
		}
		if seen[def.Name] {
			t.Fatalf("duplicate metric name %q", def.Name)
		}
		seen[def.Name] = true
	}
	for _, def := range HistogramDefs {
		if seen[def.Name] {
			t.Fatalf("duplicate metric name %q", def.Name)
		}
		seen[def.Name] = true
	}
	if len(HistogramBounds) != 8 || len(HistogramBoundSuffix) != 8 {
		t.Fatal("bucket tables must have 8 entries")
	}
}

func TestBucketHelpers(t *testing.T) {
	n := NormalizeBuckets([]uint64{1, 2, 3})
	if n != [8]uint64{1, 2, 3} {
		t.Fatalf("unexpected normalized buckets %v", n)
	}
	if got := NormalizeBuckets(nil); got != [8]uint64{} {
		t.Fatalf("nil input should normalize to zeros, got %v", got)
	}

	c := CumulativeBuckets([8]uint64{1, 2, 3, 4, 5, 6, 7, 8})
	if c[0] != 1 || c[7] != 36 {
		t.Fatalf("unexpected cumulative buckets %v", c)
	}
}
