package tokengrip

import (
	"fmt"
	"slices"
	"sync"
	"testing"
)

func TestVerifyDuringRotationNeverSeesTornLists(t *testing.T) {
	g := newTestGrip(t, Config{Keys: []string{"stable"}, Algorithms: []string{"sha256", "sha1"}})
	token := mustSign(t, g, map[string]any{"id": "abc"})

	const readers = 16
	const perReader = 500
	stop := make(chan struct{})

	var writer sync.WaitGroup
	writer.Add(1)
	go func() {
		defer writer.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			if i%2 == 0 {
				g.SetKeys(fmt.Sprintf("new-%d", i), "stable")
				g.SetAlgorithms("sha512", "sha256")
			} else {
				g.SetKeys("stable")
				g.SetAlgorithms("sha256", "sha1")
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(readers)
	results := make(chan error, readers*perReader)
	for r := 0; r < readers; r++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perReader; i++ {
				res, err := g.Verify(token)
				if err != nil {
					results <- err
					continue
				}
				if res.Reissued() && !IsToken(res.NewToken) {
					results <- fmt.Errorf("replacement is not a token: %q", res.NewToken)
				}
			}
		}()
	}
	wg.Wait()
	close(stop)
	writer.Wait()
	close(results)

	for err := range results {
		t.Fatalf("verify during rotation failed: %v", err)
	}
}

func TestConcurrentRotationsAreNotLost(t *testing.T) {
	g := newTestGrip(t, Config{Keys: []string{"base"}})

	const n = 32
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			g.RotateKey(fmt.Sprintf("key-%d", i))
		}()
	}
	wg.Wait()

	keys := g.Keys()
	if len(keys) != n+1 {
		t.Fatalf("expected %d keys, got %d", n+1, len(keys))
	}
	if keys[len(keys)-1] != "base" {
		t.Fatalf("expected original key last, got %v", keys)
	}
	for i := 0; i < n; i++ {
		if !slices.Contains(keys, fmt.Sprintf("key-%d", i)) {
			t.Fatalf("rotation key-%d lost: %v", i, keys)
		}
	}

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			g.RetireKey(fmt.Sprintf("key-%d", i))
		}()
	}
	wg.Wait()

	if got := g.Keys(); !slices.Equal(got, []string{"base"}) {
		t.Fatalf("expected only base key, got %v", got)
	}
}

func TestConcurrentSignAndVerify(t *testing.T) {
	g := newTestGrip(t, Config{Keys: []string{"k2", "k1"}, Algorithms: []string{"sha256"}})

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			token, err := g.Sign(map[string]any{"n": i})
			if err != nil {
				results <- err
				return
			}
			res, err := g.Verify(token)
			if err != nil {
				results <- err
				return
			}
			if res.Reissued() {
				results <- fmt.Errorf("fresh token %d reissued", i)
			}
		}()
	}
	wg.Wait()
	close(results)

	for err := range results {
		t.Fatalf("unexpected error: %v", err)
	}
}
