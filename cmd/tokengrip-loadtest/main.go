// Command tokengrip-loadtest measures Sign and Verify throughput, then verifies the
// same tokens while keys and algorithms are rotated underneath the workers.
//
//	go run ./cmd/tokengrip-loadtest -tokens 10000 -concurrency 64 -ops 200000
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/MrEthical07/tokengrip"
)

type cursorPayload struct {
	ID     string `json:"id"`
	Offset int    `json:"offset"`
}

func main() {
	var (
		tokens      = flag.Int("tokens", 10000, "number of tokens to issue")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "verify operations per phase")
		algorithm   = flag.String("algorithm", "sha256", "initial algorithm")
		rotateTo    = flag.String("rotate-algorithm", "sha512", "algorithm promoted during the rotation phase")
		rotations   = flag.Int("rotations", 50, "key rotations performed during the rotation phase")
	)
	flag.Parse()

	if *tokens <= 0 || *concurrency <= 0 || *ops <= 0 || *rotations <= 0 {
		fmt.Fprintln(os.Stderr, "tokens, concurrency, ops and rotations must be > 0")
		os.Exit(2)
	}

	grip, err := tokengrip.New(tokengrip.Config{
		Key:       uuid.NewString(),
		Algorithm: *algorithm,
		Metrics:   tokengrip.MetricsConfig{Enabled: true, EnableLatencyHistograms: true},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "new grip: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("signing %d tokens...\n", *tokens)
	issued, signStats := runSignPhase(grip, *tokens, *concurrency)
	if signStats.failures > 0 {
		fmt.Fprintf(os.Stderr, "%d sign failures\n", signStats.failures)
		os.Exit(1)
	}

	verifyStats := runVerifyPhase(grip, issued, *ops, *concurrency, nil)

	// Keep every key ever issued so no token becomes unverifiable mid-run.
	rotate := func(i int) {
		grip.RotateKey(uuid.NewString())
		if i == 0 {
			grip.RotateAlgorithm(*rotateTo)
		}
	}
	rotationStats := runVerifyPhase(grip, issued, *ops, *concurrency, &rotator{n: *rotations, fn: rotate})

	fmt.Println("---- results ----")
	printStats("sign", signStats)
	printStats("verify", verifyStats)
	printStats("verify+rotate", rotationStats)

	snap := grip.MetricsSnapshot()
	fmt.Printf("fresh=%d reissued=%d invalid=%d keys=%d\n",
		snap.Counters[tokengrip.MetricVerifyFresh],
		snap.Counters[tokengrip.MetricVerifyReissued],
		snap.Counters[tokengrip.MetricInvalidSignature],
		len(grip.Keys()),
	)
}

type rotator struct {
	n  int
	fn func(i int)
}

func runSignPhase(grip *tokengrip.Grip, n, concurrency int) ([]string, phaseStats) {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, n)
		mu        sync.Mutex
	)
	issued := make([]string, n)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= n {
					return
				}
				t0 := time.Now()
				token, err := grip.Sign(cursorPayload{ID: uuid.NewString(), Offset: i})
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				issued[i] = token

				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	total := time.Since(start)
	return issued, computeStats(total, latencies, failures)
}

// runVerifyPhase verifies random tokens. When rot is set, a separate goroutine applies
// rot.n rotations spread across the phase.
func runVerifyPhase(grip *tokengrip.Grip, issued []string, ops, concurrency int, rot *rotator) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		reissued  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	done := make(chan struct{})
	var rotWG sync.WaitGroup
	if rot != nil {
		rotWG.Add(1)
		go func() {
			defer rotWG.Done()
			every := ops / (rot.n + 1)
			for i := 0; i < rot.n; i++ {
				for int(atomic.LoadInt64(&cursor)) < (i+1)*every {
					select {
					case <-done:
						return
					default:
						time.Sleep(50 * time.Microsecond)
					}
				}
				rot.fn(i)
			}
		}()
	}

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				token := issued[r.Intn(len(issued))]
				t0 := time.Now()
				newToken, err := grip.CheckSignature(token)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				} else if newToken != "" {
					atomic.AddInt64(&reissued, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	close(done)
	rotWG.Wait()

	stats := computeStats(total, latencies, failures)
	stats.reissued = reissued
	return stats
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	reissued int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d reissued=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.reissued,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
