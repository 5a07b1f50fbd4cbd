package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/courtside/courtside/internal/domain/model"
	"github.com/courtside/courtside/pkg/logger"
)

// discoveryEnvelope mirrors the API response shape.
type discoveryEnvelope struct {
	Success bool                    `json:"success"`
	Data    model.DiscoveryResponse `json:"data"`
}

// result tallies one worker's outcomes.
type result struct {
	queries    int64
	failures   int64
	violations int64
	totalMs    int64
}

// Run fires cfg.NumQueries randomized discovery queries at the target
// service and verifies the response invariants.
func Run(ctx context.Context, cfg Config) error {
	cfg = cfg.normalized()
	log := logger.Get().Named("loadtest")

	client := &http.Client{Timeout: cfg.Timeout}
	jobs := make(chan url.Values, cfg.Workers)
	var res result

	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for q := range jobs {
				runQuery(ctx, client, cfg, q, &res, log)
			}
		}()
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := 0; i < cfg.NumQueries; i++ {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- randomQuery(rng):
		}
	}
	close(jobs)
	wg.Wait()

	queries := atomic.LoadInt64(&res.queries)
	failures := atomic.LoadInt64(&res.failures)
	violations := atomic.LoadInt64(&res.violations)
	avgMs := float64(0)
	if queries > 0 {
		avgMs = float64(atomic.LoadInt64(&res.totalMs)) / float64(queries)
	}

	log.Info(ctx, "load test finished",
		logger.Int("queries", int(queries)),
		logger.Int("failures", int(failures)),
		logger.Int("violations", int(violations)),
		logger.Float64("avgLatencyMs", avgMs),
	)

	if failures > 0 || violations > 0 {
		return fmt.Errorf("load test failed: %d request failures, %d invariant violations", failures, violations)
	}
	return nil
}

func runQuery(ctx context.Context, client *http.Client, cfg Config, q url.Values, res *result, log logger.Logger) {
	target := cfg.BaseURL + "/discovery?" + q.Encode()

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		atomic.AddInt64(&res.failures, 1)
		return
	}
	resp, err := client.Do(req)
	if err != nil {
		atomic.AddInt64(&res.failures, 1)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	atomic.AddInt64(&res.queries, 1)
	atomic.AddInt64(&res.totalMs, time.Since(start).Milliseconds())

	if resp.StatusCode != http.StatusOK {
		atomic.AddInt64(&res.failures, 1)
		if cfg.Verbose {
			log.Warn(ctx, "unexpected status",
				logger.String("url", target), logger.Int("status", resp.StatusCode))
		}
		return
	}

	var env discoveryEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		atomic.AddInt64(&res.failures, 1)
		return
	}

	if msgs := verify(env.Data, q); len(msgs) > 0 {
		atomic.AddInt64(&res.violations, int64(len(msgs)))
		for _, msg := range msgs {
			log.Warn(ctx, "invariant violated",
				logger.String("url", target), logger.String("violation", msg))
		}
	}
}

// randomQuery builds one of a few representative query shapes.
func randomQuery(rng *rand.Rand) url.Values {
	q := url.Values{}

	switch rng.Intn(4) {
	case 0:
		// plain query, default paging
	case 1:
		// geo query around Manhattan
		q.Set("latitude", strconv.FormatFloat(40.7+rng.Float64()*0.2, 'f', 4, 64))
		q.Set("longitude", strconv.FormatFloat(-74.0+rng.Float64()*0.2, 'f', 4, 64))
		q.Set("radius", strconv.Itoa(5+rng.Intn(45)))
	case 2:
		skills := []string{"BEGINNER", "INTERMEDIATE", "ADVANCED"}
		q.Set("skillLevel", skills[rng.Intn(len(skills))])
	case 3:
		q.Set("limit", strconv.Itoa(1+rng.Intn(50)))
		q.Set("offset", strconv.Itoa(rng.Intn(100)))
	}
	return q
}
