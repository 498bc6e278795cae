package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"
)

var defaultLoadQueries = []string{
	"curly dog",
	"funny pet",
	"nasty -rat",
	"big cat",
	"hamster Borya",
	"curly hair -funny",
	"white cat",
	"parrot",
}

type loadStats struct {
	total     atomic.Int64
	success   atomic.Int64
	errors    atomic.Int64
	cacheHits atomic.Int64

	mu          sync.Mutex
	latencies   []time.Duration
	statusCodes map[int]int64
}

func newLoadStats() *loadStats {
	return &loadStats{
		latencies:   make([]time.Duration, 0, 100000),
		statusCodes: make(map[int]int64),
	}
}

func (s *loadStats) record(d time.Duration, status int, cacheHit bool, err error) {
	s.total.Add(1)
	if err != nil {
		s.errors.Add(1)
		return
	}
	if status >= 200 && status < 300 {
		s.success.Add(1)
	} else {
		s.errors.Add(1)
	}
	if cacheHit {
		s.cacheHits.Add(1)
	}
	s.mu.Lock()
	s.latencies = append(s.latencies, d)
	s.statusCodes[status]++
	s.mu.Unlock()
}

func loadTestCommand() cli.Command {
	return cli.Command{
		Name:  "loadtest",
		Usage: "hammer a running search service with queries",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "base URL of the search service"},
			cli.IntFlag{Name: "concurrency", Value: 10, Usage: "number of concurrent workers"},
			cli.DurationFlag{Name: "duration", Value: 30 * time.Second, Usage: "test duration"},
			cli.StringSliceFlag{Name: "query", Usage: "query to send (repeatable); a built-in mix when empty"},
		},
		Action: runLoadTest,
	}
}

func runLoadTest(c *cli.Context) error {
	queries := c.StringSlice("query")
	if len(queries) == 0 {
		queries = defaultLoadQueries
	}
	concurrency := c.Int("concurrency")
	if concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}
	duration := c.Duration("duration")
	out := c.App.Writer

	fmt.Fprintln(out, header("=== Search Load Test ==="))
	fmt.Fprintf(out, "Target:      %s\n", c.String("url"))
	fmt.Fprintf(out, "Concurrency: %d\n", concurrency)
	fmt.Fprintf(out, "Duration:    %s\n", duration)
	fmt.Fprintf(out, "Queries:     %d unique\n\n", len(queries))

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()
	stats := hammer(ctx, c.String("url"), queries, concurrency)
	printLoadReport(out, stats, duration)
	if stats.total.Load() == 0 {
		return fmt.Errorf("no requests completed; is the service running at %s?", c.String("url"))
	}
	return nil
}

// hammer runs workers until ctx expires. Each worker walks the query list
// from its own offset.
func hammer(ctx context.Context, baseURL string, queries []string, concurrency int) *loadStats {
	stats := newLoadStats()
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        concurrency * 2,
			MaxIdleConnsPerHost: concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	var g errgroup.Group
	for w := 0; w < concurrency; w++ {
		g.Go(func() error {
			for i := w; ctx.Err() == nil; i++ {
				query := queries[i%len(queries)]
				searchURL := fmt.Sprintf("%s/api/v1/search?q=%s", baseURL, url.QueryEscape(query))
				start := time.Now()
				status, hit, err := doSearch(ctx, client, searchURL)
				if ctx.Err() != nil {
					return nil
				}
				stats.record(time.Since(start), status, hit, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return stats
}

func doSearch(ctx context.Context, client *http.Client, searchURL string) (int, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return 0, false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, false, err
	}
	defer resp.Body.Close()
	var body struct {
		CacheHit bool `json:"cache_hit"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
	}
	return resp.StatusCode, body.CacheHit, nil
}

func printLoadReport(out io.Writer, stats *loadStats, duration time.Duration) {
	total := stats.total.Load()
	errs := stats.errors.Load()

	fmt.Fprintln(out, header("=== Results ==="))
	fmt.Fprintf(out, "Total Requests:  %d\n", total)
	fmt.Fprintf(out, "Successful:      %d\n", stats.success.Load())
	fmt.Fprintf(out, "Errors:          %d\n", errs)
	fmt.Fprintf(out, "Cache Hits:      %d\n", stats.cacheHits.Load())
	if total > 0 {
		fmt.Fprintf(out, "Error Rate:      %.2f%%\n", float64(errs)/float64(total)*100)
		fmt.Fprintf(out, "Requests/sec:    %.2f\n", float64(total)/duration.Seconds())
	}

	stats.mu.Lock()
	defer stats.mu.Unlock()
	latencies := make([]time.Duration, len(stats.latencies))
	copy(latencies, stats.latencies)
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	if len(latencies) > 0 {
		var sum time.Duration
		for _, l := range latencies {
			sum += l
		}
		avg := sum / time.Duration(len(latencies))
		fmt.Fprintln(out)
		fmt.Fprintln(out, header("=== Latency ==="))
		fmt.Fprintf(out, "Min:    %s\n", latencies[0])
		fmt.Fprintf(out, "Avg:    %s\n", avg)
		for _, p := range []float64{50, 90, 95, 99} {
			fmt.Fprintf(out, "P%-2.0f:    %s\n", p, latencyPercentile(latencies, p))
		}
		fmt.Fprintf(out, "Max:    %s\n", latencies[len(latencies)-1])
	}

	codes := make([]int, 0, len(stats.statusCodes))
	for code := range stats.statusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	fmt.Fprintln(out)
	fmt.Fprintln(out, header("=== Status Codes ==="))
	for _, code := range codes {
		line := fmt.Sprintf("  %d: %d", code, stats.statusCodes[code])
		if code >= 400 {
			line = warning(line)
		}
		fmt.Fprintln(out, line)
	}
}

func latencyPercentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	return sorted[max(0, min(idx, len(sorted)-1))]
}
