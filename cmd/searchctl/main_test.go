package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fatih/color"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	color.NoColor = true
	var out, errOut bytes.Buffer
	app := makeApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{appName}, args...))
	return out.String(), errOut.String(), err
}

func TestDemo(t *testing.T) {
	out, _, err := run(t, "demo")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	want := []string{
		`Results for "curly dog" (status=ACTUAL, 3 results)`,
		"{ document_id = 2, relevance = 0.402359, rating = 2 }{ document_id = 4, relevance = 0.229073, rating = 2 }",
		"Page break",
		"{ document_id = 5, relevance = 0.229073, rating = 1 }",
		"Page break",
	}
	if len(lines) != len(want) {
		t.Fatalf("output:\n%s", out)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestQueryCorpusFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.yaml")
	corpus := `stopWords: "the"
documents:
  - id: 10
    text: the white cat
    status: BANNED
    ratings: [4]
  - id: 11
    text: the black cat
  - id: 10
    text: duplicate
`
	if err := os.WriteFile(path, []byte(corpus), 0o644); err != nil {
		t.Fatal(err)
	}

	out, errOut, err := run(t, "query", "--corpus", path, "--status", "any", "--page-size", "5", "cat")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "document_id = 10") || !strings.Contains(out, "document_id = 11") {
		t.Errorf("output:\n%s", out)
	}
	if !strings.Contains(errOut, "skipped document 10") {
		t.Errorf("duplicate not reported: %q", errOut)
	}

	out, _, err = run(t, "query", "--corpus", path, "cat")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "document_id = 10") {
		t.Errorf("banned document in default results:\n%s", out)
	}
}

func TestMatchAndTerms(t *testing.T) {
	out, _, err := run(t, "match", "--id", "3", "nasty", "cat", "-rat")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "document 3 ACTUAL [cat, nasty]") {
		t.Errorf("match output = %q", out)
	}

	out, _, err = run(t, "terms")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "Borya\t5:0.25") {
		t.Errorf("terms output starts with %q", strings.SplitN(out, "\n", 2)[0])
	}
}

func TestErrors(t *testing.T) {
	if _, _, err := run(t, "query", "cat", "--dog"); err == nil {
		t.Error("expected error for malformed query")
	}
	if _, _, err := run(t, "match", "cat"); err == nil {
		t.Error("expected error without --id")
	}
	if _, _, err := run(t, "demo", "--page-size", "0"); err == nil {
		t.Error("expected error for zero page size")
	}
	if _, _, err := run(t, "publish"); err == nil {
		t.Error("expected error without brokers")
	}
}

func TestLoadTest(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit := hits.Add(1)%2 == 0
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"query":%q,"results":[],"cache_hit":%t}`, r.URL.Query().Get("q"), hit)
	}))
	defer srv.Close()

	out, _, err := run(t, "loadtest", "--url", srv.URL, "--concurrency", "2", "--duration", "100ms", "--query", "curly dog")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "=== Results ===") || !strings.Contains(out, "  200: ") {
		t.Errorf("report:\n%s", out)
	}

	stats := newLoadStats()
	stats.record(time.Millisecond, 200, true, nil)
	stats.record(time.Millisecond, 404, false, nil)
	if stats.success.Load() != 1 || stats.errors.Load() != 1 || stats.cacheHits.Load() != 1 {
		t.Errorf("stats = %d ok, %d errors, %d hits", stats.success.Load(), stats.errors.Load(), stats.cacheHits.Load())
	}
	if got := latencyPercentile([]time.Duration{1, 2, 3, 4}, 50); got != 2 {
		t.Errorf("p50 = %v", got)
	}
}
