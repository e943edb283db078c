package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// newTestServer serves pages keyed by path, where each handler writes HTML
// linking to the given relative hrefs.
func newTestServer(t *testing.T, pages map[string][]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for path, links := range pages {
		links := links
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = fmt.Fprintf(w, "<html><body>")
			for _, l := range links {
				_, _ = fmt.Fprintf(w, `<a href="%s">link</a>`, l)
			}
			_, _ = fmt.Fprintf(w, "</body></html>")
		})
	}
	return httptest.NewServer(mux)
}

func testConfig(seedURL string) Config {
	cfg := DefaultConfig(seedURL)
	cfg.RespectRobotsTxt = false
	cfg.DelayBetweenRequests = 0
	cfg.RequestTimeout = 2 * time.Second
	cfg.CrawlTimeout = 10 * time.Second
	cfg.Concurrency = 4
	cfg.MemoryLimitMB = 0
	cfg.RetryPolicy = RetryPolicy{MaxRetries: 1, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	return cfg
}

func TestSchedulerCrawlsReachableGraph(t *testing.T) {
	server := newTestServer(t, map[string][]string{
		"/":      {"/a", "/b"},
		"/a":     {"/c"},
		"/b":     {"/c"},
		"/c":     {},
	})
	defer server.Close()

	cfg := testConfig(server.URL + "/")
	cfg.MaxDepth = 5
	sched := New(cfg, nil)

	res, err := sched.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(res.Pages) != 4 {
		t.Fatalf("len(Pages) = %d, want 4 (/, /a, /b, /c)", len(res.Pages))
	}
	if res.Stats.SuccessCount != 4 {
		t.Errorf("SuccessCount = %d, want 4", res.Stats.SuccessCount)
	}

	wantEdges := map[string][]string{
		server.URL + "/":  {server.URL + "/a", server.URL + "/b"},
		server.URL + "/a": {server.URL + "/c"},
		server.URL + "/b": {server.URL + "/c"},
	}
	for source, want := range wantEdges {
		got := res.Graph[source]
		if len(got) != len(want) {
			t.Errorf("Graph[%s] = %v, want %v", source, got, want)
			continue
		}
		for i, link := range want {
			if got[i] != link {
				t.Errorf("Graph[%s][%d] = %q, want %q", source, i, got[i], link)
			}
		}
	}
	if links, ok := res.Graph[server.URL+"/c"]; !ok || len(links) != 0 {
		t.Errorf("Graph[%s/c] = %v (present: %v), want an entry with no links: /c is a fetched HTML page with no outgoing links", server.URL, links, ok)
	}
	if res.TotalLinks != 4 {
		t.Errorf("TotalLinks = %d, want 4 (2 from root, 1 from /a, 1 from /b)", res.TotalLinks)
	}
}

func TestSchedulerAdmitsEachURLAtMostOnce(t *testing.T) {
	server := newTestServer(t, map[string][]string{
		"/":  {"/a", "/a", "/a"},
		"/a": {"/"},
	})
	defer server.Close()

	cfg := testConfig(server.URL + "/")
	cfg.MaxDepth = 3
	sched := New(cfg, nil)

	res, err := sched.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(res.Pages) != 2 {
		t.Fatalf("len(Pages) = %d, want 2 (/, /a), got %v", len(res.Pages), res.Pages)
	}
}

func TestSchedulerRespectsMaxDepth(t *testing.T) {
	server := newTestServer(t, map[string][]string{
		"/":  {"/a"},
		"/a": {"/b"},
		"/b": {"/c"},
	})
	defer server.Close()

	cfg := testConfig(server.URL + "/")
	cfg.MaxDepth = 1
	sched := New(cfg, nil)

	res, err := sched.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	// Canonical policy: fetch only depth < max_depth. Depth 0 ("/") is
	// fetched; its child "/a" is enqueued at depth 1, which is not less
	// than max_depth(1), so it is admitted into the visited set (recorded
	// as reachable) but never fetched and never appears in Pages.
	if len(res.Pages) != 1 {
		t.Fatalf("len(Pages) = %d, want 1 (depth 0 only), got %v", len(res.Pages), res.Pages)
	}
	for _, p := range res.Pages {
		if p.Depth > cfg.MaxDepth {
			t.Errorf("page %s has depth %d, want <= %d", p.URL, p.Depth, cfg.MaxDepth)
		}
	}
}

func TestSchedulerEnforcesMaxURLsPerDomain(t *testing.T) {
	server := newTestServer(t, map[string][]string{
		"/":  {"/a", "/b", "/c"},
		"/a": {},
		"/b": {},
		"/c": {},
	})
	defer server.Close()

	cfg := testConfig(server.URL + "/")
	cfg.MaxDepth = 3
	cfg.MaxURLsPerDomain = 2
	sched := New(cfg, nil)

	res, err := sched.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(res.Pages) != 2 {
		t.Fatalf("len(Pages) = %d, want 2 (cap of 2 per host), got %v", len(res.Pages), res.Pages)
	}
}

func TestSchedulerHonorsAllowedDomains(t *testing.T) {
	const externalURL = "http://external.example.invalid/"

	server := newTestServer(t, map[string][]string{
		"/":  {externalURL, "/a"},
		"/a": {},
	})
	defer server.Close()

	cfg := testConfig(server.URL + "/")
	cfg.MaxDepth = 3
	cfg.AllowedDomains = []string{"127.0.0.1"}
	sched := New(cfg, nil)

	res, err := sched.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(res.Pages) != 2 {
		t.Fatalf("len(Pages) = %d, want 2 (/ and /a only), got %v", len(res.Pages), res.Pages)
	}
	for _, p := range res.Pages {
		if p.URL == externalURL {
			t.Errorf("external URL %s should never have been fetched", p.URL)
		}
	}
}

func TestSchedulerCommitsNonHTMLWithoutFollowingLinks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, `<html><body><a href="/file.pdf">pdf</a></body></html>`)
	})
	mux.HandleFunc("/file.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = fmt.Fprint(w, "not a real pdf but a <a href=\"/hidden\">link</a>")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := testConfig(server.URL + "/")
	cfg.MaxDepth = 3
	sched := New(cfg, nil)

	res, err := sched.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(res.Pages) != 2 {
		t.Fatalf("len(Pages) = %d, want 2 (/ and /file.pdf), got %v", len(res.Pages), res.Pages)
	}
	for _, p := range res.Pages {
		if p.URL == server.URL+"/hidden" {
			t.Error("/hidden should never be discovered: it is only linked from binary content")
		}
	}
}

func TestSchedulerCommitsSyntheticForbiddenPageWhenRobotsDisallow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /\n")
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, `<html><body><a href="/a">a</a></body></html>`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := testConfig(server.URL + "/")
	cfg.MaxDepth = 3
	cfg.RespectRobotsTxt = true
	sched := New(cfg, nil)

	res, err := sched.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(res.Pages) != 1 {
		t.Fatalf("len(Pages) = %d, want 1 (only the disallowed seed, no children discovered), got %v", len(res.Pages), res.Pages)
	}
	page := res.Pages[0]
	if page.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want %d for a robots-disallowed page", page.StatusCode, http.StatusForbidden)
	}
	if len(page.Links) != 0 {
		t.Errorf("Links = %v, want empty: a disallowed page is never fetched or parsed", page.Links)
	}
	if _, ok := res.Graph[server.URL+"/"]; ok {
		t.Error("Graph should have no entry for a robots-disallowed page")
	}
}

func TestSchedulerRespectsContextCancellation(t *testing.T) {
	server := newTestServer(t, map[string][]string{"/": {"/a"}, "/a": {}})
	defer server.Close()

	cfg := testConfig(server.URL + "/")
	cfg.MaxDepth = 3
	sched := New(cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := sched.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v, want clean termination on cancelled context", err)
	}
	_ = res
}

func TestSchedulerStreamsProgressEvents(t *testing.T) {
	server := newTestServer(t, map[string][]string{"/": {"/a"}, "/a": {}})
	defer server.Close()

	cfg := testConfig(server.URL + "/")
	cfg.MaxDepth = 3
	events := make(chan CrawlEvent, 10)
	sched := New(cfg, events)

	go func() {
		for range events {
		}
	}()

	if _, err := sched.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}
