package crawler

import (
	"sync"

	bloom "github.com/bits-and-blooms/bloom/v3"

	"github.com/fieldnotes/sitecrawl/result"
)

// visitedSet is the authoritative at-most-once admission gate. A bloom
// filter sits in front of the exact map as a fast pre-check: a bloom filter
// never reports a false negative, so a miss can skip the map lookup, while
// a hit always falls through to the authoritative check before a URL is
// admitted. The filter test, the map check and the insert all happen under
// one mutex acquisition, so admission is an atomic test-and-insert.
// Correctness never depends on the filter.
type visitedSet struct {
	mu     sync.Mutex
	filter *bloom.BloomFilter
	seen   map[string]struct{}
}

// newVisitedSet creates a visitedSet sized for an estimated crawl of n URLs
// with a 1% false-positive rate on the fast-path filter.
func newVisitedSet(estimatedURLs uint) *visitedSet {
	if estimatedURLs == 0 {
		estimatedURLs = 10000
	}
	return &visitedSet{
		filter: bloom.NewWithEstimates(estimatedURLs, 0.01),
		seen:   make(map[string]struct{}),
	}
}

// admit marks url as visited if it has not been seen before, returning true
// if this call was the one to admit it.
func (v *visitedSet) admit(url string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.filter.TestString(url) {
		if _, ok := v.seen[url]; ok {
			return false
		}
	}
	v.filter.AddString(url)
	v.seen[url] = struct{}{}
	return true
}

// count returns the number of admitted URLs.
func (v *visitedSet) count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.seen)
}

// graph is the directed link graph: source URL -> the links discovered on
// that page. Only committed pages (depth < MaxDepth) get an entry.
type graph struct {
	mu    sync.Mutex
	edges map[string][]string
}

func newGraph() *graph {
	return &graph{edges: make(map[string][]string)}
}

func (g *graph) addEdges(source string, links []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.edges[source] = append(g.edges[source], links...)
}

func (g *graph) edgesFrom(source string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.edges[source]...)
}

// all returns a copy of the full source -> links map.
func (g *graph) all() map[string][]string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[string][]string, len(g.edges))
	for source, links := range g.edges {
		out[source] = append([]string(nil), links...)
	}
	return out
}

// pageStore holds every committed result.Page, keyed by URL, plus the order
// pages were committed in so CrawlResult.Pages reflects that insertion
// order rather than Go's randomized map iteration.
type pageStore struct {
	mu    sync.Mutex
	pages map[string]result.Page
	order []string
}

func newPageStore() *pageStore {
	return &pageStore{pages: make(map[string]result.Page)}
}

func (s *pageStore) put(p result.Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.pages[p.URL]; !exists {
		s.order = append(s.order, p.URL)
	}
	s.pages[p.URL] = p
}

func (s *pageStore) all() []result.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]result.Page, 0, len(s.order))
	for _, url := range s.order {
		out = append(out, s.pages[url])
	}
	return out
}

func (s *pageStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}

// domainCounters tracks the number of admitted URLs per host, enforcing
// Config.MaxURLsPerDomain. The check and the increment happen under the
// same lock acquisition so a racing admission can never overshoot the cap.
// Keyed by host alone (not scheme://host) so http and https links to the
// same host share one counter, per spec §3's "host to integer" mapping.
type domainCounters struct {
	mu     sync.Mutex
	counts map[string]int
}

func newDomainCounters() *domainCounters {
	return &domainCounters{counts: make(map[string]int)}
}

// tryAdmit reports whether host is still under max (0 means unlimited)
// and, if so, increments its counter before returning true.
func (d *domainCounters) tryAdmit(host string, max int) bool {
	if max <= 0 {
		return true
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.counts[host] >= max {
		return false
	}
	d.counts[host]++
	return true
}
