package crawler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/fieldnotes/sitecrawl/result"
	"github.com/fieldnotes/sitecrawl/urlutil"
)

// drainGrace bounds how long the dispatch loop keeps draining the Frontier
// after the crawl deadline fires or max_total_urls is reached, so in-flight
// workers' sends never block forever on a channel nobody is emptying.
const drainGrace = 5 * time.Second

// frontierItem is a page queued for dispatch: a URL discovered at depth.
type frontierItem struct {
	url   string
	depth int
}

// Scheduler runs the BFS dispatch loop and worker pool described in C7: a
// single dispatch goroutine applies the admission algorithm to whatever
// arrives on the Frontier, then hands fetch-and-extract work to a bounded
// pool of workers via golang.org/x/sync/errgroup, gated by a
// golang.org/x/sync/semaphore.Weighted permit — mirroring the teacher's own
// pairing of errgroup with a concurrency gate in crawler.go.
type Scheduler struct {
	cfg        Config
	fetcher    *Fetcher
	robots     *RobotsCache
	politeness *PolitenessGate
	memory     *MemoryWatcher
	progressCh chan<- CrawlEvent
}

// New creates a Scheduler for cfg. progressCh is optional; pass nil to
// disable progress events.
func New(cfg Config, progressCh chan<- CrawlEvent) *Scheduler {
	var memory *MemoryWatcher
	if cfg.MemoryLimitMB > 0 {
		memory = NewMemoryWatcher(cfg.MemoryLimitMB)
	}

	return &Scheduler{
		cfg:        cfg,
		fetcher:    NewFetcher(cfg),
		robots:     NewRobotsCache(&http.Client{Timeout: 5 * time.Second}),
		politeness: NewPolitenessGate(),
		memory:     memory,
		progressCh: progressCh,
	}
}

// Run executes the crawl starting from cfg.SeedURL and blocks until
// termination: the Frontier drains with no workers left, the crawl deadline
// fires, or max_total_urls is reached.
func (s *Scheduler) Run(ctx context.Context) (*result.CrawlResult, error) {
	start := time.Now()

	runCtx := ctx
	if s.cfg.CrawlTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.cfg.CrawlTimeout)
		defer cancel()
	}

	seed, err := urlutil.Normalize(s.cfg.SeedURL)
	if err != nil {
		return nil, fmt.Errorf("normalize seed URL: %w", err)
	}

	st := newCrawlState(s.cfg.MaxTotalURLs)
	frontier := make(chan frontierItem, 100)
	sem := semaphore.NewWeighted(int64(s.cfg.Concurrency))
	var pending sync.WaitGroup

	errGroup, groupCtx := errgroup.WithContext(runCtx)

	st.visited.admit(seed)
	pending.Add(1)

	// The closer goroutine drives termination: once every admitted page's
	// handling (including enqueueing its own children) has completed, the
	// WaitGroup reaches zero and the Frontier is closed, which ends the
	// dispatch loop's range without any polling.
	go func() {
		pending.Wait()
		close(frontier)
	}()

	select {
	case frontier <- frontierItem{url: seed, depth: 0}:
	case <-groupCtx.Done():
		pending.Done()
	}

	s.dispatch(groupCtx, errGroup, frontier, sem, &pending, st)

	waitErr := errGroup.Wait()
	if waitErr != nil && !errors.Is(waitErr, context.DeadlineExceeded) && !errors.Is(waitErr, context.Canceled) {
		return nil, fmt.Errorf("wait for workers: %w", waitErr)
	}

	return st.snapshot(start), nil
}

// dispatch is the single-threaded dispatch loop: it applies the admission
// algorithm to every item received from the Frontier, spawning a worker for
// each one admitted. On a terminal condition (context deadline, or
// max_total_urls reached) it stops admitting and drains the Frontier for up
// to drainGrace so in-flight workers can still deliver their children
// without blocking.
func (s *Scheduler) dispatch(
	ctx context.Context,
	eg *errgroup.Group,
	frontier chan frontierItem,
	sem *semaphore.Weighted,
	pending *sync.WaitGroup,
	st *crawlState,
) {
	draining := false
	for !draining {
		select {
		case item, ok := <-frontier:
			if !ok {
				return
			}
			if s.admit(ctx, eg, item, frontier, sem, pending, st) == admitTerminate {
				draining = true
			}
		case <-ctx.Done():
			draining = true
		}
	}

	deadline := time.After(drainGrace)
	for {
		select {
		case _, ok := <-frontier:
			if !ok {
				return
			}
			pending.Done()
		case <-deadline:
			return
		}
	}
}

type admitOutcome int

const (
	admitDiscard admitOutcome = iota
	admitDispatched
	admitTerminate
)

// admit implements the C7 admission algorithm for a single dequeued item.
// pending.Done() is called on every path that does not hand the item to a
// worker; the worker itself calls pending.Done() when its own handling
// (including enqueueing its children) completes.
func (s *Scheduler) admit(
	ctx context.Context,
	eg *errgroup.Group,
	item frontierItem,
	frontier chan frontierItem,
	sem *semaphore.Weighted,
	pending *sync.WaitGroup,
	st *crawlState,
) admitOutcome {
	if item.depth >= s.cfg.MaxDepth {
		pending.Done()
		return admitDiscard
	}

	host := urlutil.Host(item.url)
	if !st.domains.tryAdmit(host, s.cfg.MaxURLsPerDomain) {
		pending.Done()
		return admitDiscard
	}

	if s.cfg.MaxTotalURLs > 0 && st.visited.count() >= s.cfg.MaxTotalURLs {
		pending.Done()
		return admitTerminate
	}

	if err := sem.Acquire(ctx, 1); err != nil {
		pending.Done()
		return admitDiscard
	}

	eg.Go(func() error {
		defer sem.Release(1)
		defer pending.Done()
		s.work(ctx, item, frontier, pending, st)
		return nil
	})
	return admitDispatched
}

// work is the per-page worker body: robots check, fetch, polite delay,
// commit, and enqueue of newly admitted children.
func (s *Scheduler) work(ctx context.Context, item frontierItem, frontier chan<- frontierItem, pending *sync.WaitGroup, st *crawlState) {
	if s.cfg.RespectRobotsTxt {
		allowed, err := s.robots.Allowed(ctx, item.url, s.cfg.UserAgent)
		if err != nil {
			log.Printf("robots check for %s: %v", item.url, err)
		}
		if !allowed {
			page := result.NewPage(item.url, item.depth).
				WithStatusCode(http.StatusForbidden).
				WithLinks([]string{}).
				MarkCrawled()
			st.commit(page)
			s.emit(item, page, nil, st)
			return
		}
	}

	page, err := s.fetcher.Fetch(ctx, item.url, item.depth)
	if err != nil {
		st.recordError()
		log.Printf("fetch %s: %v [%s]", item.url, err, result.ClassifyError(err))
		s.emit(item, result.Page{}, err, st)
		return
	}

	if isLeafOutcome(page) {
		// Non-2xx status or non-HTML content: commit metadata only, no
		// graph entry and no children, per the worker body's step 2 return.
		st.commit(page)
		s.emit(item, page, nil, st)
		return
	}

	origin := urlutil.Origin(item.url)
	delay := s.cfg.DelayBetweenRequests
	if s.cfg.RespectRobotsTxt {
		if robotsDelay := s.robots.CrawlDelay(item.url, s.cfg.UserAgent); robotsDelay > delay {
			delay = robotsDelay
		}
	}
	if err := s.politeness.Wait(ctx, origin, delay); err != nil {
		st.commit(page)
		s.emit(item, page, nil, st)
		return
	}

	st.commit(page)
	st.graph.addEdges(item.url, page.Links)
	s.emit(item, page, nil, st)

	if s.memory != nil {
		if _, level := s.memory.Check(); level == ThrottleCritical {
			return
		}
	}

	for _, link := range page.Links {
		if !urlutil.AllowedDomain(link, s.cfg.AllowedDomains) || urlutil.ExcludedPath(link, s.cfg.ExcludedPaths) {
			continue
		}
		if !st.visited.admit(link) {
			continue
		}
		pending.Add(1)
		select {
		case frontier <- frontierItem{url: link, depth: item.depth + 1}:
		case <-ctx.Done():
			pending.Done()
			return
		}
	}
}

// isLeafOutcome reports whether page was committed via the Fetcher's
// non-2xx or non-HTML short-circuit, matching the same two checks Fetch
// itself makes before extraction.
func isLeafOutcome(page result.Page) bool {
	return page.StatusCode < 200 || page.StatusCode >= 300 || isNonHTMLContentType(page.ContentType)
}

// emit streams a progress event for item's outcome, if a progress channel
// was configured.
func (s *Scheduler) emit(item frontierItem, page result.Page, err error, st *crawlState) {
	if s.progressCh == nil {
		return
	}
	evt := CrawlEvent{URL: item.url, Depth: item.depth}
	if err != nil {
		evt.Error = err.Error()
	} else {
		evt.StatusCode = page.StatusCode
	}
	success, errs := st.counts()
	evt.PagesCrawled = success
	evt.ErrorsCount = errs
	s.progressCh <- evt
}

// crawlState bundles the shared stores a crawl writes to, each independently
// mutex-guarded per the no-lock-cycles rule in §5.
type crawlState struct {
	visited *visitedSet
	graph   *graph
	pages   *pageStore
	domains *domainCounters

	statsMu      sync.Mutex
	successCount int
	errorCount   int
}

func newCrawlState(maxTotalURLs int) *crawlState {
	estimated := uint(maxTotalURLs)
	if estimated == 0 {
		estimated = 10000
	}
	return &crawlState{
		visited: newVisitedSet(estimated),
		graph:   newGraph(),
		pages:   newPageStore(),
		domains: newDomainCounters(),
	}
}

func (st *crawlState) commit(page result.Page) {
	st.pages.put(page)
	st.statsMu.Lock()
	st.successCount++
	st.statsMu.Unlock()
}

func (st *crawlState) recordError() {
	st.statsMu.Lock()
	st.errorCount++
	st.statsMu.Unlock()
}

func (st *crawlState) counts() (success, errs int) {
	st.statsMu.Lock()
	defer st.statsMu.Unlock()
	return st.successCount, st.errorCount
}

func (st *crawlState) snapshot(start time.Time) *result.CrawlResult {
	success, errs := st.counts()
	finished := time.Now()
	graph := st.graph.all()
	totalLinks := 0
	for _, links := range graph {
		totalLinks += len(links)
	}
	return &result.CrawlResult{
		Pages:      st.pages.all(),
		Graph:      graph,
		TotalLinks: totalLinks,
		Stats: result.Stats{
			StartedAt:    start,
			FinishedAt:   finished,
			Duration:     finished.Sub(start),
			SuccessCount: success,
			ErrorCount:   errs,
		},
	}
}
