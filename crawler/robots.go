package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// robotsEntry caches one origin's parsed robots.txt. data is nil when the
// origin has no robots.txt, or it could not be fetched/parsed (allow-all).
// once guarantees a single fetch per origin even when multiple workers
// race to admit the first URL on that origin.
type robotsEntry struct {
	once sync.Once
	data *robotstxt.RobotsData
	err  error
}

// RobotsCache fetches and caches robots.txt rules per origin. Each origin
// is fetched at most once for the lifetime of a crawl: spec requires
// write-once semantics, not a refresh-on-TTL cache, since a single crawl
// run never outlives any realistic robots.txt cache lifetime.
type RobotsCache struct {
	client  *http.Client
	entries sync.Map // origin string -> *robotsEntry
}

// NewRobotsCache creates a RobotsCache using client to fetch robots.txt.
func NewRobotsCache(client *http.Client) *RobotsCache {
	return &RobotsCache{client: client}
}

// Allowed reports whether rawURL may be crawled by userAgent according to
// its origin's robots.txt. A fetch or parse failure fails open (allowed),
// with the error returned for the caller to log.
func (r *RobotsCache) Allowed(ctx context.Context, rawURL, userAgent string) (bool, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return true, fmt.Errorf("parse URL: %w", err)
	}
	if parsedURL.Host == "" {
		return true, nil
	}

	entry := r.entryFor(parsedURL.Scheme, parsedURL.Host)
	entry.once.Do(func() {
		entry.data, entry.err = r.fetch(ctx, parsedURL.Scheme, parsedURL.Host)
	})

	if entry.err != nil {
		return true, entry.err
	}
	if entry.data == nil {
		return true, nil
	}
	return entry.data.TestAgent(parsedURL.Path, userAgent), nil
}

// CrawlDelay returns the robots.txt crawl-delay directive for an origin's
// cached entry and userAgent, or 0 if none applies. Must be called after
// Allowed has populated the entry for that origin.
func (r *RobotsCache) CrawlDelay(rawURL, userAgent string) time.Duration {
	parsedURL, err := url.Parse(rawURL)
	if err != nil || parsedURL.Host == "" {
		return 0
	}
	v, ok := r.entries.Load(origin(parsedURL.Scheme, parsedURL.Host))
	if !ok {
		return 0
	}
	entry := v.(*robotsEntry)
	if entry.data == nil {
		return 0
	}
	if group := entry.data.FindGroup(userAgent); group != nil {
		return group.CrawlDelay
	}
	return 0
}

func (r *RobotsCache) entryFor(scheme, host string) *robotsEntry {
	v, _ := r.entries.LoadOrStore(origin(scheme, host), &robotsEntry{})
	return v.(*robotsEntry)
}

func (r *RobotsCache) fetch(ctx context.Context, scheme, host string) (*robotstxt.RobotsData, error) {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", scheme, host)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create robots.txt request for host %s: %w", host, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		// Network error (timeout, connection refused, etc.) - allow all.
		return nil, fmt.Errorf("fetch robots.txt for host %s: %w", host, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read robots.txt body for host %s: %w", host, err)
	}

	// 404: robots.txt doesn't exist - allow all. 5xx: fail open.
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode >= 500 {
		return nil, nil
	}

	robots, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt for host %s: %w", host, err)
	}
	return robots, nil
}

func origin(scheme, host string) string {
	return scheme + "://" + host
}
