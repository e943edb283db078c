package crawler

import "time"

// Config holds crawler configuration.
type Config struct {
	SeedURL              string        // The starting URL for the crawl
	MaxDepth             int           // Maximum crawl depth; seed is depth 0 (default 2)
	Concurrency          int           // Number of concurrent workers (default 8)
	RequestTimeout       time.Duration // Per-request timeout (default 10s)
	CrawlTimeout         time.Duration // Overall crawl deadline (default 120s)
	DelayBetweenRequests time.Duration // Minimum delay between requests to the same origin (default 100ms)
	UserAgent            string        // HTTP User-Agent header
	RetryPolicy          RetryPolicy   // Retry policy for transport-level failures
	RespectRobotsTxt     bool          // Whether to honor robots.txt (default true)
	FollowRedirects      bool          // Whether to follow HTTP redirects (default true)
	AllowedDomains       []string      // Domain substrings a link's host must contain to be admitted (empty = unrestricted)
	ExcludedPaths        []string      // Path substrings that exclude a link from admission
	MaxURLsPerDomain     int           // Soft cap on admitted URLs per host, shared across http and https (0 = unlimited)
	MaxTotalURLs         int           // Soft cap on total admitted URLs (0 = unlimited)
	MemoryLimitMB        int64         // Soft memory ceiling; crawl stops admitting new links past critical pressure (0 = disabled)
}

// DefaultConfig returns a Config with sensible defaults for seedURL.
func DefaultConfig(seedURL string) Config {
	return Config{
		SeedURL:              seedURL,
		MaxDepth:             2,
		Concurrency:          8,
		RequestTimeout:       10 * time.Second,
		CrawlTimeout:         120 * time.Second,
		DelayBetweenRequests: 100 * time.Millisecond,
		UserAgent:            "sitecrawl/1.0 (+https://github.com/fieldnotes/sitecrawl)",
		RetryPolicy:          DefaultRetryPolicy(),
		RespectRobotsTxt:     true,
		FollowRedirects:      true,
		MaxURLsPerDomain:     0,
		MaxTotalURLs:         0,
		MemoryLimitMB:        512,
	}
}
