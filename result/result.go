// Package result provides the output types and writers for a crawl.
package result

import "time"

// Stats contains aggregate statistics for a crawl run.
type Stats struct {
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at"`
	Duration     time.Duration `json:"duration"`
	SuccessCount int           `json:"success_count"` // Pages committed: completed fetches with any HTTP status, plus robots-disallowed pages
	ErrorCount   int           `json:"error_count"`   // Transport failures that exhausted retry
}

// CrawlResult is the complete output of a crawl: every committed Page, the
// directed link graph discovered along the way, the total link count across
// that graph, and aggregate Stats.
type CrawlResult struct {
	Pages      []Page              `json:"pages"`
	Graph      map[string][]string `json:"graph"`
	TotalLinks int                 `json:"total_links"`
	Stats      Stats               `json:"stats"`
}
