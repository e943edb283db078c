package result

import "time"

// Page is a single committed crawl result: a URL that was fetched (or
// attempted) along with whatever metadata the fetch produced. A Page is
// committed for every non-transport-error outcome, including HTTP error
// statuses and non-HTML content types, per the fetcher's classification.
type Page struct {
	URL         string    `json:"url"`
	Depth       int       `json:"depth"`
	Links       []string  `json:"links"`
	Title       string    `json:"title,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	StatusCode  int       `json:"status_code,omitempty"`
	Size        int       `json:"size,omitempty"`
	CrawledAt   time.Time `json:"crawled_at,omitempty"`
}

// NewPage returns a Page for url at the given depth with no other fields set.
func NewPage(url string, depth int) Page {
	return Page{URL: url, Depth: depth}
}

// WithLinks returns a copy of p with Links set.
func (p Page) WithLinks(links []string) Page {
	p.Links = links
	return p
}

// WithTitle returns a copy of p with Title set.
func (p Page) WithTitle(title string) Page {
	p.Title = title
	return p
}

// WithContentType returns a copy of p with ContentType set.
func (p Page) WithContentType(contentType string) Page {
	p.ContentType = contentType
	return p
}

// WithStatusCode returns a copy of p with StatusCode set.
func (p Page) WithStatusCode(statusCode int) Page {
	p.StatusCode = statusCode
	return p
}

// WithSize returns a copy of p with Size set.
func (p Page) WithSize(size int) Page {
	p.Size = size
	return p
}

// MarkCrawled returns a copy of p with CrawledAt set to now.
func (p Page) MarkCrawled() Page {
	p.CrawledAt = time.Now()
	return p
}
