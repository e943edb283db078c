package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fieldnotes/sitecrawl/result"
)

// isNonHTMLContentType returns true if the content type does not indicate
// HTML, per spec: anything whose Content-Type does not contain "text/html"
// (including a missing header) is committed as a metadata-only Page rather
// than parsed for links.
func isNonHTMLContentType(contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	return !strings.Contains(contentType, "text/html")
}

// Fetcher performs the HTTP fetch + link-extraction step for a single URL.
// It returns an error only for a transport-level failure (connection,
// DNS, timeout) that survives retry; every other outcome — any HTTP
// status, binary content, malformed HTML — is returned as a committed Page.
type Fetcher struct {
	client *http.Client
	cfg    Config
}

// NewFetcher creates a Fetcher using cfg's timeout and redirect policy.
func NewFetcher(cfg Config) *Fetcher {
	client := &http.Client{Timeout: cfg.RequestTimeout}
	if !cfg.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return &Fetcher{client: client, cfg: cfg}
}

// Fetch retrieves rawURL and returns the committed Page for depth.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, depth int) (result.Page, error) {
	page := result.NewPage(rawURL, depth)

	var resp *http.Response
	err := withRetry(ctx, f.cfg.RetryPolicy, func() error {
		reqCtx, cancel := context.WithTimeout(ctx, f.cfg.RequestTimeout)
		defer cancel()

		req, reqErr := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
		if reqErr != nil {
			return reqErr
		}
		req.Header.Set("User-Agent", f.cfg.UserAgent)

		r, doErr := f.client.Do(req)
		if doErr != nil {
			return doErr
		}
		resp = r
		return nil
	})
	if err != nil {
		return result.Page{}, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	page = page.WithStatusCode(resp.StatusCode).MarkCrawled()

	contentType := resp.Header.Get("Content-Type")
	page = page.WithContentType(contentType)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return page, nil
	}

	if isNonHTMLContentType(contentType) {
		return page.WithLinks([]string{}), nil
	}

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if readErr != nil {
		return page.WithLinks([]string{}), nil
	}
	page = page.WithSize(len(body))

	extracted, extractErr := ExtractLinks(strings.NewReader(string(body)), resp.Request.URL)
	if extractErr != nil {
		return page.WithLinks([]string{}), nil
	}

	return page.WithLinks(extracted.Links).WithTitle(extracted.Title), nil
}
