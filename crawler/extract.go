package crawler

import (
	"fmt"
	"io"
	"net/url"

	"github.com/fieldnotes/sitecrawl/urlutil"
	"golang.org/x/net/html"
)

// extraction is the result of parsing a page's HTML.
type extraction struct {
	Links []string
	Title string
}

// ExtractLinks parses HTML from the given reader, synchronously (no I/O),
// and returns every anchor tag's href resolved against baseURL plus the
// page's title, if present. Relative hrefs are resolved, non-HTTP schemes
// are filtered, and each link is normalized — but, unlike a page-level
// link checker, duplicate links within the same page are preserved: global
// deduplication happens once, at admission into the visited set, not here.
func ExtractLinks(body io.Reader, baseURL *url.URL) (extraction, error) {
	tokenizer := html.NewTokenizer(body)
	var result extraction
	var errs []error
	inTitle := false

	for {
		tokenType := tokenizer.Next()
		switch tokenType {
		case html.ErrorToken:
			if len(errs) > 0 {
				return result, fmt.Errorf("encountered %d parse errors (first: %w)", len(errs), errs[0])
			}
			return result, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			switch token.Data {
			case "a":
				for _, attr := range token.Attr {
					if attr.Key != "href" {
						continue
					}
					href := attr.Val
					if href == "" {
						href = baseURL.String()
					}

					hrefURL, err := url.Parse(href)
					if err != nil {
						errs = append(errs, fmt.Errorf("parse href %q: %w", href, err))
						continue
					}
					resolved := baseURL.ResolveReference(hrefURL).String()

					if !urlutil.IsHTTPScheme(resolved) {
						continue
					}

					normalized, err := urlutil.Normalize(resolved)
					if err != nil {
						errs = append(errs, fmt.Errorf("normalize URL %q: %w", resolved, err))
						continue
					}

					result.Links = append(result.Links, normalized)
				}
			case "title":
				if result.Title == "" {
					inTitle = true
				}
			}
		case html.TextToken:
			if inTitle {
				result.Title = string(tokenizer.Text())
				inTitle = false
			}
		case html.EndTagToken:
			token := tokenizer.Token()
			if token.Data == "title" {
				inTitle = false
			}
		}
	}
}
