package result

import (
	"fmt"
	"io"
)

// PrintResults writes a human-readable crawl summary to w.
func PrintResults(w io.Writer, res *CrawlResult) {
	writef := func(format string, a ...any) { _, _ = fmt.Fprintf(w, format, a...) }

	if len(res.Pages) == 0 {
		writef("No pages crawled.\n")
	} else {
		writef("Pages:\n")
		for i, page := range res.Pages {
			writef("  URL: %s\n", page.URL)
			writef("  Depth: %d\n", page.Depth)
			writef("  Status: %d\n", page.StatusCode)
			if page.Title != "" {
				writef("  Title: %s\n", page.Title)
			}
			writef("  Links found: %d\n", len(page.Links))
			if i < len(res.Pages)-1 {
				writef("\n")
			}
		}
	}
	writef(
		"\nCrawled %d pages (%d succeeded, %d errored) in %s\n",
		len(res.Pages), res.Stats.SuccessCount, res.Stats.ErrorCount, res.Stats.Duration,
	)
}
