package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fieldnotes/sitecrawl/crawler"
	"github.com/fieldnotes/sitecrawl/result"
)

// CrawlProgressMsg reports progress for a single fetched URL.
type CrawlProgressMsg struct {
	PagesCrawled int
	ErrorsCount  int
	URL          string
	Depth        int
}

// CrawlDoneMsg signals the crawl has completed.
type CrawlDoneMsg struct {
	Result *result.CrawlResult
	Err    error
}

// waitForProgress returns a tea.Cmd that reads one event from the progress
// channel. When the channel closes, it returns a CrawlDoneMsg with nil Result
// (the actual result comes from startCrawl).
func waitForProgress(ch <-chan crawler.CrawlEvent) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return CrawlDoneMsg{}
		}
		return CrawlProgressMsg{
			PagesCrawled: evt.PagesCrawled,
			ErrorsCount:  evt.ErrorsCount,
			URL:          evt.URL,
			Depth:        evt.Depth,
		}
	}
}
