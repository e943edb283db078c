package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/fieldnotes/sitecrawl/result"
)

var (
	titleStyle      = lipgloss.NewStyle().Bold(true)
	successStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	headerStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle        = lipgloss.NewStyle().Faint(true)
	urlStyle        = lipgloss.NewStyle()
	statusCellStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// RenderSummary produces a Lip Gloss styled summary of a crawl result.
func RenderSummary(res *result.CrawlResult) string {
	if res == nil {
		return errorStyle.Render("No results available.")
	}

	var builder strings.Builder

	if len(res.Pages) == 0 {
		builder.WriteString(errorStyle.Render("No pages crawled."))
		builder.WriteString("\n")
		return builder.String()
	}

	rows := make([][]string, 0, len(res.Pages))
	for _, p := range res.Pages {
		title := p.Title
		if title == "" {
			title = "-"
		}
		rows = append(rows, []string{p.URL, fmt.Sprintf("%d", p.Depth), fmt.Sprintf("%d", p.StatusCode), title})
	}

	pageTable := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("URL", "Depth", "Status", "Title").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 2 {
				return statusCellStyle
			}
			return urlStyle
		}).
		Rows(rows...)

	builder.WriteString(pageTable.Render())
	builder.WriteString("\n\n")

	summaryStyle := successStyle
	if res.Stats.ErrorCount > 0 {
		summaryStyle = errorStyle
	}
	builder.WriteString(summaryStyle.Render(fmt.Sprintf(
		"Crawled %d pages (%d succeeded, %d errored) in %s",
		len(res.Pages),
		res.Stats.SuccessCount,
		res.Stats.ErrorCount,
		res.Stats.Duration.Round(1_000_000),
	)))
	builder.WriteString("\n")

	return builder.String()
}
