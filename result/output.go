package result

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// WriteJSON writes res as formatted JSON to w.
func WriteJSON(w io.Writer, res *CrawlResult) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("write json output: %w", err)
	}
	return nil
}

// WriteCSV writes res's pages as CSV to w, followed by a blank separator
// row and a two-row summary (a total_links, success_count, error_count
// header row and its values row), each padded with empty fields to the
// page columns' width so every record has the same number of fields.
// Always includes a header row, even if no pages were crawled.
// Column order: url, depth, status_code, content_type, title
func WriteCSV(w io.Writer, res *CrawlResult) error {
	cw := csv.NewWriter(w)

	header := []string{"url", "depth", "status_code", "content_type", "title"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, page := range res.Pages {
		record := []string{
			page.URL,
			strconv.Itoa(page.Depth),
			statusCodeStr(page.StatusCode),
			page.ContentType,
			page.Title,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record for %s: %w", page.URL, err)
		}
	}

	if err := cw.Write([]string{}); err != nil {
		return fmt.Errorf("write csv separator: %w", err)
	}
	summary := []string{"total_links", "success_count", "error_count", "", ""}
	if err := cw.Write(summary); err != nil {
		return fmt.Errorf("write csv summary header: %w", err)
	}
	values := []string{
		strconv.Itoa(res.TotalLinks),
		strconv.Itoa(res.Stats.SuccessCount),
		strconv.Itoa(res.Stats.ErrorCount),
		"",
		"",
	}
	if err := cw.Write(values); err != nil {
		return fmt.Errorf("write csv summary: %w", err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}
	return nil
}

// statusCodeStr converts an HTTP status code to a string.
// Returns empty string for 0 (no HTTP status).
func statusCodeStr(code int) string {
	if code == 0 {
		return ""
	}
	return strconv.Itoa(code)
}
