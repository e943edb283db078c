// Package main provides the sitecrawl CLI entrypoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fieldnotes/sitecrawl/crawler"
	"github.com/fieldnotes/sitecrawl/envconfig"
	"github.com/fieldnotes/sitecrawl/result"
	"github.com/fieldnotes/sitecrawl/tui"
)

// cliFlags holds parsed command-line flags.
type cliFlags struct {
	maxDepth       int
	concurrency    int
	delay          time.Duration
	timeout        time.Duration
	userAgent      string
	respectRobots  bool
	allowedDomains string
	excludedPaths  excludedPathsFlag
	maxPerDomain   int
	maxTotal       int
	memoryLimitMB  int64
	outputJSON     bool
	outputCSV      bool
	outputFile     string
}

// excludedPathsFlag collects repeated -exclude-path flags into a slice.
type excludedPathsFlag []string

func (e *excludedPathsFlag) String() string { return strings.Join(*e, ",") }
func (e *excludedPathsFlag) Set(v string) error {
	*e = append(*e, v)
	return nil
}

// parseFlags parses command-line flags and returns the parsed values.
func parseFlags() *cliFlags {
	opts := &cliFlags{}
	flag.IntVar(&opts.maxDepth, "max-depth", 0, "maximum crawl depth (0 = use default)")
	flag.IntVar(&opts.concurrency, "concurrency", 0, "number of concurrent workers (0 = use default)")
	flag.DurationVar(&opts.delay, "delay", 0, "minimum delay between requests to the same origin (0 = use default)")
	flag.DurationVar(&opts.timeout, "timeout", 0, "overall crawl deadline (0 = use default)")
	flag.StringVar(&opts.userAgent, "user-agent", "", "HTTP User-Agent header (empty = use default)")
	flag.BoolVar(&opts.respectRobots, "respect-robots", true, "honor robots.txt")
	flag.StringVar(&opts.allowedDomains, "allowed-domains", "", "comma-separated domain substrings a link's host must contain")
	flag.Var(&opts.excludedPaths, "exclude-path", "path substring to exclude (repeatable)")
	flag.IntVar(&opts.maxPerDomain, "max-per-domain", 0, "soft cap on admitted URLs per host (0 = unlimited)")
	flag.IntVar(&opts.maxTotal, "max-total", 0, "soft cap on total admitted URLs (0 = unlimited)")
	flag.Int64Var(&opts.memoryLimitMB, "memory-limit-mb", 0, "soft memory ceiling in MB (0 = use default)")
	flag.BoolVar(&opts.outputJSON, "json", false, "output results as JSON")
	flag.BoolVar(&opts.outputCSV, "csv", false, "output results as CSV")
	flag.StringVar(&opts.outputFile, "output", "", "write JSON/CSV output to file")

	flag.Parse()
	return opts
}

// validateFlags validates flag combinations and returns an error if invalid.
func validateFlags(opts *cliFlags) error {
	if opts.outputJSON && opts.outputCSV {
		return fmt.Errorf("-json and -csv are mutually exclusive")
	}
	return nil
}

// buildCrawlerConfig overlays environment variables and CLI flags onto a
// default Config for the given seed URL. Flags take precedence over
// environment variables, which take precedence over defaults.
func buildCrawlerConfig(opts *cliFlags, seedURL string) crawler.Config {
	cfg := envconfig.Load(crawler.DefaultConfig(seedURL))

	if opts.maxDepth > 0 {
		cfg.MaxDepth = opts.maxDepth
	}
	if opts.concurrency > 0 {
		cfg.Concurrency = opts.concurrency
	}
	if opts.delay > 0 {
		cfg.DelayBetweenRequests = opts.delay
	}
	if opts.timeout > 0 {
		cfg.CrawlTimeout = opts.timeout
	}
	if opts.userAgent != "" {
		cfg.UserAgent = opts.userAgent
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "respect-robots" {
			cfg.RespectRobotsTxt = opts.respectRobots
		}
	})
	if opts.allowedDomains != "" {
		var domains []string
		for _, d := range strings.Split(opts.allowedDomains, ",") {
			if d = strings.TrimSpace(d); d != "" {
				domains = append(domains, d)
			}
		}
		cfg.AllowedDomains = domains
	}
	if len(opts.excludedPaths) > 0 {
		cfg.ExcludedPaths = opts.excludedPaths
	}
	if opts.maxPerDomain > 0 {
		cfg.MaxURLsPerDomain = opts.maxPerDomain
	}
	if opts.maxTotal > 0 {
		cfg.MaxTotalURLs = opts.maxTotal
	}
	if opts.memoryLimitMB > 0 {
		cfg.MemoryLimitMB = opts.memoryLimitMB
	}

	return cfg
}

// runTUI creates and runs the TUI, returning the final model.
func runTUI(ctx context.Context, cancel context.CancelFunc, cfg crawler.Config) (tui.Model, error) {
	progressCh := make(chan crawler.CrawlEvent, 100)
	sched := crawler.New(cfg, progressCh)

	tuiModel := tui.NewModel(ctx, cancel, sched, progressCh)
	program := tea.NewProgram(tuiModel)

	finalModel, err := program.Run()
	if err != nil {
		return tui.Model{}, fmt.Errorf("run tui: %w", err)
	}

	return finalModel.(tui.Model), nil
}

// writeStructuredOutput handles writing JSON/CSV output to stdout or a file.
func writeStructuredOutput(opts *cliFlags, model tui.Model) error {
	crawlResult := model.GetResult()
	if crawlResult == nil {
		return nil
	}

	var writer io.Writer = os.Stdout
	if opts.outputFile != "" {
		outFile, err := os.Create(opts.outputFile)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer func() {
			if cerr := outFile.Close(); cerr != nil {
				fmt.Fprintf(os.Stderr, "Error closing output file: %v\n", cerr)
			}
		}()
		writer = outFile
	}

	// Default to JSON if -output specified without format.
	useJSON := opts.outputJSON || (!opts.outputCSV && opts.outputFile != "")
	if useJSON {
		return result.WriteJSON(writer, crawlResult)
	}
	return result.WriteCSV(writer, crawlResult)
}

func main() {
	opts := parseFlags()

	if err := validateFlags(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: sitecrawl [flags] <seed-url>")
		fmt.Fprintln(os.Stderr, "Flags:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	seedURL := flag.Arg(0)
	parsedURL, err := url.Parse(seedURL)
	if err != nil || (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") {
		fmt.Fprintf(os.Stderr, "Invalid URL: %s\nURL must start with http:// or https://\n", seedURL)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := buildCrawlerConfig(opts, seedURL)

	finalTUIModel, err := runTUI(ctx, cancel, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if opts.outputJSON || opts.outputCSV || opts.outputFile != "" {
		if err := writeStructuredOutput(opts, finalTUIModel); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if finalTUIModel.HasErrors() {
		os.Exit(1)
	}
}
