// Package envconfig reads environment variables into crawler.Config,
// generalizing codepr/webcrawler's env.GetEnv/GetEnvAsInt helpers to the
// richer set of types sitecrawl's Config needs (duration, bool, string slice).
package envconfig

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fieldnotes/sitecrawl/crawler"
)

// GetEnv reads key from the environment, or returns defaultVal if unset.
func GetEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// GetEnvAsInt reads key as an int, or returns defaultVal if unset or invalid.
func GetEnvAsInt(key string, defaultVal int) int {
	valueStr := GetEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultVal
}

// GetEnvAsBool reads key as a bool, or returns defaultVal if unset or invalid.
func GetEnvAsBool(key string, defaultVal bool) bool {
	valueStr := GetEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultVal
}

// GetEnvAsDuration reads key as a time.Duration, or returns defaultVal if
// unset or invalid.
func GetEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	valueStr := GetEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultVal
}

// GetEnvAsStringSlice reads key as a comma-separated list, or returns
// defaultVal if unset. Empty elements are dropped.
func GetEnvAsStringSlice(key string, defaultVal []string) []string {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}

// Load overlays SITECRAWL_* environment variables onto base, returning the
// resulting Config. Unset variables leave base's fields untouched.
func Load(base crawler.Config) crawler.Config {
	cfg := base

	cfg.MaxDepth = GetEnvAsInt("SITECRAWL_MAX_DEPTH", cfg.MaxDepth)
	cfg.Concurrency = GetEnvAsInt("SITECRAWL_CONCURRENCY", cfg.Concurrency)
	cfg.RequestTimeout = GetEnvAsDuration("SITECRAWL_REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.CrawlTimeout = GetEnvAsDuration("SITECRAWL_CRAWL_TIMEOUT", cfg.CrawlTimeout)
	cfg.DelayBetweenRequests = GetEnvAsDuration("SITECRAWL_DELAY", cfg.DelayBetweenRequests)
	cfg.UserAgent = GetEnv("SITECRAWL_USER_AGENT", cfg.UserAgent)
	cfg.RespectRobotsTxt = GetEnvAsBool("SITECRAWL_RESPECT_ROBOTS", cfg.RespectRobotsTxt)
	cfg.FollowRedirects = GetEnvAsBool("SITECRAWL_FOLLOW_REDIRECTS", cfg.FollowRedirects)
	cfg.AllowedDomains = GetEnvAsStringSlice("SITECRAWL_ALLOWED_DOMAINS", cfg.AllowedDomains)
	cfg.ExcludedPaths = GetEnvAsStringSlice("SITECRAWL_EXCLUDED_PATHS", cfg.ExcludedPaths)
	cfg.MaxURLsPerDomain = GetEnvAsInt("SITECRAWL_MAX_PER_DOMAIN", cfg.MaxURLsPerDomain)
	cfg.MaxTotalURLs = GetEnvAsInt("SITECRAWL_MAX_TOTAL", cfg.MaxTotalURLs)
	cfg.MemoryLimitMB = int64(GetEnvAsInt("SITECRAWL_MEMORY_LIMIT_MB", int(cfg.MemoryLimitMB)))

	return cfg
}
