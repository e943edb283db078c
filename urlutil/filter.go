package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// AllowedDomain reports whether targetURL's host contains any of the given
// domain fragments as a substring. An empty allowedDomains list means no
// domain restriction (everything is allowed). Matching is substring
// containment, not suffix matching: "example.com" matches
// "blog.example.com" and also "example.com.evil.test", mirroring the
// containment check the crawler's allow-list does upstream.
func AllowedDomain(targetURL string, allowedDomains []string) bool {
	if len(allowedDomains) == 0 {
		return true
	}

	parsed, err := url.Parse(targetURL)
	if err != nil {
		return false
	}

	host := strings.ToLower(parsed.Hostname())
	for _, d := range allowedDomains {
		if d == "" {
			continue
		}
		if strings.Contains(host, strings.ToLower(d)) {
			return true
		}
	}
	return false
}

// ExcludedPath reports whether targetURL's path contains any of the given
// path fragments as a substring. An empty excludedPaths list excludes
// nothing.
func ExcludedPath(targetURL string, excludedPaths []string) bool {
	if len(excludedPaths) == 0 {
		return false
	}

	parsed, err := url.Parse(targetURL)
	if err != nil {
		return false
	}

	path := parsed.Path
	for _, p := range excludedPaths {
		if p == "" {
			continue
		}
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}

// IsHTTPScheme returns true if the URL has an http or https scheme.
// Returns false for empty strings, non-HTTP schemes, or unparseable URLs.
func IsHTTPScheme(rawURL string) bool {
	if rawURL == "" {
		return false
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	scheme := strings.ToLower(parsed.Scheme)
	return scheme == "http" || scheme == "https"
}

// ResolveReference resolves a possibly-relative ref URL against a base URL.
// If ref is absolute, it is returned as-is. Otherwise it is resolved
// relative to base using net/url.URL.ResolveReference.
func ResolveReference(base string, ref string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base URL %q: %w", base, err)
	}

	refURL, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse ref URL %q: %w", ref, err)
	}

	resolved := baseURL.ResolveReference(refURL)
	return resolved.String(), nil
}
