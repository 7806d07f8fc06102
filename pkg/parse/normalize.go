package parse

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"

	"github.com/zarif007/RepliKat/pkg/utils"
)

// Link prefixes that can never resolve to a navigable page.
var rejectedPrefixes = []string{"javascript:", "#", "mailto:", "tel:", "data:", "blob:"}

// hostnamePattern matches DNS-style hostnames: dot-separated labels of
// letters, digits and inner hyphens. url.ParseRequestURI is far more lenient
// than this; hosts it accepts but real DNS would not must be rejected here.
var hostnamePattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?)*$`)

// Normalize standardizes a URL for comparison and storage
// It lowercases the scheme and host, removes default ports (80 for http, 443 for https), removes trailing slashes from paths (unless root "/"), ensures empty path becomes "/", and removes fragments and query strings
// Normalization is idempotent. Does not modify the input *url.URL
func Normalize(u *url.URL) string {
	if u == nil {
		return ""
	}
	// Work on a copy
	normalized := *u

	normalized.Scheme = strings.ToLower(normalized.Scheme)
	normalized.Host = strings.ToLower(normalized.Host)

	// Remove default ports
	host, port, err := net.SplitHostPort(normalized.Host)
	if err == nil { // Host included a port
		if (normalized.Scheme == "http" && port == "80") ||
			(normalized.Scheme == "https" && port == "443") {
			normalized.Host = host // Use hostname without default port
		}
	} // If no port or error, Host remains unchanged

	// Handle path normalization
	if normalized.Path == "" {
		normalized.Path = "/" // Ensure empty path becomes "/"
	} else if len(normalized.Path) > 1 && strings.HasSuffix(normalized.Path, "/") {
		normalized.Path = normalized.Path[:len(normalized.Path)-1] // Remove trailing slash
	}

	normalized.Fragment = "" // Remove fragment
	normalized.RawQuery = "" // Remove query string

	return normalized.String()
}

// ResolveLink canonicalizes a raw href found on a page against the page's
// base URL. It returns the canonical absolute URL and true, or "" and false
// when the link is empty, uses a non-navigable scheme, is not http(s), or
// cannot be parsed. Malformed input is a rejection, not an error.
func ResolveLink(href string, base *url.URL) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || base == nil {
		return "", false
	}

	lower := strings.ToLower(href)
	for _, prefix := range rejectedPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return "", false
		}
	}

	resolved, err := base.Parse(href)
	if err != nil {
		return "", false
	}
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	if resolved.Hostname() == "" {
		return "", false
	}

	return Normalize(resolved), true
}

// SameHost reports whether the URL's host exactly equals the crawl's root
// host. No subdomain or www-prefix equivalence: cross-subdomain pages are
// never explored.
func SameHost(u *url.URL, rootHost string) bool {
	if u == nil || rootHost == "" {
		return false
	}
	return strings.EqualFold(u.Hostname(), rootHost)
}

// RoutePath extracts the canonical pathname of a URL string for reporting.
// Returns "/" when the path is empty or the input is unparsable.
func RoutePath(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Path == "" {
		return "/"
	}
	path := parsed.Path
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	return path
}

// ParseStartURL parses the crawl's starting input, defaulting to an https://
// prefix when no scheme is given. Unparsable input or input without a host
// yields utils.ErrInvalidStartURL.
func ParseStartURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty input", utils.ErrInvalidStartURL)
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "https://" + trimmed
	}

	parsed, err := url.ParseRequestURI(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing '%s': %w", utils.ErrInvalidStartURL, raw, err)
	}
	host := parsed.Hostname()
	if host == "" {
		return nil, fmt.Errorf("%w: '%s' has no host", utils.ErrInvalidStartURL, raw)
	}
	// Inputs like "ht!tp://x" survive the https:// prefix as a pseudo-host
	// with an embedded second scheme; only real hostnames or IP literals pass
	if net.ParseIP(host) == nil && !hostnamePattern.MatchString(host) {
		return nil, fmt.Errorf("%w: '%s' has an invalid host", utils.ErrInvalidStartURL, raw)
	}
	return parsed, nil
}
