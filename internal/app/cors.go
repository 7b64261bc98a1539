package app

import (
	"net/url"
	"strings"
)

// originAllowed checks a request origin against the configured pattern list.
// Patterns apply to the host[:port] part only and come in three forms:
// exact ("app.example.com"), subdomain wildcard ("*.example.com") and
// port wildcard ("localhost:*").
func originAllowed(patterns []string, origin string) bool {
	host := origin
	if u, err := url.Parse(origin); err == nil && u.Host != "" {
		host = u.Host
	}

	for _, p := range patterns {
		switch {
		case p == host:
			return true
		case strings.HasPrefix(p, "*."):
			if strings.HasSuffix(host, p[1:]) {
				return true
			}
		case strings.HasSuffix(p, ":*"):
			if strings.HasPrefix(host, strings.TrimSuffix(p, "*")) {
				return true
			}
		}
	}
	return false
}
