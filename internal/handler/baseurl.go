package handler

import (
	"net/http"
	"strings"
)

// BaseURLResolver resolves the public base URL used for checkout return
// links and magic links. Resolution order: the configured BASE_URL, the
// platform-provided public host, and finally the inbound request's own
// host headers. The result always carries a scheme and no trailing slash.
type BaseURLResolver struct {
	configured string
	publicHost string
}

// NewBaseURLResolver creates a resolver. Both arguments may be empty.
func NewBaseURLResolver(configured, publicHost string) *BaseURLResolver {
	return &BaseURLResolver{
		configured: strings.TrimSuffix(strings.TrimSpace(configured), "/"),
		publicHost: strings.TrimSpace(publicHost),
	}
}

// Resolve returns the base URL for the given request.
func (b *BaseURLResolver) Resolve(r *http.Request) string {
	if b.configured != "" {
		return withScheme(b.configured)
	}

	if b.publicHost != "" {
		return withScheme(b.publicHost)
	}

	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}

	scheme := r.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		if strings.Contains(host, "localhost") || strings.HasPrefix(host, "127.0.0.1") {
			scheme = "http"
		} else {
			scheme = "https"
		}
	}

	return strings.TrimSuffix(scheme+"://"+host, "/")
}

// withScheme ensures a URL has a scheme, defaulting to https, and no
// trailing slash.
func withScheme(u string) string {
	u = strings.TrimSuffix(u, "/")
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	if strings.Contains(u, "localhost") || strings.HasPrefix(u, "127.0.0.1") {
		return "http://" + u
	}
	return "https://" + u
}
