package config

import "strings"

// DevelopmentBaseURL is where the backend listens when run locally.
const DevelopmentBaseURL = "http://localhost:5000"

// ResolveBaseURL returns the base URL for a raw mode indicator: "" for
// "production" (requests stay relative to the page origin) and
// DevelopmentBaseURL for anything else.
func ResolveBaseURL(mode string) string {
	if mode == string(Production) {
		return ""
	}
	return DevelopmentBaseURL
}

// Endpoint is the resolved network endpoint shared by every component that
// issues requests. It is built once at startup and never modified.
type Endpoint struct {
	mode    Mode
	baseURL string
}

// NewEndpoint resolves the endpoint for mode. devOverride replaces the
// development default when non-empty; it is ignored in production.
func NewEndpoint(mode Mode, devOverride string) Endpoint {
	base := ResolveBaseURL(string(mode))
	if !mode.IsProduction() {
		if v := strings.TrimSpace(devOverride); v != "" {
			base = v
		}
	}
	return Endpoint{mode: mode, baseURL: strings.TrimRight(base, "/")}
}

func (e Endpoint) Mode() Mode { return e.mode }

// BaseURL is "" in production.
func (e Endpoint) BaseURL() string { return e.baseURL }

// IsRelative reports whether requests resolve against the page's own origin.
func (e Endpoint) IsRelative() bool { return e.baseURL == "" }

// Resolve prefixes path with the base URL. With a relative endpoint the
// path comes back unchanged.
func (e Endpoint) Resolve(path string) string {
	if path == "" {
		path = "/"
	} else if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return e.baseURL + path
}
