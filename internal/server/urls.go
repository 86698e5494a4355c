package server

import (
	"net/http"
	"strings"
)

// URLBuilder builds links to this service, honoring a mount prefix and an optional public base URL.
type URLBuilder struct {
	publicURL  string
	scriptName string
}

// NewURLBuilder creates a [URLBuilder]. An empty publicURL means absolute URLs are derived from each request.
func NewURLBuilder(publicURL, scriptName string) *URLBuilder {
	scriptName = strings.TrimRight(scriptName, "/")
	if scriptName != "" && !strings.HasPrefix(scriptName, "/") {
		scriptName = "/" + scriptName
	}
	return &URLBuilder{
		publicURL:  strings.TrimRight(publicURL, "/"),
		scriptName: scriptName,
	}
}

// Path returns p under the mount prefix.
func (u *URLBuilder) Path(p string) string {
	return u.scriptName + p
}

// Absolute returns the absolute URL of p under the mount prefix.
func (u *URLBuilder) Absolute(r *http.Request, p string) string {
	return u.base(r) + u.Path(p)
}

func (u *URLBuilder) base(r *http.Request) string {
	if u.publicURL != "" {
		return u.publicURL
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	return scheme + "://" + r.Host
}
