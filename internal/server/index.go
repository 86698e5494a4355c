package server

import (
	"fmt"
	"net/http"
)

// IndexHandler serves the landing page.
type IndexHandler struct {
	urls *URLBuilder
}

// NewIndexHandler creates an [IndexHandler]. A nil urls builds links at the server root.
func NewIndexHandler(urls *URLBuilder) *IndexHandler {
	if urls == nil {
		urls = NewURLBuilder("", "")
	}
	return &IndexHandler{urls: urls}
}

// Routes returns the HTTP routes this handler serves.
func (h *IndexHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Pattern: "/", Handler: h.Index},
	}
}

// Index renders the landing page, linking to login or, once a token is in the session, to the videos and logout.
func (h *IndexHandler) Index(w http.ResponseWriter, r *http.Request) {
	_, authenticated := currentSession(r).Token()

	link := fmt.Sprintf(`<a href="%s">Log in with Reddit</a>`, h.urls.Path("/login/"))
	if authenticated {
		link = fmt.Sprintf(`<a href="%s">Saved videos</a> &middot; <a href="%s">Log out</a>`,
			h.urls.Path("/videos/"), h.urls.Path("/logout/"))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>compilations</title></head>
<body>
    <h1>compilations</h1>
    <p>%s</p>
</body>
</html>
`, link)
}

// Health reports liveness. It is mounted outside basic auth and sessions.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
