package server

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/compilations/internal/services"
	"github.com/desertthunder/compilations/internal/shared"
)

// CallbackPath is the redirect URI path registered with Reddit.
const CallbackPath = "/callback/"

// OAuthHandler serves the login, callback and logout endpoints.
//
// CSRF state and the resulting token live in the request's session.
type OAuthHandler struct {
	auth   services.Authenticator
	urls   *URLBuilder
	logger *log.Logger
}

// NewOAuthHandler creates a new OAuth handler around an [services.Authenticator].
func NewOAuthHandler(auth services.Authenticator, urls *URLBuilder, logger *log.Logger) *OAuthHandler {
	if urls == nil {
		urls = NewURLBuilder("", "")
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &OAuthHandler{auth: auth, urls: urls, logger: shared.WithLogger(logger, "handler", "oauth")}
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Pattern: "/login/", Handler: h.Login},
		{Method: http.MethodGet, Pattern: CallbackPath, Handler: h.Callback},
		{Method: http.MethodGet, Pattern: "/logout/", Handler: h.Logout},
	}
}

// RedirectURI returns the callback URL Reddit sends the user back to.
func (h *OAuthHandler) RedirectURI(r *http.Request) string {
	return h.urls.Absolute(r, CallbackPath)
}

// Login stores a fresh state in the session and redirects to the authorization page.
func (h *OAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	authURL, state := h.auth.BeginLogin(h.RedirectURI(r))
	currentSession(r).SetState(state)
	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback validates state, exchanges the code and stores the token before redirecting to the index.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	callbackURL := fmt.Sprintf("%s?%s", h.RedirectURI(r), r.URL.RawQuery)

	token, err := h.auth.CompleteLogin(r.Context(), sess.State(), h.RedirectURI(r), callbackURL)
	sess.SetState("")
	if err != nil {
		h.logger.Warn("login failed", "err", err)
		writeError(w, err)
		return
	}

	sess.SetToken(token)
	h.logger.Info("login complete", "session", sess.ID())
	http.Redirect(w, r, h.urls.Path("/"), http.StatusFound)
}

// Logout drops the token and state from the session.
func (h *OAuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	currentSession(r).Clear()
	http.Redirect(w, r, h.urls.Path("/"), http.StatusFound)
}
