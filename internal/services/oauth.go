// OAuth2 authorization-code flow against Reddit
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/compilations/internal/shared"
	"golang.org/x/oauth2"
)

const (
	redditAuthURL  = "https://www.reddit.com/api/v1/authorize"
	redditTokenURL = "https://www.reddit.com/api/v1/access_token"
)

// DefaultScopes are the scopes needed to read and unsave saved items.
var DefaultScopes = []string{"history", "save"}

// OAuthOpts contains the client credentials and endpoints for [NewOAuthManager].
type OAuthOpts struct {
	ClientID     string
	ClientSecret string
	Scopes       []string
	AuthURL      string
	TokenURL     string
	UserAgent    string
	HTTPClient   *http.Client
}

// OAuthManager builds authorization URLs and exchanges authorization codes for tokens.
//
// It holds no per-user state: the caller keeps the CSRF state and the token in the user's session.
type OAuthManager struct {
	config     oauth2.Config
	httpClient *http.Client
}

// NewOAuthManager creates an [OAuthManager] from the given options.
func NewOAuthManager(opts OAuthOpts) (*OAuthManager, error) {
	if opts.ClientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}
	if opts.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}
	if len(opts.Scopes) == 0 {
		opts.Scopes = DefaultScopes
	}
	if opts.AuthURL == "" {
		opts.AuthURL = redditAuthURL
	}
	if opts.TokenURL == "" {
		opts.TokenURL = redditTokenURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	base := opts.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}
	client := &http.Client{
		Timeout:       base.Timeout,
		CheckRedirect: base.CheckRedirect,
		Jar:           base.Jar,
		Transport:     &userAgentTransport{base: base.Transport, userAgent: opts.UserAgent},
	}

	return &OAuthManager{
		config: oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			Scopes:       opts.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   opts.AuthURL,
				TokenURL:  opts.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		httpClient: client,
	}, nil
}

func (m *OAuthManager) withRedirect(redirectURI string) *oauth2.Config {
	c := m.config
	c.RedirectURL = redirectURI
	return &c
}

// BeginLogin returns the authorization URL to send the user-agent to and the CSRF state the caller must store
// in the session before redirecting.
func (m *OAuthManager) BeginLogin(redirectURI string) (authURL, state string) {
	state = shared.GenerateID()
	authURL = m.withRedirect(redirectURI).AuthCodeURL(state, oauth2.SetAuthURLParam("duration", "temporary"))
	return authURL, state
}

// CompleteLogin validates the callback against the stored state and exchanges its authorization code for a token.
//
// callbackURL is the full URL the provider redirected the user-agent to.
func (m *OAuthManager) CompleteLogin(ctx context.Context, storedState, redirectURI, callbackURL string) (*oauth2.Token, error) {
	u, err := url.Parse(callbackURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid callback URL: %v", shared.ErrAuthFailed, err)
	}
	query := u.Query()

	if storedState == "" {
		return nil, fmt.Errorf("%w: no login in progress", shared.ErrAuthFailed)
	}
	if query.Get("state") != storedState {
		return nil, fmt.Errorf("%w: invalid state parameter", shared.ErrAuthFailed)
	}

	code := query.Get("code")
	if code == "" {
		return nil, fmt.Errorf("%w: %s - %s", shared.ErrAuthFailed, query.Get("error"), query.Get("error_description"))
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
	token, err := m.withRedirect(redirectURI).Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange failed: %v", shared.ErrAuthFailed, err)
	}

	return token, nil
}
