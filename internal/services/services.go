// package services defines the interfaces the HTTP layer uses to reach Reddit and the linked media pages
package services

import (
	"context"

	"github.com/desertthunder/compilations/internal/models"
	"golang.org/x/oauth2"
)

// Authenticator runs the OAuth2 authorization-code flow. Implemented by [OAuthManager].
type Authenticator interface {
	// BeginLogin returns the authorization URL and the CSRF state to store in the session.
	BeginLogin(redirectURI string) (authURL, state string)

	// CompleteLogin checks the callback against the stored state and exchanges the code for a token.
	CompleteLogin(ctx context.Context, storedState, redirectURI, callbackURL string) (*oauth2.Token, error)
}

// Library reads and curates the user's saved items. Implemented by [RedditService].
type Library interface {
	// ListSaved returns one filtered page of saved items.
	ListSaved(ctx context.Context, token *oauth2.Token, cursor models.Cursor) (*models.Page, error)

	// Unsave removes an item by fullname and returns the raw upstream response.
	Unsave(ctx context.Context, token *oauth2.Token, fullname string) (*APIResponse, error)
}

// MediaResolver resolves encoded item references. Implemented by [Resolver].
type MediaResolver interface {
	Resolve(ctx context.Context, ref string) (*models.Media, error)
}

var (
	_ Authenticator = (*OAuthManager)(nil)
	_ Library       = (*RedditService)(nil)
	_ MediaResolver = (*Resolver)(nil)
)
