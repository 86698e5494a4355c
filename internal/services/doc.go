// Package services talks to Reddit and to the pages saved items link to.
//
// # OAuth
//
// [OAuthManager] wraps [oauth2.Config] for Reddit's authorization-code flow. It generates the CSRF state,
// validates the callback and exchanges the code using HTTP basic client authentication. It never stores
// anything; the HTTP layer keeps the state and the token in the user's session.
//
// # Saved items
//
// [RedditService] issues one GET per listing request against /user/{user}/saved and filters the children
// through a [filters.Registry]. Unsave posts the item fullname to /api/unsave. Both go through [APIService],
// which sets the bearer token and User-Agent and paces requests with a token-bucket limiter.
//
// # Resolution
//
// [Resolver] decodes a guid back into the saved URL, fetches the page with a plain GET, picks the rule for the
// URL host and hands the response to the rule's handler.
//
// # Error Handling
//
// Services return errors from the shared package, wrapped with context:
//   - [shared.ErrNotAuthenticated] : no token in the session
//   - [shared.ErrAuthFailed] : state mismatch, denied authorization or failed code exchange
//   - [shared.ErrNoMoreItems] : the listing page was empty
//   - [shared.ErrBadReference] : the guid does not decode to an http(s) URL
//   - [shared.ErrNotFound] : no rule covers the URL
//   - [shared.ErrExtraction] : the handler could not find the media URL
//
// Non-success responses from Reddit or from a media page are returned as [*UpstreamError], which keeps the
// status, headers and body so the HTTP layer can forward them unchanged. It matches [shared.ErrAPIRequest].
package services
