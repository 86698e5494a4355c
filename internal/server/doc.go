// Package server provides the HTTP surface of compilations: routing, middleware, sessions and handlers.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses a chi mux internally, so patterns may carry URL parameters and
// unsupported methods answer 405. Middleware is applied per route when the route is registered, which lets
// /healthz sit outside basic auth and sessions.
//
// # Handler Interface
//
// Handlers implement the [Handler] interface and return every [Route] they serve, so a single
// [BasicRouter.Handler] call registers a group of endpoints.
//
//   - [IndexHandler] serves the landing page
//   - [OAuthHandler] serves /login/, /callback/ and /logout/
//   - [VideosHandler] serves /videos/ and /videos/{video}/
//
// # Sessions
//
// [Sessions] keeps CSRF state and the OAuth2 token in a session store keyed by the compilations_session cookie.
// Modified sessions are written back before the first byte of the response.
//
// # Errors
//
// Service errors become JSON {"message": "..."} bodies with a status chosen by statusFor. Upstream failures
// from page fetches and unsave calls are forwarded with their original status, headers and body.
package server
