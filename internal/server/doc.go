// Package server provides the sonata JSON API, its middleware, and the OAuth callback used by the CLI.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support. [BasicRouter] registers routes as
// [http.ServeMux] method patterns, so handlers read path parameters with [http.Request.PathValue].
//
// [Middleware] is applied so the first registered runs outermost. [Server] installs, in order:
//   - [Recover] : converts panics to 500 responses
//   - [Logging] : one structured log line per request
//   - [RateLimit] : a token bucket per client address
//   - [JSON] : sets the response content type
//   - [Authenticate] : resolves "Authorization: Bearer <token>" to a user on the request context
//
// # API
//
// Song listing and search, charts, the featured song, accounts, playlists and likes are served under /api.
// Errors are returned as {"error": "..."} with a status chosen from the wrapped sentinel error.
// Mutating library routes require a session token.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the redirect leg of the authorization code flow for `sonata auth oauth`.
// A temporary local server receives the callback, validates the state parameter, exchanges the code
// for a session through an [Exchanger], and reports the outcome over a channel. Only one callback is processed.
package server
