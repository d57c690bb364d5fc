// Package services implements clients for remote sonata deployments.
//
// # Catalog Client
//
// [CatalogClient] speaks the JSON API served by package server. It satisfies the listing contract used by the
// search controller (Page and All), so the terminal view can browse a remote catalog exactly like a local database.
//
// Session-bound calls (likes, playlists, profile) send the configured token as "Authorization: Bearer <token>".
//
// # Error Handling
//
// Non-2xx responses are translated back into the sentinel errors of package shared, so callers can use errors.Is
// regardless of whether they talk to sqlite or to a server:
//   - 400 → [shared.ErrInvalidInput]
//   - 401 → [shared.ErrNotAuthenticated]
//   - 403 → [shared.ErrForbidden]
//   - 404 → [shared.ErrNotFound]
//   - 409 → [shared.ErrEmailTaken]
//   - 429, 503 → [shared.ErrServiceUnavailable]
//   - anything else → [shared.ErrAPIRequest]
package services
