// Package services implements the HTTP client for the playlist backend.
//
// # Backend Endpoints
//
// [BackendService] consumes endpoints owned by the backend, not by this module:
//
//	GET  /spotify/auth/status   -> {"spotifyLoggedIn": bool}
//	GET  /playlists             -> {"playlists": [{"id": "...", "name": "..."}]}
//	POST /spotify/refresh-token -> any 2xx is success
//	GET  /login/spotify         -> provider OAuth entry point (browser navigation only)
//
// A 401 from /playlists is surfaced as [shared.ErrUnauthorized] without decoding the body, so callers can
// run their refresh-and-retry policy. The legacy response that listed playlists as bare names is rejected
// with [shared.ErrLegacyPlaylists].
//
// # Transfer
//
// The transfer endpoint is configurable. When it is not configured, [BackendService.Transfer] returns
// [shared.ErrNotImplemented] after validating the selection.
//
// # Throttling
//
// Every request waits on a [rate.Limiter]; a non-positive rate disables throttling.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrUnauthorized] : backend answered 401
//   - [shared.ErrRefreshFailed] : refresh endpoint answered non-2xx
//   - [shared.ErrAPIRequest] : transport failure or unexpected status
//   - [shared.ErrDecodeResponse] : body was not the expected JSON
package services
