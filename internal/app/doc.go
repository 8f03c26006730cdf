// Package app holds the playlist page model and the components that drive it.
//
// A [Controller] owns one [Page]. Its methods correspond to the page's behaviors:
//   - [Controller.CheckSession] : queries login state once and loads playlists when logged in
//   - [Controller.LoadPlaylists] : fetches and renders playlist rows, refreshing the token once on 401
//   - [Controller.ShowEmbed] : replaces the embed player with one for the given playlist
//   - [Controller.SetSelectAll], [Controller.Toggle], [Controller.Submit] : selection and submission
//
// Renderers (internal/web, internal/ui) read a [Page] snapshot and never mutate it directly.
//
// Backend-bound operations (check, load, submit) run one at a time. Page edits happen under a separate
// lock that is never held across a network call, so a renderer can always take a snapshot.
// Network calls inside one operation run sequentially: a 401 on the playlist fetch is followed by the
// refresh call, which is followed by the retried fetch.
package app
