// Package models defines the data shapes shared by the backend client, the page model, and the renderers.
//
//   - [Playlist] : a playlist row as returned by the backend's /playlists endpoint
//   - [Selection] : the ordered playlist identifiers checked at submit time
//
// Neither type is persisted. A [Playlist] lives as long as the rendered row that references it,
// and a [Selection] exists only for the duration of a submission.
package models
