// package services defines the client interfaces for the playlist backend and the transfer collaborator
package services

import (
	"context"

	"github.com/desertthunder/porter/internal/models"
)

// Backend is the set of backend calls the page components depend on.
type Backend interface {
	// AuthStatus reports whether the backend holds a valid provider login.
	AuthStatus(ctx context.Context) (bool, error)

	// Playlists fetches the user's playlists.
	// Returns [shared.ErrUnauthorized] when the backend answers 401.
	Playlists(ctx context.Context) ([]models.Playlist, error)

	// RefreshToken asks the backend to refresh the provider access token.
	RefreshToken(ctx context.Context) error
}

// Transferer hands a selection of playlist identifiers to the service that migrates them.
type Transferer interface {
	Transfer(ctx context.Context, selection models.Selection) error
}

var (
	_ Backend    = (*BackendService)(nil)
	_ Transferer = (*BackendService)(nil)
)
