package app

import (
	"fmt"
	"net/url"
)

// DefaultEmbedTemplate is the provider embed player URL. The %s receives the playlist ID.
const DefaultEmbedTemplate = "https://open.spotify.com/embed/playlist/%s?utm_source=generator"

// iframe attributes of the embed player
const (
	EmbedWidth  = "100%"
	EmbedHeight = "352"
	EmbedAllow  = "autoplay; clipboard-write; encrypted-media; fullscreen; picture-in-picture"
	EmbedLoad   = "lazy"
)

// Embed is the single embedded player shown for a playlist.
type Embed struct {
	PlaylistID string
	Src        string
}

// EmbedPresenter builds embeds from a URL template.
type EmbedPresenter struct {
	template string
}

// NewEmbedPresenter creates a presenter, falling back to [DefaultEmbedTemplate].
func NewEmbedPresenter(template string) EmbedPresenter {
	if template == "" {
		template = DefaultEmbedTemplate
	}
	return EmbedPresenter{template: template}
}

// Present returns the embed for a playlist ID.
func (e EmbedPresenter) Present(playlistID string) Embed {
	return Embed{
		PlaylistID: playlistID,
		Src:        fmt.Sprintf(e.template, url.PathEscape(playlistID)),
	}
}
