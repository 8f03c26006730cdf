package app

import (
	"github.com/desertthunder/porter/internal/models"
	"github.com/desertthunder/porter/internal/session"
)

// Element identifiers rendered into the host page.
const (
	ElemSpotifyButton     = "spotifyButton"
	ElemPlaylistSection   = "playlistSection"
	ElemPlaylistList      = "playlistList"
	ElemTransferButton    = "transferButton"
	ElemSelectAllCheckbox = "selectAllCheckbox"
	ElemEmbedContainer    = "embedContainer"
	ElemSpotifyEmbed      = "spotifyEmbed"
)

// User-facing messages.
const (
	MsgNoPlaylists    = "No playlists found."
	MsgEmptySelection = "Please select at least one playlist to transfer."
)

// Row is one selectable playlist row.
type Row struct {
	Playlist models.Playlist
	Checked  bool
}

// Page is the renderable state of the playlist page.
type Page struct {
	Session session.State

	SectionVisible  bool
	Rows            []Row
	NoPlaylists     bool
	TransferVisible bool
	SelectAll       bool

	Embed *Embed

	// Warning is a blocking message the user must acknowledge, set when a submission is rejected.
	Warning string
	// Notice reports the outcome of the last accepted submission.
	Notice string
}

// NewPage returns the page as it looks before the session check.
func NewPage() Page {
	return Page{Session: session.New()}
}

// Control is the login control derived from the session.
func (p Page) Control() session.Control {
	return p.Session.Control()
}

// EmbedVisible reports whether the embed container is shown.
func (p Page) EmbedVisible() bool {
	return p.Embed != nil
}

// Selection returns the identifiers of checked rows in row order.
func (p Page) Selection() models.Selection {
	sel := models.Selection{}
	for _, r := range p.Rows {
		if r.Checked {
			sel = append(sel, r.Playlist.ID)
		}
	}
	return sel
}

// Row returns the row for a playlist ID.
func (p Page) Row(id string) (Row, bool) {
	for _, r := range p.Rows {
		if r.Playlist.ID == id {
			return r, true
		}
	}
	return Row{}, false
}

// clone returns a copy that shares no slices or pointers with p.
func (p Page) clone() Page {
	c := p
	c.Rows = append([]Row(nil), p.Rows...)
	if p.Embed != nil {
		e := *p.Embed
		c.Embed = &e
	}
	return c
}
