package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/porter/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSessionChecked MsgKind = iota
	MsgPlaylistsLoaded
	MsgTransferSubmitted
	MsgBrowserOpened
)

// sessionCheckedMsg is the constructor for [MsgSessionChecked]
func sessionCheckedMsg(err error) Msg {
	return Msg{kind: MsgSessionChecked, data: err}
}

// playlistsLoadedMsg is the constructor for [MsgPlaylistsLoaded]
func playlistsLoadedMsg(err error) Msg {
	return Msg{kind: MsgPlaylistsLoaded, data: err}
}

type transferResult struct {
	selection models.Selection
	err       error
}

// transferSubmittedMsg is the constructor for [MsgTransferSubmitted]
func transferSubmittedMsg(selection models.Selection, err error) Msg {
	return Msg{kind: MsgTransferSubmitted, data: transferResult{selection, err}}
}

type browserResult struct {
	url string
	err error
}

// browserOpenedMsg is the constructor for [MsgBrowserOpened]
func browserOpenedMsg(url string, err error) Msg {
	return Msg{kind: MsgBrowserOpened, data: browserResult{url, err}}
}

// Err returns the error carried by the message, if any.
func (m Msg) Err() error {
	switch d := m.data.(type) {
	case error:
		return d
	case transferResult:
		return d.err
	case browserResult:
		return d.err
	}
	return nil
}
