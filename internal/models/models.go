package models

import "strings"

// Playlist is a playlist entry in the backend's /playlists response.
type Playlist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Selection is the ordered set of playlist identifiers chosen for transfer.
type Selection []string

// Empty reports whether nothing was selected.
func (s Selection) Empty() bool {
	return len(s) == 0
}

// Contains reports whether id is part of the selection.
func (s Selection) Contains(id string) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

func (s Selection) String() string {
	return strings.Join(s, ",")
}
