package models

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxPlaylistNameLength        = 50
	MaxPlaylistDescriptionLength = 200
)

// Playlist is a user-owned, named set of songs. SongIDs holds no duplicates and keeps insertion order.
type Playlist struct {
	Entity
	UserID      string   `json:"user_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Cover       string   `json:"cover"`
	SongIDs     []string `json:"song_ids"`
}

// NewPlaylist creates an empty playlist owned by userID.
func NewPlaylist(userID, name, description string) *Playlist {
	return &Playlist{
		UserID:      userID,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		SongIDs:     []string{},
	}
}

// Validate enforces the owner, name and description constraints.
func (p *Playlist) Validate() error {
	if p.UserID == "" {
		return fmt.Errorf("user ID is required")
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return fmt.Errorf("playlist name is required")
	}
	if utf8.RuneCountInString(name) > MaxPlaylistNameLength {
		return fmt.Errorf("playlist name must be at most %d characters", MaxPlaylistNameLength)
	}
	if utf8.RuneCountInString(p.Description) > MaxPlaylistDescriptionLength {
		return fmt.Errorf("playlist description must be at most %d characters", MaxPlaylistDescriptionLength)
	}
	return nil
}

// HasSong reports whether songID is already in the playlist.
func (p *Playlist) HasSong(songID string) bool {
	for _, id := range p.SongIDs {
		if id == songID {
			return true
		}
	}
	return false
}

// SongCount returns the number of songs in the playlist.
func (p *Playlist) SongCount() int {
	return len(p.SongIDs)
}

// PlaylistExport is a playlist together with its resolved songs, in playlist order.
type PlaylistExport struct {
	Playlist Playlist `json:"playlist"`
	Songs    []Song   `json:"songs"`
}
