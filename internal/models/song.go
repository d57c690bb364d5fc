package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	UnknownTitle     = "Unknown Title"
	UnknownArtist    = "Unknown Artist"
	PlaceholderCover = "https://placehold.co/300x300?text=No+Cover"
)

// Song is a catalog entry. Genre, ReleaseDate and PlayCount are optional and may be absent.
type Song struct {
	Entity      `yaml:",inline"`
	Title       string     `json:"title" yaml:"title"`
	Artist      string     `json:"artist" yaml:"artist"`
	Album       string     `json:"album" yaml:"album"`
	Duration    string     `json:"duration" yaml:"duration"`
	Cover       string     `json:"cover" yaml:"cover"`
	Genre       string     `json:"genre,omitempty" yaml:"genre,omitempty"`
	ReleaseDate *time.Time `json:"release_date,omitempty" yaml:"release_date,omitempty"`
	PlayCount   *int       `json:"play_count,omitempty" yaml:"play_count,omitempty"`
}

// NewSong creates a song with the required display fields set.
func NewSong(title, artist, album, duration string) *Song {
	return &Song{Title: title, Artist: artist, Album: album, Duration: duration}
}

// DisplayTitle returns the title or "Unknown Title" when it is blank.
func (s Song) DisplayTitle() string {
	if strings.TrimSpace(s.Title) == "" {
		return UnknownTitle
	}
	return s.Title
}

// DisplayArtist returns the artist or "Unknown Artist" when it is blank.
func (s Song) DisplayArtist() string {
	if strings.TrimSpace(s.Artist) == "" {
		return UnknownArtist
	}
	return s.Artist
}

// DisplayCover returns the cover URI or a placeholder image.
func (s Song) DisplayCover() string {
	if strings.TrimSpace(s.Cover) == "" {
		return PlaceholderCover
	}
	return s.Cover
}

// Plays returns the play count, treating an absent count as zero.
func (s Song) Plays() int {
	if s.PlayCount == nil {
		return 0
	}
	return *s.PlayCount
}

// Validate checks the optional play count is non-negative.
func (s *Song) Validate() error {
	if s.PlayCount != nil && *s.PlayCount < 0 {
		return fmt.Errorf("play count must be non-negative, got %d", *s.PlayCount)
	}
	return nil
}
