package search

import (
	"strings"

	"github.com/desertthunder/sonata/internal/models"
)

// Normalize trims surrounding whitespace from a search term.
// A term that normalizes to "" selects the unfiltered listing.
func Normalize(term string) string {
	return strings.TrimSpace(term)
}

// Matches reports whether the song's title or artist contains the normalized term, ignoring case.
func Matches(song models.Song, term string) bool {
	needle := strings.ToLower(Normalize(term))
	return strings.Contains(strings.ToLower(song.Title), needle) ||
		strings.Contains(strings.ToLower(song.Artist), needle)
}

// Filter returns the songs matching term, preserving catalog order.
func Filter(songs []models.Song, term string) []models.Song {
	matches := make([]models.Song, 0, len(songs))
	for _, s := range songs {
		if Matches(s, term) {
			matches = append(matches, s)
		}
	}
	return matches
}
