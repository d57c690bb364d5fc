package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/sonata/internal/models"
)

var _ list.Item = songItem{}

// songItem wraps [models.Song] to implement [list.Item]. Absent fields render their fallbacks.
type songItem struct {
	song models.Song
}

func (i songItem) FilterValue() string { return i.song.DisplayTitle() }
func (i songItem) Title() string       { return i.song.DisplayTitle() }
func (i songItem) Description() string {
	desc := i.song.DisplayArtist()
	if i.song.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.song.Album)
	}
	if i.song.Duration != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.song.Duration)
	}
	return desc
}

func songItems(songs []models.Song) []list.Item {
	items := make([]list.Item, len(songs))
	for i, song := range songs {
		items[i] = songItem{song: song}
	}
	return items
}
