package tasks

import (
	"fmt"

	"github.com/desertthunder/sonata/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	DecodeSeed Phase = iota
	ImportSongs
	ImportFeatured
	FetchPlaylist
	ExportPlaylist
)

func (p Phase) String() string {
	switch p {
	case DecodeSeed:
		return "parse_seed"
	case ImportSongs:
		return "import_songs"
	case ImportFeatured:
		return "import_featured"
	case FetchPlaylist:
		return "fetch_playlist"
	case ExportPlaylist:
		return "export_playlist"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func parseSeedUpdate(songs, featured int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DecodeSeed,
		Total:   songs + featured,
		Message: fmt.Sprintf("Parsed seed: %d songs, %d featured", songs, featured),
	}
}

func importSongUpdate(step, total int, song *models.Song, skipped bool) ProgressUpdate {
	verb := "Imported"
	if skipped {
		verb = "Skipped"
	}
	return ProgressUpdate{
		Phase:   ImportSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s - %s", step, total, verb, song.DisplayArtist(), song.DisplayTitle()),
		Data:    song,
	}
}

func importFeaturedUpdate(step, total int, featured *models.Featured) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportFeatured,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Featured: %s", featured.Song.DisplayTitle()),
		Data:    featured,
	}
}

func fetchPlaylistUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylist,
		Step:    step,
		Total:   total,
		Message: "Fetching playlists...",
	}
}

func exportingPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
