// package catalog implements the song, chart, playlist and like operations shared by the HTTP API and the CLI.
//
// [Service] applies ownership and validation rules on top of the repositories; callers pass the signed-in
// user's ID for library operations.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/sonata/internal/models"
	"github.com/desertthunder/sonata/internal/repositories"
	"github.com/desertthunder/sonata/internal/search"
	"github.com/desertthunder/sonata/internal/shared"
)

const (
	DefaultChartLimit = 20
	MaxChartLimit     = 100
	MaxPageLimit      = 50
)

// PlaylistUpdate holds optional playlist changes. Nil fields are left unchanged.
type PlaylistUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Cover       *string `json:"cover,omitempty"`
}

// Service is the catalog and library API.
type Service struct {
	songs     *repositories.SongRepository
	playlists *repositories.PlaylistRepository
	likes     *repositories.LikeRepository
	featured  *repositories.FeaturedRepository
	logger    *log.Logger
}

// NewService creates a [Service] over db.
func NewService(db *sql.DB, logger *log.Logger) *Service {
	return &Service{
		songs:     repositories.NewSongRepository(db),
		playlists: repositories.NewPlaylistRepository(db),
		likes:     repositories.NewLikeRepository(db),
		featured:  repositories.NewFeaturedRepository(db),
		logger:    logger,
	}
}

// Songs exposes the song repository, which also serves as a [search.Store].
func (s *Service) Songs() *repositories.SongRepository {
	return s.songs
}

// Page returns a page of songs after the cursor. Limits are clamped to [1, MaxPageLimit], defaulting to the listing page size.
func (s *Service) Page(ctx context.Context, after string, limit int) ([]models.Song, error) {
	if limit <= 0 {
		limit = search.DefaultPageSize
	}
	return s.songs.Page(ctx, after, min(limit, MaxPageLimit))
}

// All returns the whole catalog.
func (s *Service) All(ctx context.Context) ([]models.Song, error) {
	return s.songs.All(ctx)
}

// Search returns every song whose title or artist contains term. A blank term is rejected.
func (s *Service) Search(ctx context.Context, term string) ([]models.Song, error) {
	term = search.Normalize(term)
	if term == "" {
		return nil, fmt.Errorf("%w: search term is required", shared.ErrMissingArgument)
	}

	all, err := s.songs.All(ctx)
	if err != nil {
		return nil, err
	}
	return search.Filter(all, term), nil
}

// Song returns a single song.
func (s *Service) Song(ctx context.Context, id string) (*models.Song, error) {
	return s.songs.Get(ctx, id)
}

// Play records a play of the song and returns its new play count.
func (s *Service) Play(ctx context.Context, id string) (int, error) {
	count, err := s.songs.IncrementPlayCount(ctx, id)
	if err != nil {
		return 0, err
	}
	s.logger.Debug("recorded play", "song", id, "plays", count)
	return count, nil
}

// TopCharts returns the most played songs.
func (s *Service) TopCharts(ctx context.Context, limit int) ([]models.Song, error) {
	return s.songs.TopByPlayCount(ctx, chartLimit(limit))
}

// NewReleases returns the most recently released songs.
func (s *Service) NewReleases(ctx context.Context, limit int) ([]models.Song, error) {
	return s.songs.NewReleases(ctx, chartLimit(limit))
}

// RecentlyPlayed returns songs ranked by play count. Songs that have never been given a play
// count are left out; an explicit count of zero is kept.
func (s *Service) RecentlyPlayed(ctx context.Context, limit int) ([]models.Song, error) {
	songs, err := s.songs.TopByPlayCount(ctx, chartLimit(limit))
	if err != nil {
		return nil, err
	}

	played := songs[:0]
	for _, song := range songs {
		if song.PlayCount != nil {
			played = append(played, song)
		}
	}
	return played, nil
}

// Featured returns the highlighted song.
func (s *Service) Featured(ctx context.Context) (*models.Featured, error) {
	return s.featured.First(ctx)
}

func chartLimit(limit int) int {
	if limit <= 0 {
		return DefaultChartLimit
	}
	return min(limit, MaxChartLimit)
}

// CreatePlaylist creates an empty playlist owned by userID.
func (s *Service) CreatePlaylist(ctx context.Context, userID, name, description string) (*models.Playlist, error) {
	if userID == "" {
		return nil, shared.ErrNotAuthenticated
	}

	playlist := models.NewPlaylist(userID, name, description)
	if err := s.playlists.Create(ctx, playlist); err != nil {
		return nil, err
	}

	s.logger.Info("created playlist", "playlist", playlist.ID, "user", userID)
	return playlist, nil
}

// Playlists returns the playlists owned by userID.
func (s *Service) Playlists(ctx context.Context, userID string) ([]*models.Playlist, error) {
	if userID == "" {
		return nil, shared.ErrNotAuthenticated
	}
	return s.playlists.ListByUser(ctx, userID)
}

// Playlist returns a playlist owned by userID.
func (s *Service) Playlist(ctx context.Context, userID, id string) (*models.Playlist, error) {
	playlist, err := s.playlists.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(playlist, userID); err != nil {
		return nil, err
	}
	return playlist, nil
}

// UpdatePlaylist applies update to a playlist owned by userID.
func (s *Service) UpdatePlaylist(ctx context.Context, userID, id string, update PlaylistUpdate) (*models.Playlist, error) {
	playlist, err := s.Playlist(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		playlist.Name = strings.TrimSpace(*update.Name)
	}
	if update.Description != nil {
		playlist.Description = strings.TrimSpace(*update.Description)
	}
	if update.Cover != nil {
		playlist.Cover = strings.TrimSpace(*update.Cover)
	}

	if err := s.playlists.Update(ctx, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

// DeletePlaylist removes a playlist owned by userID.
func (s *Service) DeletePlaylist(ctx context.Context, userID, id string) error {
	if _, err := s.Playlist(ctx, userID, id); err != nil {
		return err
	}

	if err := s.playlists.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("deleted playlist", "playlist", id, "user", userID)
	return nil
}

// AddSong adds a song to a playlist owned by userID. Adding a song that is already present changes nothing.
func (s *Service) AddSong(ctx context.Context, userID, playlistID, songID string) (*models.Playlist, error) {
	if _, err := s.Playlist(ctx, userID, playlistID); err != nil {
		return nil, err
	}

	if _, err := s.playlists.AddSong(ctx, playlistID, songID); err != nil {
		return nil, err
	}
	return s.playlists.Get(ctx, playlistID)
}

// RemoveSong removes a song from a playlist owned by userID. Removing a song that is not present changes nothing.
func (s *Service) RemoveSong(ctx context.Context, userID, playlistID, songID string) (*models.Playlist, error) {
	if _, err := s.Playlist(ctx, userID, playlistID); err != nil {
		return nil, err
	}

	if _, err := s.playlists.RemoveSong(ctx, playlistID, songID); err != nil {
		return nil, err
	}
	return s.playlists.Get(ctx, playlistID)
}

// ExportPlaylist returns a playlist owned by userID with its songs resolved in playlist order.
func (s *Service) ExportPlaylist(ctx context.Context, userID, id string) (*models.PlaylistExport, error) {
	playlist, err := s.Playlist(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	songs, err := s.songs.GetMany(ctx, playlist.SongIDs)
	if err != nil {
		return nil, err
	}
	return &models.PlaylistExport{Playlist: *playlist, Songs: songs}, nil
}

func authorize(playlist *models.Playlist, userID string) error {
	if userID == "" {
		return shared.ErrNotAuthenticated
	}
	if playlist.UserID != userID {
		return fmt.Errorf("%w: playlist %s belongs to another user", shared.ErrForbidden, playlist.ID)
	}
	return nil
}

// ToggleLike flips userID's like on songID and returns the new state.
func (s *Service) ToggleLike(ctx context.Context, userID, songID string) (bool, error) {
	if userID == "" {
		return false, shared.ErrNotAuthenticated
	}
	return s.likes.Toggle(ctx, userID, songID)
}

// IsLiked reports whether userID likes songID. Anonymous users like nothing.
func (s *Service) IsLiked(ctx context.Context, userID, songID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return s.likes.IsLiked(ctx, userID, songID)
}

// LikedSongs returns the songs userID likes, most recent first.
func (s *Service) LikedSongs(ctx context.Context, userID string) ([]models.Song, error) {
	if userID == "" {
		return nil, shared.ErrNotAuthenticated
	}

	ids, err := s.likes.LikedSongIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.songs.GetMany(ctx, ids)
}

// LikeCount returns how many users like songID.
func (s *Service) LikeCount(ctx context.Context, songID string) (int, error) {
	if _, err := s.songs.Get(ctx, songID); err != nil {
		return 0, err
	}
	return s.likes.Count(ctx, songID)
}

// ValidatePlaylistName checks a name without touching storage, for interactive prompts.
func ValidatePlaylistName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: playlist name is required", shared.ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > models.MaxPlaylistNameLength {
		return fmt.Errorf("%w: playlist name must be at most %d characters", shared.ErrInvalidInput, models.MaxPlaylistNameLength)
	}
	return nil
}
