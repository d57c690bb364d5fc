package catalog

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/sonata/internal/models"
	"github.com/desertthunder/sonata/internal/repositories"
	"github.com/desertthunder/sonata/internal/shared"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	require.NoError(t, err)
	require.NoError(t, shared.RunMigrations(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func setupService(t *testing.T) (*Service, *sql.DB) {
	t.Helper()
	db := setupTestDB(t)
	return NewService(db, log.New(io.Discard)), db
}

func addUser(t *testing.T, db *sql.DB, email string) string {
	t.Helper()
	user := models.NewUser(email, "", "")
	require.NoError(t, repositories.NewUserRepository(db).Create(context.Background(), user))
	return user.ID
}

func addSong(t *testing.T, svc *Service, title, artist string, plays *int, release *time.Time) *models.Song {
	t.Helper()
	song := &models.Song{Title: title, Artist: artist, PlayCount: plays, ReleaseDate: release}
	require.NoError(t, svc.Songs().Create(context.Background(), song))
	return song
}

func ptr[T any](v T) *T { return &v }

func TestSongs(t *testing.T) {
	ctx := context.Background()

	t.Run("Search", func(t *testing.T) {
		svc, _ := setupService(t)
		addSong(t, svc, "Blinding Lights", "The Weeknd", nil, nil)
		addSong(t, svc, "Paint The Town Red", "Doja Cat", nil, nil)

		songs, err := svc.Search(ctx, " Weeknd ")
		require.NoError(t, err)
		require.Len(t, songs, 1)
		assert.Equal(t, "Blinding Lights", songs[0].Title)

		_, err = svc.Search(ctx, "   ")
		assert.ErrorIs(t, err, shared.ErrMissingArgument)
	})

	t.Run("Page Defaults And Clamps", func(t *testing.T) {
		svc, _ := setupService(t)
		for i := 0; i < 8; i++ {
			addSong(t, svc, "Song", "Artist", nil, nil)
		}

		page, err := svc.Page(ctx, "", 0)
		require.NoError(t, err)
		assert.Len(t, page, 6)

		page, err = svc.Page(ctx, "", 1000)
		require.NoError(t, err)
		assert.Len(t, page, 8)
	})

	t.Run("Play", func(t *testing.T) {
		svc, _ := setupService(t)
		song := addSong(t, svc, "Stronger", "Kanye West", nil, nil)

		count, err := svc.Play(ctx, song.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		_, err = svc.Play(ctx, "missing")
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("Charts", func(t *testing.T) {
		svc, _ := setupService(t)
		addSong(t, svc, "Unplayed", "A", nil, nil)
		addSong(t, svc, "Hit", "B", ptr(200), ptr(time.Date(2023, 12, 8, 0, 0, 0, 0, time.UTC)))
		addSong(t, svc, "Classic", "C", ptr(150), ptr(time.Date(1994, 11, 1, 0, 0, 0, 0, time.UTC)))
		addSong(t, svc, "Zero", "D", ptr(0), nil)

		top, err := svc.TopCharts(ctx, 0)
		require.NoError(t, err)
		require.Len(t, top, 4)
		assert.Equal(t, []string{"Hit", "Classic", "Zero", "Unplayed"}, titlesOf(top))

		releases, err := svc.NewReleases(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"Hit", "Classic"}, titlesOf(releases))

		recent, err := svc.RecentlyPlayed(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"Hit", "Classic", "Zero"}, titlesOf(recent))
	})

	t.Run("Featured", func(t *testing.T) {
		svc, db := setupService(t)

		_, err := svc.Featured(ctx)
		assert.True(t, shared.IsNotFound(err))

		song := addSong(t, svc, "ONE OF THE GIRL", "The Weeknd & JENNIE & Lily Rose Depp", nil, nil)
		featured := &models.Featured{Song: *song, Lyrics: []string{"Tell nobody I control you"}}
		require.NoError(t, repositories.NewFeaturedRepository(db).Create(ctx, featured))

		got, err := svc.Featured(ctx)
		require.NoError(t, err)
		assert.Equal(t, song.ID, got.Song.ID)
		assert.Equal(t, []string{"Tell nobody I control you"}, got.Lyrics)
	})
}

func TestPlaylists(t *testing.T) {
	ctx := context.Background()

	t.Run("Create Validates", func(t *testing.T) {
		svc, db := setupService(t)
		owner := addUser(t, db, "owner@example.com")

		_, err := svc.CreatePlaylist(ctx, "", "Mix", "")
		assert.ErrorIs(t, err, shared.ErrNotAuthenticated)

		_, err = svc.CreatePlaylist(ctx, owner, "  ", "")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		_, err = svc.CreatePlaylist(ctx, owner, strings.Repeat("x", 51), "")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		_, err = svc.CreatePlaylist(ctx, owner, "Mix", strings.Repeat("d", 201))
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		p, err := svc.CreatePlaylist(ctx, owner, "  deep focus  ", "Music for deep concentration")
		require.NoError(t, err)
		assert.Equal(t, "deep focus", p.Name)
		assert.Empty(t, p.Cover)
		assert.Empty(t, p.SongIDs)
	})

	t.Run("Owner Only", func(t *testing.T) {
		svc, db := setupService(t)
		owner := addUser(t, db, "owner@example.com")
		other := addUser(t, db, "other@example.com")
		song := addSong(t, svc, "Cabaret", "Liza Minnelli", nil, nil)

		p, err := svc.CreatePlaylist(ctx, owner, "Mine", "")
		require.NoError(t, err)

		_, err = svc.Playlist(ctx, other, p.ID)
		assert.ErrorIs(t, err, shared.ErrForbidden)
		_, err = svc.UpdatePlaylist(ctx, other, p.ID, PlaylistUpdate{Name: ptr("Theirs")})
		assert.ErrorIs(t, err, shared.ErrForbidden)
		_, err = svc.AddSong(ctx, other, p.ID, song.ID)
		assert.ErrorIs(t, err, shared.ErrForbidden)
		assert.ErrorIs(t, svc.DeletePlaylist(ctx, other, p.ID), shared.ErrForbidden)

		mine, err := svc.Playlists(ctx, owner)
		require.NoError(t, err)
		assert.Len(t, mine, 1)
		theirs, err := svc.Playlists(ctx, other)
		require.NoError(t, err)
		assert.Empty(t, theirs)
	})

	t.Run("Songs And Export", func(t *testing.T) {
		svc, db := setupService(t)
		owner := addUser(t, db, "owner@example.com")
		a := addSong(t, svc, "A", "X", nil, nil)
		b := addSong(t, svc, "B", "Y", nil, nil)

		p, err := svc.CreatePlaylist(ctx, owner, "Mix", "")
		require.NoError(t, err)

		for _, id := range []string{b.ID, a.ID, b.ID} {
			p, err = svc.AddSong(ctx, owner, p.ID, id)
			require.NoError(t, err)
		}
		assert.Equal(t, []string{b.ID, a.ID}, p.SongIDs)

		export, err := svc.ExportPlaylist(ctx, owner, p.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"B", "A"}, titlesOf(export.Songs))

		p, err = svc.RemoveSong(ctx, owner, p.ID, b.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{a.ID}, p.SongIDs)

		p, err = svc.RemoveSong(ctx, owner, p.ID, b.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{a.ID}, p.SongIDs)
	})

	t.Run("Update And Delete", func(t *testing.T) {
		svc, db := setupService(t)
		owner := addUser(t, db, "owner@example.com")

		p, err := svc.CreatePlaylist(ctx, owner, "Mix", "old")
		require.NoError(t, err)

		p, err = svc.UpdatePlaylist(ctx, owner, p.ID, PlaylistUpdate{Description: ptr(" new ")})
		require.NoError(t, err)
		assert.Equal(t, "Mix", p.Name)
		assert.Equal(t, "new", p.Description)

		_, err = svc.UpdatePlaylist(ctx, owner, p.ID, PlaylistUpdate{Name: ptr("")})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		require.NoError(t, svc.DeletePlaylist(ctx, owner, p.ID))
		_, err = svc.Playlist(ctx, owner, p.ID)
		assert.ErrorIs(t, err, shared.ErrPlaylistNotFound)
	})
}

func TestLikes(t *testing.T) {
	ctx := context.Background()
	svc, db := setupService(t)
	alice := addUser(t, db, "alice@example.com")
	song := addSong(t, svc, "Blinding Lights", "The Weeknd", nil, nil)

	_, err := svc.ToggleLike(ctx, "", song.ID)
	assert.ErrorIs(t, err, shared.ErrNotAuthenticated)

	liked, err := svc.ToggleLike(ctx, alice, song.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	isLiked, err := svc.IsLiked(ctx, alice, song.ID)
	require.NoError(t, err)
	assert.True(t, isLiked)

	anonymous, err := svc.IsLiked(ctx, "", song.ID)
	require.NoError(t, err)
	assert.False(t, anonymous)

	songs, err := svc.LikedSongs(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"Blinding Lights"}, titlesOf(songs))

	count, err := svc.LikeCount(ctx, song.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = svc.LikeCount(ctx, "missing")
	assert.ErrorIs(t, err, shared.ErrSongNotFound)

	liked, err = svc.ToggleLike(ctx, alice, song.ID)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestValidatePlaylistName(t *testing.T) {
	assert.NoError(t, ValidatePlaylistName("For workplace"))
	assert.ErrorIs(t, ValidatePlaylistName(" "), shared.ErrInvalidInput)
	assert.ErrorIs(t, ValidatePlaylistName(strings.Repeat("é", 51)), shared.ErrInvalidInput)
	assert.NoError(t, ValidatePlaylistName(strings.Repeat("é", 50)))
}

func titlesOf(songs []models.Song) []string {
	out := make([]string, len(songs))
	for i, s := range songs {
		out[i] = s.Title
	}
	return out
}
