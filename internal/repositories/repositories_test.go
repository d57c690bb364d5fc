package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/desertthunder/sonata/internal/models"
	"github.com/desertthunder/sonata/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

// seedSongs inserts n songs titled "Song 1".."Song n" and returns them in catalog order
func seedSongs(t *testing.T, repo *SongRepository, n int) []*models.Song {
	t.Helper()

	songs := make([]*models.Song, 0, n)
	for i := 1; i <= n; i++ {
		song := models.NewSong(fmt.Sprintf("Song %d", i), fmt.Sprintf("Artist %d", i), "Album", "3:00")
		if err := repo.Create(context.Background(), song); err != nil {
			t.Fatalf("failed to create song %d: %v", i, err)
		}
		songs = append(songs, song)
	}
	return songs
}

func createUser(t *testing.T, db *sql.DB, email string) *models.User {
	t.Helper()

	user := models.NewUser(email, "", models.ProviderPassword)
	if err := NewUserRepository(db).Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func TestSongRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create And Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		release := time.Date(2019, 11, 29, 0, 0, 0, 0, time.UTC)
		plays := 300
		song := &models.Song{
			Title: "Blinding Lights", Artist: "The Weeknd", Album: "After Hours", Duration: "3:20",
			Genre: "Synth-pop", ReleaseDate: &release, PlayCount: &plays,
		}

		if err := repo.Create(ctx, song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}
		if song.ID == "" {
			t.Fatal("song ID should be set after creation")
		}

		retrieved, err := repo.Get(ctx, song.ID)
		if err != nil {
			t.Fatalf("failed to get song: %v", err)
		}

		if retrieved.Title != "Blinding Lights" || retrieved.Genre != "Synth-pop" {
			t.Errorf("unexpected song: %+v", retrieved)
		}
		if retrieved.ReleaseDate == nil || !retrieved.ReleaseDate.Equal(release) {
			t.Errorf("expected release date %v, got %v", release, retrieved.ReleaseDate)
		}
		if retrieved.PlayCount == nil || *retrieved.PlayCount != 300 {
			t.Errorf("expected play count 300, got %v", retrieved.PlayCount)
		}
	})

	t.Run("Optional Fields Absent", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		song := &models.Song{}
		if err := repo.Create(ctx, song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}

		retrieved, err := repo.Get(ctx, song.ID)
		if err != nil {
			t.Fatalf("failed to get song: %v", err)
		}
		if retrieved.Genre != "" || retrieved.ReleaseDate != nil || retrieved.PlayCount != nil {
			t.Errorf("optional fields should be absent, got %+v", retrieved)
		}
		if retrieved.DisplayTitle() != models.UnknownTitle {
			t.Errorf("expected fallback title, got %q", retrieved.DisplayTitle())
		}
	})

	t.Run("Page", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		songs := seedSongs(t, repo, 8)

		first, err := repo.Page(ctx, "", 6)
		if err != nil {
			t.Fatalf("failed to get first page: %v", err)
		}
		if len(first) != 6 {
			t.Fatalf("expected 6 songs, got %d", len(first))
		}
		for i, s := range first {
			if s.ID != songs[i].ID {
				t.Errorf("position %d: expected %s, got %s", i, songs[i].ID, s.ID)
			}
		}

		second, err := repo.Page(ctx, first[5].ID, 6)
		if err != nil {
			t.Fatalf("failed to get second page: %v", err)
		}
		if len(second) != 2 {
			t.Fatalf("expected 2 songs, got %d", len(second))
		}
		if second[0].ID != songs[6].ID || second[1].ID != songs[7].ID {
			t.Errorf("second page out of order: %v", second)
		}

		last, err := repo.Page(ctx, second[1].ID, 6)
		if err != nil {
			t.Fatalf("failed to get empty page: %v", err)
		}
		if len(last) != 0 {
			t.Errorf("expected empty page, got %d songs", len(last))
		}
	})

	t.Run("Page Skips Deleted", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		songs := seedSongs(t, repo, 3)

		if err := repo.Delete(ctx, songs[1].ID); err != nil {
			t.Fatalf("failed to delete song: %v", err)
		}

		page, err := repo.Page(ctx, songs[0].ID, 6)
		if err != nil {
			t.Fatalf("failed to get page: %v", err)
		}
		if len(page) != 1 || page[0].ID != songs[2].ID {
			t.Errorf("expected only %s, got %v", songs[2].ID, page)
		}

		page, err = repo.Page(ctx, songs[1].ID, 6)
		if err != nil {
			t.Fatalf("failed to page after deleted cursor: %v", err)
		}
		if len(page) != 1 || page[0].ID != songs[2].ID {
			t.Errorf("deleted cursor should still anchor the page, got %v", page)
		}
	})

	t.Run("All", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		seedSongs(t, repo, 10)

		all, err := repo.All(ctx)
		if err != nil {
			t.Fatalf("failed to get all songs: %v", err)
		}
		if len(all) != 10 {
			t.Errorf("expected 10 songs, got %d", len(all))
		}
	})

	t.Run("Charts", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		ten, fifty := 10, 50
		older := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
		newer := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

		fixtures := []*models.Song{
			{Title: "no plays, no date"},
			{Title: "ten", PlayCount: &ten, ReleaseDate: &older},
			{Title: "fifty", PlayCount: &fifty, ReleaseDate: &newer},
		}
		for _, s := range fixtures {
			if err := repo.Create(ctx, s); err != nil {
				t.Fatalf("failed to create song: %v", err)
			}
		}

		top, err := repo.TopByPlayCount(ctx, 20)
		if err != nil {
			t.Fatalf("failed to get top songs: %v", err)
		}
		if got := titles(top); fmt.Sprint(got) != "[fifty ten no plays, no date]" {
			t.Errorf("unexpected top order: %v", got)
		}

		releases, err := repo.NewReleases(ctx, 2)
		if err != nil {
			t.Fatalf("failed to get new releases: %v", err)
		}
		if got := titles(releases); fmt.Sprint(got) != "[fifty ten]" {
			t.Errorf("unexpected release order: %v", got)
		}
	})

	t.Run("IncrementPlayCount", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		song := seedSongs(t, repo, 1)[0]

		for want := 1; want <= 2; want++ {
			got, err := repo.IncrementPlayCount(ctx, song.ID)
			if err != nil {
				t.Fatalf("failed to increment: %v", err)
			}
			if got != want {
				t.Errorf("expected %d plays, got %d", want, got)
			}
		}

		if _, err := repo.IncrementPlayCount(ctx, "missing"); !errors.Is(err, shared.ErrSongNotFound) {
			t.Errorf("expected ErrSongNotFound, got %v", err)
		}
	})

	t.Run("Update And Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		song := seedSongs(t, repo, 1)[0]

		song.Title = "Renamed"
		if err := repo.Update(ctx, song); err != nil {
			t.Fatalf("failed to update song: %v", err)
		}

		retrieved, _ := repo.Get(ctx, song.ID)
		if retrieved.Title != "Renamed" {
			t.Errorf("expected updated title, got %s", retrieved.Title)
		}

		if err := repo.Delete(ctx, song.ID); err != nil {
			t.Fatalf("failed to delete song: %v", err)
		}
		if _, err := repo.Get(ctx, song.ID); !shared.IsNotFound(err) {
			t.Errorf("expected not found after delete, got %v", err)
		}
		if err := repo.Delete(ctx, song.ID); !errors.Is(err, shared.ErrSongNotFound) {
			t.Errorf("expected ErrSongNotFound on second delete, got %v", err)
		}
	})

	t.Run("List And GetMany", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		songs := seedSongs(t, repo, 4)

		listed, err := repo.List(ctx, map[string]any{"artist": "Artist 2"})
		if err != nil {
			t.Fatalf("failed to list songs: %v", err)
		}
		if len(listed) != 1 || listed[0].ID != songs[1].ID {
			t.Errorf("expected only song 2, got %v", listed)
		}

		limited, err := repo.List(ctx, map[string]any{"limit": 3})
		if err != nil {
			t.Fatalf("failed to list songs: %v", err)
		}
		if len(limited) != 3 {
			t.Errorf("expected 3 songs, got %d", len(limited))
		}

		many, err := repo.GetMany(ctx, []string{songs[3].ID, "missing", songs[0].ID})
		if err != nil {
			t.Fatalf("failed to get songs: %v", err)
		}
		if len(many) != 2 || many[0].ID != songs[3].ID || many[1].ID != songs[0].ID {
			t.Errorf("expected requested order without missing IDs, got %v", titles(many))
		}

		count, err := repo.Count(ctx)
		if err != nil || count != 4 {
			t.Errorf("expected 4 songs, got %d (%v)", count, err)
		}
	})
}

func TestPlaylistRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create And Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		user := createUser(t, db, "owner@example.com")
		repo := NewPlaylistRepository(db)
		playlist := models.NewPlaylist(user.ID, "For workplace", "Rich Brian's collections")

		if err := repo.Create(ctx, playlist); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		retrieved, err := repo.Get(ctx, playlist.ID)
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}
		if retrieved.Name != "For workplace" || retrieved.UserID != user.ID {
			t.Errorf("unexpected playlist: %+v", retrieved)
		}
		if retrieved.SongCount() != 0 {
			t.Errorf("new playlist should be empty, got %d songs", retrieved.SongCount())
		}
	})

	t.Run("AddSong Is A Set Union", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		user := createUser(t, db, "owner@example.com")
		songs := seedSongs(t, NewSongRepository(db), 2)
		repo := NewPlaylistRepository(db)
		playlist := models.NewPlaylist(user.ID, "deep focus", "")
		if err := repo.Create(ctx, playlist); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		for _, id := range []string{songs[1].ID, songs[0].ID, songs[1].ID} {
			if _, err := repo.AddSong(ctx, playlist.ID, id); err != nil {
				t.Fatalf("failed to add song: %v", err)
			}
		}

		added, err := repo.AddSong(ctx, playlist.ID, songs[0].ID)
		if err != nil {
			t.Fatalf("failed to add song: %v", err)
		}
		if added {
			t.Error("adding a member again should report false")
		}

		ids, err := repo.SongIDs(ctx, playlist.ID)
		if err != nil {
			t.Fatalf("failed to get song IDs: %v", err)
		}
		if len(ids) != 2 || ids[0] != songs[1].ID || ids[1] != songs[0].ID {
			t.Errorf("expected insertion order without duplicates, got %v", ids)
		}
	})

	t.Run("AddSong Unknown References", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		user := createUser(t, db, "owner@example.com")
		song := seedSongs(t, NewSongRepository(db), 1)[0]
		repo := NewPlaylistRepository(db)
		playlist := models.NewPlaylist(user.ID, "Mix", "")
		if err := repo.Create(ctx, playlist); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		if _, err := repo.AddSong(ctx, "missing", song.ID); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
		if _, err := repo.AddSong(ctx, playlist.ID, "missing"); !errors.Is(err, shared.ErrSongNotFound) {
			t.Errorf("expected ErrSongNotFound, got %v", err)
		}
	})

	t.Run("RemoveSong", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		user := createUser(t, db, "owner@example.com")
		song := seedSongs(t, NewSongRepository(db), 1)[0]
		repo := NewPlaylistRepository(db)
		playlist := models.NewPlaylist(user.ID, "Mix", "")
		playlist.SongIDs = []string{song.ID}
		if err := repo.Create(ctx, playlist); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		removed, err := repo.RemoveSong(ctx, playlist.ID, song.ID)
		if err != nil || !removed {
			t.Fatalf("expected song to be removed, got %v (%v)", removed, err)
		}

		removed, err = repo.RemoveSong(ctx, playlist.ID, song.ID)
		if err != nil || removed {
			t.Errorf("removing a non-member should be a no-op, got %v (%v)", removed, err)
		}
	})

	t.Run("ListByUser Update Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		owner := createUser(t, db, "owner@example.com")
		other := createUser(t, db, "other@example.com")
		repo := NewPlaylistRepository(db)

		for _, p := range []*models.Playlist{
			models.NewPlaylist(owner.ID, "One", ""),
			models.NewPlaylist(owner.ID, "Two", ""),
			models.NewPlaylist(other.ID, "Theirs", ""),
		} {
			if err := repo.Create(ctx, p); err != nil {
				t.Fatalf("failed to create playlist: %v", err)
			}
		}

		mine, err := repo.ListByUser(ctx, owner.ID)
		if err != nil {
			t.Fatalf("failed to list playlists: %v", err)
		}
		if len(mine) != 2 || mine[0].Name != "One" || mine[1].Name != "Two" {
			t.Fatalf("unexpected playlists: %v", mine)
		}

		mine[0].Name = "Uno"
		if err := repo.Update(ctx, mine[0]); err != nil {
			t.Fatalf("failed to update playlist: %v", err)
		}

		if err := repo.Delete(ctx, mine[1].ID); err != nil {
			t.Fatalf("failed to delete playlist: %v", err)
		}

		mine, _ = repo.ListByUser(ctx, owner.ID)
		if len(mine) != 1 || mine[0].Name != "Uno" {
			t.Errorf("expected only the renamed playlist, got %v", mine)
		}
	})
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create And Lookup", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewUserRepository(db)
		user := models.NewUser("Fan@Example.com", "Fan", models.ProviderPassword)
		user.PasswordHash = "hash"

		if err := repo.Create(ctx, user); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		byID, err := repo.Get(ctx, user.ID)
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}
		if byID.PasswordHash != "hash" {
			t.Errorf("expected password hash to round trip, got %q", byID.PasswordHash)
		}

		byEmail, err := repo.GetByEmail(ctx, "  FAN@example.com")
		if err != nil {
			t.Fatalf("failed to get user by email: %v", err)
		}
		if byEmail.ID != user.ID {
			t.Errorf("expected %s, got %s", user.ID, byEmail.ID)
		}
	})

	t.Run("List And Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewUserRepository(db)
		user := createUser(t, db, "a@example.com")
		createUser(t, db, "b@example.com")

		users, err := repo.List(ctx, map[string]any{"email": "A@example.com"})
		if err != nil {
			t.Fatalf("failed to list users: %v", err)
		}
		if len(users) != 1 {
			t.Fatalf("expected 1 user, got %d", len(users))
		}

		if err := repo.Delete(ctx, user.ID); err != nil {
			t.Fatalf("failed to delete user: %v", err)
		}
		users, _ = repo.List(ctx, nil)
		if len(users) != 1 {
			t.Errorf("expected 1 remaining user, got %d", len(users))
		}
	})
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	defer db.Close()

	user := createUser(t, db, "a@example.com")
	repo := NewSessionRepository(db)
	now := time.Now().UTC()

	live := &models.Session{Token: "live", UserID: user.ID, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	stale := &models.Session{Token: "stale", UserID: user.ID, CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}
	for _, s := range []*models.Session{live, stale} {
		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}
	}

	got, err := repo.Get(ctx, "live")
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	if got.UserID != user.ID {
		t.Errorf("expected user %s, got %s", user.ID, got.UserID)
	}

	removed, err := repo.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("failed to delete expired sessions: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 expired session removed, got %d", removed)
	}

	if err := repo.Delete(ctx, "live"); err != nil {
		t.Fatalf("failed to delete session: %v", err)
	}
	if _, err := repo.Get(ctx, "live"); !errors.Is(err, shared.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestLikeRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	defer db.Close()

	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")
	songs := seedSongs(t, NewSongRepository(db), 2)
	repo := NewLikeRepository(db)

	liked, err := repo.Toggle(ctx, alice.ID, songs[0].ID)
	if err != nil || !liked {
		t.Fatalf("first toggle should like, got %v (%v)", liked, err)
	}
	if _, err := repo.Toggle(ctx, bob.ID, songs[0].ID); err != nil {
		t.Fatalf("failed to toggle: %v", err)
	}

	count, err := repo.Count(ctx, songs[0].ID)
	if err != nil || count != 2 {
		t.Errorf("expected 2 likes, got %d (%v)", count, err)
	}

	liked, err = repo.Toggle(ctx, alice.ID, songs[0].ID)
	if err != nil || liked {
		t.Fatalf("second toggle should unlike, got %v (%v)", liked, err)
	}

	isLiked, _ := repo.IsLiked(ctx, alice.ID, songs[0].ID)
	if isLiked {
		t.Error("song should no longer be liked")
	}

	if _, err := repo.Toggle(ctx, alice.ID, songs[1].ID); err != nil {
		t.Fatalf("failed to toggle: %v", err)
	}
	ids, err := repo.LikedSongIDs(ctx, alice.ID)
	if err != nil {
		t.Fatalf("failed to list likes: %v", err)
	}
	if len(ids) != 1 || ids[0] != songs[1].ID {
		t.Errorf("expected only song 2 liked, got %v", ids)
	}

	if _, err := repo.Toggle(ctx, alice.ID, "missing"); !errors.Is(err, shared.ErrSongNotFound) {
		t.Errorf("expected ErrSongNotFound, got %v", err)
	}
}

func TestFeaturedRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	defer db.Close()

	repo := NewFeaturedRepository(db)
	if _, err := repo.First(ctx); !shared.IsNotFound(err) {
		t.Fatalf("expected not found with no featured entries, got %v", err)
	}

	song := seedSongs(t, NewSongRepository(db), 1)[0]
	featured := &models.Featured{
		Song:            *song,
		BackgroundImage: "/images/featured-song-bg.png",
		Lyrics:          []string{"Look me up and throw away the key", "He knows how to get the best out of me"},
	}
	if err := repo.Create(ctx, featured); err != nil {
		t.Fatalf("failed to create featured entry: %v", err)
	}

	first, err := repo.First(ctx)
	if err != nil {
		t.Fatalf("failed to get featured entry: %v", err)
	}
	if first.Song.ID != song.ID || first.Song.Title != song.Title {
		t.Errorf("unexpected featured song: %+v", first.Song)
	}
	if len(first.Lyrics) != 2 || first.Lyrics[1] != "He knows how to get the best out of me" {
		t.Errorf("lyrics did not round trip: %v", first.Lyrics)
	}
}

func titles(songs []models.Song) []string {
	out := make([]string, len(songs))
	for i, s := range songs {
		out[i] = s.Title
	}
	return out
}
