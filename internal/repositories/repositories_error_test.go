package repositories

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/sonata/internal/models"
	"github.com/desertthunder/sonata/internal/shared"
)

func TestUserRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		t.Run("ValidationError", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewUserRepository(db)
			user := models.NewUser("", "Test User", "")

			if err := repo.Create(ctx, user); !errors.Is(err, shared.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput for empty email, got %v", err)
			}
		})

		t.Run("DuplicateEmail", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewUserRepository(db)
			if err := repo.Create(ctx, models.NewUser("test@example.com", "One", "")); err != nil {
				t.Fatalf("failed to create first user: %v", err)
			}

			err := repo.Create(ctx, models.NewUser("TEST@example.com", "Two", ""))
			if !errors.Is(err, shared.ErrEmailTaken) {
				t.Fatalf("expected ErrEmailTaken, got %v", err)
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewUserRepository(db)

			if _, err := repo.Get(ctx, "nonexistent-id"); !errors.Is(err, shared.ErrUserNotFound) {
				t.Fatalf("expected ErrUserNotFound, got %v", err)
			}
			if _, err := repo.GetByEmail(ctx, "nobody@example.com"); !shared.IsNotFound(err) {
				t.Fatalf("expected not found, got %v", err)
			}
		})
	})

	t.Run("Update", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewUserRepository(db)
			user := models.NewUser("ghost@example.com", "", "")
			user.ID = "nonexistent-id"

			if err := repo.Update(ctx, user); !errors.Is(err, shared.ErrUserNotFound) {
				t.Fatalf("expected ErrUserNotFound, got %v", err)
			}
		})
	})
}

func TestSongRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("Page", func(t *testing.T) {
		t.Run("InvalidLimit", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			if _, err := NewSongRepository(db).Page(ctx, "", 0); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
		})

		t.Run("UnknownCursor", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewSongRepository(db)
			seedSongs(t, repo, 3)

			page, err := repo.Page(ctx, "nonexistent-id", 6)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(page) != 0 {
				t.Errorf("expected empty page for unknown cursor, got %d", len(page))
			}
		})

		t.Run("ClosedDatabase", func(t *testing.T) {
			db := setupTestDB(t)
			repo := NewSongRepository(db)
			db.Close()

			if _, err := repo.Page(ctx, "", 6); err == nil {
				t.Fatal("expected error on closed database")
			}
			if _, err := repo.All(ctx); err == nil {
				t.Fatal("expected error on closed database")
			}
		})

		t.Run("CancelledContext", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			if _, err := NewSongRepository(db).All(cancelled); err == nil {
				t.Fatal("expected error with cancelled context")
			}
		})
	})

	t.Run("Create", func(t *testing.T) {
		t.Run("NegativePlayCount", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			negative := -5
			song := &models.Song{Title: "x", PlayCount: &negative}
			if err := NewSongRepository(db).Create(ctx, song); !errors.Is(err, shared.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	})
}

func TestPlaylistRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		t.Run("NameTooLong", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			user := createUser(t, db, "owner@example.com")
			playlist := models.NewPlaylist(user.ID, strings.Repeat("x", 51), "")

			if err := NewPlaylistRepository(db).Create(ctx, playlist); !errors.Is(err, shared.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			if _, err := NewPlaylistRepository(db).Get(ctx, "missing"); !errors.Is(err, shared.ErrPlaylistNotFound) {
				t.Fatalf("expected ErrPlaylistNotFound, got %v", err)
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			if err := NewPlaylistRepository(db).Delete(ctx, "missing"); !errors.Is(err, shared.ErrPlaylistNotFound) {
				t.Fatalf("expected ErrPlaylistNotFound, got %v", err)
			}
		})
	})
}
