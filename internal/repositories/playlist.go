package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/sonata/internal/models"
	"github.com/desertthunder/sonata/internal/shared"
)

const playlistColumns = `id, sequence, user_id, name, description, cover, created_at, updated_at, deleted_at`

// PlaylistRepository implements [models.Repository] for user-owned playlists.
//
// Song membership lives in playlist_songs, ordered by position; a song appears in a playlist at most once.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a new playlist with generated ID and sequence, along with any initial songs.
func (r *PlaylistRepository) Create(ctx context.Context, playlist *models.Playlist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	sequence, err := NextSequence(ctx, r.db, "playlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	playlist.ID = shared.GenerateID()
	playlist.Sequence = sequence
	playlist.Touch(time.Now())
	if playlist.SongIDs == nil {
		playlist.SongIDs = []string{}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO playlists (id, sequence, user_id, name, description, cover, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.ExecContext(ctx, query,
		playlist.ID,
		playlist.Sequence,
		playlist.UserID,
		playlist.Name,
		playlist.Description,
		playlist.Cover,
		playlist.CreatedAt,
		playlist.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	unique := make([]string, 0, len(playlist.SongIDs))
	seen := make(map[string]bool, len(playlist.SongIDs))
	for _, songID := range playlist.SongIDs {
		if seen[songID] {
			continue
		}
		seen[songID] = true
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO playlist_songs (playlist_id, song_id, position, added_at) VALUES (?, ?, ?, ?)`,
			playlist.ID, songID, len(unique)+1, playlist.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to add song %s: %w", songID, err)
		}
		unique = append(unique, songID)
	}
	playlist.SongIDs = unique

	return tx.Commit()
}

// Get retrieves a playlist and its song IDs, excluding soft-deleted playlists
func (r *PlaylistRepository) Get(ctx context.Context, id string) (*models.Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE id = ? AND deleted_at IS NULL`

	playlist, err := scanPlaylist(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}

	if playlist.SongIDs, err = r.SongIDs(ctx, id); err != nil {
		return nil, err
	}
	return playlist, nil
}

// Update modifies the playlist name, description and cover
func (r *PlaylistRepository) Update(ctx context.Context, playlist *models.Playlist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	playlist.Touch(time.Now())

	query := `
		UPDATE playlists
		SET name = ?, description = ?, cover = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		playlist.Name,
		playlist.Description,
		playlist.Cover,
		playlist.UpdatedAt,
		playlist.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}

	return requireAffected(result, shared.ErrPlaylistNotFound, playlist.ID)
}

// Delete soft-deletes a playlist by ID
func (r *PlaylistRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE playlists SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	return requireAffected(result, shared.ErrPlaylistNotFound, id)
}

// List retrieves playlists matching the given criteria, excluding soft-deleted playlists.
//
// Supported criteria: "user_id".
func (r *PlaylistRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE deleted_at IS NULL`
	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}

	playlists := []*models.Playlist{}
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		playlists = append(playlists, playlist)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	// Membership is loaded after the cursor is released; in-memory databases hold a single connection.
	for _, playlist := range playlists {
		if playlist.SongIDs, err = r.SongIDs(ctx, playlist.ID); err != nil {
			return nil, err
		}
	}

	return playlists, nil
}

// ListByUser returns the playlists owned by userID.
func (r *PlaylistRepository) ListByUser(ctx context.Context, userID string) ([]*models.Playlist, error) {
	return r.List(ctx, map[string]any{"user_id": userID})
}

// AddSong appends songID to the playlist unless it is already present and reports whether it was added.
func (r *PlaylistRepository) AddSong(ctx context.Context, playlistID, songID string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := existsTx(ctx, tx, `SELECT 1 FROM playlists WHERE id = ? AND deleted_at IS NULL`, playlistID, shared.ErrPlaylistNotFound); err != nil {
		return false, err
	}
	if err := existsTx(ctx, tx, `SELECT 1 FROM songs WHERE id = ? AND deleted_at IS NULL`, songID, shared.ErrSongNotFound); err != nil {
		return false, err
	}

	now := time.Now()
	query := `
		INSERT OR IGNORE INTO playlist_songs (playlist_id, song_id, position, added_at)
		SELECT ?, ?, COALESCE(MAX(position), 0) + 1, ? FROM playlist_songs WHERE playlist_id = ?
	`

	result, err := tx.ExecContext(ctx, query, playlistID, songID, now, playlistID)
	if err != nil {
		return false, fmt.Errorf("failed to add song: %w", err)
	}

	added, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	if added > 0 {
		if _, err := tx.ExecContext(ctx, `UPDATE playlists SET updated_at = ? WHERE id = ?`, now, playlistID); err != nil {
			return false, fmt.Errorf("failed to touch playlist: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}
	return added > 0, nil
}

// RemoveSong removes songID from the playlist and reports whether it was a member.
func (r *PlaylistRepository) RemoveSong(ctx context.Context, playlistID, songID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM playlist_songs WHERE playlist_id = ? AND song_id = ?`, playlistID, songID)
	if err != nil {
		return false, fmt.Errorf("failed to remove song: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return removed > 0, nil
}

// SongIDs returns the playlist's song IDs in the order they were added.
func (r *PlaylistRepository) SongIDs(ctx context.Context, playlistID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT song_id FROM playlist_songs WHERE playlist_id = ? ORDER BY position ASC`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist songs: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan playlist song: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return ids, nil
}

func existsTx(ctx context.Context, tx *sql.Tx, query, id string, notFound error) error {
	var one int
	err := tx.QueryRowContext(ctx, query, id).Scan(&one)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: %s", notFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to look up %s: %w", id, err)
	}
	return nil
}

// scanPlaylist scans a row selected with playlistColumns into a [models.Playlist]
func scanPlaylist(row scanner) (*models.Playlist, error) {
	var (
		playlist  models.Playlist
		deletedAt sql.NullTime
	)

	err := row.Scan(
		&playlist.ID, &playlist.Sequence, &playlist.UserID, &playlist.Name, &playlist.Description, &playlist.Cover,
		&playlist.CreatedAt, &playlist.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	playlist.DeletedAt = timePtr(deletedAt)
	playlist.SongIDs = []string{}
	return &playlist, nil
}
