package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/sonata/internal/models"
	"github.com/desertthunder/sonata/internal/shared"
)

const songColumns = `id, sequence, title, artist, album, duration, cover, genre, release_date, play_count, created_at, updated_at, deleted_at`

// SongRepository implements [models.Repository] for the song catalog.
//
// It also satisfies the listing contract used by the search controller: [SongRepository.Page] and [SongRepository.All].
type SongRepository struct {
	db *sql.DB
}

// NewSongRepository creates a new [SongRepository] with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

// Create inserts a new song. A song without an ID is assigned a generated one.
func (r *SongRepository) Create(ctx context.Context, song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	sequence, err := NextSequence(ctx, r.db, "songs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	if song.ID == "" {
		song.ID = shared.GenerateID()
	}
	song.Sequence = sequence
	song.Touch(time.Now())

	query := `
		INSERT INTO songs (id, sequence, title, artist, album, duration, cover, genre, release_date, play_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		song.ID,
		song.Sequence,
		song.Title,
		song.Artist,
		song.Album,
		song.Duration,
		song.Cover,
		nullString(song.Genre),
		nullTime(song.ReleaseDate),
		nullInt(song.PlayCount),
		song.CreatedAt,
		song.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert song: %w", err)
	}

	return nil
}

// Get retrieves a song by ID, excluding soft-deleted songs
func (r *SongRepository) Get(ctx context.Context, id string) (*models.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE id = ? AND deleted_at IS NULL`

	song, err := scanSong(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan song: %w", err)
	}
	return song, nil
}

// Update modifies an existing song in the database
func (r *SongRepository) Update(ctx context.Context, song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	song.Touch(time.Now())

	query := `
		UPDATE songs
		SET title = ?, artist = ?, album = ?, duration = ?, cover = ?, genre = ?, release_date = ?, play_count = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		song.Title,
		song.Artist,
		song.Album,
		song.Duration,
		song.Cover,
		nullString(song.Genre),
		nullTime(song.ReleaseDate),
		nullInt(song.PlayCount),
		song.UpdatedAt,
		song.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update song: %w", err)
	}

	return requireAffected(result, shared.ErrSongNotFound, song.ID)
}

// Delete soft-deletes a song by ID
func (r *SongRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE songs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}

	return requireAffected(result, shared.ErrSongNotFound, id)
}

// List retrieves songs matching the given criteria in catalog order.
//
// Supported criteria: "artist" and "genre" (exact match), "limit" (int).
func (r *SongRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE deleted_at IS NULL`
	args := []any{}

	if artist, ok := criteria["artist"].(string); ok && artist != "" {
		query += " AND artist = ?"
		args = append(args, artist)
	}

	if genre, ok := criteria["genre"].(string); ok && genre != "" {
		query += " AND genre = ?"
		args = append(args, genre)
	}

	query += " ORDER BY sequence ASC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	songs, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	result := make([]*models.Song, len(songs))
	for i := range songs {
		result[i] = &songs[i]
	}
	return result, nil
}

// Page returns up to limit songs in catalog order that come after the song with ID after.
// An empty after starts from the beginning. An unknown cursor yields an empty page.
func (r *SongRepository) Page(ctx context.Context, after string, limit int) ([]models.Song, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: page limit must be positive, got %d", shared.ErrInvalidArgument, limit)
	}

	if after == "" {
		query := `SELECT ` + songColumns + ` FROM songs WHERE deleted_at IS NULL ORDER BY sequence ASC LIMIT ?`
		return r.query(ctx, query, limit)
	}

	query := `
		SELECT ` + songColumns + `
		FROM songs
		WHERE deleted_at IS NULL AND sequence > (SELECT sequence FROM songs WHERE id = ?)
		ORDER BY sequence ASC
		LIMIT ?
	`
	return r.query(ctx, query, after, limit)
}

// All returns every song in catalog order.
func (r *SongRepository) All(ctx context.Context) ([]models.Song, error) {
	return r.query(ctx, `SELECT `+songColumns+` FROM songs WHERE deleted_at IS NULL ORDER BY sequence ASC`)
}

// TopByPlayCount returns the most played songs. Songs without a play count sort last.
func (r *SongRepository) TopByPlayCount(ctx context.Context, limit int) ([]models.Song, error) {
	query := `
		SELECT ` + songColumns + `
		FROM songs
		WHERE deleted_at IS NULL
		ORDER BY play_count IS NULL, play_count DESC, sequence ASC
		LIMIT ?
	`
	return r.query(ctx, query, limit)
}

// NewReleases returns the most recently released songs. Songs without a release date sort last.
func (r *SongRepository) NewReleases(ctx context.Context, limit int) ([]models.Song, error) {
	query := `
		SELECT ` + songColumns + `
		FROM songs
		WHERE deleted_at IS NULL
		ORDER BY release_date IS NULL, release_date DESC, sequence ASC
		LIMIT ?
	`
	return r.query(ctx, query, limit)
}

// GetMany returns the songs with the given IDs in the order requested, skipping IDs that no longer resolve.
func (r *SongRepository) GetMany(ctx context.Context, ids []string) ([]models.Song, error) {
	songs := make([]models.Song, 0, len(ids))
	for _, id := range ids {
		song, err := r.Get(ctx, id)
		if err != nil {
			if shared.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		songs = append(songs, *song)
	}
	return songs, nil
}

// IncrementPlayCount adds one play to the song, treating an absent count as zero, and returns the new count.
func (r *SongRepository) IncrementPlayCount(ctx context.Context, id string) (int, error) {
	query := `
		UPDATE songs
		SET play_count = COALESCE(play_count, 0) + 1, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return 0, fmt.Errorf("failed to increment play count: %w", err)
	}
	if err := requireAffected(result, shared.ErrSongNotFound, id); err != nil {
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT play_count FROM songs WHERE id = ?`, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to read play count: %w", err)
	}
	return count, nil
}

// Count returns the number of songs in the catalog.
func (r *SongRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM songs WHERE deleted_at IS NULL`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count songs: %w", err)
	}
	return count, nil
}

func (r *SongRepository) query(ctx context.Context, query string, args ...any) ([]models.Song, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	songs := []models.Song{}
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}
		songs = append(songs, *song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return songs, nil
}

// scanSong scans a row selected with songColumns into a [models.Song]
func scanSong(row scanner) (*models.Song, error) {
	var (
		song        models.Song
		genre       sql.NullString
		releaseDate sql.NullTime
		playCount   sql.NullInt64
		deletedAt   sql.NullTime
	)

	err := row.Scan(
		&song.ID, &song.Sequence, &song.Title, &song.Artist, &song.Album, &song.Duration, &song.Cover,
		&genre, &releaseDate, &playCount, &song.CreatedAt, &song.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	song.Genre = genre.String
	song.ReleaseDate = timePtr(releaseDate)
	song.PlayCount = intPtr(playCount)
	song.DeletedAt = timePtr(deletedAt)
	return &song, nil
}
