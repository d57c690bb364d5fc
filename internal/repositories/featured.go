package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/sonata/internal/models"
	"github.com/desertthunder/sonata/internal/shared"
)

// FeaturedRepository stores the highlighted song. Lyrics are persisted one line per row of text.
type FeaturedRepository struct {
	db *sql.DB
}

// NewFeaturedRepository creates a new [FeaturedRepository] with the given database connection
func NewFeaturedRepository(db *sql.DB) *FeaturedRepository {
	return &FeaturedRepository{db: db}
}

// Create stores a featured entry for an existing song.
func (r *FeaturedRepository) Create(ctx context.Context, featured *models.Featured) error {
	if err := featured.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	if featured.ID == "" {
		featured.ID = shared.GenerateID()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO featured_songs (id, song_id, background_image, lyrics, created_at) VALUES (?, ?, ?, ?, ?)`,
		featured.ID, featured.Song.ID, featured.BackgroundImage, strings.Join(featured.Lyrics, "\n"), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert featured song: %w", err)
	}
	return nil
}

// First returns the earliest featured entry whose song still exists.
func (r *FeaturedRepository) First(ctx context.Context) (*models.Featured, error) {
	query := `
		SELECT f.id, f.background_image, f.lyrics, ` + prefixed("s", songColumns) + `
		FROM featured_songs f
		JOIN songs s ON s.id = f.song_id
		WHERE s.deleted_at IS NULL
		ORDER BY f.created_at ASC, f.rowid ASC
		LIMIT 1
	`

	var (
		featured    models.Featured
		lyrics      string
		genre       sql.NullString
		releaseDate sql.NullTime
		playCount   sql.NullInt64
		deletedAt   sql.NullTime
	)

	song := &featured.Song
	err := r.db.QueryRowContext(ctx, query).Scan(
		&featured.ID, &featured.BackgroundImage, &lyrics,
		&song.ID, &song.Sequence, &song.Title, &song.Artist, &song.Album, &song.Duration, &song.Cover,
		&genre, &releaseDate, &playCount, &song.CreatedAt, &song.UpdatedAt, &deletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("featured song %w", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query featured song: %w", err)
	}

	song.Genre = genre.String
	song.ReleaseDate = timePtr(releaseDate)
	song.PlayCount = intPtr(playCount)
	song.DeletedAt = timePtr(deletedAt)

	featured.Lyrics = []string{}
	if lyrics != "" {
		featured.Lyrics = strings.Split(lyrics, "\n")
	}
	return &featured, nil
}

func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
