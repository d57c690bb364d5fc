package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/sonata/internal/shared"
)

// LikeRepository stores per-user song likes. A (user, song) pair is liked at most once.
type LikeRepository struct {
	db *sql.DB
}

// NewLikeRepository creates a new [LikeRepository] with the given database connection
func NewLikeRepository(db *sql.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// Toggle flips the like state for (userID, songID) and returns the new state.
func (r *LikeRepository) Toggle(ctx context.Context, userID, songID string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := existsTx(ctx, tx, `SELECT 1 FROM songs WHERE id = ? AND deleted_at IS NULL`, songID, shared.ErrSongNotFound); err != nil {
		return false, err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM likes WHERE user_id = ? AND song_id = ?`, userID, songID)
	if err != nil {
		return false, fmt.Errorf("failed to unlike song: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	liked := removed == 0
	if liked {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO likes (id, user_id, song_id, liked_at) VALUES (?, ?, ?, ?)`,
			shared.GenerateID(), userID, songID, time.Now(),
		)
		if err != nil {
			return false, fmt.Errorf("failed to like song: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}
	return liked, nil
}

// IsLiked reports whether userID likes songID.
func (r *LikeRepository) IsLiked(ctx context.Context, userID, songID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM likes WHERE user_id = ? AND song_id = ?)`, userID, songID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check like: %w", err)
	}
	return exists, nil
}

// LikedSongIDs returns the IDs of songs userID likes, most recent first.
func (r *LikeRepository) LikedSongIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT song_id FROM likes WHERE user_id = ? ORDER BY liked_at DESC, rowid DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query likes: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan like: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return ids, nil
}

// Count returns how many users like songID.
func (r *LikeRepository) Count(ctx context.Context, songID string) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM likes WHERE song_id = ?`, songID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}
