package models

import (
	"fmt"
	"time"
)

// Like records that a user liked a song. A user likes a song at most once.
type Like struct {
	ID      string    `json:"id"`
	UserID  string    `json:"user_id"`
	SongID  string    `json:"song_id"`
	LikedAt time.Time `json:"liked_at"`
}

func (l *Like) Validate() error {
	if l.UserID == "" || l.SongID == "" {
		return fmt.Errorf("like requires a user ID and song ID")
	}
	return nil
}

// Featured is the highlighted song shown above the charts.
type Featured struct {
	ID              string   `json:"id"`
	Song            Song     `json:"song"`
	BackgroundImage string   `json:"background_image"`
	Lyrics          []string `json:"lyrics"`
}

func (f *Featured) Validate() error {
	if f.Song.ID == "" {
		return fmt.Errorf("featured entry requires a song")
	}
	return nil
}
