package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/sonata/internal/models"
	"github.com/desertthunder/sonata/internal/shared"
	"github.com/urfave/cli/v3"
)

// SongsList prints one page of the catalog in storage order, continuing after --after.
func (r *Runner) SongsList(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.catalogService()
	if err != nil {
		return err
	}

	songs, err := svc.Page(ctx, cmd.String("after"), cmd.Int("limit"))
	if err != nil {
		return err
	}

	if err := r.writeSongs(songs, cmd.Bool("json"), cmd.Bool("pretty")); err != nil {
		return err
	}
	if !cmd.Bool("json") && len(songs) > 0 {
		r.writePlain("\nNext page: sonata songs list --after %s\n", songs[len(songs)-1].ID)
	}
	return nil
}

// SongsSearch prints songs whose title or artist contains the term.
func (r *Runner) SongsSearch(ctx context.Context, cmd *cli.Command) error {
	term := strings.TrimSpace(cmd.StringArg("term"))
	if term == "" {
		return fmt.Errorf("%w: search term is required", shared.ErrMissingArgument)
	}

	svc, err := r.catalogService()
	if err != nil {
		return err
	}

	songs, err := svc.Search(ctx, term)
	if err != nil {
		return err
	}
	r.logger.Debug("search finished", "term", term, "matches", len(songs))
	return r.writeSongs(songs, cmd.Bool("json"), cmd.Bool("pretty"))
}

// SongsShow prints a single song.
func (r *Runner) SongsShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: song id is required", shared.ErrMissingArgument)
	}

	svc, err := r.catalogService()
	if err != nil {
		return err
	}

	song, err := svc.Song(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(song, cmd.Bool("pretty"))
	}
	r.writeSong(song)
	return nil
}

// SongsPlay increments a song's play count.
func (r *Runner) SongsPlay(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: song id is required", shared.ErrMissingArgument)
	}

	svc, err := r.catalogService()
	if err != nil {
		return err
	}

	count, err := svc.Play(ctx, id)
	if err != nil {
		return err
	}
	return r.writePlain("▶ %s now has %d plays\n", id, count)
}

// ChartsTop prints the most played songs.
func (r *Runner) ChartsTop(ctx context.Context, cmd *cli.Command) error {
	return r.chart(ctx, cmd, "Top Charts", func(ctx context.Context, limit int) ([]models.Song, error) {
		svc, err := r.catalogService()
		if err != nil {
			return nil, err
		}
		return svc.TopCharts(ctx, limit)
	})
}

// ChartsNew prints the newest releases.
func (r *Runner) ChartsNew(ctx context.Context, cmd *cli.Command) error {
	return r.chart(ctx, cmd, "New Releases", func(ctx context.Context, limit int) ([]models.Song, error) {
		svc, err := r.catalogService()
		if err != nil {
			return nil, err
		}
		return svc.NewReleases(ctx, limit)
	})
}

// ChartsRecent prints recently played songs.
func (r *Runner) ChartsRecent(ctx context.Context, cmd *cli.Command) error {
	return r.chart(ctx, cmd, "Recently Played", func(ctx context.Context, limit int) ([]models.Song, error) {
		svc, err := r.catalogService()
		if err != nil {
			return nil, err
		}
		return svc.RecentlyPlayed(ctx, limit)
	})
}

// ChartsFeatured prints the featured song and its lyrics.
func (r *Runner) ChartsFeatured(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.catalogService()
	if err != nil {
		return err
	}

	featured, err := svc.Featured(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(featured, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Featured")
	r.writeSong(&featured.Song)
	if len(featured.Lyrics) > 0 {
		r.writePlain("\n")
		for _, line := range featured.Lyrics {
			r.writePlain("  %s\n", line)
		}
	}
	return nil
}

func (r *Runner) chart(ctx context.Context, cmd *cli.Command, title string, fetch func(context.Context, int) ([]models.Song, error)) error {
	songs, err := fetch(ctx, cmd.Int("limit"))
	if err != nil {
		return err
	}

	if !cmd.Bool("json") {
		r.writePlainHeader(title)
	}
	return r.writeSongs(songs, cmd.Bool("json"), cmd.Bool("pretty"))
}

func (r *Runner) writeSong(song *models.Song) {
	r.writePlain("Title:    %s\n", song.DisplayTitle())
	r.writePlain("Artist:   %s\n", song.DisplayArtist())
	if song.Album != "" {
		r.writePlain("Album:    %s\n", song.Album)
	}
	if song.Duration != "" {
		r.writePlain("Duration: %s\n", song.Duration)
	}
	if song.Genre != "" {
		r.writePlain("Genre:    %s\n", song.Genre)
	}
	if song.ReleaseDate != nil {
		r.writePlain("Released: %s\n", song.ReleaseDate.Format("2006-01-02"))
	}
	r.writePlain("Plays:    %d\n", song.Plays())
	r.writePlain("Cover:    %s\n", song.DisplayCover())
	r.writePlain("ID:       %s\n", song.ID)
}
