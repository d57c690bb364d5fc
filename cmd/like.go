package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// LikeToggle likes or unlikes a song for the signed-in user.
func (r *Runner) LikeToggle(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id", "song id")
	if err != nil {
		return err
	}

	svc, user, err := r.library(ctx)
	if err != nil {
		return err
	}

	song, err := svc.Song(ctx, id)
	if err != nil {
		return err
	}

	liked, err := svc.ToggleLike(ctx, user.ID, id)
	if err != nil {
		return err
	}

	if liked {
		return r.writePlain("♥ Liked %s - %s\n", song.DisplayArtist(), song.DisplayTitle())
	}
	return r.writePlain("♡ Unliked %s - %s\n", song.DisplayArtist(), song.DisplayTitle())
}

// LikeList prints the signed-in user's liked songs.
func (r *Runner) LikeList(ctx context.Context, cmd *cli.Command) error {
	svc, user, err := r.library(ctx)
	if err != nil {
		return err
	}

	songs, err := svc.LikedSongs(ctx, user.ID)
	if err != nil {
		return err
	}
	return r.writeSongs(songs, cmd.Bool("json"), cmd.Bool("pretty"))
}

// LikeCount prints how many users like a song.
func (r *Runner) LikeCount(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id", "song id")
	if err != nil {
		return err
	}

	svc, err := r.catalogService()
	if err != nil {
		return err
	}

	count, err := svc.LikeCount(ctx, id)
	if err != nil {
		return err
	}
	return r.writePlain("%d\n", count)
}
