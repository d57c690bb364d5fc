package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/sonata/internal/catalog"
	"github.com/desertthunder/sonata/internal/formatter"
	"github.com/desertthunder/sonata/internal/models"
	"github.com/desertthunder/sonata/internal/shared"
	"github.com/desertthunder/sonata/internal/tasks"
	"github.com/urfave/cli/v3"
)

// library returns the catalog together with the signed-in user, for commands that act on the user's own data.
func (r *Runner) library(ctx context.Context) (*catalog.Service, *models.User, error) {
	user, err := r.currentUser(ctx)
	if err != nil {
		return nil, nil, err
	}
	svc, err := r.catalogService()
	if err != nil {
		return nil, nil, err
	}
	return svc, user, nil
}

func requireArg(cmd *cli.Command, name, label string) (string, error) {
	value := strings.TrimSpace(cmd.StringArg(name))
	if value == "" {
		return "", fmt.Errorf("%w: %s is required", shared.ErrMissingArgument, label)
	}
	return value, nil
}

// PlaylistCreate creates an empty playlist owned by the signed-in user.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	name, err := requireArg(cmd, "name", "playlist name")
	if err != nil {
		return err
	}

	svc, user, err := r.library(ctx)
	if err != nil {
		return err
	}

	playlist, err := svc.CreatePlaylist(ctx, user.ID, name, cmd.String("description"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlist, cmd.Bool("pretty"))
	}
	return r.writePlain("✓ Created playlist %q (%s)\n", playlist.Name, playlist.ID)
}

// PlaylistList prints the signed-in user's playlists.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	svc, user, err := r.library(ctx)
	if err != nil {
		return err
	}

	playlists, err := svc.Playlists(ctx, user.ID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}
	if len(playlists) == 0 {
		return r.writePlain("No playlists yet\n")
	}

	r.writePlainHeader("Playlists")
	for _, playlist := range playlists {
		r.writePlain("%-36s  %-30s  %d songs\n", playlist.ID, playlist.Name, playlist.SongCount())
	}
	return nil
}

// PlaylistShow prints a playlist with its songs.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id", "playlist id")
	if err != nil {
		return err
	}

	svc, user, err := r.library(ctx)
	if err != nil {
		return err
	}

	export, err := svc.ExportPlaylist(ctx, user.ID, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(export, cmd.Bool("pretty"))
	}

	r.writePlainHeader(export.Playlist.Name)
	if export.Playlist.Description != "" {
		r.writePlain("%s\n\n", export.Playlist.Description)
	}
	return r.writeSongs(export.Songs, false, false)
}

// PlaylistRename changes a playlist's name and/or description.
func (r *Runner) PlaylistRename(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id", "playlist id")
	if err != nil {
		return err
	}

	var update catalog.PlaylistUpdate
	if cmd.IsSet("name") {
		name := cmd.String("name")
		update.Name = &name
	}
	if cmd.IsSet("description") {
		description := cmd.String("description")
		update.Description = &description
	}
	if update.Name == nil && update.Description == nil {
		return fmt.Errorf("%w: --name or --description must be provided", shared.ErrMissingArgument)
	}

	svc, user, err := r.library(ctx)
	if err != nil {
		return err
	}

	playlist, err := svc.UpdatePlaylist(ctx, user.ID, id, update)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Updated playlist %q\n", playlist.Name)
}

// PlaylistDelete deletes one of the signed-in user's playlists.
func (r *Runner) PlaylistDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id", "playlist id")
	if err != nil {
		return err
	}

	svc, user, err := r.library(ctx)
	if err != nil {
		return err
	}

	if err := svc.DeletePlaylist(ctx, user.ID, id); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted playlist %s\n", id)
}

// PlaylistAdd adds a song to a playlist. Adding a song that is already present is a no-op.
func (r *Runner) PlaylistAdd(ctx context.Context, cmd *cli.Command) error {
	return r.editPlaylist(ctx, cmd, func(svc *catalog.Service, userID, id, songID string) (*models.Playlist, error) {
		return svc.AddSong(ctx, userID, id, songID)
	}, "Added")
}

// PlaylistRemove removes a song from a playlist.
func (r *Runner) PlaylistRemove(ctx context.Context, cmd *cli.Command) error {
	return r.editPlaylist(ctx, cmd, func(svc *catalog.Service, userID, id, songID string) (*models.Playlist, error) {
		return svc.RemoveSong(ctx, userID, id, songID)
	}, "Removed")
}

func (r *Runner) editPlaylist(
	ctx context.Context,
	cmd *cli.Command,
	edit func(svc *catalog.Service, userID, id, songID string) (*models.Playlist, error),
	verb string,
) error {
	id, err := requireArg(cmd, "id", "playlist id")
	if err != nil {
		return err
	}
	songID, err := requireArg(cmd, "song", "song id")
	if err != nil {
		return err
	}

	svc, user, err := r.library(ctx)
	if err != nil {
		return err
	}

	playlist, err := edit(svc, user.ID, id, songID)
	if err != nil {
		return err
	}
	return r.writePlain("✓ %s %s (%q now has %d songs)\n", verb, songID, playlist.Name, playlist.SongCount())
}

// PlaylistExport renders playlists in the requested format.
//
// A single playlist without --output is printed to stdout. Otherwise every playlist (or all of the user's
// playlists with --all) is written to the output directory by the bulk export engine.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	svc, user, err := r.library(ctx)
	if err != nil {
		return err
	}

	ids := cmd.Args().Slice()
	if cmd.Bool("all") {
		playlists, err := svc.Playlists(ctx, user.ID)
		if err != nil {
			return err
		}
		ids = make([]string, 0, len(playlists))
		for _, playlist := range playlists {
			ids = append(ids, playlist.ID)
		}
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: provide playlist ids or --all", shared.ErrMissingArgument)
	}

	outputDir := cmd.String("output")
	if outputDir == "" && len(ids) == 1 {
		export, err := svc.ExportPlaylist(ctx, user.ID, ids[0])
		if err != nil {
			return err
		}
		data, err := formatter.Render(export, format)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	}

	engine := tasks.NewExportEngine(svc, shared.WithLogger(r.logger, "component", "export"))
	progress := make(chan tasks.ProgressUpdate, len(ids)*3+1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := engine.BulkExport(ctx, progress, user.ID, ids, tasks.ExportOpts{
		Format:     format,
		OutputDir:  outputDir,
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float64("rate"),
	})
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlainln("Export finished: %d succeeded, %d failed", result.SuccessfulExports, result.FailedExports)
	r.writePlain("Manifest: %s\n", result.ManifestPath)
	return nil
}
