// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/sonata/internal/tasks"
	"github.com/urfave/cli/v3"
)

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
		},
	}
}

func limitFlag(value int) cli.Flag {
	return &cli.IntFlag{
		Name:    "limit",
		Aliases: []string{"n"},
		Usage:   "Maximum number of songs to return",
		Value:   value,
	}
}

func withOutput(flags ...cli.Flag) []cli.Flag {
	return append(flags, outputFlags()...)
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and database",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the config file if missing and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "status",
				Usage:  "Show applied and pending migrations",
				Flags:  outputFlags(),
				Action: r.SetupStatus,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.SetupRollback,
			},
		},
	}
}

func seedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Import songs and featured entries from a YAML seed file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Seed file path (defaults to the bundled catalog)",
			},
		},
		Action: r.Seed,
	}
}

func songsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "songs",
		Usage: "Browse the song catalog",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List a page of songs in catalog order",
				Flags: withOutput(
					&cli.StringFlag{
						Name:  "after",
						Usage: "Song ID to continue after",
					},
					limitFlag(6),
				),
				Action: r.SongsList,
			},
			{
				Name:      "search",
				Usage:     "Search songs by title or artist",
				Arguments: []cli.Argument{&cli.StringArg{Name: "term"}},
				Flags:     outputFlags(),
				Action:    r.SongsSearch,
			},
			{
				Name:      "show",
				Usage:     "Show a single song",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     outputFlags(),
				Action:    r.SongsShow,
			},
			{
				Name:      "play",
				Usage:     "Record a play for a song",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.SongsPlay,
			},
		},
	}
}

func chartsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "charts",
		Usage: "Show song charts",
		Commands: []*cli.Command{
			{
				Name:   "top",
				Usage:  "Most played songs",
				Flags:  withOutput(limitFlag(20)),
				Action: r.ChartsTop,
			},
			{
				Name:   "new",
				Usage:  "Newest releases",
				Flags:  withOutput(limitFlag(20)),
				Action: r.ChartsNew,
			},
			{
				Name:   "recent",
				Usage:  "Recently played songs",
				Flags:  withOutput(limitFlag(20)),
				Action: r.ChartsRecent,
			},
			{
				Name:   "featured",
				Usage:  "Featured song with lyrics",
				Flags:  outputFlags(),
				Action: r.ChartsFeatured,
			},
		},
	}
}

func authCommand(r *Runner) *cli.Command {
	credentials := []cli.Flag{
		&cli.StringFlag{
			Name:     "email",
			Aliases:  []string{"e"},
			Usage:    "Account email",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "password",
			Aliases:  []string{"p"},
			Usage:    "Account password",
			Required: true,
			Sources:  cli.EnvVars("SONATA_PASSWORD"),
		},
	}

	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the signed-in session",
		Commands: []*cli.Command{
			{
				Name:  "signup",
				Usage: "Create an account and sign in",
				Flags: append(credentials, &cli.StringFlag{
					Name:  "name",
					Usage: "Display name",
				}),
				Action: r.AuthSignUp,
			},
			{
				Name:   "signin",
				Usage:  "Sign in with email and password",
				Flags:  credentials,
				Action: r.AuthSignIn,
			},
			{
				Name:   "signout",
				Usage:  "Sign out and clear the saved session",
				Action: r.AuthSignOut,
			},
			{
				Name:   "whoami",
				Usage:  "Show the signed-in user",
				Flags:  outputFlags(),
				Action: r.AuthWhoami,
			},
			{
				Name:      "oauth",
				Usage:     "Sign in with google, github or facebook",
				Arguments: []cli.Argument{&cli.StringArg{Name: "provider"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorization URL instead of opening a browser",
					},
				},
				Action: r.AuthOAuth,
			},
		},
	}
}

func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Manage your playlists",
		Commands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Create a playlist",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Flags: withOutput(&cli.StringFlag{
					Name:    "description",
					Aliases: []string{"d"},
					Usage:   "Playlist description",
				}),
				Action: r.PlaylistCreate,
			},
			{
				Name:   "list",
				Usage:  "List your playlists",
				Flags:  outputFlags(),
				Action: r.PlaylistList,
			},
			{
				Name:      "show",
				Usage:     "Show a playlist and its songs",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     outputFlags(),
				Action:    r.PlaylistShow,
			},
			{
				Name:      "rename",
				Usage:     "Rename a playlist or change its description",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "New playlist name",
					},
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "New playlist description",
					},
				},
				Action: r.PlaylistRename,
			},
			{
				Name:      "delete",
				Usage:     "Delete a playlist",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.PlaylistDelete,
			},
			{
				Name:  "add",
				Usage: "Add a song to a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "song"},
				},
				Action: r.PlaylistAdd,
			},
			{
				Name:  "remove",
				Usage: "Remove a song from a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "song"},
				},
				Action: r.PlaylistRemove,
			},
			{
				Name:      "export",
				Usage:     "Export playlists as csv, markdown, txt or json",
				ArgsUsage: "[playlist ids...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv, markdown, txt or json",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory; prints a single playlist to stdout when empty",
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Export every playlist you own",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent export workers",
						Value: tasks.DefaultExportWorkers,
					},
					&cli.Float64Flag{
						Name:  "rate",
						Usage: "Playlist fetches per second",
						Value: tasks.DefaultExportRate,
					},
				},
				Action: r.PlaylistExport,
			},
		},
	}
}

func likeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "like",
		Usage: "Like songs",
		Commands: []*cli.Command{
			{
				Name:      "toggle",
				Usage:     "Like or unlike a song",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.LikeToggle,
			},
			{
				Name:   "list",
				Usage:  "List your liked songs",
				Flags:  outputFlags(),
				Action: r.LikeList,
			},
			{
				Name:      "count",
				Usage:     "Show how many users like a song",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.LikeCount,
			},
		},
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the JSON HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides config)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Browse and search songs interactively",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "remote",
				Usage: "Base URL of a sonata API server to browse instead of the local database",
			},
		},
		Action: r.TUI,
	}
}
