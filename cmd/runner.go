package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sonata/internal/auth"
	"github.com/desertthunder/sonata/internal/catalog"
	"github.com/desertthunder/sonata/internal/models"
	"github.com/desertthunder/sonata/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database is opened lazily on the first command that needs it, so commands such as
// `tui --remote` never touch local storage.
type Runner struct {
	config     *shared.Config
	configPath string
	db         *sql.DB
	catalog    *catalog.Service
	identity   *auth.LocalProvider
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	DB         *sql.DB
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
	if opts.DB != nil {
		r.attach(opts.DB)
	}
	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, seedCommand, songsCommand, chartsCommand, authCommand,
		playlistCommand, likeCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by the runner and the services it has built.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	if r.db != nil {
		r.attach(r.db)
	}
}

// Close releases the database, if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db, r.catalog, r.identity = nil, nil, nil
	return err
}

// loadConfig reads the --config file before any command runs.
func (r *Runner) loadConfig(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	if path == "" {
		return ctx, nil
	}
	r.configPath = path

	if _, err := os.Stat(path); err != nil {
		return ctx, nil
	}
	config, err := shared.LoadConfig(path)
	if err != nil {
		return ctx, err
	}
	r.config = config
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(config.Log.Level))
	return ctx, nil
}

func (r *Runner) attach(db *sql.DB) {
	r.db = db
	r.catalog = catalog.NewService(db, shared.WithLogger(r.logger, "component", "catalog"))
	r.identity = auth.NewLocalProvider(db, shared.WithLogger(r.logger, "component", "auth"))
}

// database opens the configured database and applies pending migrations on first use.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	r.attach(db)
	return db, nil
}

func (r *Runner) catalogService() (*catalog.Service, error) {
	if _, err := r.database(); err != nil {
		return nil, err
	}
	return r.catalog, nil
}

func (r *Runner) identityProvider() (*auth.LocalProvider, error) {
	if _, err := r.database(); err != nil {
		return nil, err
	}
	return r.identity, nil
}

// currentUser resolves the session token saved by `auth signin`.
func (r *Runner) currentUser(ctx context.Context) (*models.User, error) {
	if r.config.Session.Token == "" {
		return nil, fmt.Errorf("%w: run 'sonata auth signin' first", shared.ErrNotAuthenticated)
	}

	identity, err := r.identityProvider()
	if err != nil {
		return nil, err
	}
	return identity.Resolve(ctx, r.config.Session.Token)
}

// saveSession stores result as the CLI session and persists it to the config file.
func (r *Runner) saveSession(result *auth.Result) error {
	if r.config == nil {
		return fmt.Errorf("config is nil")
	}

	if result == nil {
		r.config.Session = shared.SessionConfig{Remote: r.config.Session.Remote}
	} else {
		r.config.Session.Token = result.Token()
		r.config.Session.UserID = result.User.ID
		r.config.Session.Email = result.User.Email
	}

	if r.configPath == "" {
		return nil
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// writeSongs prints a numbered song table, or JSON when asJSON is set.
func (r *Runner) writeSongs(songs []models.Song, asJSON, pretty bool) error {
	if asJSON {
		return r.writeJSON(songs, pretty)
	}
	if len(songs) == 0 {
		return r.writePlain("No songs found\n")
	}

	for i, song := range songs {
		r.writePlain("%3d. %s - %s", i+1, song.DisplayArtist(), song.DisplayTitle())
		if song.Duration != "" {
			r.writePlain(" [%s]", song.Duration)
		}
		if song.PlayCount != nil {
			r.writePlain(" (%d plays)", *song.PlayCount)
		}
		r.writePlain("\n     id: %s\n", song.ID)
	}
	return nil
}
