package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/desertthunder/sonata/internal/repositories"
	"github.com/desertthunder/sonata/internal/shared"
	"github.com/desertthunder/sonata/internal/tasks"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

// SetupDatabase creates the config file from the template when missing, then initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath
	if configPath == "" {
		configPath = "config.toml"
	}

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else if config, err := shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load created config, using defaults", "error", err)
		} else {
			r.config = config
			r.logger.Info("config file created", "path", configPath)
		}
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)
	if _, err := r.database(); err != nil {
		return err
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)
}

// SetupStatus lists every known migration and whether it has been applied.
func (r *Runner) SetupStatus(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	states, err := shared.MigrationStatus(db)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(states, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Migrations")
	for _, state := range states {
		if state.AppliedAt == nil {
			r.writePlain("  ✗ %04d %s (pending)\n", state.Version, state.Name)
			continue
		}
		r.writePlain("  ✓ %04d %s (%s)\n", state.Version, state.Name, state.AppliedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// SetupRollback reverts the most recently applied migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	if err := shared.RollbackMigration(db); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return r.writePlain("✓ Rolled back latest migration\n")
}

// Seed imports a YAML seed document, drawing a progress bar as songs are stored.
//
// Without --file the bundled catalog is imported. Songs that already exist are skipped.
func (r *Runner) Seed(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	var source io.Reader = bytes.NewReader(tasks.DefaultSeed())
	if path := cmd.String("file"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("%w: failed to open seed file: %v", shared.ErrInvalidArgument, err)
		}
		defer f.Close()
		source = f
	}

	engine := tasks.NewSeedEngine(
		repositories.NewSongRepository(db),
		repositories.NewFeaturedRepository(db),
		shared.WithLogger(r.logger, "component", "seed"),
	)

	progress := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.drawSeedProgress(progress)
	}()

	result, err := engine.Import(ctx, progress, source)
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	r.writePlainln("✓ Seed complete")
	r.writePlain("  Imported: %d\n", result.Imported)
	r.writePlain("  Skipped:  %d\n", result.Skipped)
	r.writePlain("  Featured: %d\n", result.Featured)
	return nil
}

func (r *Runner) drawSeedProgress(progress <-chan tasks.ProgressUpdate) {
	var bar *progressbar.ProgressBar
	for update := range progress {
		if update.Phase == tasks.DecodeSeed {
			bar = progressbar.NewOptions(
				update.Total,
				progressbar.OptionSetWriter(r.output),
				progressbar.OptionSetTheme(progressbar.ThemeASCII),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("Seeding catalog..."),
			)
			continue
		}
		if bar != nil {
			bar.Describe(update.Message)
			bar.Add(1)
		}
	}
	if bar != nil {
		bar.Finish()
	}
}
