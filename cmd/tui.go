package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/sonata/internal/search"
	"github.com/desertthunder/sonata/internal/services"
	"github.com/desertthunder/sonata/internal/shared"
	"github.com/desertthunder/sonata/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive song listing/search view.
//
// With --remote (or session.remote in the config) songs are read from a sonata API server;
// otherwise the local database is used. Liking is enabled when a session is saved.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	logPath := r.config.Log.File
	if logPath == "" {
		logPath = "./tmp/sonata-tui.log"
	}
	fileLogger, err := shared.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.Log.Level))
	r.SetLogger(fileLogger)

	remote := cmd.String("remote")
	if remote == "" {
		remote = r.config.Session.Remote
	}

	store, liker, err := r.browseSource(ctx, remote)
	if err != nil {
		return err
	}

	controller := search.New(store,
		search.WithLogger(shared.WithLogger(fileLogger, "component", "search")),
		search.WithPageSize(r.config.Search.PageSize),
	)
	debouncer := search.NewDebouncer(r.config.Search.Debounce())

	model := ui.NewModel(ctx, controller, debouncer, liker)
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// browseSource picks the song store and, when signed in, the like toggler for the TUI.
func (r *Runner) browseSource(ctx context.Context, remote string) (search.Store, ui.Liker, error) {
	token := r.config.Session.Token

	if remote != "" {
		client := services.NewCatalogClient(remote, r.httpClient)
		r.logger.Info("browsing remote catalog", "url", client.BaseURL())
		if token == "" {
			return client, nil, nil
		}
		client = client.WithToken(token)
		return client, client, nil
	}

	svc, err := r.catalogService()
	if err != nil {
		return nil, nil, err
	}
	if token == "" {
		return svc.Songs(), nil, nil
	}

	user, err := r.currentUser(ctx)
	if err != nil {
		r.logger.Warn("saved session is not valid, liking disabled", "error", err)
		return svc.Songs(), nil, nil
	}

	liker := ui.LikerFunc(func(ctx context.Context, songID string) (bool, error) {
		return svc.ToggleLike(ctx, user.ID, songID)
	})
	return svc.Songs(), liker, nil
}
