package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/desertthunder/sonata/internal/auth"
	"github.com/desertthunder/sonata/internal/server"
	"github.com/desertthunder/sonata/internal/shared"
	"github.com/urfave/cli/v3"
)

const oauthTimeout = 2 * time.Minute

// AuthSignUp creates an email account and saves its session to the config file.
func (r *Runner) AuthSignUp(ctx context.Context, cmd *cli.Command) error {
	identity, err := r.identityProvider()
	if err != nil {
		return err
	}

	result, err := identity.SignUp(ctx, cmd.String("email"), cmd.String("password"), cmd.String("name"))
	if err != nil {
		return err
	}
	if err := r.saveSession(result); err != nil {
		return err
	}

	return r.writePlain("✓ Welcome, %s! You are signed in as %s\n", result.User.DisplayName(), result.User.Email)
}

// AuthSignIn signs in with email and password and saves the session to the config file.
func (r *Runner) AuthSignIn(ctx context.Context, cmd *cli.Command) error {
	identity, err := r.identityProvider()
	if err != nil {
		return err
	}

	result, err := identity.SignIn(ctx, cmd.String("email"), cmd.String("password"))
	if err != nil {
		return err
	}
	if err := r.saveSession(result); err != nil {
		return err
	}

	return r.writePlain("✓ Signed in as %s\n", result.User.Email)
}

// AuthSignOut revokes the saved session and clears it from the config file.
func (r *Runner) AuthSignOut(ctx context.Context, cmd *cli.Command) error {
	token := r.config.Session.Token
	if token == "" {
		return r.writePlain("Not signed in\n")
	}

	identity, err := r.identityProvider()
	if err != nil {
		return err
	}
	if err := identity.SignOut(ctx, token); err != nil && !shared.IsNotFound(err) {
		r.logger.Warn("failed to revoke session", "error", err)
	}

	if err := r.saveSession(nil); err != nil {
		return err
	}
	return r.writePlain("✓ Signed out\n")
}

// AuthWhoami prints the signed-in user.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	user, err := r.currentUser(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, cmd.Bool("pretty"))
	}

	r.writePlain("Name:     %s\n", user.DisplayName())
	r.writePlain("Email:    %s\n", user.Email)
	r.writePlain("Provider: %s\n", user.Provider)
	r.writePlain("ID:       %s\n", user.ID)
	return nil
}

// AuthOAuth performs the OAuth2 authorization code flow for a social provider.
//
// Starts a local HTTP server for the callback, opens the browser for user authorization, and saves the
// resulting session.
func (r *Runner) AuthOAuth(ctx context.Context, cmd *cli.Command) error {
	name := strings.ToLower(strings.TrimSpace(cmd.StringArg("provider")))
	if name == "" {
		return fmt.Errorf("%w: provider is required (google, github or facebook)", shared.ErrMissingArgument)
	}

	creds, err := r.config.OAuth.Provider(name)
	if err != nil {
		return err
	}

	identity, err := r.identityProvider()
	if err != nil {
		return err
	}

	provider, err := auth.NewOAuthProvider(name, creds, identity)
	if err != nil {
		return err
	}

	result, err := r.doOAuth(ctx, provider, !cmd.Bool("no-browser"))
	if err != nil {
		return err
	}
	if err := r.saveSession(result); err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Signed in as %s via %s\n", result.User.Email, name)
	return nil
}

func (r *Runner) doOAuth(ctx context.Context, provider *auth.OAuthProvider, openBrowser bool) (*auth.Result, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := provider.AuthCodeURL(state)
	oauthHandler := server.NewOAuthHandler(provider, state)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	serverAddr := r.config.Server.Addr()
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth callback server for %s at %v", provider.Name(), serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	if openBrowser {
		r.writePlain("→ Opening browser for %s sign-in...\n", provider.Name())
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warnf("failed to open browser automatically %v", err)
			r.writePlainln("⚠ Could not open browser automatically.")
			r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
		}
	} else {
		r.writePlain("Open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(oauthTimeout)
	defer timeout.Stop()

	var result server.OAuthResult
	select {
	case result = <-oauthHandler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if err := result.Error(); err != nil {
		return nil, fmt.Errorf("authorization failed: %w", err)
	}
	if result.Session == nil {
		return nil, fmt.Errorf("%w: no session received", shared.ErrAuthFailed)
	}
	return result.Session, nil
}
