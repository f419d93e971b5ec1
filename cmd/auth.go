package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jobtrail/trailctl/internal/server"
	"github.com/jobtrail/trailctl/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// loginTimeout bounds how long the callback server waits for the user to
// finish the browser flow.
const loginTimeout = 2 * time.Minute

// AuthLogin runs the browser login flow: it starts a loopback callback
// server, opens the authorization page, and persists the credential
// delivered on the redirect back.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	timeout := cmd.Duration("timeout")
	if timeout <= 0 {
		timeout = loginTimeout
	}

	token, err := r.doLoginFlow(ctx, timeout)
	if err != nil {
		return err
	}

	if err := r.state.SetToken(token); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	if err := r.state.SetAuthHint(true); err != nil {
		r.logger.Warn("failed to persist auth hint", "error", err)
	}

	r.logger.Info("login complete")
	return r.writePlain("✓ Logged in\n")
}

// doLoginFlow drives the loopback callback exchange and returns the bearer
// credential.
func (r *Runner) doLoginFlow(ctx context.Context, timeout time.Duration) (string, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return "", fmt.Errorf("failed to generate state token: %w", err)
	}

	redirectURI := r.config.Server.RedirectURI()

	var exchange *oauth2.Config
	if r.config.OAuth.ClientID != "" && r.config.OAuth.TokenURL != "" {
		exchange = &oauth2.Config{
			ClientID:     r.config.OAuth.ClientID,
			ClientSecret: r.config.OAuth.ClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: r.config.OAuth.TokenURL},
			RedirectURL:  redirectURI,
		}
	}

	handler := server.NewCallbackHandler(exchange, state)
	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(handler)

	srv := &http.Server{Addr: r.config.Server.Addr(), Handler: router}
	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := r.session.Login(redirectURI, state); err != nil {
		return "", err
	}
	r.writePlain("Opened the browser; waiting for you to finish logging in...\n")

	select {
	case result := <-handler.Result():
		if err := result.Error(); err != nil {
			return "", fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
		}
		return result.Token, nil
	case err := <-errChan:
		return "", fmt.Errorf("callback server failed: %w", err)
	case <-time.After(timeout):
		return "", fmt.Errorf("%w: no login callback received within %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// AuthStatus verifies the stored session against the backend and reports
// the verdict.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("checking session status")

	profile, err := r.verifier.Run(ctx)
	if err != nil {
		r.writePlain("✗ Not logged in\n")
		return fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}
	if profile == nil {
		return r.writePlain("✗ Not logged in (no profile endpoint configured)\n")
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"authenticated":   r.session.Authenticated(),
			"sheet_connected": profile.SheetConnected(),
			"first_time_user": profile.FirstTimeUser,
		}, true)
	}

	r.writePlain("✓ Logged in\n")
	if profile.SheetConnected() {
		r.writePlain("Spreadsheet: %s\n", profile.SheetURL())
	} else {
		r.writePlain("Spreadsheet: not connected\n")
	}
	return nil
}

// AuthLogout erases the stored credential. Logging out while already
// logged out succeeds quietly.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	r.session.Logout()
	return r.writePlain("✓ Logged out\n")
}
