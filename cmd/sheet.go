package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jobtrail/trailctl/internal/shared"
	"github.com/urfave/cli/v3"
)

// SheetConnect points the account at a Google Sheet for scan results.
func (r *Runner) SheetConnect(ctx context.Context, cmd *cli.Command) error {
	sheetURL := strings.TrimSpace(cmd.StringArg("url"))
	if sheetURL == "" {
		return fmt.Errorf("%w: spreadsheet url", shared.ErrMissingArgument)
	}

	parsed, err := url.Parse(sheetURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("%w: %q is not a valid url", shared.ErrInvalidArgument, sheetURL)
	}

	if _, err := r.verifier.Run(ctx); err != nil {
		return fmt.Errorf("%w: session verification failed", shared.ErrNotAuthenticated)
	}

	if err := r.client.ConnectSheet(ctx, sheetURL); err != nil {
		return err
	}

	r.logger.Info("spreadsheet connected", "url", sheetURL)
	return r.writePlain("✓ Spreadsheet connected\n")
}
