package main

import (
	"context"
	"fmt"

	"github.com/jobtrail/trailctl/internal/shared"
	"github.com/urfave/cli/v3"
)

// Profile verifies the session and prints the account profile.
func (r *Runner) Profile(ctx context.Context, cmd *cli.Command) error {
	profile, err := r.verifier.Run(ctx)
	if err != nil || profile == nil {
		return fmt.Errorf("%w: session verification failed", shared.ErrNotAuthenticated)
	}

	if cmd.Bool("json") {
		return r.writeJSON(profile, cmd.Bool("pretty"))
	}

	r.writePlain("Account\n")
	if profile.SheetConnected() {
		r.writePlain("  Spreadsheet: %s\n", profile.SheetURL())
	} else {
		r.writePlain("  Spreadsheet: not connected\n")
	}
	if profile.FirstTimeUser {
		r.writePlain("  First scan pending: pass --from to `trailctl scan run`\n")
	}
	return nil
}
