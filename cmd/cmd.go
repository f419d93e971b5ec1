// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// authCommand handles login, logout, and session status
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the provider session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Log in through the browser and store the credential",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the browser redirect",
						Value: loginTimeout,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "status",
				Usage: "Verify the stored session against the backend",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Erase the stored credential",
				Action: r.AuthLogout,
			},
		},
	}
}

// profileCommand prints the verified account profile
func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Show the account profile",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Profile,
	}
}

// sheetCommand manages the connected spreadsheet
func sheetCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sheet",
		Usage: "Manage the connected spreadsheet",
		Commands: []*cli.Command{
			{
				Name:  "connect",
				Usage: "Connect a Google Sheet to receive scan results",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "url",
					},
				},
				Action: r.SheetConnect,
			},
		},
	}
}

// scanCommand handles email scan operations
func scanCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "Scan the inbox for job application updates",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Submit a scan and follow it to completion",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "from",
						Aliases: []string{"f"},
						Usage:   "Starting date (yyyy-mm-dd) for a first scan",
					},
				},
				Action: r.ScanRun,
			},
			{
				Name:   "resume",
				Usage:  "Follow a scan left behind by an earlier run",
				Action: r.ScanResume,
			},
			{
				Name:  "status",
				Usage: "Fetch the status of a task once, without polling",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.ScanStatus,
			},
		},
	}
}

// setupCommand initializes local state
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize local configuration and state",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize the state database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// tuiCommand launches the interactive terminal UI
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Interactive dashboard for scans and session state",
		Action: r.TUI,
	}
}
