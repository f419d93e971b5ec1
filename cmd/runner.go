package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/jobtrail/trailctl/internal/services"
	"github.com/jobtrail/trailctl/internal/session"
	"github.com/jobtrail/trailctl/internal/shared"
	"github.com/jobtrail/trailctl/internal/store"
	"github.com/jobtrail/trailctl/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *shared.Config
	state    store.Store
	session  *session.Session
	verifier *session.Verifier
	client   *services.Client
	tracker  *tasks.Tracker
	logger   *log.Logger
	output   io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Unset dependencies are constructed from the config, so tests can inject
// only the pieces they care about.
type RunnerOpts struct {
	Config   *shared.Config
	State    store.Store
	Session  *session.Session
	Client   *services.Client
	Verifier *session.Verifier
	Tracker  *tasks.Tracker
	Logger   *log.Logger
	Output   io.Writer
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
	if opts.State == nil {
		opts.State = store.NewMemoryStore()
	}
	if opts.Session == nil {
		opts.Session = session.New(opts.Config.Endpoints, opts.State, opts.Logger)
	}
	if opts.Client == nil {
		opts.Client = services.NewClient(opts.Config.Endpoints, opts.State, opts.Logger, opts.Session.Downgrade)
	}
	if opts.Verifier == nil {
		opts.Verifier = session.NewVerifier(opts.Session, opts.State, opts.Client, opts.Logger)
	}
	if opts.Tracker == nil {
		opts.Tracker = tasks.NewTracker(opts.Client, opts.State, opts.Logger, tasks.TrackerOpts{})
	}

	return &Runner{
		config:   opts.Config,
		state:    opts.State,
		session:  opts.Session,
		client:   opts.Client,
		verifier: opts.Verifier,
		tracker:  opts.Tracker,
		logger:   opts.Logger,
		output:   opts.Output,
	}
}

// SetLogger swaps the runner's logger, used when the TUI redirects logs to a file.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, profileCommand, sheetCommand, scanCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
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
