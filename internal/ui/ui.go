package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jobtrail/trailctl/internal/guard"
	"github.com/jobtrail/trailctl/internal/services"
	"github.com/jobtrail/trailctl/internal/session"
	"github.com/jobtrail/trailctl/internal/store"
	"github.com/jobtrail/trailctl/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	EntryView ViewState = iota
	DashboardView
	FirstRunView
	ScanView
	ResultView
)

// routeFor maps each view to its access policy.
func routeFor(view ViewState) guard.Route {
	switch view {
	case EntryView:
		return guard.Route{Type: guard.Public}
	case DashboardView, FirstRunView, ScanView:
		return guard.Route{Type: guard.Protected}
	default:
		return guard.Route{Type: guard.Any}
	}
}

// viewForRoute resolves a guard redirect target to a view.
func viewForRoute(route string) ViewState {
	if route == guard.DashboardRoute {
		return DashboardView
	}
	return EntryView
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	session  *session.Session
	verifier *session.Verifier
	tracker  *tasks.Tracker
	state    store.Store

	guards map[ViewState]*guard.Guard

	width  int
	height int

	spinner   spinner.Model
	dateInput textinput.Model

	profile      *services.Profile
	taskID       string
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	finalStatus  tasks.Status
	err          error

	help help.Model
	keys keyMap
}

type sessionVerifiedMsg struct {
	profile *services.Profile
	err     error
}

type loginOpenedMsg struct {
	err error
}

type scanStartedMsg struct {
	taskID string
	err    error
}

type progressUpdateMsg tasks.ProgressUpdate

type scanDoneMsg struct {
	status tasks.Status
	err    error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, sess *session.Session, verifier *session.Verifier, tracker *tasks.Tracker, state store.Store) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.title

	date := textinput.New()
	date.Placeholder = "2025-01-01"
	date.CharLimit = 32
	date.Width = 24

	m := &Model{
		ctx:       ctx,
		view:      DashboardView,
		session:   sess,
		verifier:  verifier,
		tracker:   tracker,
		state:     state,
		spinner:   sp,
		dateInput: date,
		guards:    map[ViewState]*guard.Guard{},
		help:      help.New(),
		keys:      newKeyMap(),
	}

	for _, view := range []ViewState{EntryView, DashboardView, FirstRunView, ScanView, ResultView} {
		m.guards[view] = guard.New(routeFor(view), sess, state)
	}

	// Hint-only precheck so the very first frame already points at the
	// right view.
	if m.guardFor(m.view).Precheck() == guard.Redirecting {
		m.followRedirect()
	}

	return m
}

func (m *Model) guardFor(view ViewState) *guard.Guard {
	return m.guards[view]
}

// followRedirect navigates to the current guard's target and resets the
// guard it leaves behind so the view can be revisited later.
func (m *Model) followRedirect() {
	g := m.guardFor(m.view)
	next := viewForRoute(g.Target())
	m.guards[m.view] = guard.New(routeFor(m.view), m.session, m.state)
	m.view = next
}

// settle runs the authoritative check for the current view and follows any
// redirect it produces.
func (m *Model) settle() {
	for m.guardFor(m.view).Observe() == guard.Redirecting {
		m.followRedirect()
	}
}

// Init kicks off session verification alongside the placeholder spinner.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runVerification())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) && m.view != FirstRunView {
			return m, tea.Quit
		}
		switch m.view {
		case EntryView:
			return m.handleEntryKeys(msg)
		case DashboardView:
			return m.handleDashboardKeys(msg)
		case FirstRunView:
			return m.handleFirstRunKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}
		return m, nil

	case sessionVerifiedMsg:
		m.profile = msg.profile
		m.settle()
		// A scan left behind by an earlier run resumes automatically.
		if m.session.Authenticated() {
			if taskID, ok := m.tracker.Resume(); ok {
				m.view = ScanView
				m.settle()
				return m, m.startFollow(taskID)
			}
		}
		return m, nil

	case loginOpenedMsg:
		if msg.err != nil {
			m.err = msg.err
		}
		return m, nil

	case scanStartedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = DashboardView
			m.settle()
			return m, nil
		}
		m.err = nil
		m.view = ScanView
		m.settle()
		return m, m.startFollow(msg.taskID)

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case scanDoneMsg:
		m.finalStatus = msg.status
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m, nil
}

// View renders the UI based on the current view state, gated by the route
// guard: a pending verdict renders the placeholder and a blocked view
// renders nothing.
func (m *Model) View() string {
	switch m.guardFor(m.view).Render() {
	case guard.Placeholder:
		return fmt.Sprintf("\n %s Verifying access...\n", m.spinner.View())
	case guard.Nothing:
		return ""
	}

	switch m.view {
	case EntryView:
		return m.renderEntry()
	case DashboardView:
		return m.renderDashboard()
	case FirstRunView:
		return m.renderFirstRun()
	case ScanView:
		return m.renderScan()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleEntryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.login) {
		return m, m.openLogin()
	}
	return m, nil
}

func (m *Model) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.scan):
		if m.tracker.Active() {
			return m, nil
		}
		if m.profile != nil && m.profile.FirstTimeUser {
			m.dateInput.Focus()
			m.view = FirstRunView
			m.settle()
			return m, textinput.Blink
		}
		return m, m.submitScan("")
	case key.Matches(msg, m.keys.logout):
		m.session.Logout()
		m.settle()
		return m, nil
	}
	return m, nil
}

func (m *Model) handleFirstRunKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.dateInput.Blur()
		m.view = DashboardView
		m.settle()
		return m, nil
	case "enter":
		date := strings.TrimSpace(m.dateInput.Value())
		m.dateInput.Blur()
		return m, m.submitScan(date)
	}

	var cmd tea.Cmd
	m.dateInput, cmd = m.dateInput.Update(msg)
	return m, cmd
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.back) {
		m.view = DashboardView
		m.err = nil
		m.settle()
		return m, nil
	}
	return m, nil
}

func (m *Model) runVerification() tea.Cmd {
	return func() tea.Msg {
		profile, err := m.verifier.Run(m.ctx)
		return sessionVerifiedMsg{profile: profile, err: err}
	}
}

func (m *Model) openLogin() tea.Cmd {
	return func() tea.Msg {
		return loginOpenedMsg{err: m.session.Login("", "")}
	}
}

func (m *Model) submitScan(startDate string) tea.Cmd {
	return func() tea.Msg {
		taskID, err := m.tracker.Submit(m.ctx, m.profile, tasks.SubmitOptions{StartDate: startDate})
		return scanStartedMsg{taskID: taskID, err: err}
	}
}

func (m *Model) startFollow(taskID string) tea.Cmd {
	m.taskID = taskID
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	ch := m.progressChan

	go func() {
		status, err := m.tracker.Follow(m.ctx, taskID, ch)
		m.finalStatus = status
		m.err = err
		close(ch)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return scanDoneMsg{status: m.finalStatus, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return scanDoneMsg{status: m.finalStatus, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderEntry() string {
	title := styles.title.Render("JobTrail")
	body := "Sign in with your provider account to track job applications."
	if m.err != nil {
		body = styles.err.Render(fmt.Sprintf("Login failed: %v", m.err))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.login, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", title, body, helpView)
}

func (m *Model) renderDashboard() string {
	title := styles.title.Render("Dashboard")

	var lines []string
	if m.profile != nil {
		if m.profile.SheetConnected() {
			lines = append(lines, styles.ok.Render("Spreadsheet connected"))
			lines = append(lines, styles.help.Render(m.profile.SheetURL()))
		} else {
			lines = append(lines, styles.warn.Render("No spreadsheet connected; run `trailctl sheet connect` first"))
		}
		if m.profile.FirstTimeUser {
			lines = append(lines, styles.help.Render("First scan: a starting date will be requested"))
		}
	}
	if m.err != nil {
		lines = append(lines, styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.scan, m.keys.logout, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", title, strings.Join(lines, "\n"), helpView)
}

func (m *Model) renderFirstRun() string {
	title := styles.title.Render("First Scan")
	prompt := "How far back should the first email scan reach?\nEnter a date (yyyy-mm-dd):"

	var errLine string
	if m.err != nil {
		errLine = "\n" + styles.err.Render(m.err.Error())
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s%s\n\n%s", title, prompt, m.dateInput.View(), errLine, helpView)
}

func (m *Model) renderScan() string {
	title := styles.title.Render("Scanning Emails")

	message := m.progress.Message
	if message == "" {
		message = "Scanning emails for job application updates..."
	}

	status := ""
	if m.progress.Status != "" {
		status = styles.help.Render(fmt.Sprintf("task %s: %s", m.taskID, m.progress.Status))
	}

	return fmt.Sprintf("%s\n%s %s\n%s", title, m.spinner.View(), message, status)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})

	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(fmt.Sprintf("Scan failed: %v", m.err)), helpView)
	}

	switch m.finalStatus {
	case tasks.StatusSuccess:
		body := styles.ok.Render("✓ Scan complete")
		if m.profile != nil && m.profile.SheetConnected() {
			body += "\n" + styles.help.Render("Updates written to "+m.profile.SheetURL())
		}
		return fmt.Sprintf("%s\n\n%s", body, helpView)
	case tasks.StatusFailure:
		return fmt.Sprintf("%s\n\n%s", styles.err.Render("Scan failed"), helpView)
	default:
		return fmt.Sprintf("Scan stopped with status %s\n\n%s", m.finalStatus, helpView)
	}
}
