// Package session holds the in-memory authentication state and the one-shot
// verifier that decides it.
//
// A single [Session] is constructed at the application root and passed down
// by reference; nothing else is allowed to mutate authentication state. The
// durable store only carries hints and the raw credential between runs; the
// [Verifier] round-trip is always the authority.
package session

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/jobtrail/trailctl/internal/shared"
	"github.com/jobtrail/trailctl/internal/store"
)

// Session is the single source of truth for in-memory authentication state.
//
// loading starts true and drops to false exactly once, when verification
// completes. authenticated may be false with a credential present when the
// backend rejected it.
type Session struct {
	mu            sync.RWMutex
	authenticated bool
	loading       bool

	endpoints shared.EndpointsConfig
	state     store.Store
	logger    *log.Logger

	// openBrowser is swapped out in tests.
	openBrowser func(url string) error

	// onLogout lets the UI navigate to the entry view after logout. Optional.
	onLogout func()
}

// New creates a Session in its initial state: loading, not authenticated.
func New(endpoints shared.EndpointsConfig, state store.Store, logger *log.Logger) *Session {
	return &Session{
		loading:     true,
		endpoints:   endpoints,
		state:       state,
		logger:      logger,
		openBrowser: openBrowser,
	}
}

// Authenticated reports the verified authentication state.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// Loading reports whether the initial verification round-trip is still in
// flight. Once false it never reverts within a process lifetime.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// OnLogout registers a navigation hook invoked after Logout clears state.
func (s *Session) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = fn
}

// AuthURL builds the authorization address, optionally carrying the local
// callback as the return address and a state token echoed back on the
// redirect.
func (s *Session) AuthURL(redirectURI, state string) (string, error) {
	if s.endpoints.AuthURL == "" {
		return "", fmt.Errorf("%w: auth endpoint", shared.ErrMissingConfig)
	}
	if redirectURI == "" && state == "" {
		return s.endpoints.AuthURL, nil
	}

	u, err := url.Parse(s.endpoints.AuthURL)
	if err != nil {
		return "", fmt.Errorf("%w: invalid auth endpoint: %v", shared.ErrInvalidConfig, err)
	}
	q := u.Query()
	if redirectURI != "" {
		q.Set("redirect_uri", redirectURI)
	}
	if state != "" {
		q.Set("state", state)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Login navigates the browser to the authorization endpoint. It has no
// local effect on session state and awaits no response; the credential
// arrives later on the redirect back.
func (s *Session) Login(redirectURI, state string) error {
	authURL, err := s.AuthURL(redirectURI, state)
	if err != nil {
		s.logger.Error("cannot start login", "error", err)
		return err
	}

	s.logger.Info("redirecting to authorization endpoint", "url", authURL)
	return s.openBrowser(authURL)
}

// Logout clears the persisted credential record and drops the session to
// unauthenticated. Best-effort: storage failures are logged, never raised,
// and logging out while already logged out is not an error.
func (s *Session) Logout() {
	if err := s.state.ClearCredentials(); err != nil {
		s.logger.Warn("failed to clear stored credentials", "error", err)
	}

	s.mu.Lock()
	s.authenticated = false
	fn := s.onLogout
	s.mu.Unlock()

	s.logger.Info("logged out")
	if fn != nil {
		fn()
	}
}

// Downgrade drops the in-memory session to unauthenticated. Called by the
// credential transport when any response comes back 401.
func (s *Session) Downgrade() {
	s.mu.Lock()
	s.authenticated = false
	s.mu.Unlock()
}

// setVerified records the verifier's verdict.
func (s *Session) setVerified(ok bool) {
	s.mu.Lock()
	s.authenticated = ok
	s.mu.Unlock()
}

// finishLoading marks the verification round-trip complete.
func (s *Session) finishLoading() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
}

// openBrowser opens the default system browser to the specified URL.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}
