// Package guard implements per-view access control for the terminal UI.
//
// Each rendered route gets its own [Guard] instance running a small state
// machine: an immediate hint-only precheck to avoid flashing the wrong
// screen, an authoritative evaluation once session verification completes,
// and a final render-time re-derivation so protected content can never
// appear against an unauthenticated session, even momentarily.
package guard

import (
	"github.com/jobtrail/trailctl/internal/session"
	"github.com/jobtrail/trailctl/internal/store"
)

// RouteType classifies a view's access policy.
type RouteType int

const (
	// Public views are for logged-out users; authenticated sessions are
	// redirected to the landing route.
	Public RouteType = iota
	// Protected views require a verified session.
	Protected
	// Any views render regardless of session state.
	Any
)

func (t RouteType) String() string {
	switch t {
	case Public:
		return "public"
	case Protected:
		return "protected"
	case Any:
		return "any"
	default:
		return ""
	}
}

// State is the guard's position in its lifecycle.
type State int

const (
	// Checking means no decision yet; render the placeholder.
	Checking State = iota
	// Redirecting means navigation is underway; render the placeholder.
	Redirecting
	// Allowed means the view may render.
	Allowed
	// Blocked means render nothing at all.
	Blocked
)

func (s State) String() string {
	switch s {
	case Checking:
		return "checking"
	case Redirecting:
		return "redirecting"
	case Allowed:
		return "allowed"
	case Blocked:
		return "blocked"
	default:
		return ""
	}
}

// Decision is the render-time verdict derived from the current state and a
// fresh look at the session.
type Decision int

const (
	// Placeholder renders the loading indicator.
	Placeholder Decision = iota
	// Render shows the real view.
	Render
	// Nothing renders an empty view.
	Nothing
)

// Default redirect targets.
const (
	EntryRoute     = "entry"
	DashboardRoute = "dashboard"
)

// Route declares a view's access policy and optional redirect override.
type Route struct {
	Type RouteType
	// RedirectTo overrides the default target: the entry route for
	// protected views, the dashboard for public ones.
	RedirectTo string
}

// Guard evaluates one route instance against the session and the durable
// hints. Not safe for concurrent use; the UI event loop owns it.
type Guard struct {
	route   Route
	session *session.Session
	state   store.Store

	status State
	target string
}

// New creates a Guard in the Checking state.
func New(route Route, sess *session.Session, st store.Store) *Guard {
	return &Guard{route: route, session: sess, state: st, status: Checking}
}

// Status returns the guard's current state.
func (g *Guard) Status() State {
	return g.status
}

// Target returns the redirect destination, meaningful once the guard is
// Redirecting.
func (g *Guard) Target() string {
	return g.target
}

func (g *Guard) fallback() string {
	if g.route.RedirectTo != "" {
		return g.route.RedirectTo
	}
	if g.route.Type == Public {
		return DashboardRoute
	}
	return EntryRoute
}

func (g *Guard) redirect() State {
	g.status = Redirecting
	g.target = g.fallback()
	return g.status
}

// Precheck is the immediate, hint-only evaluation run on first render. It
// inspects only the durable hints, never the verified session, and exists
// purely to avoid rendering the wrong screen for one frame while the
// authoritative check is pending. Its verdict is never final.
func (g *Guard) Precheck() State {
	if g.status != Checking {
		return g.status
	}

	hint, _ := g.state.AuthHint()
	token, _ := g.state.Token()

	switch g.route.Type {
	case Protected:
		if !hint && token == "" && !g.session.Loading() {
			return g.redirect()
		}
	case Public:
		if hint && !g.session.Loading() {
			return g.redirect()
		}
	}

	return g.status
}

// Observe is the authoritative evaluation. It is a no-op while verification
// is still loading or a redirect is already underway; otherwise it decides
// from the verified session state.
func (g *Guard) Observe() State {
	if g.session.Loading() || g.status == Redirecting {
		return g.status
	}

	switch g.route.Type {
	case Protected:
		if g.session.Authenticated() {
			g.status = Allowed
		} else {
			return g.redirect()
		}
	case Public:
		if g.session.Authenticated() {
			return g.redirect()
		}
		g.status = Allowed
	case Any:
		g.status = Allowed
	}

	return g.status
}

// Render re-derives the final verdict at render time. Even after Observe
// reached Allowed, a protected view with a session that has since been
// downgraded renders nothing rather than trusting the earlier transition.
func (g *Guard) Render() Decision {
	if g.session.Loading() || g.status == Checking || g.status == Redirecting {
		return Placeholder
	}

	if g.route.Type == Protected && !g.session.Authenticated() {
		g.status = Blocked
		return Nothing
	}
	if g.route.Type == Public && g.session.Authenticated() {
		g.status = Blocked
		return Nothing
	}

	return Render
}
