// Package server provides the loopback HTTP listener used during login.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Auth Callback Handler
//
// [CallbackHandler] receives the redirect back from the authorization server.
//
// It validates the state parameter (CSRF protection), extracts the credential
// either directly from the redirect or by exchanging an authorization code,
// and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// # Current Usage
//
// When the user runs `trailctl auth login`, a temporary HTTP server starts on
// the configured loopback address, handles the callback, and shuts down after
// delivering the credential to the CLI.
package server
